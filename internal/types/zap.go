package types

import (
	"bytes"
	"encoding/binary"
)

// MZapHeader is the fixed leading portion of a micro-ZAP block. Only
// BlockType == ZapBlockMicro is supported; any other ZAP encoding
// (fat ZAP leaf/header blocks) is unsupported by this reader.
type MZapHeader struct {
	BlockType ZapBlockType
	Salt      uint64
	NormFlags uint64
}

// ParseMZapHeader decodes the 64-byte header of a micro-ZAP block.
func ParseMZapHeader(data []byte) MZapHeader {
	_ = data[MZapHeaderSize-1]

	return MZapHeader{
		BlockType: ZapBlockType(binary.LittleEndian.Uint64(data[0:8])),
		Salt:      binary.LittleEndian.Uint64(data[8:16]),
		NormFlags: binary.LittleEndian.Uint64(data[16:24]),
		// bytes 24:64 reserved padding
	}
}

// Valid reports whether the header identifies a micro-ZAP block.
func (h MZapHeader) Valid() bool {
	return h.BlockType == ZapBlockMicro
}

// MZapEntry is one fixed 64-byte directory entry: a NUL-terminated name
// mapped to a 64-bit value.
type MZapEntry struct {
	Value uint64
	Cd    uint32
	Name  [MZapNameMax]byte
}

// ParseMZapEntry decodes one 64-byte micro-ZAP entry.
func ParseMZapEntry(data []byte) MZapEntry {
	_ = data[MZapEntrySize-1]

	e := MZapEntry{
		Value: binary.LittleEndian.Uint64(data[0:8]),
		Cd:    binary.LittleEndian.Uint32(data[8:12]),
		// bytes 12:14 reserved padding
	}
	copy(e.Name[:], data[14:14+MZapNameMax])
	return e
}

// Valid reports whether this entry slot holds a real name.
func (e MZapEntry) Valid() bool {
	return e.Name[0] != 0
}

// NameString returns the entry's name as a Go string, trimmed at the
// first NUL byte.
func (e MZapEntry) NameString() string {
	if i := bytes.IndexByte(e.Name[:], 0); i >= 0 {
		return string(e.Name[:i])
	}
	return string(e.Name[:])
}
