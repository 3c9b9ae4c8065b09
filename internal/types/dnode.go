package types

import "encoding/binary"

// bonusAreaSize is the number of bytes available to a dnode's bonus
// payload when only one of its three block pointer slots is used for a
// real block pointer (the other two are reinterpreted as bonus storage).
const bonusAreaSize = 2*BlkptrSize + 64

// DNode is the fixed 512-byte descriptor of one logical object within an
// object set: a file, a directory, a DSL structure, or a ZAP block
// depending on Type. Its final 448 bytes are aliased: three block
// pointers, or one block pointer plus a bonus buffer, or two block
// pointers plus a spill block pointer. Callers pick the right view
// based on Type and NBlkPtr.
type DNode struct {
	Type            DNodeType
	IndBlkShift     uint8
	NLevels         uint8
	NBlkPtr         uint8
	BonusType       uint8
	Checksum        uint8
	Comp            uint8
	Flags           uint8
	DataBlkSizeSecs uint16
	BonusLen        uint16
	MaxBlockID      uint64
	SecPhysUsed     uint64

	tail []byte // 448 bytes, offset 64..512 of the raw dnode
}

// ParseDNode decodes a 512-byte dnode from its on-disk little-endian
// form. The returned value borrows no memory from data beyond this call;
// the tail region is copied so the DNode outlives the source buffer.
func ParseDNode(data []byte) DNode {
	_ = data[DNodeSize-1]

	d := DNode{
		Type:            DNodeType(data[0]),
		IndBlkShift:     data[1],
		NLevels:         data[2],
		NBlkPtr:         data[3],
		BonusType:       data[4],
		Checksum:        data[5],
		Comp:            data[6],
		Flags:           data[7],
		DataBlkSizeSecs: binary.LittleEndian.Uint16(data[8:10]),
		BonusLen:        binary.LittleEndian.Uint16(data[10:12]),
		// bytes 12:16 reserved padding
		MaxBlockID:  binary.LittleEndian.Uint64(data[16:24]),
		SecPhysUsed: binary.LittleEndian.Uint64(data[24:32]),
		// bytes 32:64 reserved padding
	}
	d.tail = append([]byte(nil), data[64:DNodeSize]...)
	return d
}

// Valid reports whether the dnode's type and block pointer count pass
// the documented on-disk invariants.
func (d DNode) Valid() bool {
	return d.Type != DNodeInvalid && d.NBlkPtr >= 1 && d.NBlkPtr <= 3
}

// IndirectBlockSize is the size, in bytes, of each intermediate indirect
// block belonging to this dnode's block tree.
func (d DNode) IndirectBlockSize() int64 {
	return 1 << d.IndBlkShift
}

// LeafBlockSize is the size, in bytes, of each leaf data block belonging
// to this dnode's block tree.
func (d DNode) LeafBlockSize() int64 {
	return int64(d.DataBlkSizeSecs) << SectorShift
}

// Blkptr returns the i'th top-level block pointer (i in [0, NBlkPtr)).
// Valid for dnodes read under the "bps[3]" tail interpretation.
func (d DNode) Blkptr(i int) Blkptr {
	return ParseBlkptr(d.tail[i*BlkptrSize : (i+1)*BlkptrSize])
}

// BonusArea returns the raw bytes of the bonus payload (up to BonusLen),
// valid when this dnode uses the "one block pointer plus bonus" tail
// interpretation (NBlkPtr == 1, BonusType != 0, BonusLen != 0). The
// payload always starts right after the first block pointer slot.
func (d DNode) BonusArea() []byte {
	n := int(d.BonusLen)
	if n > bonusAreaSize {
		n = bonusAreaSize
	}
	return d.tail[BlkptrSize : BlkptrSize+n]
}

// SpillBlkptr returns the spill block pointer, valid when this dnode
// uses the "two block pointers plus spill" tail interpretation.
func (d DNode) SpillBlkptr() Blkptr {
	return ParseBlkptr(d.tail[bonusAreaSize : bonusAreaSize+BlkptrSize])
}
