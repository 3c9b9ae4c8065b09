package types

import "encoding/binary"

// Uberblock is a superblock candidate. ZFS keeps a ring of these per
// label; the active one is the valid entry with the greatest Txg.
type Uberblock struct {
	Magic      uint64
	SpaVersion uint64
	Txg        uint64
	GuidSum    uint64
	Timestamp  uint64
	Rootbp     Blkptr
}

// ParseUberblock decodes the significant leading bytes of one uberblock
// ring slot. The remainder of the 1 KiB slot is reserved padding.
func ParseUberblock(data []byte) Uberblock {
	_ = data[UberblockSignificantSize-1]

	return Uberblock{
		Magic:      binary.LittleEndian.Uint64(data[0:8]),
		SpaVersion: binary.LittleEndian.Uint64(data[8:16]),
		Txg:        binary.LittleEndian.Uint64(data[16:24]),
		GuidSum:    binary.LittleEndian.Uint64(data[24:32]),
		Timestamp:  binary.LittleEndian.Uint64(data[32:40]),
		Rootbp:     ParseBlkptr(data[40:168]),
	}
}

// Valid reports whether the magic word identifies a real uberblock.
func (ub Uberblock) Valid() bool {
	return ub.Magic == UberblockMagic
}
