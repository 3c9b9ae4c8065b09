package types

import "encoding/binary"

// DvaSize is the fixed on-disk size of a Data Virtual Address.
const DvaSize = 16

// Dva (Data Virtual Address) names a byte range within a single vdev.
// Three of these live side by side in a Blkptr, one mirror copy each;
// this reader only ever follows one at a time.
type Dva struct {
	Asize uint32 // allocated size, in sectors, 24 significant bits
	Grid  uint8
	Vdev  uint32
	// Offset is in sectors, 63 significant bits.
	Offset uint64
	Gang   bool
}

// ParseDva decodes a 16-byte DVA from its on-disk little-endian form.
func ParseDva(data []byte) Dva {
	_ = data[DvaSize-1]

	word0 := binary.LittleEndian.Uint32(data[0:4])
	vdev := binary.LittleEndian.Uint32(data[4:8])
	word2 := binary.LittleEndian.Uint64(data[8:16])

	return Dva{
		Asize:  word0 & 0x00FFFFFF,
		Grid:   uint8(word0 >> 24),
		Vdev:   vdev,
		Offset: word2 & 0x7FFFFFFFFFFFFFFF,
		Gang:   word2>>63 != 0,
	}
}

// Address returns the absolute byte offset this DVA refers to, inclusive
// of the reserved label region at the start of the vdev.
func (d Dva) Address() int64 {
	return (int64(d.Offset) << SectorShift) + VdevLabelStart
}

// AllocatedSize returns the number of bytes physically reserved for the
// block this DVA points at.
func (d Dva) AllocatedSize() int64 {
	return int64(d.Asize) << SectorShift
}

// Valid reports whether the DVA carries enough information to be
// followed; it does not validate that the referenced bytes exist.
func (d Dva) Valid() bool {
	return d.Asize != 0 && d.Offset != 0
}
