package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDNode(t *testing.T, typ DNodeType, nBlkPtr, bonusType uint8, bonusLen uint16) []byte {
	t.Helper()
	data := make([]byte, DNodeSize)
	data[0] = byte(typ)
	data[1] = 12 // indblkshift
	data[2] = 1  // nlevels
	data[3] = nBlkPtr
	data[4] = bonusType
	data[10] = byte(bonusLen)
	data[11] = byte(bonusLen >> 8)
	return data
}

func TestParseDNodeValid(t *testing.T) {
	data := buildDNode(t, DNodeFileContents, 1, 44, 168)
	d := ParseDNode(data)

	assert.Equal(t, DNodeFileContents, d.Type)
	assert.True(t, d.Valid())
}

func TestDNodeValidRejectsOutOfRangeNBlkPtr(t *testing.T) {
	for _, n := range []uint8{0, 4, 255} {
		d := ParseDNode(buildDNode(t, DNodeFileContents, n, 44, 168))
		assert.False(t, d.Valid(), "nBlkPtr=%d should be invalid", n)
	}
}

func TestDNodeBonusAreaClampsToBonusLen(t *testing.T) {
	data := buildDNode(t, DNodeFileContents, 1, 44, 8)
	// Mark a byte just past the 8-byte bonus area, inside the raw tail,
	// so a bug that ignores BonusLen would leak it into BonusArea().
	data[64+BlkptrSize+8] = 0xFF

	d := ParseDNode(data)
	bonus := d.BonusArea()
	require.Len(t, bonus, 8)
}

func TestDNodeBlkptrIndexesTail(t *testing.T) {
	data := buildDNode(t, DNodeDirContents, 3, 0, 0)
	bp1 := buildBlkptr(t, DNodeFileContents, CompressOff, 2, 2, 7)
	copy(data[64+BlkptrSize:64+2*BlkptrSize], bp1)

	d := ParseDNode(data)
	got := d.Blkptr(1)
	assert.Equal(t, DNodeFileContents, got.Type)
	assert.Equal(t, uint64(7), got.BirthTxg)
}
