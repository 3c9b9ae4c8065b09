package indirect

import (
	"encoding/binary"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/zfsreader/zfsreader/internal/services/pool"
	"github.com/zfsreader/zfsreader/internal/types"
)

// memSource is a fixed-size in-memory interfaces.ByteSource backing a
// synthetic pool image, used so the indirect tree walker's descent and
// caching logic can be exercised without a real file.
type memSource struct {
	buf []byte
}

func newMemSource(size int) *memSource {
	return &memSource{buf: make([]byte, size)}
}

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, m.buf[off:])
	return n, nil
}

func (m *memSource) Size() (int64, error) { return int64(len(m.buf)), nil }
func (m *memSource) Close() error         { return nil }

// putBlkptr writes a valid, uncompressed block pointer at data[off:off+128]
// referencing a leafSectors*512-byte block at the given sector offset.
func putBlkptr(data []byte, off int, typ types.DNodeType, sectors uint16, dvaOffsetSectors uint64) {
	binary.LittleEndian.PutUint32(data[off+0:off+4], uint32(sectors))
	binary.LittleEndian.PutUint64(data[off+8:off+16], dvaOffsetSectors)

	var props uint64
	props |= uint64(sectors-1) & 0xFFFF         // lsize
	props |= (uint64(sectors-1) & 0xFFFF) << 16 // psize
	props |= uint64(types.CompressOff) << 32
	props |= uint64(typ&0xFF) << 48
	props |= 1 << 63 // little-endian
	binary.LittleEndian.PutUint64(data[off+48:off+56], props)
}

// buildTestTree lays out a one-level indirect tree: dnode -> root
// indirect block (8 blkptr slots) -> 3 leaf data blocks of 512 bytes
// each, tagged with their block id so Blocks() order can be checked.
func buildTestTree(t *testing.T) (*Tree, *memSource) {
	t.Helper()

	const (
		indBlkShift = 10 // 1024-byte indirect blocks -> shift 3, 8 slots
		leafSectors = 1  // 512-byte leaf blocks
		numLeaves   = 3
	)

	src := newMemSource(types.VdevLabelStart + 64*1024)

	// The root indirect block sits at sector offset 1 (offset 0 is
	// reserved: a zero DVA offset fails DVA validation).
	const rootSectorOffset = 1

	rootBlock := make([]byte, 1024)
	for i := 0; i < numLeaves; i++ {
		leafSectorOffset := uint64(rootSectorOffset + 2 + i) // past the root block
		putBlkptr(rootBlock, i*types.BlkptrSize, types.DNodeFileContents, leafSectors, leafSectorOffset)

		leaf := make([]byte, 512)
		for b := range leaf {
			leaf[b] = byte(i + 1)
		}
		copy(src.buf[types.VdevLabelStart+int64(leafSectorOffset)*types.SectorSize:], leaf)
	}
	copy(src.buf[types.VdevLabelStart+rootSectorOffset*types.SectorSize:], rootBlock)

	dnodeData := make([]byte, types.DNodeSize)
	dnodeData[0] = byte(types.DNodeFileContents)
	dnodeData[1] = indBlkShift
	dnodeData[2] = 1 // nlevels
	dnodeData[3] = 1 // nblkptr
	binary.LittleEndian.PutUint16(dnodeData[8:10], leafSectors)
	binary.LittleEndian.PutUint64(dnodeData[16:24], numLeaves-1) // max_block_id
	putBlkptr(dnodeData[64:], 0, types.DNodeFileContents, 2, rootSectorOffset)

	dnode := types.ParseDNode(dnodeData)

	reader := pool.New(src, logrus.NewEntry(logrus.New()))
	tree, err := New(reader, dnode)
	require.NoError(t, err)
	return tree, src
}

func TestTreeDataBlockResolvesEachLeaf(t *testing.T) {
	tree, _ := buildTestTree(t)

	for i := uint64(0); i < 3; i++ {
		data, err := tree.DataBlock(i)
		require.NoError(t, err)
		require.Len(t, data, 512)
		for _, b := range data {
			require.Equal(t, byte(i+1), b)
		}
	}
}

func TestTreeDataBlockOutOfRange(t *testing.T) {
	tree, _ := buildTestTree(t)
	_, err := tree.DataBlock(3)
	require.Error(t, err)
}

func TestTreeBlocksIteratesInOrderAndCaches(t *testing.T) {
	tree, _ := buildTestTree(t)

	var seen []uint64
	err := tree.Blocks(func(id uint64, data []byte) error {
		seen = append(seen, id)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 2}, seen)

	// A second read of block 0 must come from the cached node, not a
	// fresh descent; corrupting the cached root indirect block's bytes
	// after the first read should not change the result.
	first, err := tree.DataBlock(0)
	require.NoError(t, err)
	for i := range tree.root.data {
		tree.root.data[i] = 0xFF
	}
	second, err := tree.DataBlock(0)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestTreeNumDataBlocksAndSizes(t *testing.T) {
	tree, _ := buildTestTree(t)
	require.Equal(t, uint64(3), tree.NumDataBlocks())
	require.Equal(t, int64(512), tree.LeafBlockSize())
	require.Equal(t, int64(3*512), tree.TotalLogicalSize())
}
