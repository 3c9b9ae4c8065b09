package extract

import (
	"encoding/binary"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfsreader/zfsreader/internal/services/dataset"
	"github.com/zfsreader/zfsreader/internal/services/indirect"
	"github.com/zfsreader/zfsreader/internal/services/pool"
	"github.com/zfsreader/zfsreader/internal/types"
)

type memSource struct{ buf []byte }

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, m.buf[off:])
	return n, nil
}
func (m *memSource) Size() (int64, error) { return int64(len(m.buf)), nil }
func (m *memSource) Close() error         { return nil }

func putBlkptr(data []byte, off int, typ types.DNodeType, sectors uint16, dvaOffsetSectors uint64) {
	binary.LittleEndian.PutUint32(data[off+0:off+4], uint32(sectors))
	binary.LittleEndian.PutUint64(data[off+8:off+16], dvaOffsetSectors)

	var props uint64
	props |= uint64(sectors-1) & 0xFFFF
	props |= (uint64(sectors-1) & 0xFFFF) << 16
	props |= uint64(types.CompressOff) << 32
	props |= uint64(typ&0xFF) << 48
	props |= 1 << 63
	binary.LittleEndian.PutUint64(data[off+48:off+56], props)
}

func putDNodeHeader(data []byte, typ types.DNodeType, indBlkShift uint8, nLevels, nBlkPtr uint8, bonusType uint8, dataBlkSizeSecs, bonusLen uint16, maxBlockID uint64) {
	data[0] = byte(typ)
	data[1] = indBlkShift
	data[2] = nLevels
	data[3] = nBlkPtr
	data[4] = bonusType
	binary.LittleEndian.PutUint16(data[8:10], dataBlkSizeSecs)
	binary.LittleEndian.PutUint16(data[10:12], bonusLen)
	binary.LittleEndian.PutUint64(data[16:24], maxBlockID)
}

func putMicroZapEntry(block []byte, slot int, name string, value uint64) {
	off := types.MZapHeaderSize + slot*types.MZapEntrySize
	binary.LittleEndian.PutUint64(block[off:off+8], value)
	copy(block[off+14:], name)
}

const (
	fsIndirectSec = 4  // 2 sectors
	fsLeafSec     = 10 // 4 sectors: root dir, subdir, file, unused
	rootZapSec    = 20 // 1 sector
	subZapSec     = 21 // 1 sector
	fileIndSec    = 22 // 2 sectors
	fileLeaf0Sec  = 24 // 1 sector
	fileLeaf1Sec  = 25 // 1 sector
)

// buildFSResult lays out a synthetic filesystem object tree: a root
// directory containing a subdirectory and a file, the file truncated by
// its ZNode bonus size to less than its last leaf block.
func buildFSResult(t *testing.T) (*pool.Reader, *dataset.Result) {
	t.Helper()

	src := &memSource{buf: make([]byte, types.VdevLabelStart+64*1024)}
	put := func(sectorOff uint64, data []byte) {
		copy(src.buf[types.VdevLabelStart+int64(sectorOff)*types.SectorSize:], data)
	}

	fsLeaf := make([]byte, 4*types.DNodeSize)

	rootDir := fsLeaf[0*types.DNodeSize : 1*types.DNodeSize]
	putDNodeHeader(rootDir, types.DNodeDirContents, 0, 0, 1, 0, 0, 0, 0)
	putBlkptr(rootDir, 64, types.DNodeDirContents, 1, rootZapSec)

	subDir := fsLeaf[1*types.DNodeSize : 2*types.DNodeSize]
	putDNodeHeader(subDir, types.DNodeDirContents, 0, 0, 1, 0, 0, 0, 0)
	putBlkptr(subDir, 64, types.DNodeDirContents, 1, subZapSec)

	file := fsLeaf[2*types.DNodeSize : 3*types.DNodeSize]
	const znodeBonusLen = 144 // types.ZNodeSize
	putDNodeHeader(file, types.DNodeFileContents, 10, 1, 1, types.BonusTypeZNode, 1, znodeBonusLen, 1)
	putBlkptr(file, 64, types.DNodeFileContents, 2, fileIndSec)
	binary.LittleEndian.PutUint64(file[64+types.BlkptrSize+80:64+types.BlkptrSize+88], 700) // ZNode.Size

	put(fsLeafSec, fsLeaf)

	fsIndirect := make([]byte, 1024)
	putBlkptr(fsIndirect, 0, types.DNodeDNode, 4, fsLeafSec)
	put(fsIndirectSec, fsIndirect)

	rootZap := make([]byte, types.SectorSize)
	binary.LittleEndian.PutUint64(rootZap[0:8], uint64(types.ZapBlockMicro))
	putMicroZapEntry(rootZap, 0, "sub", 1|types.DirEntryIsDir)
	putMicroZapEntry(rootZap, 1, "file.txt", 2|types.DirEntryIsFile)
	put(rootZapSec, rootZap)

	subZap := make([]byte, types.SectorSize)
	binary.LittleEndian.PutUint64(subZap[0:8], uint64(types.ZapBlockMicro))
	put(subZapSec, subZap)

	fileIndirect := make([]byte, 1024)
	putBlkptr(fileIndirect, 0, types.DNodeFileContents, 1, fileLeaf0Sec)
	putBlkptr(fileIndirect, types.BlkptrSize, types.DNodeFileContents, 1, fileLeaf1Sec)
	put(fileIndSec, fileIndirect)

	leaf0 := make([]byte, 512)
	for i := range leaf0 {
		leaf0[i] = 0xAA
	}
	put(fileLeaf0Sec, leaf0)

	leaf1 := make([]byte, 512)
	for i := range leaf1 {
		leaf1[i] = 0xBB
	}
	put(fileLeaf1Sec, leaf1)

	reader := pool.New(src, logrus.NewEntry(logrus.New()))

	dnodeParser := func(data []byte) types.DNode { return types.ParseDNode(data) }
	fsMeta := types.DNode{}
	{
		buf := make([]byte, types.DNodeSize)
		putDNodeHeader(buf, types.DNodeDNode, 10, 1, 1, 0, 4, 0, 0)
		putBlkptr(buf, 64, types.DNodeDNode, 2, fsIndirectSec)
		fsMeta = types.ParseDNode(buf)
	}

	tree, err := indirect.New(reader, fsMeta)
	require.NoError(t, err)
	fsObjects, err := indirect.NewTypedObjectTree(tree, types.DNodeSize, dnodeParser)
	require.NoError(t, err)

	return reader, &dataset.Result{FSObjects: fsObjects, RootDirObjID: 0}
}

func TestExtractorRunWritesTreeTruncatedToZNodeSize(t *testing.T) {
	reader, result := buildFSResult(t)
	fs := afero.NewMemMapFs()
	sink := NewDirSink(fs, "/out", false)

	// Run's outPath is relative to the sink's own base directory, so the
	// walk starts at "", matching how cmd/extract wires DirSink/Run together.
	ex := New(reader, result, sink, logrus.NewEntry(logrus.New()))
	n, err := ex.Run("")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	isDir, err := afero.DirExists(fs, "/out/sub")
	require.NoError(t, err)
	assert.True(t, isDir)

	got, err := afero.ReadFile(fs, "/out/file.txt")
	require.NoError(t, err)
	require.Len(t, got, 700)
	for _, b := range got[:512] {
		assert.Equal(t, byte(0xAA), b)
	}
	for _, b := range got[512:] {
		assert.Equal(t, byte(0xBB), b)
	}
}

func TestFileSizeFallsBackWhenBonusTypeIsNotZNode(t *testing.T) {
	const znodeBonusLen = 144 // types.ZNodeSize, long enough to parse as a ZNode
	buf := make([]byte, types.DNodeSize)
	putDNodeHeader(buf, types.DNodeFileContents, 10, 1, 1, 7, 1, znodeBonusLen, 1)
	binary.LittleEndian.PutUint64(buf[64+types.BlkptrSize+80:64+types.BlkptrSize+88], 700)
	dnode := types.ParseDNode(buf)

	size, truncate := fileSize(dnode)
	assert.False(t, truncate)
	assert.Equal(t, int64(0), size)
}

func TestFileSizeUsesZNodeWhenBonusTypeMatches(t *testing.T) {
	const znodeBonusLen = 144 // types.ZNodeSize
	buf := make([]byte, types.DNodeSize)
	putDNodeHeader(buf, types.DNodeFileContents, 10, 1, 1, types.BonusTypeZNode, 1, znodeBonusLen, 1)
	binary.LittleEndian.PutUint64(buf[64+types.BlkptrSize+80:64+types.BlkptrSize+88], 700)
	dnode := types.ParseDNode(buf)

	size, truncate := fileSize(dnode)
	assert.True(t, truncate)
	assert.Equal(t, int64(700), size)
}
