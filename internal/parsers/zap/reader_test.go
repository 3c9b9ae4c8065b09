package zap

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfsreader/zfsreader/internal/interfaces"
	"github.com/zfsreader/zfsreader/internal/types"
)

func putEntry(block []byte, slot int, name string, value uint64) {
	off := types.MZapHeaderSize + slot*types.MZapEntrySize
	binary.LittleEndian.PutUint64(block[off:off+8], value)
	copy(block[off+14:], name)
}

func buildMicroZap(t *testing.T, entries map[string]uint64) []byte {
	t.Helper()
	block := make([]byte, types.MZapHeaderSize+3*types.MZapEntrySize)
	binary.LittleEndian.PutUint64(block[0:8], uint64(types.ZapBlockMicro))

	slot := 0
	for name, value := range entries {
		putEntry(block, slot, name, value)
		slot++
	}
	return block
}

func TestDirectoryFindAndNames(t *testing.T) {
	block := buildMicroZap(t, map[string]uint64{
		"ROOT":         17,
		"root_dataset": 42,
	})

	dir, err := Read(block)
	require.NoError(t, err)

	v, err := dir.Find("ROOT")
	require.NoError(t, err)
	assert.Equal(t, uint64(17), v)

	assert.ElementsMatch(t, []string{"ROOT", "root_dataset"}, dir.Names())
}

func TestDirectoryFindMissingEntry(t *testing.T) {
	block := buildMicroZap(t, map[string]uint64{"ROOT": 1})
	dir, err := Read(block)
	require.NoError(t, err)

	_, err = dir.Find("nope")
	require.Error(t, err)
	kind, ok := interfaces.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, interfaces.ErrNotFound, kind)
}

func TestReadRejectsNonMicroZap(t *testing.T) {
	block := make([]byte, types.MZapHeaderSize)
	binary.LittleEndian.PutUint64(block[0:8], uint64(types.ZapBlockLeaf))

	_, err := Read(block)
	require.Error(t, err)
	kind, ok := interfaces.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, interfaces.ErrUnsupported, kind)
}
