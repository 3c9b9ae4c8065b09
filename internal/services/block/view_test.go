package block

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfsreader/zfsreader/internal/interfaces"
)

func parseU32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func TestArrayAtDecodesEachElement(t *testing.T) {
	data := make([]byte, 12)
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(data[i*4:i*4+4], uint32(100+i))
	}

	arr, err := NewArray(NewOwned(data), 4, parseU32)
	require.NoError(t, err)
	assert.Equal(t, 3, arr.Len())

	for i := 0; i < 3; i++ {
		v, err := arr.At(i)
		require.NoError(t, err)
		assert.Equal(t, uint32(100+i), v)
	}
}

func TestArrayRejectsUnevenBuffer(t *testing.T) {
	_, err := NewArray(NewOwned(make([]byte, 10)), 4, parseU32)
	require.Error(t, err)
	kind, ok := interfaces.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, interfaces.ErrCorrupt, kind)
}

func TestArrayAtOutOfRange(t *testing.T) {
	arr, err := NewArray(NewOwned(make([]byte, 8)), 4, parseU32)
	require.NoError(t, err)
	_, err = arr.At(2)
	require.Error(t, err)
}

type header struct{ Count uint32 }

func parseHeader(b []byte) header { return header{Count: binary.LittleEndian.Uint32(b)} }

func TestHeaderHeadAndEntries(t *testing.T) {
	data := make([]byte, 4+2*4)
	binary.LittleEndian.PutUint32(data[0:4], 2)
	binary.LittleEndian.PutUint32(data[4:8], 7)
	binary.LittleEndian.PutUint32(data[8:12], 8)

	h, err := NewHeader(NewOwned(data), 4, 4, parseHeader, parseU32)
	require.NoError(t, err)
	assert.Equal(t, header{Count: 2}, h.Head())
	assert.Equal(t, 2, h.NumEntries())

	v0, err := h.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v0)
	v1, err := h.Entry(1)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), v1)

	_, err = h.Entry(2)
	require.Error(t, err)
}

func TestHeaderRejectsShapeMismatch(t *testing.T) {
	_, err := NewHeader(NewOwned(make([]byte, 5)), 4, 4, parseHeader, parseU32)
	require.Error(t, err)
}
