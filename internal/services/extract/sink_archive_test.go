package extract

import (
	"bytes"
	"io"
	"testing"

	"github.com/cavaliercoder/go-cpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveSinkWritesReadableCpio(t *testing.T) {
	var buf bytes.Buffer
	sink := NewArchiveSink(&buf)

	require.NoError(t, sink.Mkdir("dir"))
	w, err := sink.CreateFile("dir/file.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("contents"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, sink.Close())

	r := cpio.NewReader(&buf)

	hdr, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "dir", hdr.Name)

	hdr, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, "dir/file.txt", hdr.Name)
	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(body))

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}
