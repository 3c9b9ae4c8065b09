package extract

import (
	"bytes"
	"io"

	"github.com/cavaliercoder/go-cpio"

	"github.com/zfsreader/zfsreader/internal/interfaces"
)

// ArchiveSink writes the extracted tree as a single portable cpio
// archive instead of a directory tree (supplemented §10.4), useful when
// the extraction target is itself being shipped off the examination
// host.
type ArchiveSink struct {
	w *cpio.Writer
}

// NewArchiveSink wraps w as a cpio archive sink. The caller owns w and
// must call Close on the sink when extraction is complete to flush the
// trailer record.
func NewArchiveSink(w io.Writer) *ArchiveSink {
	return &ArchiveSink{w: cpio.NewWriter(w)}
}

// Close flushes the cpio trailer. It does not close the underlying
// io.Writer.
func (s *ArchiveSink) Close() error {
	return s.w.Close()
}

// Mkdir writes a directory entry. cpio archives have no notion of an
// already-existing directory, so repeated Mkdir calls for the same name
// are simply additional header records, matching tar/cpio semantics.
func (s *ArchiveSink) Mkdir(dir string) error {
	hdr := &cpio.Header{
		Name: dir,
		Mode: cpio.FileMode(0o777) | cpio.TypeDir,
	}
	return s.w.WriteHeader(hdr)
}

// CreateFile buffers the file's bytes in memory (cpio headers require a
// known size up front) and returns a writer that flushes a header +
// body record to the archive on Close.
func (s *ArchiveSink) CreateFile(name string) (interfaces.FileWriter, error) {
	return &archiveFile{archive: s, name: name}, nil
}

type archiveFile struct {
	archive *ArchiveSink
	name    string
	buf     bytes.Buffer
}

func (f *archiveFile) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

func (f *archiveFile) Close() error {
	hdr := &cpio.Header{
		Name: f.name,
		Mode: cpio.FileMode(0o666) | cpio.TypeReg,
		Size: int64(f.buf.Len()),
	}
	if err := f.archive.w.WriteHeader(hdr); err != nil {
		return interfaces.WrapError(interfaces.ErrIo, "write cpio header", err)
	}
	if _, err := f.archive.w.Write(f.buf.Bytes()); err != nil {
		return interfaces.WrapError(interfaces.ErrIo, "write cpio body", err)
	}
	return nil
}

var _ interfaces.OutputSink = (*ArchiveSink)(nil)
