// Package extract implements the extractor (C7): a depth-first walk of
// the filesystem object tree that writes directories and files through
// an interfaces.OutputSink.
package extract

import (
	"path"

	"github.com/google/renameio"
	"github.com/spf13/afero"

	"github.com/zfsreader/zfsreader/internal/interfaces"
)

// DirSink writes extracted files into a plain directory tree on a
// real or in-memory filesystem, matching §6's "regular bytes written
// verbatim to out_dir/<name>" output contract.
type DirSink struct {
	fs      afero.Fs
	baseDir string
	atomic  bool
}

// NewDirSink roots a DirSink at baseDir on fs. When atomic is true and
// fs is the OS filesystem, file writes go through a temp-file-then-
// rename sequence so a crash mid-extraction never leaves a partial file
// visible under its final name.
func NewDirSink(fs afero.Fs, baseDir string, atomic bool) *DirSink {
	return &DirSink{fs: fs, baseDir: baseDir, atomic: atomic}
}

// Mkdir creates dir (relative to baseDir) and any missing parents with
// 0o777, subject to the process umask, and is idempotent.
func (s *DirSink) Mkdir(dir string) error {
	return s.fs.MkdirAll(path.Join(s.baseDir, dir), 0o777)
}

// CreateFile opens name for writing, truncating any existing content.
func (s *DirSink) CreateFile(name string) (interfaces.FileWriter, error) {
	full := path.Join(s.baseDir, name)
	if s.atomic {
		if _, isOS := s.fs.(*afero.OsFs); isOS {
			t, err := renameio.TempFile("", full)
			if err != nil {
				return nil, interfaces.WrapError(interfaces.ErrIo, "create atomic temp file", err)
			}
			return &pendingFile{t: t}, nil
		}
	}

	f, err := s.fs.Create(full)
	if err != nil {
		return nil, interfaces.WrapError(interfaces.ErrIo, "create output file", err)
	}
	return f, nil
}

// pendingFile adapts a *renameio.PendingFile (Write + CloseAtomicallyReplace)
// to the narrow interfaces.FileWriter contract.
type pendingFile struct {
	t *renameio.PendingFile
}

func (p *pendingFile) Write(b []byte) (int, error) {
	return p.t.Write(b)
}

func (p *pendingFile) Close() error {
	return p.t.CloseAtomicallyReplace()
}

var _ interfaces.OutputSink = (*DirSink)(nil)
