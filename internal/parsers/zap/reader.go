// Package zap implements micro-ZAP directory lookup (C5).
package zap

import (
	"github.com/zfsreader/zfsreader/internal/interfaces"
	"github.com/zfsreader/zfsreader/internal/services/block"
	"github.com/zfsreader/zfsreader/internal/types"
)

// Directory is a parsed micro-ZAP block: a header plus its packed
// entries. It satisfies interfaces.ZapDirectory.
type Directory struct {
	header  types.MZapHeader
	entries []types.MZapEntry
}

// Read parses a whole decoded block as a micro-ZAP, via the header+array
// view (header plus packed entries). Any other ZAP block type (fat ZAP)
// fails with Unsupported, per scope.
func Read(data []byte) (*Directory, error) {
	if len(data) < types.MZapHeaderSize {
		return nil, interfaces.NewError(interfaces.ErrIo, "short zap buffer")
	}

	view, err := block.NewHeader(block.NewOwned(data), types.MZapHeaderSize, types.MZapEntrySize, types.ParseMZapHeader, types.ParseMZapEntry)
	if err != nil {
		return nil, err
	}

	hdr := view.Head()
	if !hdr.Valid() {
		return nil, interfaces.NewError(interfaces.ErrUnsupported, "non-micro zap block type")
	}

	n := view.NumEntries()
	entries := make([]types.MZapEntry, 0, n)
	for i := 0; i < n; i++ {
		e, err := view.Entry(i)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return &Directory{header: hdr, entries: entries}, nil
}

// Find performs the linear scan C5 specifies.
func (d *Directory) Find(name string) (uint64, error) {
	for _, e := range d.entries {
		if !e.Valid() {
			continue
		}
		if e.NameString() == name {
			return e.Value, nil
		}
	}
	return 0, interfaces.NewError(interfaces.ErrNotFound, "zap entry not found: "+name)
}

// Names returns every valid entry's name, in on-disk order.
func (d *Directory) Names() []string {
	names := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		if e.Valid() {
			names = append(names, e.NameString())
		}
	}
	return names
}

var _ interfaces.ZapDirectory = (*Directory)(nil)
