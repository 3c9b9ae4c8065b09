// Package dnode wraps types.DNode parsing and validation.
package dnode

import (
	"github.com/zfsreader/zfsreader/internal/interfaces"
	"github.com/zfsreader/zfsreader/internal/types"
)

// Read parses one 512-byte dnode slot and validates it.
func Read(data []byte) (types.DNode, error) {
	if len(data) < types.DNodeSize {
		return types.DNode{}, interfaces.NewError(interfaces.ErrIo, "short dnode buffer")
	}
	d := types.ParseDNode(data)
	if !d.Valid() {
		return d, interfaces.NewError(interfaces.ErrCorrupt, "dnode failed validation")
	}
	return d, nil
}

// ReadArray parses a leaf block's worth of contiguous dnode slots, e.g. a
// meta-dnode's leaf data block. Invalid entries are returned as-is
// (Valid() == false) rather than dropped, so callers can index by
// position; it is the caller's job to skip invalid entries during a MOS
// scan.
func ReadArray(data []byte) ([]types.DNode, error) {
	if len(data)%types.DNodeSize != 0 {
		return nil, interfaces.NewError(interfaces.ErrCorrupt, "dnode array size not a multiple of dnode size")
	}
	n := len(data) / types.DNodeSize
	out := make([]types.DNode, n)
	for i := 0; i < n; i++ {
		out[i] = types.ParseDNode(data[i*types.DNodeSize : (i+1)*types.DNodeSize])
	}
	return out, nil
}
