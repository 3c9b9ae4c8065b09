// Package blkptr wraps types.Blkptr parsing with the validation every
// caller needs before a block pointer is safe to follow.
package blkptr

import (
	"github.com/zfsreader/zfsreader/internal/interfaces"
	"github.com/zfsreader/zfsreader/internal/types"
)

// Read parses a 128-byte block pointer and validates it. An invalid
// pointer is returned alongside an InvalidPointer error so callers that
// need to inspect an invalid structure (e.g. dump tooling) still can.
func Read(data []byte) (types.Blkptr, error) {
	if len(data) < types.BlkptrSize {
		return types.Blkptr{}, interfaces.NewError(interfaces.ErrIo, "short block pointer buffer")
	}
	bp := types.ParseBlkptr(data)
	if !bp.Valid() {
		return bp, interfaces.NewError(interfaces.ErrInvalidPointer, "block pointer failed validation")
	}
	return bp, nil
}

// ReadDVA parses and validates DVA index i of bp, failing fast when the
// index is out of range, the DVA itself is invalid, or it names a gang
// block (unsupported per scope).
func ReadDVA(bp types.Blkptr, i int) (types.Dva, error) {
	if i < 0 || i > 2 {
		return types.Dva{}, interfaces.NewError(interfaces.ErrInvalidPointer, "dva index out of range")
	}
	dva := bp.Dva[i]
	if !dva.Valid() {
		return dva, interfaces.NewError(interfaces.ErrInvalidPointer, "dva failed validation")
	}
	if dva.Gang {
		return dva, interfaces.NewError(interfaces.ErrUnsupported, "gang blocks are not supported")
	}
	return dva, nil
}
