// Package uberblock wraps types.Uberblock parsing and validation.
package uberblock

import (
	"github.com/zfsreader/zfsreader/internal/interfaces"
	"github.com/zfsreader/zfsreader/internal/types"
)

// Read parses one uberblock ring slot and validates its magic word,
// failing soft with NotFound on a mismatch per the pool reader's
// documented behavior.
func Read(data []byte) (types.Uberblock, error) {
	if len(data) < types.UberblockSignificantSize {
		return types.Uberblock{}, interfaces.NewError(interfaces.ErrIo, "short uberblock buffer")
	}
	ub := types.ParseUberblock(data)
	if !ub.Valid() {
		return ub, interfaces.NewError(interfaces.ErrNotFound, "uberblock magic mismatch")
	}
	return ub, nil
}
