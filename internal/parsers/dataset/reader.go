// Package dataset wraps parsing of the DSL bonus payloads (DSLDir,
// DSLDataSet) and ObjSet headers used by dataset traversal (C6).
package dataset

import (
	"github.com/zfsreader/zfsreader/internal/interfaces"
	"github.com/zfsreader/zfsreader/internal/types"
)

// ReadObjSet parses a 2048-byte object set header.
func ReadObjSet(data []byte) (types.ObjSet, error) {
	if len(data) < types.ObjSetSize {
		return types.ObjSet{}, interfaces.NewError(interfaces.ErrIo, "short objset buffer")
	}
	return types.ParseObjSet(data), nil
}

// ReadDSLDir parses a dnode's bonus area as a DSLDir. The caller is
// responsible for confirming the owning dnode's BonusType names a DSL
// directory before calling this.
func ReadDSLDir(bonus []byte) (types.DSLDir, error) {
	if len(bonus) < types.DSLDirSize {
		return types.DSLDir{}, interfaces.NewError(interfaces.ErrCorrupt, "dsl dir bonus area too small")
	}
	return types.ParseDSLDir(bonus), nil
}

// ReadDSLDataSet parses a dnode's bonus area as a DSLDataSet.
func ReadDSLDataSet(bonus []byte) (types.DSLDataSet, error) {
	if len(bonus) < types.DSLDataSetSize {
		return types.DSLDataSet{}, interfaces.NewError(interfaces.ErrCorrupt, "dsl dataset bonus area too small")
	}
	return types.ParseDSLDataSet(bonus), nil
}

// ReadZNode parses a dnode's bonus area as a ZNode. Callers should treat
// an unrecognized BonusType as a signal to use the size-less fallback
// extraction mode instead of calling this.
func ReadZNode(bonus []byte) (types.ZNode, error) {
	if len(bonus) < types.ZNodeSize {
		return types.ZNode{}, interfaces.NewError(interfaces.ErrCorrupt, "znode bonus area too small")
	}
	return types.ParseZNode(bonus), nil
}
