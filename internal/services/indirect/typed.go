package indirect

import (
	"github.com/zfsreader/zfsreader/internal/interfaces"
	"github.com/zfsreader/zfsreader/internal/services/block"
)

// TypedObjectTree treats each leaf block of a Tree as a packed array of
// T (e.g. DNode), exposing lookup and iteration by object id rather
// than by block id.
type TypedObjectTree[T any] struct {
	tree        *Tree
	elemSize    int
	parse       func([]byte) T
	objsPerLeaf int
}

// NewTypedObjectTree wraps tree as a typed object array. elemSize must
// evenly divide the leaf block size.
func NewTypedObjectTree[T any](tree *Tree, elemSize int, parse func([]byte) T) (*TypedObjectTree[T], error) {
	leafSize := tree.LeafBlockSize()
	if elemSize <= 0 || leafSize%int64(elemSize) != 0 {
		return nil, interfaces.NewError(interfaces.ErrCorrupt, "leaf block size is not a multiple of object size")
	}
	return &TypedObjectTree[T]{
		tree:        tree,
		elemSize:    elemSize,
		parse:       parse,
		objsPerLeaf: int(leafSize / int64(elemSize)),
	}, nil
}

// NumObjects is the total number of objects addressable across every
// leaf block.
func (o *TypedObjectTree[T]) NumObjects() uint64 {
	return o.tree.NumDataBlocks() * uint64(o.objsPerLeaf)
}

// ObjectByID locates the leaf block holding objID and decodes it through
// a block.Array view over that leaf, so out-of-range offsets are caught
// by the shared view type rather than by ad hoc slicing here.
func (o *TypedObjectTree[T]) ObjectByID(objID uint64) (T, error) {
	var zero T
	blockID := objID / uint64(o.objsPerLeaf)
	within := objID % uint64(o.objsPerLeaf)

	data, err := o.tree.DataBlock(blockID)
	if err != nil {
		return zero, err
	}

	arr, err := block.NewArray(block.NewOwned(data), o.elemSize, o.parse)
	if err != nil {
		return zero, interfaces.WrapError(interfaces.ErrCorrupt, "leaf block is not a clean array of objects", err)
	}
	return arr.At(int(within))
}

// Objects iterates every object id in strictly ascending order,
// invoking fn with each. Iteration stops at the first error.
func (o *TypedObjectTree[T]) Objects(fn func(id uint64, obj T) error) error {
	for id := uint64(0); id < o.NumObjects(); id++ {
		obj, err := o.ObjectByID(id)
		if err != nil {
			return err
		}
		if err := fn(id, obj); err != nil {
			return err
		}
	}
	return nil
}
