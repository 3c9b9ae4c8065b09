// Package indirect implements the lazy multi-level indirect block tree
// walker (C4): resolving a dnode's logical block id to a leaf data
// block, or a typed object by id.
package indirect

import (
	"github.com/zfsreader/zfsreader/internal/interfaces"
	"github.com/zfsreader/zfsreader/internal/services/block"
	"github.com/zfsreader/zfsreader/internal/services/pool"
	"github.com/zfsreader/zfsreader/internal/types"
)

// node is one indirect array in the tree: its decoded block, plus
// children populated lazily on first descent. Once populated, children
// are never re-read (§4.4 caching). A node whose children have been
// consumed down to a leaf holds raw data instead of a blkptr array; it
// is simply never descended from again.
type node struct {
	data     []byte
	children []*node
	blkptrs  *block.Array[types.Blkptr]
}

// Tree walks a single dnode's block-pointer tree, rooted at block
// pointer index 0 (single-root mode; see §4.4). It caches every node it
// descends into for the life of the Tree value.
type Tree struct {
	reader *pool.Reader
	dnode  types.DNode

	shift int // indblkshift - BlkptrShift
	mask  uint64

	root *node
}

// New builds a Tree over dnode, reading nothing until the first
// DataBlock/Blocks call forces a descent.
func New(reader *pool.Reader, dnode types.DNode) (*Tree, error) {
	if dnode.NLevels < 1 || dnode.NLevels > 6 {
		return nil, interfaces.NewError(interfaces.ErrCorrupt, "dnode nlevels out of documented range")
	}
	shift := int(dnode.IndBlkShift) - types.BlkptrShift
	if shift <= 0 {
		return nil, interfaces.NewError(interfaces.ErrCorrupt, "dnode indblkshift too small")
	}
	return &Tree{
		reader: reader,
		dnode:  dnode,
		shift:  shift,
		mask:   (uint64(1) << uint(shift)) - 1,
	}, nil
}

// NumDataBlocks is max_block_id + 1.
func (t *Tree) NumDataBlocks() uint64 {
	return t.dnode.MaxBlockID + 1
}

// LeafBlockSize is the dnode's configured leaf block size.
func (t *Tree) LeafBlockSize() int64 {
	return t.dnode.LeafBlockSize()
}

// TotalLogicalSize is the sum of every leaf block's logical size.
func (t *Tree) TotalLogicalSize() int64 {
	return int64(t.NumDataBlocks()) * t.LeafBlockSize()
}

// index selects the child index at level l (counted from leaves up)
// for logical block id b, per the block id to pointer location formula
// in §4.4.
func (t *Tree) index(b uint64, l int) uint64 {
	return (b >> uint(l*t.shift)) & t.mask
}

func (t *Tree) ensureRoot() (*node, error) {
	if t.root != nil {
		return t.root, nil
	}
	bp := t.dnode.Blkptr(0)
	if !bp.Valid() {
		return nil, interfaces.NewError(interfaces.ErrInvalidPointer, "root block pointer is invalid")
	}
	data, err := t.reader.ReadBlockAnyDVA(bp)
	if err != nil {
		return nil, err
	}
	t.root = &node{data: data}
	return t.root, nil
}

// descend populates n's children (an array of block pointers) on first
// call and returns the child node at index i, reading it if necessary.
func (n *node) descend(reader *pool.Reader, i uint64) (*node, error) {
	if n.blkptrs == nil {
		arr, err := block.NewArray(block.NewOwned(n.data), types.BlkptrSize, types.ParseBlkptr)
		if err != nil {
			return nil, interfaces.WrapError(interfaces.ErrCorrupt, "indirect block size not a multiple of blkptr size", err)
		}
		n.blkptrs = arr
		n.children = make([]*node, arr.Len())
	}

	if int(i) >= len(n.children) {
		return nil, interfaces.NewError(interfaces.ErrInvalidPointer, "child index out of range")
	}

	if n.children[i] != nil {
		return n.children[i], nil
	}

	bp, err := n.blkptrs.At(int(i))
	if err != nil {
		return nil, err
	}
	if !bp.Valid() {
		return nil, interfaces.NewError(interfaces.ErrInvalidPointer, "child block pointer is invalid")
	}
	data, err := reader.ReadBlockAnyDVA(bp)
	if err != nil {
		return nil, err
	}
	child := &node{data: data}
	n.children[i] = child
	return child, nil
}

// leaf descends from the root to the leaf node holding block id b.
// Every one of the dnode's NLevels indirect arrays contributes shift
// bits of b to the selection, starting from the array read off
// Blkptr(0) (level NLevels-1) down to the array that directly holds
// leaf pointers (level 0).
func (t *Tree) leaf(b uint64) (*node, error) {
	if b >= t.NumDataBlocks() {
		return nil, interfaces.NewError(interfaces.ErrInvalidPointer, "block id out of range")
	}

	n, err := t.ensureRoot()
	if err != nil {
		return nil, err
	}

	for l := int(t.dnode.NLevels) - 1; l >= 0; l-- {
		n, err = n.descend(t.reader, t.index(b, l))
		if err != nil {
			return nil, err
		}
	}

	return n, nil
}

// DataBlock returns the leaf data bytes for logical block id b,
// opaque (IndirectBlockTree shape).
func (t *Tree) DataBlock(b uint64) ([]byte, error) {
	n, err := t.leaf(b)
	if err != nil {
		return nil, err
	}
	return n.data, nil
}

// Blocks iterates every leaf data block in strictly ascending id order,
// invoking fn with each. Iteration stops at the first error.
func (t *Tree) Blocks(fn func(id uint64, data []byte) error) error {
	for b := uint64(0); b < t.NumDataBlocks(); b++ {
		data, err := t.DataBlock(b)
		if err != nil {
			return err
		}
		if err := fn(b, data); err != nil {
			return err
		}
	}
	return nil
}
