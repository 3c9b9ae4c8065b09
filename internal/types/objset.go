package types

import "encoding/binary"

// ObjSet is a container holding a meta-dnode whose leaf blocks are
// packed arrays of dnodes. The root objset's meta-dnode is the Meta
// Object Set (MOS); a dataset's objset meta-dnode is its filesystem
// object set.
type ObjSet struct {
	MetaDNode      DNode
	Type           uint64
	Flags          uint64
	UserUsedDNode  DNode
	GroupUsedDNode DNode
}

// ParseObjSet decodes a 2048-byte object set from its on-disk
// little-endian form.
func ParseObjSet(data []byte) ObjSet {
	_ = data[ObjSetSize-1]

	const (
		zilHdrSize = 8 * 8
		pad        = 432
	)

	off := 0
	metadnode := ParseDNode(data[off : off+DNodeSize])
	off += DNodeSize

	off += zilHdrSize // zil_header, not interpreted

	typ := binary.LittleEndian.Uint64(data[off : off+8])
	off += 8
	flags := binary.LittleEndian.Uint64(data[off : off+8])
	off += 8

	off += pad

	userUsed := ParseDNode(data[off : off+DNodeSize])
	off += DNodeSize
	groupUsed := ParseDNode(data[off : off+DNodeSize])
	off += DNodeSize

	return ObjSet{
		MetaDNode:      metadnode,
		Type:           typ,
		Flags:          flags,
		UserUsedDNode:  userUsed,
		GroupUsedDNode: groupUsed,
	}
}
