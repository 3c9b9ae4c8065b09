package types

import "fmt"

// DNodeType mirrors dmu_object_type from ZFS-on-Linux. It tags both dnodes
// and the block pointers that reference them.
type DNodeType uint8

const (
	DNodeInvalid      DNodeType = 0
	DNodeObjDirectory DNodeType = 1 // object directory ZAP, e.g. "root_dataset"
	DNodeDNode        DNodeType = 10
	DNodeObjSet       DNodeType = 11
	DNodeDataSet      DNodeType = 16
	DNodeFileContents DNodeType = 19
	DNodeDirContents  DNodeType = 20
	DNodeMasterNode   DNodeType = 21
)

// BonusTypeZNode is the dnode bonus-buffer tag (dmu_object_type) for the
// classic fixed-layout ZNode file metadata payload. A FileContents dnode
// carrying any other BonusType (e.g. an SA-based bonus) must fall back
// to untruncated full-leaf-block extraction rather than reinterpreting
// its bonus bytes as a ZNode.
const BonusTypeZNode uint8 = 17

func (t DNodeType) String() string {
	switch t {
	case DNodeInvalid:
		return "Invalid"
	case DNodeObjDirectory:
		return "ObjDirectory"
	case DNodeDNode:
		return "DNode"
	case DNodeObjSet:
		return "ObjSet"
	case DNodeDataSet:
		return "DataSet"
	case DNodeFileContents:
		return "FileContents"
	case DNodeDirContents:
		return "DirContents"
	case DNodeMasterNode:
		return "MasterNode"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// Compress identifies the compression algorithm applied to a block's
// physical payload, per the property word of a Blkptr.
type Compress uint8

const (
	CompressInherit Compress = 0
	CompressOn      Compress = 1
	CompressOff     Compress = 2
	CompressLZ4     Compress = 0xf

	CompressDefault = CompressLZ4
)

func (c Compress) String() string {
	switch c {
	case CompressInherit:
		return "Inherit"
	case CompressOn:
		return "On"
	case CompressOff:
		return "Off"
	case CompressLZ4:
		return "LZ4"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// Endian records the byte order a block pointer's target data was written
// in. ZFS-on-Linux stores this inverted: 1 means little-endian.
type Endian bool

const (
	EndianBig    Endian = false
	EndianLittle Endian = true
)

func (e Endian) String() string {
	if e == EndianLittle {
		return "Little"
	}
	return "Big"
}

// ZapBlockType identifies the on-disk shape of a ZAP block. Only Micro is
// supported by this reader.
type ZapBlockType uint64

const (
	ZapBlockLeaf   ZapBlockType = (1 << 63) + 0
	ZapBlockHeader ZapBlockType = (1 << 63) + 1
	ZapBlockMicro  ZapBlockType = (1 << 63) + 3
)
