package types

import "encoding/binary"

// DSLDir is the bonus payload of a DataSet dnode describing one node in
// the dataset/snapshot hierarchy: quota/usage accounting and the object
// id of the dataset's head (its most recent filesystem instance).
type DSLDir struct {
	CreationTime     uint64
	HeadDatasetObj   uint64
	ParentObj        uint64
	OriginObj        uint64
	ChildDirZapObj   uint64
	UsedBytes        uint64
	CompressedBytes  uint64
	UncompressedByte uint64
	Quota            uint64
	Reserved         uint64
	PropsZapObj      uint64
	DelegZapObj      uint64
	Flags            uint64
	UsedBreakdown    [5]uint64
	Clones           uint64
}

// ParseDSLDir decodes a DSLDir from a dnode's bonus payload.
func ParseDSLDir(data []byte) DSLDir {
	_ = data[DSLDirSize-1]

	off := 0
	readU64 := func() uint64 {
		v := binary.LittleEndian.Uint64(data[off : off+8])
		off += 8
		return v
	}

	d := DSLDir{
		CreationTime:     readU64(),
		HeadDatasetObj:   readU64(),
		ParentObj:        readU64(),
		OriginObj:        readU64(),
		ChildDirZapObj:   readU64(),
		UsedBytes:        readU64(),
		CompressedBytes:  readU64(),
		UncompressedByte: readU64(),
		Quota:            readU64(),
		Reserved:         readU64(),
		PropsZapObj:      readU64(),
		DelegZapObj:      readU64(),
		Flags:            readU64(),
	}
	for i := range d.UsedBreakdown {
		d.UsedBreakdown[i] = readU64()
	}
	d.Clones = readU64()
	return d
}

// DSLDataSet is the bonus payload of a DataSet dnode describing one
// concrete filesystem/snapshot instance: its accounting and the block
// pointer to its own object set.
type DSLDataSet struct {
	DirObj            uint64
	PrevSnapObj       uint64
	PrevSnapTxg       uint64
	NextSnapObj       uint64
	SnapNamesZapObj   uint64
	NChildren         uint64
	CreationTime      uint64
	CreationTxg       uint64
	DeadListObj       uint64
	ReferencedBytes   uint64
	CompressedBytes   uint64
	UncompressedBytes uint64
	UniqueBytes       uint64
	FsidGuid          uint64
	Guid              uint64
	Flags             uint64
	Bp                Blkptr
	NextClonesObj     uint64
	PropsObj          uint64
	UserrefsObj       uint64
}

// ParseDSLDataSet decodes a DSLDataSet from a dnode's bonus payload.
func ParseDSLDataSet(data []byte) DSLDataSet {
	off := 0
	readU64 := func() uint64 {
		v := binary.LittleEndian.Uint64(data[off : off+8])
		off += 8
		return v
	}

	ds := DSLDataSet{
		DirObj:            readU64(),
		PrevSnapObj:       readU64(),
		PrevSnapTxg:       readU64(),
		NextSnapObj:       readU64(),
		SnapNamesZapObj:   readU64(),
		NChildren:         readU64(),
		CreationTime:      readU64(),
		CreationTxg:       readU64(),
		DeadListObj:       readU64(),
		ReferencedBytes:   readU64(),
		CompressedBytes:   readU64(),
		UncompressedBytes: readU64(),
		UniqueBytes:       readU64(),
		FsidGuid:          readU64(),
		Guid:              readU64(),
		Flags:             readU64(),
	}
	ds.Bp = ParseBlkptr(data[off : off+BlkptrSize])
	off += BlkptrSize

	ds.NextClonesObj = readU64()
	ds.PropsObj = readU64()
	ds.UserrefsObj = readU64()

	return ds
}
