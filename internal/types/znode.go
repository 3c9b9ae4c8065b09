package types

import "encoding/binary"

// ZNodeTime is a POSIX-ish timestamp pair as stored in a ZNode.
type ZNodeTime struct {
	Seconds     uint64
	Nanoseconds uint64
}

// ZNode is the file-metadata bonus payload of a FileContents dnode. This
// layout was deprecated in later ZPL versions in favor of SA-based
// attributes; this reader only supports the classic fixed layout.
// Size is the field extraction cares about: it is the true byte length
// of the file, used to truncate the last leaf block on extraction.
type ZNode struct {
	TimeAccessed ZNodeTime
	TimeModified ZNodeTime
	TimeChanged  ZNodeTime
	TimeCreated  ZNodeTime
	GenTxg       uint64
	Mode         uint64
	Size         uint64
	ParentObj    uint64
	Links        uint64
	Xattr        uint64
	Rdev         uint64
	Flags        uint64
	Uid          uint64
	Gid          uint64
}

// ParseZNode decodes a ZNode from a dnode's bonus payload. The caller
// must ensure at least ZNodeSize (144) bytes are available (the fixed fields below;
// the trailing ACL region is not interpreted by this reader).
func ParseZNode(data []byte) ZNode {
	times := make([]ZNodeTime, 4)
	for i := range times {
		off := i * 16
		times[i] = ZNodeTime{
			Seconds:     binary.LittleEndian.Uint64(data[off : off+8]),
			Nanoseconds: binary.LittleEndian.Uint64(data[off+8 : off+16]),
		}
	}

	off := 64
	readU64 := func() uint64 {
		v := binary.LittleEndian.Uint64(data[off : off+8])
		off += 8
		return v
	}

	return ZNode{
		TimeAccessed: times[0],
		TimeModified: times[1],
		TimeChanged:  times[2],
		TimeCreated:  times[3],
		GenTxg:       readU64(),
		Mode:         readU64(),
		Size:         readU64(),
		ParentObj:    readU64(),
		Links:        readU64(),
		Xattr:        readU64(),
		Rdev:         readU64(),
		Flags:        readU64(),
		Uid:          readU64(),
		Gid:          readU64(),
	}
}
