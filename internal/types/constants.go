// Package types defines the on-disk physical layout of a ZFS pool image.
// Struct shapes and field widths are modeled after the ZFS on-disk format
// as implemented by ZFS-on-Linux; they are read-only mirrors of disk bytes,
// never mutated in place.
package types

// SectorShift is the base-2 logarithm of the ZFS sector size (512 bytes).
const SectorShift = 9

// SectorSize is the smallest addressable unit on a ZFS vdev.
const SectorSize = 1 << SectorShift

// VdevLabelStart is the byte offset added to every DVA-derived address,
// reserving room for the boot block and preceding vdev label copies.
const VdevLabelStart = 4 * 1024 * 1024 // 4 MiB

// BlkptrSizeBias is ZFS-on-Linux's off-by-one convention: lsize/psize store
// one less than the actual sector count.
const BlkptrSizeBias = 1

// UberblockMagic identifies a valid uberblock.
const UberblockMagic = 0x00BAB10C

// VdevLabelSize is the size of one on-disk vdev label copy.
const VdevLabelSize = 256 * 1024 // 256 KiB

// VdevLabels is the number of redundant label copies ZFS keeps per vdev.
const VdevLabels = 4

// UberblockRingOffset is the byte offset, relative to the start of a label,
// at which the uberblock ring begins.
const UberblockRingOffset = 128 * 1024 // 128 KiB

// UberblockSize is the on-disk stride between consecutive uberblock ring
// entries. Only UberblockSignificantSize bytes of each entry are meaningful.
const UberblockSize = 1024

// UberblockSignificantSize is the number of leading bytes of an uberblock
// slot that this reader parses; the remainder is reserved padding.
const UberblockSignificantSize = 208

// UberblocksPerLabel is the number of ring slots per label.
const UberblocksPerLabel = 128

// BlkptrShift is log2(sizeof(Blkptr)); every block pointer is 128 bytes.
const BlkptrShift = 7

// BlkptrSize is the fixed size of one on-disk block pointer.
const BlkptrSize = 1 << BlkptrShift

// DNodeSize is the fixed size of one on-disk dnode.
const DNodeSize = 512

// ObjSetSize is the fixed size of one on-disk object set.
const ObjSetSize = 2048

// MZapEntrySize is the fixed size of one micro-ZAP directory entry.
const MZapEntrySize = 64

// MZapHeaderSize is the fixed size of the micro-ZAP block header.
const MZapHeaderSize = 64

// MZapNameMax is the number of bytes reserved for a micro-ZAP entry name,
// including the terminating NUL.
const MZapNameMax = 50

// DSLDirSize is the fixed size of a DSLDir bonus payload.
const DSLDirSize = 256

// DSLDataSetSize is the fixed size of a DSLDataSet bonus payload: 23
// leading/trailing u64 fields plus one embedded block pointer.
const DSLDataSetSize = 23*8 + BlkptrSize

// ZNodeSize is the number of leading bytes of a ZNode bonus payload this
// reader interprets (four time pairs plus ten u64 fields); any trailing
// ACL bytes are ignored.
const ZNodeSize = 4*16 + 10*8

// DirEntryIsDir and DirEntryIsFile are the top-bit flags stored in a
// directory ZAP entry's value, identifying what kind of node it names.
const (
	DirEntryIsDir  uint64 = 0x4000000000000000
	DirEntryIsFile uint64 = 0x8000000000000000
)

// DirEntryObjectIDMask extracts the referenced object id (the low 60 bits)
// from a directory ZAP entry value, discarding the top-bit type flags.
const DirEntryObjectIDMask uint64 = 0x0FFFFFFFFFFFFFFF
