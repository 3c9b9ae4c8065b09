// Package pool implements the pool reader (C1): label/uberblock
// location and single-block read-and-decompress against a file-backed
// byte source.
package pool

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
	"github.com/sirupsen/logrus"

	"github.com/zfsreader/zfsreader/internal/interfaces"
	"github.com/zfsreader/zfsreader/internal/parsers/blkptr"
	"github.com/zfsreader/zfsreader/internal/parsers/uberblock"
	"github.com/zfsreader/zfsreader/internal/types"
)

// Reader is the pool reader: it owns the underlying byte source
// exclusively and is the only component in this module that issues raw
// reads against it.
type Reader struct {
	src interfaces.ByteSource
	log *logrus.Entry
}

// New wraps src as a pool reader.
func New(src interfaces.ByteSource, log *logrus.Entry) *Reader {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Reader{src: src, log: log}
}

// Close releases the underlying byte source.
func (r *Reader) Close() error {
	return r.src.Close()
}

// labelOffset returns the byte offset of label i (0..3) within the pool
// image, given the total image size.
func labelOffset(i int, fileSize int64) (int64, error) {
	switch i {
	case 0:
		return 0, nil
	case 1:
		return types.VdevLabelSize, nil
	case 2:
		return fileSize - 2*types.VdevLabelSize, nil
	case 3:
		return fileSize - types.VdevLabelSize, nil
	default:
		return 0, interfaces.NewError(interfaces.ErrInvalidPointer, fmt.Sprintf("label index out of range: %d", i))
	}
}

// ReadUberblock reads and validates one uberblock ring slot.
func (r *Reader) ReadUberblock(labelIndex, ubIndex int) (types.Uberblock, error) {
	size, err := r.src.Size()
	if err != nil {
		return types.Uberblock{}, interfaces.WrapError(interfaces.ErrIo, "stat pool image", err)
	}
	labelOff, err := labelOffset(labelIndex, size)
	if err != nil {
		return types.Uberblock{}, err
	}
	if ubIndex < 0 || ubIndex >= types.UberblocksPerLabel {
		return types.Uberblock{}, interfaces.NewError(interfaces.ErrInvalidPointer, fmt.Sprintf("uberblock index out of range: %d", ubIndex))
	}

	off := labelOff + types.UberblockRingOffset + int64(ubIndex)*types.UberblockSize
	buf := make([]byte, types.UberblockSignificantSize)
	if _, err := r.src.ReadAt(buf, off); err != nil {
		return types.Uberblock{}, interfaces.WrapError(interfaces.ErrIo, "read uberblock slot", err)
	}

	ub, err := uberblock.Read(buf)
	if err != nil {
		return ub, err
	}
	return ub, nil
}

// ActiveUberblock scans every label and ring slot for the valid
// uberblock with the greatest Txg, breaking ties by the highest
// (label, index) pair in scan order.
func (r *Reader) ActiveUberblock() (types.Uberblock, int, int, error) {
	var (
		best      types.Uberblock
		bestLabel = -1
		bestIndex = -1
		found     bool
	)

	for label := 0; label < types.VdevLabels; label++ {
		for idx := 0; idx < types.UberblocksPerLabel; idx++ {
			ub, err := r.ReadUberblock(label, idx)
			if err != nil {
				continue
			}
			if !found || ub.Txg >= best.Txg {
				best, bestLabel, bestIndex, found = ub, label, idx, true
			}
		}
	}

	if !found {
		return types.Uberblock{}, 0, 0, interfaces.NewError(interfaces.ErrNotFound, "no valid uberblock found in any label")
	}
	return best, bestLabel, bestIndex, nil
}

// ReadBlock resolves dva_index of bp, reads its physical bytes, and
// returns the decompressed logical buffer.
func (r *Reader) ReadBlock(bp types.Blkptr, dvaIndex int) ([]byte, error) {
	if !bp.Valid() {
		return nil, interfaces.NewError(interfaces.ErrInvalidPointer, "invalid block pointer")
	}
	if bp.Endian != types.EndianLittle {
		return nil, interfaces.NewError(interfaces.ErrUnsupported, "big-endian blocks are not supported")
	}
	if bp.Encrypt || bp.Dedup {
		return nil, interfaces.NewError(interfaces.ErrUnsupported, "encrypted and dedup'd blocks are not supported")
	}

	dva, err := blkptr.ReadDVA(bp, dvaIndex)
	if err != nil {
		return nil, err
	}

	lsize := bp.LogicalSize()
	psize := bp.PhysicalSize()

	switch bp.EffectiveCompress() {
	case types.CompressOff:
		if lsize != psize || lsize != dva.AllocatedSize() {
			return nil, interfaces.NewError(interfaces.ErrCorrupt, "uncompressed block size mismatch")
		}
		buf := make([]byte, lsize)
		if _, err := r.src.ReadAt(buf, dva.Address()); err != nil {
			return nil, interfaces.WrapError(interfaces.ErrIo, "read uncompressed block", err)
		}
		return buf, nil

	case types.CompressLZ4:
		staging := make([]byte, psize)
		if _, err := r.src.ReadAt(staging, dva.Address()); err != nil {
			return nil, interfaces.WrapError(interfaces.ErrIo, "read compressed block", err)
		}
		if len(staging) < 4 {
			return nil, interfaces.NewError(interfaces.ErrCorrupt, "compressed block too small for length prefix")
		}

		n := int64(binary.BigEndian.Uint32(staging[0:4]))
		if n+4 >= lsize {
			return nil, interfaces.NewError(interfaces.ErrCorrupt, "lz4 compressed length inconsistent with logical size")
		}
		if n+4 > psize {
			return nil, interfaces.NewError(interfaces.ErrCorrupt, "lz4 compressed length exceeds physical buffer")
		}

		out := make([]byte, lsize)
		written, decErr := lz4.UncompressBlock(staging[4:4+n], out)
		if decErr != nil {
			r.log.WithError(decErr).Warn("lz4 decompression reported an error; keeping output buffer per observed source behavior")
		} else if int64(written) != lsize {
			r.log.WithFields(logrus.Fields{"written": written, "lsize": lsize}).
				Warn("lz4 decompressed length does not match logical size")
		}
		return out, nil

	default:
		return nil, interfaces.NewError(interfaces.ErrUnsupported, fmt.Sprintf("unsupported compression: %s", bp.Comp))
	}
}

// ReadBlockAnyDVA tries dva 0..2 in order, returning the first
// successful read. This is the retry policy §4.6/§7 call for at every
// blkptr dereference above the pool reader itself.
func (r *Reader) ReadBlockAnyDVA(bp types.Blkptr) ([]byte, error) {
	var lastErr error
	for i := 0; i < 3; i++ {
		data, err := r.ReadBlock(bp, i)
		if err == nil {
			return data, nil
		}
		lastErr = err
		r.log.WithFields(logrus.Fields{"dva_index": i}).WithError(err).Debug("dva read failed, trying next mirror")
	}
	return nil, lastErr
}
