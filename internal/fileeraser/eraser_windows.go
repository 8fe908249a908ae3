//go:build windows

package fileeraser

import (
	"fmt"
	"math/rand"

	"golang.org/x/sys/windows"

	"fileshredder_enterprise/internal/model"
)

const anchorByte = 0xEF
const anchorStride = 0xFFFF // 64 KiB - 1, matching the source's literal anchor stride
const oneMiB = 1 << 20

// NativeEraser is the Windows single-file eraser: raw CreateFileW handle,
// write-through, anchor-write preparation and the four overwrite
// strategies.
type NativeEraser struct {
	handle windows.Handle
	state  State

	path       string
	size       int64
	bigFile    bool
	isSSD      bool
	compressed bool

	prepared bool
}

// NewNative returns an unopened Windows single-file eraser bound to the
// given disk type (used to decide the Prepare anchor-write span).
func NewNative(isSSD bool) *NativeEraser {
	return &NativeEraser{handle: windows.InvalidHandle, state: StateNew, isSSD: isSSD}
}

func (e *NativeEraser) State() State { return e.state }
func (e *NativeEraser) Size() int64  { return e.size }
func (e *NativeEraser) BigFile() bool { return e.bigFile }

// Open clears the read-only attribute, then opens the file GENERIC_WRITE /
// OPEN_EXISTING / FILE_FLAG_WRITE_THROUGH, retrying once on failure.
func (e *NativeEraser) Open(path string) error {
	if e.state != StateNew {
		return ErrInvalidState
	}

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return err
	}

	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return fmt.Errorf("fileeraser: stat %s: %w", path, err)
	}
	if attrs&windows.FILE_ATTRIBUTE_DIRECTORY != 0 {
		return fmt.Errorf("fileeraser: %s is a directory", path)
	}
	if attrs&windows.FILE_ATTRIBUTE_READONLY != 0 {
		_ = windows.SetFileAttributes(p, attrs&^windows.FILE_ATTRIBUTE_READONLY)
	}
	e.compressed = attrs&(windows.FILE_ATTRIBUTE_COMPRESSED|windows.FILE_ATTRIBUTE_ENCRYPTED|windows.FILE_ATTRIBUTE_SPARSE_FILE) != 0

	if err := e.tryOpen(p, path); err != nil {
		if err2 := e.tryOpen(p, path); err2 != nil {
			return fmt.Errorf("fileeraser: open %s after 2 attempts: %w", path, err2)
		}
	}

	e.state = StateOpened
	return nil
}

func (e *NativeEraser) tryOpen(p *uint16, path string) error {
	h, err := windows.CreateFile(p,
		windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_WRITE_THROUGH,
		0)
	if err != nil {
		return err
	}
	e.handle = h
	e.path = path

	var size int64
	if err := windows.GetFileSizeEx(h, &size); err != nil {
		windows.CloseHandle(h)
		e.handle = windows.InvalidHandle
		return err
	}
	e.size = size
	if uint64(size) > uint64(bigFileThreshold) {
		e.bigFile = true
	}
	return nil
}

func (e *NativeEraser) seek(offset int64, whence uint32) (int64, error) {
	low := int32(offset & 0xFFFFFFFF)
	high := int32(offset >> 32)
	newLow, err := windows.SetFilePointer(e.handle, low, &high, whence)
	if err != nil {
		return 0, err
	}
	return int64(high)<<32 | int64(newLow), nil
}

func (e *NativeEraser) write(p []byte) (int, error) {
	var written uint32
	err := windows.WriteFile(e.handle, p, &written, nil)
	return int(written), err
}

// Prepare writes the 0xEF anchor byte at size-1, plus (on SSD) at every
// 64 KiB-1 offset through size, so later overwrites are likelier to land on
// the same logical blocks. Only the first successful Prepare has effect,
// per the source's preserved-as-is behavior.
func (e *NativeEraser) Prepare(isSSD bool) error {
	if e.state != StateOpened && e.state != StatePrepared {
		return ErrInvalidState
	}
	if e.prepared {
		return nil
	}

	anchor := [1]byte{anchorByte}
	if _, err := e.seek(-1, windows.FILE_END); err != nil {
		return err
	}
	if _, err := e.write(anchor[:]); err != nil {
		return err
	}

	if isSSD {
		for point := int64(anchorStride); point <= e.size; point += anchorStride {
			if _, err := e.seek(point, windows.FILE_BEGIN); err != nil {
				return err
			}
			if _, err := e.write(anchor[:]); err != nil {
				return err
			}
		}
	}

	e.prepared = true
	e.state = StatePrepared
	return nil
}

// EraseFull seeks to 0 and writes mask in mask-sized chunks until size
// bytes are overwritten. Rejected for big files.
func (e *NativeEraser) EraseFull(mask []byte) error {
	if e.bigFile {
		return ErrBigFileFull
	}
	if e.size == 0 {
		return nil
	}
	if !e.prepared {
		if err := e.Prepare(e.isSSD); err != nil {
			return err
		}
	}
	if _, err := e.seek(0, windows.FILE_BEGIN); err != nil {
		return err
	}

	maskLen := int64(len(mask))
	var erased int64
	for erased < e.size {
		chunk := e.size - erased
		if chunk > maskLen {
			chunk = maskLen
		}
		written, err := e.write(mask[:chunk])
		if err != nil {
			return err
		}
		erased += int64(written)
	}
	e.state = StateErased
	return nil
}

// EraseRandom writes mask at offset 0, at size-mask_len, and at a linearly
// scaled number of uniformly drawn interior offsets, sorted ascending.
// Defers to EraseFull for files under 1 MiB.
func (e *NativeEraser) EraseRandom(mask []byte) error {
	if e.size < oneMiB {
		return e.EraseFull(mask)
	}
	if !e.prepared {
		if err := e.Prepare(e.isSSD); err != nil {
			return err
		}
	}

	maskLen := int64(len(mask))
	endOffset := e.size - maskLen
	points := randomOffsets(e.size, maskLen, endOffset)

	for _, point := range points {
		if _, err := e.seek(point, windows.FILE_BEGIN); err != nil {
			return err
		}
		if _, err := e.write(mask); err != nil {
			return err
		}
	}
	e.state = StateErased
	return nil
}

// EraseBeginEnd writes mask at offset 0 and at size-mask_len. Defers to
// EraseFull for files under 1 MiB.
func (e *NativeEraser) EraseBeginEnd(mask []byte) error {
	if e.size < oneMiB {
		return e.EraseFull(mask)
	}
	if !e.prepared {
		if err := e.Prepare(e.isSSD); err != nil {
			return err
		}
	}

	if _, err := e.seek(0, windows.FILE_BEGIN); err != nil {
		return err
	}
	if _, err := e.write(mask); err != nil {
		return err
	}
	if _, err := e.seek(-int64(len(mask)), windows.FILE_END); err != nil {
		return err
	}
	if _, err := e.write(mask); err != nil {
		return err
	}
	e.state = StateErased
	return nil
}

// EraseSmart dispatches by big_file/entropy classification.
func (e *NativeEraser) EraseSmart(mask []byte, class model.Classification) error {
	if e.bigFile {
		return e.EraseBeginEnd(mask)
	}
	switch class {
	case model.Encrypted:
		return e.EraseBeginEnd(mask)
	case model.Binary, model.Plain, model.Unknown:
		return e.EraseFull(mask)
	default:
		return e.EraseFull(mask)
	}
}

// Close releases the file handle; idempotent.
func (e *NativeEraser) Close() error {
	if e.handle == windows.InvalidHandle {
		e.state = StateClosed
		return nil
	}
	err := windows.CloseHandle(e.handle)
	e.handle = windows.InvalidHandle
	e.state = StateClosed
	return err
}

// randomOffsets mirrors the source's offset generation: 0, a linearly
// scaled count of interior offsets uniformly drawn from
// [mask_len, end_offset-mask_len], then end_offset, sorted ascending.
func randomOffsets(size, maskLen, endOffset int64) []int64 {
	count := size / (maskLen * 5)
	points := make([]int64, 0, count+2)
	points = append(points, 0)
	lo := maskLen
	hi := endOffset - maskLen
	for i := int64(0); i < count; i++ {
		points = append(points, uniform(lo, hi))
	}
	points = append(points, endOffset)
	sortInt64s(points)
	return points
}

func uniform(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + rand.Int63n(hi-lo+1)
}

func sortInt64s(s []int64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
