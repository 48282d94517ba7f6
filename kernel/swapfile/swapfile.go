// Package swapfile implements the per-process backing store the paging
// subsystem evicts pages to. The original kernel routes writeToSwapFile and
// readFromSwapFile through a real xv6 struct file; this module has no file
// system to borrow one from, so this package opens an ordinary host file
// and addresses it by slot with golang.org/x/sys/unix.Pwrite/Pread, grounded
// on the offset-addressed, cursor-free I/O idiom used for asynchronous file
// access in _examples/SeleniaProject-Orizon/internal/runtime/asyncio
// (zerocopy_unix_file.go), which reaches for x/sys/unix over os.File.ReadAt/
// WriteAt for the same reason: Pread/Pwrite never perturb a shared file
// offset, matching writeToSwapFile/readFromSwapFile's own offset parameter.
package swapfile

import (
	"os"

	"golang.org/x/sys/unix"

	"sv39vm/kernel"
	"sv39vm/kernel/mem"
)

// SlotCount is the number of fixed-size slots in a process's swap file.
// Grounded on proc.MaxPsycPages; duplicated as a constant here (rather than
// importing kernel/proc) to keep this package a leaf with no dependency on
// process bookkeeping.
const SlotCount = 16

var (
	errShortIO = &kernel.Error{Module: "swapfile", Message: "short read or write against swap file"}
)

// File is a process's swap file: SlotCount fixed-size page slots addressed
// by index.
type File struct {
	f *os.File
}

// Open creates (or truncates) the backing file at path and preallocates it
// to SlotCount*PageSize bytes.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(SlotCount) * int64(mem.PageSize)); err != nil {
		f.Close()
		return nil, err
	}
	return &File{f: f}, nil
}

func slotOffset(idx int) int64 {
	return int64(idx) * int64(mem.PageSize)
}

// WriteSlot writes len(buf) bytes (at most one page) to the given slot.
// I/O failure is treated as fatal, matching the original's panic("Fail")
// on a failed writeToSwapFile call.
func (sf *File) WriteSlot(idx int, buf []byte) error {
	n, err := unix.Pwrite(int(sf.f.Fd()), buf, slotOffset(idx))
	if err != nil {
		kernel.Panic(&kernel.Error{Module: "swapfile", Message: err.Error()})
	}
	if n != len(buf) {
		kernel.Panic(errShortIO)
	}
	return nil
}

// ReadSlot reads len(buf) bytes (at most one page) from the given slot.
func (sf *File) ReadSlot(idx int, buf []byte) error {
	n, err := unix.Pread(int(sf.f.Fd()), buf, slotOffset(idx))
	if err != nil {
		kernel.Panic(&kernel.Error{Module: "swapfile", Message: err.Error()})
	}
	if n != len(buf) {
		kernel.Panic(errShortIO)
	}
	return nil
}

// Close releases the underlying file descriptor.
func (sf *File) Close() error {
	return sf.f.Close()
}
