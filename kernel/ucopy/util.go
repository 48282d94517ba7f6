package ucopy

import (
	"unsafe"

	"sv39vm/kernel/mem"
)

func sliceAddr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// pageBytes overlays a []byte of exactly one page over a simulated physical
// address.
func pageBytes(addr uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), uintptr(mem.PageSize))
}
