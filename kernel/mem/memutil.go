package mem

import "unsafe"

// Memset sets size bytes starting at addr to value. Grounded on the teacher
// package's kernel.Memset, which overlays a []byte on top of a raw address
// via reflect.SliceHeader; this module targets a newer Go toolchain so it
// uses unsafe.Slice instead, which is the idiomatic replacement for that
// pattern and avoids constructing a reflect.SliceHeader by hand.
func Memset(addr uintptr, value byte, size uintptr) {
	if size == 0 {
		return
	}
	target := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	for i := range target {
		target[i] = value
	}
}

// Memcopy copies size bytes from src to dst.
func Memcopy(src, dst uintptr, size uintptr) {
	if size == 0 {
		return
	}
	srcSlice := unsafe.Slice((*byte)(unsafe.Pointer(src)), size)
	dstSlice := unsafe.Slice((*byte)(unsafe.Pointer(dst)), size)
	copy(dstSlice, srcSlice)
}
