// Package ucopy implements kernel<->user memory transfers across a page
// table, one page at a time, translating each page's virtual address
// through vmm.WalkAddr before copying across the boundary. Grounded on
// vm.c's copyout/copyin/copyinstr.
package ucopy

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem"
	"sv39vm/kernel/mem/vmm"
)

var (
	errNullNotFound = &kernel.Error{Module: "ucopy", Message: "string exceeds max without a null terminator"}
	errDstTooSmall  = &kernel.Error{Module: "ucopy", Message: "destination buffer smaller than max"}
)

// CopyOut copies src into the user address space described by pt, starting
// at dstva. Equivalent to copyout.
func CopyOut(pt vmm.PageTable, dstva uintptr, src []byte) *kernel.Error {
	var off int
	for len(src) > off {
		va0 := mem.PGRoundDown(dstva)
		pa0, err := vmm.WalkAddr(pt, va0)
		if err != nil {
			return err
		}

		n := uintptr(mem.PageSize) - (dstva - va0)
		remaining := uintptr(len(src) - off)
		if n > remaining {
			n = remaining
		}

		mem.Memcopy(sliceAddr(src[off:]), pa0+(dstva-va0), n)

		off += int(n)
		dstva = va0 + uintptr(mem.PageSize)
	}
	return nil
}

// CopyIn copies len(dst) bytes from the user address space described by pt,
// starting at srcva, into dst. Equivalent to copyin.
func CopyIn(pt vmm.PageTable, dst []byte, srcva uintptr) *kernel.Error {
	var off int
	for len(dst) > off {
		va0 := mem.PGRoundDown(srcva)
		pa0, err := vmm.WalkAddr(pt, va0)
		if err != nil {
			return err
		}

		n := uintptr(mem.PageSize) - (srcva - va0)
		remaining := uintptr(len(dst) - off)
		if n > remaining {
			n = remaining
		}

		mem.Memcopy(pa0+(srcva-va0), sliceAddr(dst[off:]), n)

		off += int(n)
		srcva = va0 + uintptr(mem.PageSize)
	}
	return nil
}

// CopyInString copies a NUL-terminated string from the user address space
// described by pt, starting at srcva, into dst, stopping at the first NUL
// byte or once max bytes have been scanned. It returns errNullNotFound if
// no NUL byte was found within max bytes. Equivalent to copyinstr.
func CopyInString(pt vmm.PageTable, dst []byte, srcva uintptr, max int) (int, *kernel.Error) {
	var n int
	for n < max {
		va0 := mem.PGRoundDown(srcva)
		pa0, err := vmm.WalkAddr(pt, va0)
		if err != nil {
			return 0, err
		}

		pageOff := srcva - va0
		page := pageBytes(pa0)

		for pageOff < uintptr(mem.PageSize) && n < max {
			if n >= len(dst) {
				return 0, errDstTooSmall
			}
			b := page[pageOff]
			dst[n] = b
			n++
			pageOff++
			if b == 0 {
				return n, nil
			}
		}

		srcva = va0 + uintptr(mem.PageSize)
	}
	return 0, errNullNotFound
}
