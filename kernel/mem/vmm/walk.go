package vmm

import (
	"unsafe"

	"sv39vm/kernel"
	"sv39vm/kernel/mem"
	"sv39vm/kernel/mem/pmm"
)

// ptrAtFn resolves a simulated physical address to a Go pointer. Tests can
// override this to walk a fake table built from a plain Go slice instead of
// a pmm-backed arena; production code leaves it as the identity cast, which
// the compiler inlines away.
var ptrAtFn = func(addr uintptr) unsafe.Pointer {
	return unsafe.Pointer(addr)
}

func ptrAt(addr uintptr) unsafe.Pointer {
	return ptrAtFn(addr)
}

func index(va uintptr, level int) uintptr {
	return (va >> levelShift[level]) & (entriesPerTable - 1)
}

// walk returns a pointer to the level-0 (leaf) PTE that translates va within
// pt, walking the three levels of Sv39 page tables. If alloc is true and an
// intermediate table is missing, walk allocates and zero-fills a frame for
// it, exactly as the original walk() does when called from mappages() with
// alloc=1; if alloc is false, walk returns ErrInvalidMapping the first time
// it finds a missing intermediate table, exactly as walk() does when called
// from walkaddr() with alloc=0. va >= MAXVA panics: every caller of walk is
// expected to have already validated va (WalkAddr, the one caller exposed to
// raw user input, checks and returns gracefully before ever reaching here),
// so getting this far with an out-of-range address means the kernel's own
// bookkeeping is broken, exactly as the original's panic("walk").
func walk(pt PageTable, va uintptr, alloc bool) (*PTE, *kernel.Error) {
	if va >= mem.MaxVA {
		kernel.Panic(ErrAddressOutOfRange)
		return nil, ErrAddressOutOfRange
	}

	table := pt.root
	for level := 0; level < pageLevels-1; level++ {
		entries := tableAt(table)
		pte := &entries[index(va, pageLevels-1-level)]

		if !pte.Valid() {
			if !alloc {
				return nil, ErrInvalidMapping
			}
			f, err := frameAllocator()
			if err != nil {
				return nil, err
			}
			zeroTable(f)
			*pte = 0
			pte.SetFrame(f)
			pte.SetFlags(PTEValid)
		}

		table = pte.Frame()
	}

	entries := tableAt(table)
	return &entries[index(va, 0)], nil
}

func zeroTable(f pmm.Frame) {
	entries := tableAt(f)
	for i := range entries {
		entries[i] = 0
	}
}
