package vmm

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem"
)

// WalkAddr translates a user virtual address to its backing physical
// address. It requires the page to be present, user-accessible, and not
// paged out. A va at or above MaxVA returns ErrAddressOutOfRange and every
// other failure returns ErrInvalidMapping; both stand in for walkaddr()'s
// "return 0".
func WalkAddr(pt PageTable, va uintptr) (uintptr, *kernel.Error) {
	if va >= mem.MaxVA {
		return 0, ErrAddressOutOfRange
	}

	pte, err := walk(pt, va, false)
	if err != nil {
		return 0, ErrInvalidMapping
	}
	if !pte.Valid() || !pte.HasFlags(PTEUser) || pte.HasFlags(PTEPaged) {
		return 0, ErrInvalidMapping
	}

	return pte.Frame().Address(), nil
}

// Lookup returns the leaf PTE for va without requiring it to be a
// user-accessible or present mapping; used by the resident-set tracker and
// page-fault handler, which need to inspect PTEPaged/PTEAccessed/PTEDirty on
// entries that WalkAddr itself would reject.
func Lookup(pt PageTable, va uintptr) (*PTE, *kernel.Error) {
	return walk(pt, va, false)
}

// EnsureLeaf returns the leaf PTE for va, allocating any missing
// intermediate page-table pages along the way but never touching the leaf
// entry itself (it may come back zero-valued, i.e. unmapped). Used by
// kernel/uvm.Copy to install a paged-out twin entry directly, bypassing
// MapPages (which always marks the entry present).
func EnsureLeaf(pt PageTable, va uintptr) (*PTE, *kernel.Error) {
	return walk(pt, va, true)
}

// FlushEntry invalidates any cached translation for va. This module has no
// real TLB to invalidate (there is no bare-metal MMU underneath a hosted Go
// process), so it is a no-op; it exists only to preserve the call site every
// PTE mutation in the original walks through, so a reader porting this code
// to real hardware knows exactly where a flush belongs.
func FlushEntry(va uintptr) {}
