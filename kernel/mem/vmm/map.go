package vmm

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem"
	"sv39vm/kernel/mem/pmm"
)

// MapMode selects how MapPages advances across a multi-page region, mirroring
// the state argument mappages() forwards to walk().
type MapMode int

const (
	// RegularMap maps every page in the requested region, allocating
	// intermediate page-table pages as needed. This is the mode used for
	// ordinary process memory.
	RegularMap MapMode = iota

	// SpecialMap maps only the first page of the requested region and then
	// stops, whatever the region's size; missing intermediate page-table
	// pages are allocated as in RegularMap. The page-fault handler uses it
	// to restore a single faulted-in page.
	SpecialMap
)

var (
	errZeroSizeMapping = &kernel.Error{Module: "vmm", Message: "cannot map a zero-sized region"}
)

// MapPages installs leaf mappings covering [va, va+size) to the physical
// range starting at pa, with the given permission flags. va and pa need not
// be page-aligned; the mapped range is rounded to whole pages exactly as
// mappages() rounds it. Remapping an already-present page is an error.
//
// In both modes walk() allocates any missing intermediate page-table page.
// In RegularMap mode every page in the region is mapped; in SpecialMap mode
// only the first page is mapped, mirroring mappages() called with state ==
// SPEC_MAP.
func MapPages(pt PageTable, va uintptr, size mem.Size, pa uintptr, perm PTEFlag, mode MapMode) *kernel.Error {
	if size == 0 {
		return errZeroSizeMapping
	}

	start := mem.PGRoundDown(va)
	last := mem.PGRoundDown(va + uintptr(size) - 1)

	for a, p := start, pa; ; a, p = a+uintptr(mem.PageSize), p+uintptr(mem.PageSize) {
		pte, err := walk(pt, a, true)
		if err != nil {
			return err
		}
		if pte.Valid() {
			return ErrMappingExists
		}

		*pte = 0
		pte.SetFrame(pmm.FrameFromAddress(p))
		pte.SetFlags(perm | PTEValid)
		FlushEntry(a)

		if a == last || mode == SpecialMap {
			break
		}
	}

	return nil
}

// ResidentTracker lets Unmap clear a process's RAM/swap bookkeeping for an
// address it is unmapping without this package importing kernel/proc;
// *proc.Process satisfies this interface. Keeping vmm a leaf package this
// way mirrors the teacher's own layering, where kernel/mm/vmm depends only
// on kernel/mm and kernel/cpu, never on the process/scheduler packages built
// on top of it.
type ResidentTracker interface {
	ClearResident(va uintptr)
}

// Unmap removes npages worth of leaf mappings starting at va, which must be
// page-aligned. If free is true, the backing frame of every mapping that is
// resident in RAM (not paged out) is released back to the physical frame
// allocator. A paged-out entry (PTEPaged set) has no frame to release, since
// its contents live in a swap slot; its entry is still zeroed and its
// bookkeeping cleared like any other.
// If tracker is non-nil, every unmapped address also has its matching
// Ram/Swap bookkeeping cleared, mirroring the original's "if p->pid > 2"
// cleanup inlined into uvmunmap; callers unmapping an untracked address
// space (kernel mappings, init/shell) pass a nil tracker.
func Unmap(pt PageTable, va uintptr, npages uint64, free bool, tracker ResidentTracker) *kernel.Error {
	if va%uintptr(mem.PageSize) != 0 {
		return ErrAddressNotAligned
	}

	for a := va; a < va+uintptr(npages)*uintptr(mem.PageSize); a += uintptr(mem.PageSize) {
		pte, err := walk(pt, a, false)
		if err != nil {
			return err
		}
		if !pte.Valid() && !pte.HasFlags(PTEPaged) {
			// An absent leaf that is also not paged out means the caller
			// asked to unmap a page that was never mapped: an invariant
			// violation in the caller's own bookkeeping, not a recoverable
			// condition, matching the original's panic("uvmunmap: not mapped").
			kernel.Panic(ErrInvalidMapping)
			return ErrInvalidMapping
		}
		if free && pte.Valid() && !pte.HasFlags(PTEPaged) {
			if err := pmm.FreeFrame(pte.Frame()); err != nil {
				return err
			}
		}
		*pte = 0
		FlushEntry(a)
		if tracker != nil {
			tracker.ClearResident(a)
		}
	}

	return nil
}
