// Package vmm implements the Sv39 page-table engine: three-level page
// tables, page table entry encoding, and the walk/map/unmap primitives that
// every higher layer (kernel/uvm, kernel/pagefault, kernel/ucopy) builds on.
// The layout and walking algorithm are grounded on the original_source
// walk/mappages/uvmunmap functions; the mockable-function-var testability
// pattern and the frameAllocator indirection are grounded on the teacher
// package's kernel/mm/vmm, adapted from x86's 4-level recursively-mapped
// tables to Sv39's 3-level tables addressed directly through frame.Address(),
// since this module has no real MMU to install a recursive mapping into.
package vmm

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem/pmm"
)

// frameAllocator is used by Create and walk to obtain physical frames for
// new root and intermediate page table pages; the frames behind leaf
// mappings are supplied by the callers of MapPages. Tests override
// this var to exercise allocation-failure paths without touching the real
// arena.
var frameAllocator pmm.FrameAllocatorFn = pmm.AllocFrame

// SetFrameAllocator overrides the frame allocator used by this package.
func SetFrameAllocator(fn pmm.FrameAllocatorFn) {
	frameAllocator = fn
}

var (
	// ErrInvalidMapping is returned when a virtual address has no mapping
	// at the point a walk reaches a missing intermediate table and the
	// caller did not request one be allocated.
	ErrInvalidMapping = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}

	// ErrAddressNotAligned is returned by Unmap when va is not page
	// aligned.
	ErrAddressNotAligned = &kernel.Error{Module: "vmm", Message: "address is not page aligned"}

	// ErrMappingExists is returned by MapPages when it would silently
	// overwrite an existing present mapping.
	ErrMappingExists = &kernel.Error{Module: "vmm", Message: "remap of an already-mapped page"}

	// ErrAddressOutOfRange is returned when a virtual address exceeds the
	// Sv39 addressable range this package supports.
	ErrAddressOutOfRange = &kernel.Error{Module: "vmm", Message: "virtual address exceeds Sv39 range"}
)

// PageTable is a handle to the top-level (level-2) page table page for an
// address space. Unlike the teacher's x86 engine, which walks a single
// recursively-mapped active table, an Sv39 PageTable is just a physical
// frame holding 512 PTEs; every process owns its own, and walking one never
// requires it to be the currently "active" table.
type PageTable struct {
	root pmm.Frame
}

// Create allocates and zero-fills a new, empty top-level page table. The
// zero-fill matters: AllocFrame hands back whatever bytes its previous
// owner left behind, and a root table with garbage PTEs would make walk
// treat stale bits as real mappings.
func Create() (PageTable, *kernel.Error) {
	f, err := frameAllocator()
	if err != nil {
		return PageTable{}, err
	}
	zeroTable(f)
	return PageTable{root: f}, nil
}

// Root returns the physical frame backing the top-level table.
func (pt PageTable) Root() pmm.Frame {
	return pt.root
}

// Valid reports whether this PageTable handle refers to an allocated table.
func (pt PageTable) Valid() bool {
	return pt.root.Valid()
}

func tableAt(f pmm.Frame) *[entriesPerTable]PTE {
	return (*[entriesPerTable]PTE)(ptrAt(f.Address()))
}

func (pt PageTable) entries() *[entriesPerTable]PTE {
	return tableAt(pt.root)
}
