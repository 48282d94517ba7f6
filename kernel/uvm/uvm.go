// Package uvm implements user address-space operations: creating, growing,
// shrinking, forking, and destroying a process's page table, plus the
// eviction orchestration that ties a replacement policy's victim pick to
// the swap I/O bridge. Grounded directly on the function set in
// _examples/original_source/kernel/vm.c (uvmcreate, uvmfirst, uvmalloc,
// uvmdealloc, uvmcopy, uvmfree, uvmclear) and on the teacher's *kernel.Error
// return-on-recoverable-failure idiom used throughout kernel/mm/vmm.
package uvm

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem"
	"sv39vm/kernel/mem/pmm"
	"sv39vm/kernel/mem/vmm"
	"sv39vm/kernel/proc"
	"sv39vm/kernel/replace"
)

var (
	// ErrOutOfMemory names the out-of-memory condition of a growth request.
	// No function in this package returns it: Alloc reports a failed frame
	// allocation with the error pmm returned, and running out of both RAM
	// and swap slots panics in proc.FindFreeSwap.
	ErrOutOfMemory = &kernel.Error{Module: "uvm", Message: "out of memory"}

	errSourceNotPresent = &kernel.Error{Module: "uvm", Message: "uvmcopy: page not present"}
	errFirstTooLarge    = &kernel.Error{Module: "uvm", Message: "uvmfirst: more than a page"}
)

// activePolicy is the replacement policy consulted by Alloc, EvictOneRAMSlot
// and UpdateCounters. Tests and callers configure it with SetPolicy before
// any paging-tracked process performs an allocation; mirrors the
// frameAllocator-style mockable package var used throughout kernel/mem/vmm.
var activePolicy replace.Policy

// SetPolicy installs the replacement policy used by every Alloc/evict/tick
// call until changed again.
func SetPolicy(p replace.Policy) {
	activePolicy = p
}

// ActivePolicy returns the currently configured replacement policy, or nil
// if SetPolicy has never been called. Used by kernel/pagefault to seed a
// newly faulted-in RAM slot's access counter the same way registerResident
// seeds a newly allocated one.
func ActivePolicy() replace.Policy {
	return activePolicy
}

// Create allocates an empty user page table, equivalent to uvmcreate.
func Create() (vmm.PageTable, *kernel.Error) {
	return vmm.Create()
}

// First maps virtual address 0 with full user permissions and copies src
// into it. len(src) must not exceed one page; equivalent to uvmfirst.
func First(pt vmm.PageTable, src []byte) *kernel.Error {
	if mem.Size(len(src)) > mem.PageSize {
		return errFirstTooLarge
	}

	f, err := pmm.AllocFrame()
	if err != nil {
		return err
	}
	mem.Memset(f.Address(), 0, uintptr(mem.PageSize))

	if err := vmm.MapPages(pt, 0, mem.PageSize, f.Address(), vmm.PTERead|vmm.PTEWrite|vmm.PTEExec|vmm.PTEUser, vmm.RegularMap); err != nil {
		return err
	}
	mem.Memcopy(sliceAddr(src), f.Address(), uintptr(len(src)))
	return nil
}
