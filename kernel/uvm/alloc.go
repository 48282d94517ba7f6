package uvm

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem"
	"sv39vm/kernel/mem/pmm"
	"sv39vm/kernel/mem/vmm"
	"sv39vm/kernel/proc"
)

// Alloc grows a process's user address space from oldSz to newSz one page
// at a time, mapping each new page with read/user plus the caller-supplied
// extra permission bits. Equivalent to uvmalloc.
//
// For a process subject to paging bookkeeping (p.Paged(), and pt is that
// process's own page table) each newly mapped page is also registered in
// the resident set, following the original's three-step slot-acquisition
// rule: take a free RAM slot if one exists; otherwise evict a victim (via
// the active replacement policy and the swap I/O bridge) to free one up;
// if no swap slot is free either, every RAM and swap slot is in use and
// proc.FindFreeSwap panics.
func Alloc(p *proc.Process, pt vmm.PageTable, oldSz, newSz uint64, xperm vmm.PTEFlag) (uint64, *kernel.Error) {
	if newSz < oldSz {
		return oldSz, nil
	}

	tracked := p != nil && p.Paged() && pt == p.Pagetable

	a := mem.PGRoundUp(uintptr(oldSz))
	for ; a < uintptr(newSz); a += uintptr(mem.PageSize) {
		f, err := pmm.AllocFrame()
		if err != nil {
			Dealloc(p, pt, uint64(a), oldSz)
			return 0, err
		}
		mem.Memset(f.Address(), 0, uintptr(mem.PageSize))

		if err := vmm.MapPages(pt, a, mem.PageSize, f.Address(), vmm.PTERead|vmm.PTEUser|xperm, vmm.RegularMap); err != nil {
			pmm.FreeFrame(f)
			Dealloc(p, pt, uint64(a), oldSz)
			return 0, err
		}

		if tracked {
			if err := registerResident(p, pt, a); err != nil {
				Dealloc(p, pt, uint64(a)+uint64(mem.PageSize), oldSz)
				return 0, err
			}
		}
	}

	return newSz, nil
}

// registerResident records virtual address va as newly resident in RAM for
// p, evicting a victim through the active policy if no RAM slot is free.
func registerResident(p *proc.Process, pt vmm.PageTable, va uintptr) *kernel.Error {
	ramIdx := p.FindFreeRAM()
	if ramIdx == -1 {
		swapIdx := p.FindFreeSwap()
		var err *kernel.Error
		ramIdx, err = EvictOneRAMSlot(p, swapIdx)
		if err != nil {
			return err
		}
	}

	seed := uint32(0)
	if activePolicy != nil {
		seed = activePolicy.SeedCounter()
	}

	p.Ram[ramIdx] = proc.RAMSlot{
		State:         proc.SlotUsed,
		VAddr:         va,
		CreationTime:  proc.NextCreationTime(),
		AccessCounter: seed,
	}
	return nil
}

// Dealloc shrinks a process's address space from oldSz down to newSz,
// unmapping and freeing whole pages that cross below oldSz's page boundary.
// Equivalent to uvmdealloc.
func Dealloc(p *proc.Process, pt vmm.PageTable, oldSz, newSz uint64) uint64 {
	if newSz >= oldSz {
		return oldSz
	}

	oldPages := mem.PGRoundUp(uintptr(oldSz))
	newPages := mem.PGRoundUp(uintptr(newSz))
	if newPages < oldPages {
		npages := (oldPages - newPages) / uintptr(mem.PageSize)
		var tracker vmm.ResidentTracker
		if p != nil {
			tracker = p
		}
		vmm.Unmap(pt, newPages, uint64(npages), true, tracker)
	}

	return newSz
}

// EvictOneRAMSlot picks a victim resident page via the active replacement
// policy, writes it to p's swap file at swapIdx, flips its PTE to
// V=0,PG=1, and frees its physical frame, returning the now-vacated RAM
// index. Equivalent to ramIntoDisc.
func EvictOneRAMSlot(p *proc.Process, swapIdx int) (int, *kernel.Error) {
	if activePolicy == nil {
		return 0, ErrNoPolicyConfigured
	}

	ramIdx, err := activePolicy.PickVictim(p, p.Pagetable)
	if err != nil {
		return 0, err
	}

	va := p.Ram[ramIdx].VAddr
	pa, err := vmm.WalkAddr(p.Pagetable, va)
	if err != nil {
		return 0, err
	}

	buf := pmm.FrameFromAddress(pa).Bytes()
	if err := p.SwapFile.WriteSlot(swapIdx, buf); err != nil {
		return 0, &kernel.Error{Module: "uvm", Message: err.Error()}
	}

	p.Swap[swapIdx] = proc.SwapSlot{State: proc.SlotUsed, VAddr: va}

	pte, err := vmm.Lookup(p.Pagetable, va)
	if err != nil {
		return 0, err
	}
	frame := pte.Frame()
	pte.ClearFlags(vmm.PTEValid)
	pte.SetSwapSlot(swapIdx)
	vmm.FlushEntry(va)

	if err := pmm.FreeFrame(frame); err != nil {
		return 0, err
	}

	p.Ram[ramIdx] = proc.RAMSlot{}
	return ramIdx, nil
}

// UpdateCounters runs the active policy's aging hook over p's resident set,
// matching the original's updateCounter.
func UpdateCounters(p *proc.Process) {
	if activePolicy == nil {
		return
	}
	activePolicy.OnTick(p, p.Pagetable)
}

// ErrNoPolicyConfigured is returned when an eviction is attempted before
// SetPolicy has ever been called.
var ErrNoPolicyConfigured = &kernel.Error{Module: "uvm", Message: "no replacement policy configured"}
