// Package pagefault implements the demand-paging fault handler: bringing a
// swapped-out page back into RAM, evicting a resident victim first if the
// faulting process's RAM quota is already full. Grounded on vm.c's
// pageFault/discIntoRam pair.
package pagefault

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem"
	"sv39vm/kernel/mem/pmm"
	"sv39vm/kernel/mem/vmm"
	"sv39vm/kernel/proc"
	"sv39vm/kernel/uvm"
)

var (
	errNotPagedOut = &kernel.Error{Module: "pagefault", Message: "faulting address is not a paged-out mapping"}

	permMask = vmm.PTERead | vmm.PTEWrite | vmm.PTEExec | vmm.PTEUser
)

// HandlePageFault brings the page backing va back into RAM for p, evicting a
// resident victim through the active replacement policy first if p's RAM
// slots are all in use. va is rounded down to its containing page.
//
// Unlike pageFault, which remaps the faulted-in page with a hardcoded
// PTE_W|PTE_X|PTE_R|PTE_U regardless of what permissions it had before being
// swapped out, this reads the permission bits back off the paged-out entry
// itself (SetSwapSlot only ever touches the PPN field, never the low flag
// bits, so they survive a round trip to swap untouched) and restores
// exactly those.
func HandlePageFault(p *proc.Process, va uintptr) *kernel.Error {
	va = mem.PGRoundDown(va)

	pte, err := vmm.Lookup(p.Pagetable, va)
	if err != nil {
		return err
	}
	if !pte.HasFlags(vmm.PTEPaged) {
		return errNotPagedOut
	}
	swapIdx := pte.SwapSlot()
	perm := vmm.PTEFlag(*pte) & permMask

	f, err := pmm.AllocFrame()
	if err != nil {
		return err
	}

	ramIdx := p.FindFreeRAM()
	if ramIdx == -1 {
		evictSwapIdx := p.FindFreeSwap()
		ramIdx, err = uvm.EvictOneRAMSlot(p, evictSwapIdx)
		if err != nil {
			pmm.FreeFrame(f)
			return err
		}
	}

	if err := p.SwapFile.ReadSlot(swapIdx, f.Bytes()); err != nil {
		pmm.FreeFrame(f)
		return &kernel.Error{Module: "pagefault", Message: err.Error()}
	}

	if err := vmm.MapPages(p.Pagetable, va, mem.PageSize, f.Address(), perm, vmm.SpecialMap); err != nil {
		pmm.FreeFrame(f)
		return err
	}

	seed := uint32(0)
	if policy := uvm.ActivePolicy(); policy != nil {
		seed = policy.SeedCounter()
	}

	p.Swap[swapIdx] = proc.SwapSlot{}
	p.Ram[ramIdx] = proc.RAMSlot{
		State:         proc.SlotUsed,
		VAddr:         va,
		CreationTime:  proc.NextCreationTime(),
		AccessCounter: seed,
	}

	return nil
}
