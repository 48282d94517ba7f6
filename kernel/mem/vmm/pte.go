package vmm

import "sv39vm/kernel/mem/pmm"

// PTE is a single Sv39 page table entry: a physical page number plus flag
// bits. When PTEPaged is set the entry does not address RAM at all; its PPN
// field instead holds the index of the slot in the owning process's swap
// file that backs this page (see kernel/proc and kernel/swapfile).
type PTE uint64

// Valid reports whether the entry's present bit is set.
func (e PTE) Valid() bool {
	return e&PTE(PTEValid) != 0
}

// HasFlags returns true if every bit in flags is set on the entry.
func (e PTE) HasFlags(flags PTEFlag) bool {
	return uint64(e)&uint64(flags) == uint64(flags)
}

// HasAnyFlag returns true if at least one bit in flags is set on the entry.
func (e PTE) HasAnyFlag(flags PTEFlag) bool {
	return uint64(e)&uint64(flags) != 0
}

// SetFlags sets the given bits, leaving the rest of the entry untouched.
func (e *PTE) SetFlags(flags PTEFlag) {
	*e = PTE(uint64(*e) | uint64(flags))
}

// ClearFlags clears the given bits, leaving the rest of the entry untouched.
func (e *PTE) ClearFlags(flags PTEFlag) {
	*e = PTE(uint64(*e) &^ uint64(flags))
}

// Frame returns the physical frame this entry points to. The result is
// meaningless if PTEPaged is set.
func (e PTE) Frame() pmm.Frame {
	return pmm.Frame(uint64(e) >> ppnShift)
}

// flagBits masks the low bits of a PTE that hold flags rather than a PPN or
// swap slot index.
const flagBits = PTE(1<<ppnShift - 1)

// SetFrame replaces the entry's physical page number, leaving its flags
// untouched.
func (e *PTE) SetFrame(f pmm.Frame) {
	*e = (*e & flagBits) | PTE(uint64(f)<<ppnShift)
}

// SwapSlot returns the swap slot index encoded in a paged-out entry.
func (e PTE) SwapSlot() int {
	return int(uint64(e) >> ppnShift)
}

// SetSwapSlot marks the entry as paged out and records which swap slot holds
// its contents. Callers are expected to have already cleared PTEValid;
// every other flag bit is kept as it is.
func (e *PTE) SetSwapSlot(slot int) {
	*e = (*e & flagBits) | PTE(uint64(slot)<<ppnShift)
	e.SetFlags(PTEPaged)
}
