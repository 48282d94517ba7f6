// Package proc holds the per-process resident-set bookkeeping that the
// higher layers of the paging subsystem (kernel/uvm, kernel/pagefault)
// mutate. It intentionally has no dependency on kernel/mem/vmm beyond the
// PageTable handle type, keeping the dependency graph acyclic: vmm never
// imports proc, proc never imports uvm.
package proc

import (
	"sync"

	"sv39vm/kernel"
	"sv39vm/kernel/mem/vmm"
	"sv39vm/kernel/swapfile"
)

var errNoFreeSwapSlot = &kernel.Error{Module: "proc", Message: "no free swap slot available"}

// MaxPsycPages bounds how many of a process's pages may be resident in RAM
// at once; the remainder must live in its swap file. Grounded on the
// original's MAX_PSYC_PAGES.
const MaxPsycPages = 16

// pagedPidFloor matches the original's "pid > 2" exemption for init and the
// shell: those two processes are never subject to paging bookkeeping.
const pagedPidFloor = 2

// SlotState describes whether a RAM or swap slot is in use.
type SlotState int

const (
	SlotFree SlotState = iota
	SlotUsed
)

// RAMSlot records one page resident in RAM.
type RAMSlot struct {
	State         SlotState
	VAddr         uintptr
	CreationTime  uint64
	AccessCounter uint32
}

// SwapSlot records one page evicted to the process's swap file.
type SwapSlot struct {
	State SlotState
	VAddr uintptr
}

// Process is the paging subsystem's view of a process: its address space
// root and the two-tier resident-set tables that track which of its pages
// are in RAM versus swapped out.
type Process struct {
	Pagetable vmm.PageTable
	Pid       int
	Sz        uint64

	Ram  [MaxPsycPages]RAMSlot
	Swap [MaxPsycPages]SwapSlot

	SwapFile *swapfile.File
}

// Paged reports whether this process is subject to paging bookkeeping at
// all; Pid <= 2 (init, the shell) are exempt, matching the original's
// "p->pid > 2" guard around every ram[]/swaps[] mutation.
func (p *Process) Paged() bool {
	return p.Pid > pagedPidFloor
}

// FindFreeRAM returns the index of a free RAM slot, or -1 if none exists.
func (p *Process) FindFreeRAM() int {
	for i := range p.Ram {
		if p.Ram[i].State == SlotFree {
			return i
		}
	}
	return -1
}

// FindFreeSwap returns the index of a free swap slot. It panics if none
// exists: the slot-accounting invariant maintained by kernel/uvm guarantees
// a swap slot is always available whenever a RAM slot is not, so reaching
// this case means that invariant has already been violated elsewhere.
func (p *Process) FindFreeSwap() int {
	for i := range p.Swap {
		if p.Swap[i].State == SlotFree {
			return i
		}
	}
	kernel.Panic(errNoFreeSwapSlot)
	return -1
}

// ClearResident clears any Ram or Swap slot bookkeeping this process holds
// for virtual address va. It satisfies vmm.ResidentTracker. Unlike the
// original's uvmunmap cleanup, which clears swaps[i] at the same index i as
// the matching ram[i] (coupling two otherwise-independent tables), this
// scans each table independently: invariant P1 (exactly one of a Ram slot
// or a Swap slot is Used for any mapped VA) already guarantees at most one
// entry in each table can match.
func (p *Process) ClearResident(va uintptr) {
	if !p.Paged() {
		return
	}
	for i := range p.Ram {
		if p.Ram[i].State == SlotUsed && p.Ram[i].VAddr == va {
			p.Ram[i] = RAMSlot{}
		}
	}
	for i := range p.Swap {
		if p.Swap[i].State == SlotUsed && p.Swap[i].VAddr == va {
			p.Swap[i] = SwapSlot{}
		}
	}
}

// clockState is the process-global monotonic counter backing CreationTime.
// A plain mutex with no lazy-init guard replaces the original's racy
// "next < 2" first-caller initialization check: the zero value of
// sync.Mutex is already a valid, ready-to-use lock, so there is no window
// in which two callers can race to initialize it.
var clockState struct {
	mu   sync.Mutex
	next uint64
}

func init() {
	clockState.next = 1
}

// NextCreationTime returns the next value of the monotonic counter used to
// timestamp RAM slot acquisition, for SCFIFO's ascending-age ordering.
func NextCreationTime() uint64 {
	clockState.mu.Lock()
	defer clockState.mu.Unlock()
	t := clockState.next
	clockState.next++
	return t
}
