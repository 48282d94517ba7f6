// Package replace implements the page-replacement policies that pick which
// resident page to evict when a process runs out of RAM slots. The original
// kernel selects one of these at compile time via #if NFUA/#if SCFIFO/#if
// LAPA; this package instead models policy selection as a small capability
// interface so all three can live in the same binary and be exercised by the
// same test suite, per the source material's own re-architecture note.
package replace

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem/vmm"
	"sv39vm/kernel/proc"
)

// Policy picks eviction victims and ages access state on each tick.
type Policy interface {
	// Name identifies the policy, used as its Registry key.
	Name() string

	// SeedCounter returns the AccessCounter a newly acquired RAM slot
	// should start with.
	SeedCounter() uint32

	// PickVictim returns the index of the Ram slot to evict.
	PickVictim(p *proc.Process, pt vmm.PageTable) (int, *kernel.Error)

	// OnTick ages every resident slot's access state; called from
	// kernel/uvm's UpdateCounters.
	OnTick(p *proc.Process, pt vmm.PageTable)
}

// ErrNoReplacementPolicy is returned by Lookup for a name with no registered
// policy (the original's "Unrecognized paging algorithm" panic in
// findpagetoswap, made a named sentinel here). An eviction attempted with no
// policy installed fails in kernel/uvm with ErrNoPolicyConfigured instead.
var ErrNoReplacementPolicy = &kernel.Error{Module: "replace", Message: "unrecognized replacement policy"}

// Registry holds every usable Policy, keyed by Name(). "NONE" (disabling
// paging entirely) is deliberately absent; looking it up is expected to
// return ErrNoReplacementPolicy.
var Registry = map[string]Policy{}

func register(p Policy) {
	Registry[p.Name()] = p
}

func init() {
	register(NFUA{})
	register(LAPA{})
	register(SCFIFO{})
}

// Lookup returns the policy registered under name, or ErrNoReplacementPolicy.
func Lookup(name string) (Policy, *kernel.Error) {
	p, ok := Registry[name]
	if !ok {
		return nil, ErrNoReplacementPolicy
	}
	return p, nil
}

// ageSlot applies the canonical NFU aging rule shared by NFUA and LAPA: every
// resident slot's counter is shifted right by one each tick; a slot whose
// PTE has been accessed since the last tick additionally has its top bit set
// before the next shift and has its PTE_A bit cleared. The original source
// only ages accessed pages (an asymmetry the specification flags as a
// likely bug); this implementation ages every resident slot unconditionally,
// which is the behavior the specification calls for by default.
func ageSlot(p *proc.Process, pt vmm.PageTable, i int) {
	pte, err := vmm.Lookup(pt, p.Ram[i].VAddr)
	if err != nil {
		return
	}

	counter := p.Ram[i].AccessCounter
	if pte.HasFlags(vmm.PTEAccessed) {
		pte.ClearFlags(vmm.PTEAccessed)
		counter = (counter >> 1) | 0x80000000
	} else {
		counter >>= 1
	}
	p.Ram[i].AccessCounter = counter
}
