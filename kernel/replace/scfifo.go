package replace

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem/vmm"
	"sv39vm/kernel/proc"
)

// SCFIFO (Second-Chance FIFO) evicts the resident slot with the oldest
// CreationTime that has not been accessed since its last pass; an accessed
// slot is given a second chance (its PTE_A bit is cleared and the search
// restarts) instead of being evicted immediately. Grounded on the
// original's aSCFIFO, including its "goto recheck" retry loop.
type SCFIFO struct{}

func (SCFIFO) Name() string { return "SCFIFO" }

// SeedCounter is unused by SCFIFO, which orders candidates by CreationTime
// instead of AccessCounter; zero is returned for interface completeness.
func (SCFIFO) SeedCounter() uint32 { return 0 }

func (SCFIFO) PickVictim(p *proc.Process, pt vmm.PageTable) (int, *kernel.Error) {
	for {
		index := -1
		var oldest uint64
		for i := range p.Ram {
			if p.Ram[i].State != proc.SlotUsed {
				continue
			}
			if index == -1 || p.Ram[i].CreationTime <= oldest {
				index = i
				oldest = p.Ram[i].CreationTime
			}
		}
		if index == -1 {
			return 0, errNoResidentPages
		}

		pte, err := vmm.Lookup(pt, p.Ram[index].VAddr)
		if err != nil {
			return 0, err
		}
		if pte.HasFlags(vmm.PTEAccessed) {
			pte.ClearFlags(vmm.PTEAccessed)
			continue
		}
		return index, nil
	}
}

// OnTick is a no-op for SCFIFO: it orders candidates by CreationTime, which
// never needs periodic aging the way NFUA/LAPA's counters do.
func (SCFIFO) OnTick(p *proc.Process, pt vmm.PageTable) {}
