package replace

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem/vmm"
	"sv39vm/kernel/proc"
)

// NFUA (Not Frequently Used with Aging) evicts the resident slot with the
// smallest AccessCounter. Grounded on the original's aNFUA.
type NFUA struct{}

func (NFUA) Name() string { return "NFUA" }

// SeedCounter starts a freshly acquired slot at zero, matching
// p->ram[ramI].accesscounter = 0 under #if NFUA.
func (NFUA) SeedCounter() uint32 { return 0 }

var errNoResidentPages = &kernel.Error{Module: "replace", Message: "no resident page to evict"}

func (NFUA) PickVictim(p *proc.Process, pt vmm.PageTable) (int, *kernel.Error) {
	index := -1
	var minValue uint32
	for i := range p.Ram {
		if p.Ram[i].State != proc.SlotUsed {
			continue
		}
		if index == -1 || p.Ram[i].AccessCounter < minValue {
			minValue = p.Ram[i].AccessCounter
			index = i
		}
	}
	if index == -1 {
		return 0, errNoResidentPages
	}
	return index, nil
}

func (NFUA) OnTick(p *proc.Process, pt vmm.PageTable) {
	for i := range p.Ram {
		if p.Ram[i].State == proc.SlotUsed {
			ageSlot(p, pt, i)
		}
	}
}
