package replace

import (
	"math/bits"

	"sv39vm/kernel"
	"sv39vm/kernel/mem/vmm"
	"sv39vm/kernel/proc"
)

// LAPA (Least Aged Popularity Average, the source material's own naming)
// evicts the resident slot whose AccessCounter has the smallest population
// count, ties broken by lowest counter value then lowest index. Grounded on
// the original's aLAPA, with the slot-0 popcount typo fixed: the original
// compares countSetBits(ram[0].accesscounter) on every iteration instead of
// countSetBits(ram[i].accesscounter); this implementation compares slot i.
type LAPA struct{}

func (LAPA) Name() string { return "LAPA" }

// SeedCounter starts a freshly acquired slot at all-ones, matching
// p->ram[ramI].accesscounter = 0xFFFFFFFF under #if LAPA.
func (LAPA) SeedCounter() uint32 { return 0xFFFFFFFF }

func (LAPA) PickVictim(p *proc.Process, pt vmm.PageTable) (int, *kernel.Error) {
	index := -1
	var minPopcount int
	var minValue uint32
	for i := range p.Ram {
		if p.Ram[i].State != proc.SlotUsed {
			continue
		}
		popcount := bits.OnesCount32(p.Ram[i].AccessCounter)
		switch {
		case index == -1:
		case popcount < minPopcount:
		case popcount == minPopcount && p.Ram[i].AccessCounter < minValue:
		default:
			continue
		}
		index = i
		minPopcount = popcount
		minValue = p.Ram[i].AccessCounter
	}
	if index == -1 {
		return 0, errNoResidentPages
	}
	return index, nil
}

func (LAPA) OnTick(p *proc.Process, pt vmm.PageTable) {
	for i := range p.Ram {
		if p.Ram[i].State == proc.SlotUsed {
			ageSlot(p, pt, i)
		}
	}
}
