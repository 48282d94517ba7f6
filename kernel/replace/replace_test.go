package replace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sv39vm/kernel/mem"
	"sv39vm/kernel/mem/pmm"
	"sv39vm/kernel/mem/vmm"
	"sv39vm/kernel/proc"
)

func newTestPageTable(t *testing.T, numFrames uint64) vmm.PageTable {
	t.Helper()
	pmm.Init(numFrames)

	pt, err := vmm.Create()
	require.Nil(t, err)
	return pt
}

func mapSlot(t *testing.T, pt vmm.PageTable, va uintptr) {
	t.Helper()
	f, err := pmm.AllocFrame()
	require.Nil(t, err)
	require.Nil(t, vmm.MapPages(pt, va, mem.PageSize, f.Address(), vmm.PTERead|vmm.PTEWrite|vmm.PTEUser, vmm.RegularMap))
}

func TestLookupUnknownPolicy(t *testing.T) {
	_, err := Lookup("NONE")
	require.Equal(t, ErrNoReplacementPolicy, err)

	p, err := Lookup("NFUA")
	require.Nil(t, err)
	require.Equal(t, "NFUA", p.Name())
}

func TestNFUAPicksSmallestCounter(t *testing.T) {
	pt := newTestPageTable(t, 8)

	p := &proc.Process{Pid: 3, Pagetable: pt}
	mapSlot(t, pt, 0x1000)
	mapSlot(t, pt, 0x2000)
	p.Ram[0] = proc.RAMSlot{State: proc.SlotUsed, VAddr: 0x1000, AccessCounter: 50}
	p.Ram[1] = proc.RAMSlot{State: proc.SlotUsed, VAddr: 0x2000, AccessCounter: 10}

	victim, err := NFUA{}.PickVictim(p, pt)
	require.Nil(t, err)
	require.Equal(t, 1, victim)
}

func TestLAPAPicksSmallestPopcount(t *testing.T) {
	pt := newTestPageTable(t, 8)

	p := &proc.Process{Pid: 3, Pagetable: pt}
	mapSlot(t, pt, 0x1000)
	mapSlot(t, pt, 0x2000)
	p.Ram[0] = proc.RAMSlot{State: proc.SlotUsed, VAddr: 0x1000, AccessCounter: 0xFFFFFFFF}
	p.Ram[1] = proc.RAMSlot{State: proc.SlotUsed, VAddr: 0x2000, AccessCounter: 0x00000001}

	victim, err := LAPA{}.PickVictim(p, pt)
	require.Nil(t, err)
	require.Equal(t, 1, victim)
}

func TestNFUAAgingAppliesToEveryResidentSlot(t *testing.T) {
	pt := newTestPageTable(t, 8)

	p := &proc.Process{Pid: 3, Pagetable: pt}
	mapSlot(t, pt, 0x1000)
	mapSlot(t, pt, 0x2000)
	p.Ram[0] = proc.RAMSlot{State: proc.SlotUsed, VAddr: 0x1000, AccessCounter: 0x4}
	p.Ram[1] = proc.RAMSlot{State: proc.SlotUsed, VAddr: 0x2000, AccessCounter: 0x4}

	pte, err := vmm.Lookup(pt, 0x1000)
	require.Nil(t, err)
	pte.SetFlags(vmm.PTEAccessed)

	NFUA{}.OnTick(p, pt)

	require.Equal(t, uint32(0x80000002), p.Ram[0].AccessCounter)
	require.Equal(t, uint32(0x2), p.Ram[1].AccessCounter)

	accessedPTE, err := vmm.Lookup(pt, 0x1000)
	require.Nil(t, err)
	require.False(t, accessedPTE.HasFlags(vmm.PTEAccessed))
}

func TestSCFIFOGivesSecondChance(t *testing.T) {
	pt := newTestPageTable(t, 8)

	p := &proc.Process{Pid: 3, Pagetable: pt}
	mapSlot(t, pt, 0x1000)
	mapSlot(t, pt, 0x2000)
	p.Ram[0] = proc.RAMSlot{State: proc.SlotUsed, VAddr: 0x1000, CreationTime: 1}
	p.Ram[1] = proc.RAMSlot{State: proc.SlotUsed, VAddr: 0x2000, CreationTime: 2}

	oldestPTE, err := vmm.Lookup(pt, 0x1000)
	require.Nil(t, err)
	oldestPTE.SetFlags(vmm.PTEAccessed)

	victim, err := SCFIFO{}.PickVictim(p, pt)
	require.Nil(t, err)
	require.Equal(t, 0, victim)

	require.False(t, oldestPTE.HasFlags(vmm.PTEAccessed))
}
