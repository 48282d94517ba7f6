package uvm

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sv39vm/kernel/mem"
	"sv39vm/kernel/mem/pmm"
	"sv39vm/kernel/mem/vmm"
	"sv39vm/kernel/proc"
	"sv39vm/kernel/swapfile"
)

// newTestArenaPageTable sets up the single package-level arena that backs
// both page-table frames and data frames, so src and dst page tables (and
// everything Copy allocates for dst) draw from the same backing slab.
func newTestArenaPageTable(t *testing.T, numFrames uint64) vmm.PageTable {
	t.Helper()
	pmm.Init(numFrames)

	pt, err := vmm.Create()
	require.Nil(t, err)
	return pt
}

func TestCopyDuplicatesResidentPageContents(t *testing.T) {
	src := newTestArenaPageTable(t, 16)
	dst, err := vmm.Create()
	require.Nil(t, err)

	sz, err := Alloc(nil, src, 0, uint64(mem.PageSize), vmm.PTEWrite)
	require.Nil(t, err)

	pa, err := vmm.WalkAddr(src, 0)
	require.Nil(t, err)
	mem.Memset(pa, 0x55, uintptr(mem.PageSize))

	require.Nil(t, Copy(src, dst, sz))

	dstPa, err := vmm.WalkAddr(dst, 0)
	require.Nil(t, err)
	require.NotEqual(t, pa, dstPa, "Copy must allocate a fresh frame for the child")
	require.Equal(t, byte(0x55), pmm.FrameFromAddress(dstPa).Bytes()[0])
}

func TestCopyPreservesSwapAliasForPagedOutPage(t *testing.T) {
	sf, err := swapfile.Open(filepath.Join(t.TempDir(), "proc.swap"))
	require.NoError(t, err)
	t.Cleanup(func() { sf.Close() })

	src := newTestArenaPageTable(t, 16)
	dst, err := vmm.Create()
	require.Nil(t, err)

	p := &proc.Process{Pagetable: src, Pid: 3, SwapFile: sf}
	sz, err := Alloc(p, src, 0, uint64(mem.PageSize), vmm.PTEWrite)
	require.Nil(t, err)

	SetPolicy(mustLookup(t, "NFUA"))
	t.Cleanup(func() { SetPolicy(nil) })
	_, err = EvictOneRAMSlot(p, 0)
	require.Nil(t, err)

	require.Nil(t, Copy(src, dst, sz))

	dstPte, err := vmm.Lookup(dst, 0)
	require.Nil(t, err)
	require.False(t, dstPte.Valid())
	require.True(t, dstPte.HasFlags(vmm.PTEPaged))
	require.Equal(t, 0, dstPte.SwapSlot())
}

func TestCopyRejectsNonResidentNonPagedSource(t *testing.T) {
	src := newTestArenaPageTable(t, 16)
	dst, err := vmm.Create()
	require.Nil(t, err)

	// Map only the first page; the second page's leaf table slot exists
	// (shared with the first page's leaf table) but its entry is zero.
	_, err = Alloc(nil, src, 0, uint64(mem.PageSize), vmm.PTEWrite)
	require.Nil(t, err)

	require.Equal(t, errSourceNotPresent, Copy(src, dst, uint64(mem.PageSize)*2))
}

func TestFreeUnmapsAndDestroysTables(t *testing.T) {
	pt := newTestArenaPageTable(t, 16)
	sz, err := Alloc(nil, pt, 0, uint64(mem.PageSize)*2, vmm.PTEWrite)
	require.Nil(t, err)

	Free(pt, sz)

	_, err = vmm.WalkAddr(pt, 0)
	require.NotNil(t, err)
}

func TestClearRemovesUserAccessibility(t *testing.T) {
	pt := newTestArenaPageTable(t, 16)
	_, err := Alloc(nil, pt, 0, uint64(mem.PageSize), vmm.PTEWrite)
	require.Nil(t, err)

	require.Nil(t, Clear(pt, 0))

	_, err = vmm.WalkAddr(pt, 0)
	require.NotNil(t, err, "WalkAddr requires PTEUser, which Clear just removed")
}
