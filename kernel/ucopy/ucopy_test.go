package ucopy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"sv39vm/kernel/mem"
	"sv39vm/kernel/mem/pmm"
	"sv39vm/kernel/mem/vmm"
)

func newTestPageTable(t *testing.T, numFrames uint64) vmm.PageTable {
	t.Helper()
	pmm.Init(numFrames)

	pt, err := vmm.Create()
	require.Nil(t, err)
	return pt
}

func mapUserPage(t *testing.T, pt vmm.PageTable, va uintptr) {
	t.Helper()
	f, err := pmm.AllocFrame()
	require.Nil(t, err)
	require.Nil(t, vmm.MapPages(pt, va, mem.PageSize, f.Address(), vmm.PTERead|vmm.PTEWrite|vmm.PTEUser, vmm.RegularMap))
}

func TestOutThenInRoundTripsWithinOnePage(t *testing.T) {
	pt := newTestPageTable(t, 4)
	mapUserPage(t, pt, 0)

	want := []byte("hello, sv39")
	require.Nil(t, CopyOut(pt, 0x10, want))

	got := make([]byte, len(want))
	require.Nil(t, CopyIn(pt, got, 0x10))
	require.Equal(t, want, got)
}

func TestOutSpansMultiplePages(t *testing.T) {
	pt := newTestPageTable(t, 5)
	mapUserPage(t, pt, 0)
	mapUserPage(t, pt, uintptr(mem.PageSize))

	want := bytes.Repeat([]byte{0x42}, 16)
	dstva := uintptr(mem.PageSize) - 8
	require.Nil(t, CopyOut(pt, dstva, want))

	got := make([]byte, len(want))
	require.Nil(t, CopyIn(pt, got, dstva))
	require.Equal(t, want, got)
}

func TestOutRejectsUnmappedAddress(t *testing.T) {
	pt := newTestPageTable(t, 4)
	require.NotNil(t, CopyOut(pt, 0, []byte("x")))
}

func TestInStringStopsAtNull(t *testing.T) {
	pt := newTestPageTable(t, 4)
	mapUserPage(t, pt, 0)

	require.Nil(t, CopyOut(pt, 0, []byte("hi\x00garbage")))

	dst := make([]byte, 32)
	n, err := CopyInString(pt, dst, 0, 32)
	require.Nil(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "hi\x00", string(dst[:n]))
}

func TestInStringFailsWithoutNullWithinMax(t *testing.T) {
	pt := newTestPageTable(t, 4)
	mapUserPage(t, pt, 0)

	require.Nil(t, CopyOut(pt, 0, bytes.Repeat([]byte{'a'}, 16)))

	dst := make([]byte, 16)
	_, err := CopyInString(pt, dst, 0, 8)
	require.Equal(t, errNullNotFound, err)
}

func TestInStringFailsWhenDestinationSmallerThanMax(t *testing.T) {
	pt := newTestPageTable(t, 4)
	mapUserPage(t, pt, 0)

	require.Nil(t, CopyOut(pt, 0, bytes.Repeat([]byte{'a'}, 16)))

	dst := make([]byte, 4)
	n, err := CopyInString(pt, dst, 0, 8)
	require.Equal(t, errDstTooSmall, err)
	require.Equal(t, 0, n)
}
