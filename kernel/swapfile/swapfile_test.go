package swapfile

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sv39vm/kernel/mem"
)

func TestOpenPreallocatesAllSlots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proc.swap")

	sf, err := Open(path)
	require.NoError(t, err)
	defer sf.Close()

	info, statErr := sf.f.Stat()
	require.NoError(t, statErr)
	require.Equal(t, int64(SlotCount)*int64(mem.PageSize), info.Size())
}

func TestWriteSlotThenReadSlotRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proc.swap")
	sf, err := Open(path)
	require.NoError(t, err)
	defer sf.Close()

	want := bytes.Repeat([]byte{0xCD}, int(mem.PageSize))
	require.NoError(t, sf.WriteSlot(3, want))

	got := make([]byte, mem.PageSize)
	require.NoError(t, sf.ReadSlot(3, got))
	require.Equal(t, want, got)
}

func TestSlotsAreIndependentlyAddressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proc.swap")
	sf, err := Open(path)
	require.NoError(t, err)
	defer sf.Close()

	a := bytes.Repeat([]byte{0x11}, int(mem.PageSize))
	b := bytes.Repeat([]byte{0x22}, int(mem.PageSize))
	require.NoError(t, sf.WriteSlot(0, a))
	require.NoError(t, sf.WriteSlot(1, b))

	got := make([]byte, mem.PageSize)
	require.NoError(t, sf.ReadSlot(0, got))
	require.Equal(t, a, got)
	require.NoError(t, sf.ReadSlot(1, got))
	require.Equal(t, b, got)
}

func TestReopenTruncatesPreviouslyWrittenSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proc.swap")
	sf, err := Open(path)
	require.NoError(t, err)

	want := bytes.Repeat([]byte{0x99}, int(mem.PageSize))
	require.NoError(t, sf.WriteSlot(5, want))
	require.NoError(t, sf.Close())

	sf2, err := Open(path)
	require.NoError(t, err)
	defer sf2.Close()

	got := make([]byte, mem.PageSize)
	require.NoError(t, sf2.ReadSlot(5, got))
	require.NotEqual(t, want, got, "Open truncates the file, so a reopened swap file starts zeroed")
}
