// Package mem defines the size and address constants shared by every layer
// of the virtual memory subsystem: the page-table engine, the physical
// frame arena, and the resident-set tracker all import this package instead
// of hard-coding 4096 or the Sv39 address ceiling in more than one place.
package mem

// Size represents a memory block size in bytes.
type Size uint64

// Common memory block sizes.
const (
	Byte Size = 1
	Kb        = 1024 * Byte
	Mb        = 1024 * Kb
	Gb        = 1024 * Mb
)

const (
	// PageShift is log2(PageSize); used to convert between addresses and
	// page/frame indices.
	PageShift = 12

	// PageSize is the system's page size in bytes.
	PageSize = Size(1 << PageShift)

	// MaxVA is the canonical upper bound for an Sv39 virtual address
	// before sign extension (1 << 38).
	MaxVA = uintptr(1) << 38
)

// Pages returns the number of pages required to store a block of this size.
func (s Size) Pages() uint64 {
	pageSizeMinus1 := PageSize - 1
	return uint64((s + pageSizeMinus1) &^ pageSizeMinus1 >> PageShift)
}

// PGRoundDown rounds a virtual or physical address down to the start of the
// page that contains it.
func PGRoundDown(addr uintptr) uintptr {
	return addr &^ (uintptr(PageSize) - 1)
}

// PGRoundUp rounds a virtual or physical address up to the start of the
// next page, or itself if already page-aligned.
func PGRoundUp(addr uintptr) uintptr {
	return (addr + uintptr(PageSize) - 1) &^ (uintptr(PageSize) - 1)
}
