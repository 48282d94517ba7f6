package vmm

import (
	"sv39vm/kernel"
	"sv39vm/kernel/mem/pmm"
)

var errLeafStillMapped = &kernel.Error{Module: "vmm", Message: "freewalk: leaf page still mapped"}

// Destroy recursively frees every intermediate page-table page belonging to
// pt, mirroring freewalk(). It is the caller's responsibility to have
// already unmapped (and freed, if appropriate) every leaf mapping first,
// exactly as uvmfree() calls uvmunmap() before freewalk(); Destroy panics if
// it encounters a still-present leaf entry, the same invariant freewalk()
// enforces.
func Destroy(pt PageTable) {
	destroyLevel(pt.root, pageLevels-1)
}

func destroyLevel(f pmm.Frame, level int) {
	entries := tableAt(f)

	if level > 0 {
		for i := range entries {
			pte := &entries[i]
			if !pte.Valid() {
				continue
			}
			destroyLevel(pte.Frame(), level-1)
			*pte = 0
		}
	} else {
		for _, pte := range entries {
			if pte.Valid() {
				kernel.Panic(errLeafStillMapped)
			}
		}
	}

	pmm.FreeFrame(f)
}
