package build

import (
	"maps"
	"slices"

	"github.com/matzehuels/brickyard/pkg/catalog"
)

// Stats summarises a collection by type and colour.
type Stats struct {
	Count   int
	ByType  map[catalog.Type]int
	ByColor map[catalog.Color]int
}

// Summarize counts pieces by type and colour.
func Summarize(ps Pieces) Stats {
	st := Stats{
		Count:   len(ps),
		ByType:  make(map[catalog.Type]int),
		ByColor: make(map[catalog.Color]int),
	}
	for _, p := range ps {
		st.ByType[p.Type]++
		st.ByColor[p.Color]++
	}
	return st
}

// Types returns the piece types present, in catalog display order.
// Types unknown to the catalog sort last, alphabetically.
func (s Stats) Types() []catalog.Type {
	order := catalog.All()
	types := slices.Collect(maps.Keys(s.ByType))
	slices.SortFunc(types, func(a, b catalog.Type) int {
		ia, ib := slices.Index(order, a), slices.Index(order, b)
		switch {
		case ia >= 0 && ib >= 0:
			return ia - ib
		case ia >= 0:
			return -1
		case ib >= 0:
			return 1
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return types
}
