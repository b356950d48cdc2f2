package inventory

import (
	"sort"
	"strings"

	"dnogen/pkg/lerg"
)

// Condense collapses unassigned NPA-NXX-B keys to their lowest common
// denominator: a bare NPA when every plan exchange of the area is fully
// open, NPA-NXX when all ten blocks of an exchange are open, and the
// full key otherwise. Keys may span areas; output order is ascending.
func Condense(keys []string) []string {
	byArea := make(map[string]map[string]map[string]struct{})
	var odd []string

	for _, key := range keys {
		parts := strings.Split(key, "-")
		if len(parts) != 3 {
			odd = append(odd, key)
			continue
		}
		area, exchange, block := parts[0], parts[1], parts[2]

		if byArea[area] == nil {
			byArea[area] = make(map[string]map[string]struct{})
		}
		if byArea[area][exchange] == nil {
			byArea[area][exchange] = make(map[string]struct{})
		}
		byArea[area][exchange][block] = struct{}{}
	}

	areas := make([]string, 0, len(byArea))
	for area := range byArea {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	var condensed []string
	for _, area := range areas {
		exchanges := byArea[area]

		if wholeAreaOpen(exchanges) {
			condensed = append(condensed, area)
			continue
		}

		names := make([]string, 0, len(exchanges))
		for exchange := range exchanges {
			names = append(names, exchange)
		}
		sort.Strings(names)

		for _, exchange := range names {
			blocks := exchanges[exchange]
			if fullyOpen(blocks) {
				condensed = append(condensed, area+"-"+exchange)
				continue
			}
			for _, block := range sortedBlocks(blocks) {
				condensed = append(condensed, area+"-"+exchange+"-"+block)
			}
		}
	}

	condensed = append(condensed, odd...)
	return condensed
}

// wholeAreaOpen reports whether the area's unassigned set covers
// exactly the 800 plan exchanges with all ten blocks each.
func wholeAreaOpen(exchanges map[string]map[string]struct{}) bool {
	plan := lerg.AllExchanges()
	if len(exchanges) != len(plan) {
		return false
	}
	for _, exchange := range plan {
		if !fullyOpen(exchanges[exchange]) {
			return false
		}
	}
	return true
}

func fullyOpen(blocks map[string]struct{}) bool {
	if len(blocks) != 10 {
		return false
	}
	for b := '0'; b <= '9'; b++ {
		if _, ok := blocks[string(b)]; !ok {
			return false
		}
	}
	return true
}
