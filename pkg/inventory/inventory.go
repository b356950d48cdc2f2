// Package inventory folds raw LERG records into per-area block
// assignment inventories and condenses unassigned keys for output.
package inventory

import (
	"sort"

	"dnogen/pkg/lerg"
)

// Inventory is the complete assigned/unassigned mapping over one
// area's exchange-by-block space. It is built once by Aggregate and
// immutable afterwards.
type Inventory struct {
	area      string
	exchanges []string
	blocks    map[string][10]bool
	ablocks   map[string]ABlock
	assigned  int
}

// ABlock describes an exchange that carried the whole-exchange marker.
type ABlock struct {
	Exchange string

	// Numeric lists the exchange's explicitly assigned numeric blocks,
	// sorted. Empty when the marker stood alone.
	Numeric []string

	// AOnly is true when the marker stood alone, which assigns all ten
	// blocks at once.
	AOnly bool
}

// Area returns the area this inventory covers.
func (inv *Inventory) Area() string {
	return inv.area
}

// Exchanges returns the observed exchanges in ascending order.
func (inv *Inventory) Exchanges() []string {
	out := make([]string, len(inv.exchanges))
	copy(out, inv.exchanges)
	return out
}

// Size returns the full combination space: observed exchanges times ten.
func (inv *Inventory) Size() int {
	return len(inv.exchanges) * 10
}

// AssignedCount returns how many blocks in the space are assigned.
func (inv *Inventory) AssignedCount() int {
	return inv.assigned
}

// UnassignedCount returns how many blocks in the space are unassigned.
func (inv *Inventory) UnassignedCount() int {
	return inv.Size() - inv.assigned
}

// BlockAssigned reports whether one numeric block is assigned. Unknown
// exchanges and non-numeric blocks are never assigned.
func (inv *Inventory) BlockAssigned(exchange, block string) bool {
	flags, ok := inv.blocks[exchange]
	if !ok || len(block) != 1 || block[0] < '0' || block[0] > '9' {
		return false
	}
	return flags[block[0]-'0']
}

// Assigned returns the assigned NPA-NXX-B keys in ascending order.
func (inv *Inventory) Assigned() []string {
	return inv.keys(true)
}

// Unassigned returns the unassigned NPA-NXX-B keys in ascending order.
func (inv *Inventory) Unassigned() []string {
	return inv.keys(false)
}

func (inv *Inventory) keys(assigned bool) []string {
	var out []string
	for _, exchange := range inv.exchanges {
		flags := inv.blocks[exchange]
		for b := 0; b < 10; b++ {
			if flags[b] == assigned {
				out = append(out, inv.area+"-"+exchange+"-"+string(rune('0'+b)))
			}
		}
	}
	return out
}

// PlanUnassigned returns the unassigned keys over the area's full
// numbering-plan space: every plan exchange (200-999) crossed with
// every block, minus the assigned blocks. Exchanges the feed never
// mentioned are entirely unassigned here, which is what downstream
// blocking lists need; observed-space counts stay in AssignedCount and
// UnassignedCount.
func (inv *Inventory) PlanUnassigned() []string {
	var out []string
	for _, exchange := range lerg.AllExchanges() {
		flags := inv.blocks[exchange]
		for b := 0; b < 10; b++ {
			if !flags[b] {
				out = append(out, inv.area+"-"+exchange+"-"+string(rune('0'+b)))
			}
		}
	}
	return out
}

// PlanSize returns the full numbering-plan space for one area.
func (inv *Inventory) PlanSize() int {
	return len(lerg.AllExchanges()) * 10
}

// ABlockExchanges returns the exchanges that carried the A marker, in
// ascending exchange order.
func (inv *Inventory) ABlockExchanges() []ABlock {
	out := make([]ABlock, 0, len(inv.ablocks))
	for _, ab := range inv.ablocks {
		out = append(out, ab)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Exchange < out[j].Exchange })
	return out
}
