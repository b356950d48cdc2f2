package testutil

import (
	"fmt"
	"strconv"

	"dnogen/pkg/lerg"
)

// Area201Records builds a feed fixture for area 201 that exercises the
// whole-exchange A marker in both pure and mixed form.
//
// 802 exchanges, "100" through "901":
//   - "100".."376" (277): one A record each, so every block counts as
//     assigned through the A-only rule.
//   - "377".."774" (398): blocks 0-9 explicitly assigned. The first five
//     ("377".."381") also carry an A record, so only their explicit
//     blocks count.
//   - "775".."901" (127): blocks 0-8 assigned, leaving block 9 open.
//
// Totals: 5405 records, block space 8020, assigned 7893, unassigned 127.
func Area201Records() []lerg.Record {
	var records []lerg.Record
	for n := 100; n <= 901; n++ {
		exchange := fmt.Sprintf("%03d", n)
		switch {
		case n <= 376:
			records = append(records, assignedRecord("201", exchange, lerg.BlockA))
		case n <= 774:
			if n <= 381 {
				records = append(records, assignedRecord("201", exchange, lerg.BlockA))
			}
			for b := 0; b <= 9; b++ {
				records = append(records, assignedRecord("201", exchange, strconv.Itoa(b)))
			}
		default:
			for b := 0; b <= 8; b++ {
				records = append(records, assignedRecord("201", exchange, strconv.Itoa(b)))
			}
		}
	}
	return records
}

// Area212Records builds a smaller fixture for area 212: 209 exchanges,
// "100" through "308", fully assigned except blocks 4-9 of "308".
//
// Totals: 2084 records, block space 2090, assigned 2084, unassigned 6.
func Area212Records() []lerg.Record {
	var records []lerg.Record
	for n := 100; n <= 308; n++ {
		exchange := fmt.Sprintf("%03d", n)
		top := 9
		if n == 308 {
			top = 3
		}
		for b := 0; b <= top; b++ {
			records = append(records, assignedRecord("212", exchange, strconv.Itoa(b)))
		}
	}
	return records
}

func assignedRecord(area, exchange, block string) lerg.Record {
	return lerg.Record{Area: area, Exchange: exchange, Block: block, Status: lerg.StatusAssigned}
}
