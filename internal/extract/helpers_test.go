package extract

import (
	"fmt"
	"strings"
)

const tableHeader = "#   Sample Name   Volume (µL)   Qubit (ng/µL)   Nanodrop (ng/µL)   A260/280   A260/230"

// numericLine renders one table row; the A260/230 column is dropped when with230 is false.
func numericLine(idx int, name string, with230 bool) string {
	q := 10 + float64(idx%7)
	n := 12 + float64(idx%7)
	if with230 {
		return fmt.Sprintf("%d   %s   20   %.1f   %.1f   1.85   2.05", idx, name, q, n)
	}
	return fmt.Sprintf("%d   %s   20   %.1f   %.1f   1.85", idx, name, q, n)
}

// tablePage builds a page holding the header marker followed by rows first..last.
func tablePage(preamble string, first, last int, footer string) string {
	var b strings.Builder
	if preamble != "" {
		b.WriteString(preamble)
		b.WriteString("\n")
	}
	b.WriteString(tableHeader)
	b.WriteString("\n")
	for i := first; i <= last; i++ {
		b.WriteString(numericLine(i, fmt.Sprintf("S-%03d", i), i%2 == 0))
		b.WriteString("\n")
	}
	if footer != "" {
		b.WriteString(footer)
		b.WriteString("\n")
	}
	return b.String()
}

func ptr(f float64) *float64 { return &f }
