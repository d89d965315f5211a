package transmission

import (
	"strings"

	"github.com/s0up4200/transmission-rest/status"
)

// Column offsets of a transmission-remote --list data row, end exclusive.
// An end of -1 means the rest of the line.
var (
	colSlot   = column{0, 4}
	colDone   = column{7, 11}
	colHave   = column{12, 22}
	colETA    = column{24, 32}
	colUp     = column{34, 40}
	colDown   = column{42, 48}
	colRatio  = column{50, 55}
	colStatus = column{57, 69}
	colName   = column{70, -1}
)

type column struct {
	start int
	end   int
}

func (c column) from(line string) string {
	return strings.TrimSpace(Column(line, c.start, c.end))
}

// Column returns line[start:end] clamped to the bounds of line. An end below
// zero means the end of the line. It returns "" when start is past the end of
// the line or start >= end, and never panics.
func Column(line string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end < 0 || end > len(line) {
		end = len(line)
	}
	if start >= end {
		return ""
	}
	return line[start:end]
}

// IsDataRow reports whether line is a slot row. Rows are indented; headers and
// footers start in the first column.
func IsDataRow(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

// ParseRow cuts one data row into a slot. Short rows yield empty fields.
func ParseRow(line string) status.Slot {
	return status.Slot{
		ID:     status.SlotID(colSlot.from(line)),
		Done:   colDone.from(line),
		Have:   colHave.from(line),
		ETA:    colETA.from(line),
		Up:     colUp.from(line),
		Down:   colDown.from(line),
		Ratio:  colRatio.from(line),
		Status: colStatus.from(line),
		Name:   colName.from(line),
	}
}

// ParseTable converts the listing text into slots, preserving row order.
func ParseTable(text string) []status.Slot {
	slots := make([]status.Slot, 0)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !IsDataRow(line) {
			continue
		}
		slots = append(slots, ParseRow(line))
	}
	return slots
}
