package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRows renders an array as the tab-separated row-per-line dump used
// for file output and persistence.
func FormatRows(rows [][]int) string {
	var b strings.Builder
	for _, row := range rows {
		for _, v := range row {
			b.WriteString(strconv.Itoa(v))
			b.WriteByte('\t')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseRows parses a tab-separated dump back into rows and checks it against
// the factor structure in levels.
func ParseRows(text string, levels []int) ([][]int, error) {
	var rows [][]int
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\t \r")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(levels) {
			return nil, fmt.Errorf("%w: line %d has %d values, want %d",
				ErrRowMismatch, lineNo+1, len(fields), len(levels))
		}
		row := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %q is not a level index",
					ErrRowMismatch, lineNo+1, i, f)
			}
			if v < 0 || v >= levels[i] {
				return nil, fmt.Errorf("%w: line %d column %d: level %d out of range [0,%d)",
					ErrRowMismatch, lineNo+1, i, v, levels[i])
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
