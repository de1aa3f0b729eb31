package services

import (
	"fmt"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

// Placement is the top-left cell rows are written at, zero-based over data rows.
type Placement struct {
	StartRow    int
	StartColumn int
}

// Merge fits a copy of tmpl to exactly columns wide and overwrites it with
// rows starting at p. Template rows outside the written range keep their
// content; the template itself is not modified.
func Merge(tmpl *domain.Table, rows []domain.OutputRow, columns int, p Placement) (*domain.Table, error) {
	if columns <= 0 {
		return nil, fmt.Errorf("merge: column count must be positive, got %d", columns)
	}
	if p.StartRow < 0 || p.StartColumn < 0 {
		return nil, fmt.Errorf("merge: negative placement %+v", p)
	}

	out := tmpl.Clone()
	out.Header = fitHeader(out.Header, columns)
	for i := range out.Rows {
		out.Rows[i] = fitRow(out.Rows[i], columns)
	}

	need := p.StartRow + len(rows)
	for len(out.Rows) < need {
		out.Rows = append(out.Rows, make([]string, columns))
	}

	for i, row := range rows {
		target := out.Rows[p.StartRow+i]
		for j, v := range row {
			col := p.StartColumn + j
			if col >= columns {
				break
			}
			target[col] = v
		}
	}
	return out, nil
}

// fitHeader pads with the first free Column_<i> names counting from 1, or truncates.
func fitHeader(header []string, columns int) []string {
	if len(header) >= columns {
		return header[:columns:columns]
	}
	taken := make(map[string]struct{}, columns)
	for _, h := range header {
		taken[h] = struct{}{}
	}
	out := make([]string, len(header), columns)
	copy(out, header)
	for i := 1; len(out) < columns; i++ {
		name := fmt.Sprintf("Column_%d", i)
		if _, ok := taken[name]; ok {
			continue
		}
		taken[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func fitRow(row []string, columns int) []string {
	if len(row) >= columns {
		return row[:columns:columns]
	}
	out := make([]string, columns)
	copy(out, row)
	return out
}
