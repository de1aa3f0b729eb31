package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/hrsync/modules/hris/domain"
)

func templateOf(columns, rows int) *domain.Table {
	t := &domain.Table{}
	for c := 0; c < columns; c++ {
		t.Header = append(t.Header, fmt.Sprintf("H%d", c))
	}
	for r := 0; r < rows; r++ {
		row := make([]string, columns)
		for c := range row {
			row[c] = fmt.Sprintf("t%d.%d", r, c)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func outputRows(n, width int) []domain.OutputRow {
	out := make([]domain.OutputRow, n)
	for i := range out {
		out[i] = make(domain.OutputRow, width)
		for j := range out[i] {
			out[i][j] = fmt.Sprintf("v%d.%d", i, j)
		}
	}
	return out
}

func TestMerge_ColumnInvariant(t *testing.T) {
	const width = 5
	const templateRows = 3
	for _, templateCols := range []int{3, 5, 8} {
		for _, n := range []int{0, 1, 7} {
			t.Run(fmt.Sprintf("cols=%d rows=%d", templateCols, n), func(t *testing.T) {
				tmpl := templateOf(templateCols, templateRows)
				out, err := Merge(tmpl, outputRows(n, width), width, Placement{})
				require.NoError(t, err)

				assert.Len(t, out.Header, width)
				assert.Len(t, out.Rows, max(templateRows, n))
				for _, row := range out.Rows {
					assert.Len(t, row, width)
				}
				assert.Len(t, tmpl.Header, templateCols, "template is not modified")
			})
		}
	}
}

func TestMerge_PositionalOverwrite(t *testing.T) {
	tmpl := templateOf(4, 4)
	rows := outputRows(2, 3)

	out, err := Merge(tmpl, rows, 4, Placement{StartRow: 1, StartColumn: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"t0.0", "t0.1", "t0.2", "t0.3"}, out.Rows[0])
	assert.Equal(t, []string{"t1.0", "v0.0", "v0.1", "v0.2"}, out.Rows[1])
	assert.Equal(t, []string{"t2.0", "v1.0", "v1.1", "v1.2"}, out.Rows[2])
	assert.Equal(t, []string{"t3.0", "t3.1", "t3.2", "t3.3"}, out.Rows[3], "rows past the written range are untouched")
	assert.Equal(t, "t1.1", tmpl.Rows[1][1])
}

func TestMerge_TruncatesWideRows(t *testing.T) {
	out, err := Merge(&domain.Table{}, outputRows(1, 6), 4, Placement{StartColumn: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "", "v0.0", "v0.1"}, out.Rows[0])
}

func TestMerge_PadsHeaderWithFreeNames(t *testing.T) {
	tmpl := &domain.Table{Header: []string{"Email", "Column_2"}}
	out, err := Merge(tmpl, nil, 4, Placement{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "Column_2", "Column_1", "Column_3"}, out.Header)
}

func TestMerge_RejectsBadInput(t *testing.T) {
	_, err := Merge(&domain.Table{}, nil, 0, Placement{})
	require.Error(t, err)
	_, err = Merge(&domain.Table{}, nil, 3, Placement{StartRow: -1})
	require.Error(t, err)
}
