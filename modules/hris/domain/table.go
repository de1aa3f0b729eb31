package domain

// OutputRow is one exported line, always exactly as wide as its schema.
type OutputRow []string

// Table is a header plus data rows, the in-memory form of a CSV template or export.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t *Table) Columns() int {
	if t == nil {
		return 0
	}
	return len(t.Header)
}

func (t *Table) Clone() *Table {
	if t == nil {
		return &Table{}
	}
	out := &Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}
