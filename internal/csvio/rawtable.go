package csvio

// RawTable holds untyped records as read from the source file: a header row
// and column-major string data. It carries no invariants; the cleaning stage
// types and filters it.
type RawTable struct {
	headers []string
	columns [][]string
	index   map[string]int
}

func newRawTable(headers []string, columns [][]string) *RawTable {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, exists := index[h]; !exists {
			index[h] = i
		}
	}
	return &RawTable{headers: headers, columns: columns, index: index}
}

// Headers returns the header row in input order.
func (t *RawTable) Headers() []string {
	return append([]string(nil), t.headers...)
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0])
}

// Width returns the number of columns.
func (t *RawTable) Width() int {
	return len(t.headers)
}

// Column returns the raw values of the named column.
func (t *RawTable) Column(header string) ([]string, bool) {
	i, ok := t.index[header]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}
