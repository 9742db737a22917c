package models

// Row is one parsed CSV row keyed by column name.
type Row map[string]string

// Table is the in-memory, ordered body of one parsed CSV file. Validation
// and transformation mutate it in place; it is discarded once rows are
// written to the record store.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the table's header includes the given column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
