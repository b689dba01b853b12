package chunking

import (
	"sort"
	"strings"
)

// PageTable is the ascending list of page start boundaries, built once per
// document from page-separator occurrences. An empty table means the
// document has no page structure.
type PageTable []int

// BuildPageTable records the offset of every separator occurrence, with an
// implicit leading 0 so text before the first separator counts as page 1.
// A document without separators yields a nil table.
func BuildPageTable(document, separator string) PageTable {
	if separator == "" {
		return nil
	}
	var table PageTable
	for pos := 0; ; {
		i := strings.Index(document[pos:], separator)
		if i < 0 {
			break
		}
		table = append(table, pos+i)
		pos = pos + i + len(separator)
	}
	if len(table) == 0 {
		return nil
	}
	if table[0] != 0 {
		table = append(PageTable{0}, table...)
	}
	return table
}

// PageFor returns the 1-indexed page containing the given start offset, or
// nil when the table is empty. A page number is never defaulted to 1 for
// documents without separators.
func (t PageTable) PageFor(start int) *int {
	if len(t) == 0 {
		return nil
	}
	idx := sort.SearchInts(t, start+1) - 1
	if idx < 0 {
		idx = 0
	}
	page := idx + 1
	return &page
}

// Pages is the page count implied by the table.
func (t PageTable) Pages() int {
	return len(t)
}
