// Package aggregate groups fetched records by a derived display key and
// counts the members of each group. The result feeds the admin charts.
package aggregate

// GroupCount is one bar of a chart: a category label and how many records
// fell into it.
type GroupCount struct {
	Label string `json:"label"`
	Total int    `json:"total"`
}

// Series is an ordered sequence of group counts.
type Series []GroupCount

// Count walks records once, in order, and counts them by derive(record).
// A label's position is fixed the first time it is seen; later records
// only increment its total. The returned series is never nil.
func Count[T any](records []T, derive func(T) string) Series {
	index := make(map[string]int, len(records))
	out := make(Series, 0)
	for _, rec := range records {
		key := derive(rec)
		if i, ok := index[key]; ok {
			out[i].Total++
			continue
		}
		index[key] = len(out)
		out = append(out, GroupCount{Label: key, Total: 1})
	}
	return out
}

// Sum returns the total across all groups. It equals the number of records
// that were counted.
func (s Series) Sum() int {
	n := 0
	for _, g := range s {
		n += g.Total
	}
	return n
}

// Labels returns the group labels in series order.
func (s Series) Labels() []string {
	out := make([]string, len(s))
	for i, g := range s {
		out[i] = g.Label
	}
	return out
}

// Rows exposes the series in the generic shape chart clients expect:
// one map per group keyed by the given label and value field names.
func (s Series) Rows(labelField, valueField string) []map[string]any {
	out := make([]map[string]any, len(s))
	for i, g := range s {
		out[i] = map[string]any{labelField: g.Label, valueField: g.Total}
	}
	return out
}
