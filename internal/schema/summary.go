package schema

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultSummaryFields bounds how many fields a summary lists.
const DefaultSummaryFields = 40

// Summary renders a condensed textual description of the index, bounded
// to at most max fields, for use as context by the intent-extraction
// collaborator. Searchable fields are listed first, then aggregatable
// ones, then the rest, each group in traversal order. Presentation
// only; it has no bearing on index correctness.
func (idx *Index) Summary(max int) string {
	if max <= 0 {
		max = DefaultSummaryFields
	}

	ordered := make([]string, len(idx.paths))
	copy(ordered, idx.paths)
	rank := func(p string) int {
		f := idx.fields[p]
		switch {
		case f.Searchable:
			return 0
		case f.Aggregatable:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i]) < rank(ordered[j])
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%d fields", len(idx.paths))
	if len(ordered) > max {
		fmt.Fprintf(&b, " (showing %d)", max)
		ordered = ordered[:max]
	}
	b.WriteString(":\n")

	for _, p := range ordered {
		f := idx.fields[p]
		var traits []string
		if f.Searchable {
			traits = append(traits, "searchable")
		}
		if f.Aggregatable {
			traits = append(traits, "aggregatable")
		}
		if len(traits) > 0 {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", f.Name, f.Type, strings.Join(traits, ", "))
		} else {
			fmt.Fprintf(&b, "- %s (%s)\n", f.Name, f.Type)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
