package generator

import (
	"strconv"

	"github.com/bobmcallan/api2mcp/internal/diag"
)

// Dedupe makes identifiers unique in encounter order. The first occurrence
// keeps its identifier and later ones get _2, _3, and so on.
func Dedupe(ids []string) []string {
	out := make([]string, len(ids))
	taken := make(map[string]bool, len(ids))
	counts := make(map[string]int, len(ids))
	for i, id := range ids {
		counts[id]++
		candidate := id
		if counts[id] > 1 {
			candidate = id + "_" + strconv.Itoa(counts[id])
		}
		for taken[candidate] {
			counts[id]++
			candidate = id + "_" + strconv.Itoa(counts[id])
		}
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}

// duplicateNames reports tools sharing a visible name. Only the first is
// reachable once registered.
func duplicateNames(tools []Tool) []diag.Diagnostic {
	var diags []diag.Diagnostic
	first := make(map[string]string, len(tools))
	for _, t := range tools {
		if owner, ok := first[t.Name]; ok {
			diags = append(diags, diag.DuplicateName(t.Name, owner, t.Identifier))
			continue
		}
		first[t.Name] = t.Identifier
	}
	return diags
}
