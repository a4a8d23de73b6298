package dedup

import "github.com/crimson-sun/logsieve/internal/model"

// Deduplicate collapses entries that share a template hash, keeping the
// first occurrence of each in order. TemplateCounts records how many entries
// carried each hash before collapsing.
func Deduplicate(w model.Window) model.Window {
	counts := make(map[string]int, len(w.Entries))
	unique := make([]model.LogEntry, 0, len(w.Entries))

	for _, e := range w.Entries {
		if counts[e.TemplateHash] == 0 {
			unique = append(unique, e)
		}
		counts[e.TemplateHash]++
	}

	w.Entries = unique
	w.TemplateCounts = counts
	return w
}

// DeduplicateAll applies Deduplicate to every window in place.
func DeduplicateAll(windows []model.Window) {
	for i := range windows {
		windows[i] = Deduplicate(windows[i])
	}
}

// Repeated returns how many entries were collapsed into an earlier entry
// with the same template.
func Repeated(w model.Window) int {
	total := 0
	for _, n := range w.TemplateCounts {
		total += n
	}
	return total - len(w.TemplateCounts)
}
