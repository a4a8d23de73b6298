package engine

import (
	"sort"

	"github.com/crimson-sun/logsieve/internal/model"
)

// Rank orders windows by descending combined score and keeps the first
// limit. Equal scores keep their input order. The input slice is reordered
// in place.
func Rank(windows []model.Window, limit int) []model.Window {
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Score() > windows[j].Score()
	})
	if limit >= 0 && len(windows) > limit {
		windows = windows[:limit]
	}
	return windows
}
