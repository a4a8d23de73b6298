// Package scorer rates windows for intrinsic importance and for relevance to
// a parsed query, and renders a one-line summary of each.
package scorer

import (
	"strings"
	"time"

	"github.com/crimson-sun/logsieve/internal/engine/rules"
	"github.com/crimson-sun/logsieve/internal/model"
)

// Importance weights.
const (
	severityWeight   = 0.5
	serverErrorBonus = 30.0
	errorTextBonus   = 20.0
	rarityCeiling    = 10
	rarityFloor      = 1

	recencyHorizon = 24.0 // hours
	recencyCeiling = 10.0
)

// Prompt-match weights.
const (
	serviceMatch = 30.0
	routeMatch   = 25.0
	methodMatch  = 20.0
	statusMatch  = 25.0
	keywordMatch = 5.0
)

// Scorer computes window scores. It holds no per-call state.
type Scorer struct {
	rules *rules.Rules
}

// New creates a Scorer.
func New(r *rules.Rules) *Scorer {
	return &Scorer{rules: r}
}

// Score fills in the importance score, prompt-match score and summary of w.
// now is the instant recency is measured against; callers scoring several
// windows in one pass should pass the same value to each.
func (s *Scorer) Score(w *model.Window, c model.Criteria, now time.Time) {
	w.ImportanceScore = s.Importance(*w, now)
	w.PromptMatchScore = PromptMatch(*w, c)
	w.Summary = s.Summary(*w)
}

// Importance sums per-entry severity, failure and rarity signals, plus a
// bonus for windows that ended within the day before now.
func (s *Scorer) Importance(w model.Window, now time.Time) float64 {
	var score float64
	for _, e := range w.Entries {
		if e.SeverityNumber != 0 {
			score += float64(e.SeverityNumber) * severityWeight
		}
		if e.Status >= 500 {
			score += serverErrorBonus
		}
		if s.rules.HasErrorText(e.Body) {
			score += errorTextBonus
		}
		count, ok := w.TemplateCounts[e.TemplateHash]
		if !ok {
			count = 1
		}
		score += float64(max(rarityCeiling-count, rarityFloor))
	}

	if !w.EndTime.IsZero() {
		hours := now.Sub(w.EndTime).Hours()
		if hours < recencyHorizon {
			score += max(recencyCeiling-hours, 0)
		}
	}
	return score
}

// PromptMatch rates how well the entries of w line up with the criteria.
func PromptMatch(w model.Window, c model.Criteria) float64 {
	var score float64
	for _, e := range w.Entries {
		if anyIn(e.ServiceName, c.Services) {
			score += serviceMatch
		}
		if e.Route != "" && anyIn(e.Route, c.Routes) {
			score += routeMatch
		}
		if e.Method != "" && contains(c.Methods, e.Method) {
			score += methodMatch
		}
		if e.Status != 0 && containsInt(c.StatusCodes, e.Status) {
			score += statusMatch
		}
		if len(c.Keywords) > 0 {
			body := strings.ToLower(e.Body)
			for _, kw := range c.Keywords {
				if strings.Contains(body, kw) {
					score += keywordMatch
				}
			}
		}
	}
	return score
}

// anyIn reports whether any of subs occurs in s.
func anyIn(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
