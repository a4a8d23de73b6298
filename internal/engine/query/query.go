// Package query turns a free-text question about logs into structured
// matching criteria.
package query

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/logsieve/internal/engine/rules"
	"github.com/crimson-sun/logsieve/internal/model"
)

var (
	routeRe  = regexp.MustCompile(`/[\p{L}\p{N}_\-./]+`)
	methodRe = regexp.MustCompile(`GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS`)
	userRe   = regexp.MustCompile(`user[:\s]+([\p{L}\p{N}_]+)`)
	statusRe = regexp.MustCompile(`[45][0-9]{2}`)
	wordRe   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// minKeywordLen is the shortest free keyword kept, in runes.
const minKeywordLen = 3

// Parser extracts criteria from queries. It is stateless.
type Parser struct {
	rules *rules.Rules
}

// New creates a Parser.
func New(r *rules.Rules) *Parser {
	return &Parser{rules: r}
}

// Parse derives criteria from q. Every list keeps the order in which its
// items occur in the query; duplicates are kept.
func (p *Parser) Parse(q string) model.Criteria {
	q = norm.NFC.String(q)
	lower := strings.ToLower(q)

	c := model.Criteria{
		Routes:  routeRe.FindAllString(q, -1),
		Methods: rules.FindAllBounded(methodRe, strings.ToUpper(q), rules.Word),
	}

	for _, m := range userRe.FindAllStringSubmatch(lower, -1) {
		c.UserIDs = append(c.UserIDs, m[1])
	}
	for _, s := range rules.FindAllBounded(statusRe, q, rules.Word) {
		code, _ := strconv.Atoi(s)
		c.StatusCodes = append(c.StatusCodes, code)
	}
	for _, svc := range p.rules.Services {
		if containsAny(lower, svc.Keywords) {
			c.Services = append(c.Services, svc.Tag)
		}
	}
	c.ErrorIndicators = containsAny(lower, p.rules.ErrorKeywords)
	c.TimeRecent = containsAny(lower, p.rules.RecencyKeywords)

	for _, w := range wordRe.FindAllString(lower, -1) {
		if p.rules.IsStopWord(w) || utf8.RuneCountInString(w) < minKeywordLen {
			continue
		}
		c.Keywords = append(c.Keywords, w)
	}
	return c
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
