package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crimson-sun/logsieve/internal/engine/rules"
)

func TestParseHTTPQuery(t *testing.T) {
	c := New(rules.Default()).Parse("GET /checkout 500 errors")

	assert.Equal(t, []string{"/checkout"}, c.Routes)
	assert.Equal(t, []string{"GET"}, c.Methods)
	assert.Equal(t, []int{500}, c.StatusCodes)
	assert.Equal(t, []string{"cart"}, c.Services, "checkout implies cart")
	assert.True(t, c.ErrorIndicators)
	assert.False(t, c.TimeRecent)
	assert.Equal(t, []string{"get", "checkout", "500", "errors"}, c.Keywords)
}

func TestParseServicesInDictionaryOrder(t *testing.T) {
	c := New(rules.Default()).Parse("database connection issues during payment login")
	assert.Equal(t, []string{"payment", "auth", "database"}, c.Services)
	assert.False(t, c.ErrorIndicators)
}

func TestParseUserAndRecency(t *testing.T) {
	c := New(rules.Default()).Parse("recent payment service user 12345 errors")
	assert.Equal(t, []string{"12345"}, c.UserIDs)
	assert.True(t, c.TimeRecent)
	assert.True(t, c.ErrorIndicators)
	assert.Equal(t, []string{"payment"}, c.Services)
}

func TestParseMethodsCaseInsensitive(t *testing.T) {
	c := New(rules.Default()).Parse("why do post and delete calls fail")
	assert.Equal(t, []string{"POST", "DELETE"}, c.Methods)
}

func TestParseKeywordsDropStopWordsAndShortTokens(t *testing.T) {
	c := New(rules.Default()).Parse("Is the DB on fire in us-east?")
	assert.Equal(t, []string{"fire", "east"}, c.Keywords)
	assert.Equal(t, []string{"database"}, c.Services)
}

func TestParseEmpty(t *testing.T) {
	c := New(rules.Default()).Parse("")
	assert.Empty(t, c.Routes)
	assert.Empty(t, c.Methods)
	assert.Empty(t, c.Services)
	assert.Empty(t, c.Keywords)
	assert.False(t, c.ErrorIndicators)
	assert.False(t, c.TimeRecent)
}

func TestParseUnicodeKeywords(t *testing.T) {
	c := New(rules.Default()).Parse("Zahlungsfehler für café")
	assert.Equal(t, []string{"zahlungsfehler", "für", "café"}, c.Keywords)
}

func TestParseMethodsAndStatusUnicodeWordEdges(t *testing.T) {
	c := New(rules.Default()).Parse("éget and GET, then código500 or 502/503")
	assert.Equal(t, []string{"GET"}, c.Methods)
	assert.Equal(t, []int{502, 503}, c.StatusCodes)
}
