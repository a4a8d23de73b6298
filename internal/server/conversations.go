package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/crimson-sun/logsieve/internal/analysis"
	"github.com/crimson-sun/logsieve/internal/model"
)

// conversation is the state kept between requests sharing a conversation id.
type conversation struct {
	history  []analysis.Message
	digest   model.Digest
	initial  string // first analysis response
	analyzed bool
}

// conversations is an in-memory conversation store. Nothing survives a
// restart.
type conversations struct {
	mu    sync.Mutex
	limit int
	byID  map[string]*conversation
}

func newConversations(historyLimit int) *conversations {
	return &conversations{limit: historyLimit, byID: make(map[string]*conversation)}
}

// newID returns a short random conversation id.
func newID() string {
	return uuid.NewString()[:8]
}

// snapshot returns a copy of the conversation, and whether logs were already
// analyzed for it.
func (s *conversations) snapshot(id string) (conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return conversation{}, false
	}
	cp := *c
	cp.history = append([]analysis.Message(nil), c.history...)
	return cp, c.analyzed
}

// setAnalyzed records the digest and first response of a conversation. A
// conversation is analyzed once; later calls keep the first result.
func (s *conversations) setAnalyzed(id string, d model.Digest, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.get(id)
	if c.analyzed {
		return
	}
	c.digest = d
	c.initial = response
	c.analyzed = true
}

// appendExchange adds a user/assistant exchange, keeping the most recent
// messages up to the history limit.
func (s *conversations) appendExchange(id, query, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.get(id)
	c.history = append(c.history,
		analysis.Message{Role: analysis.RoleUser, Content: query},
		analysis.Message{Role: analysis.RoleAssistant, Content: response},
	)
	if s.limit > 0 && len(c.history) > s.limit {
		c.history = append([]analysis.Message(nil), c.history[len(c.history)-s.limit:]...)
	}
}

// delete drops a conversation and reports whether it existed.
func (s *conversations) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byID[id]
	delete(s.byID, id)
	return ok
}

func (s *conversations) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// get returns the conversation for id, creating it. Caller must hold s.mu.
func (s *conversations) get(id string) *conversation {
	c, ok := s.byID[id]
	if !ok {
		c = &conversation{}
		s.byID[id] = c
	}
	return c
}
