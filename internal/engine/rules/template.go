package rules

import (
	"crypto/md5"
	"encoding/hex"
)

// TemplateHashLen is the number of hex characters kept from the digest.
// Shorter ids collide more often; uniqueness is not guaranteed.
const TemplateHashLen = 8

// Canonicalize replaces variable substrings of body (UUIDs, numbers, quoted
// strings, hex tokens, timestamps) with fixed placeholders.
func (r *Rules) Canonicalize(body string) string {
	out := body
	for _, t := range r.Templates {
		out = ReplaceBounded(t.Pattern, out, t.Placeholder, t.Bound)
	}
	return out
}

// TemplateHash returns the short content hash of the canonicalized body.
// It depends on body alone.
func (r *Rules) TemplateHash(body string) string {
	sum := md5.Sum([]byte(r.Canonicalize(body)))
	return hex.EncodeToString(sum[:])[:TemplateHashLen]
}
