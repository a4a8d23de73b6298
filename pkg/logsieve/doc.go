// Package logsieve reduces a large capture of structured logs to the few
// windows most relevant to a free-text question, ready to hand to a language
// model.
//
// Quick start:
//
//	s, err := logsieve.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	entries, err := s.LoadFile("logs.ndjson")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range s.Filter(entries, "checkout 500 errors", 5) {
//	    fmt.Printf("%.1f %s\n", w.Score, w.Summary)
//	}
//
// A Sieve holds no per-call state and is safe for concurrent use. Filtering
// the same entries with the same query always returns the same result.
package logsieve
