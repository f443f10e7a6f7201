// Package docload drives write load against a document store.
//
// A corpus of documents is loaded from a directory once and written to the
// store a fixed number of times. Each pass is a round; every document of
// round r is stored under {uriBase}{r}/{index}.xml.
//
// # Quick Start
//
//	c, _ := corpus.Load("./docs")
//	pool := blobstore.Single(blobstore.NewMemoryStore())
//
//	job, _ := docload.New(c, pool,
//	    docload.WithMode(docload.ModeBatched),
//	    docload.WithRounds(50),
//	)
//	report, err := job.Run(ctx)
//
// # Modes
//
// ModeBatched writes a round as splits of 100 documents, one batch call per
// split, and keeps up to 30 rounds in flight. Round i+1 is started once
// fewer than 30 of the earlier rounds are still incomplete.
//
// ModePerItem writes every document of a round in its own goroutine and
// waits for all of them to report before the next round starts. Rounds are
// fully serialized.
//
// # Failures
//
// A failed write is logged and recorded in the Report; it is never retried
// and never stops the job. There are no timeouts: a write that never returns
// keeps its round, and the job, waiting until the context is canceled.
package docload
