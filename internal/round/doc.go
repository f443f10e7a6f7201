// Package round executes one pass ("round") of a load run over the corpus.
//
// Two workers exist:
//
//   - Batched writes the corpus split by split, one batch call per split,
//     strictly in split order.
//   - PerItem launches one task per document; a rendezvous counter records
//     each finished task and the round is complete once all have reported.
//
// Write failures never stop a round. They are recorded on the round's State
// (count, first error, failed document indices) and the round carries on.
package round
