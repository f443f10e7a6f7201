// Package corpus loads the fixed set of documents a load run replays.
//
// A Corpus is built once from a directory and never mutated afterwards, which
// is what allows every concurrently running round to read it without locking.
//
//	c, err := corpus.Load("./docs", corpus.WithCodec(codec.Zstd{}))
//	for i := range c.Len() {
//	    item := c.At(i)
//	    ...
//	}
//
// Entries are kept in directory listing order. Sub-directories and reserved
// files (OS metadata such as .DS_Store) are skipped.
package corpus
