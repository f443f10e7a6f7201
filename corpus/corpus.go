package corpus

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/hupe1980/docload/codec"
	"github.com/hupe1980/docload/internal/fs"
	"github.com/hupe1980/docload/internal/hash"
)

// ErrLoad is matched by every error returned from Load.
var ErrLoad = errors.New("corpus load failed")

// LoadError describes the path that could not be enumerated or read.
//
// The original underlying error can be accessed via errors.Unwrap.
type LoadError struct {
	Path  string
	cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("corpus: load %s: %v", e.Path, e.cause)
}

func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.cause} }

// DefaultExclude lists the reserved file patterns skipped by default.
var DefaultExclude = []string{"*.DS_Store"}

// Item is a single document.
type Item struct {
	ID      string
	Content []byte
}

// Corpus is an ordered, immutable sequence of items.
type Corpus struct {
	items []Item
	size  int64
	sum   uint32
	codec codec.Codec
}

// New builds a corpus from items already held in memory.
// The slice is copied; callers may reuse it.
func New(items []Item) *Corpus {
	c := &Corpus{
		items: make([]Item, len(items)),
		codec: codec.Default,
	}
	copy(c.items, items)
	c.seal()
	return c
}

// seal computes the size and checksum once the item set is final.
func (c *Corpus) seal() {
	h := hash.NewCRC32C()
	c.size = 0
	for _, it := range c.items {
		c.size += int64(len(it.Content))
		_, _ = h.Write(it.Content)
	}
	c.sum = h.Sum32()
}

// Len returns the number of items.
func (c *Corpus) Len() int { return len(c.items) }

// At returns the i-th item.
func (c *Corpus) At(i int) Item { return c.items[i] }

// Items returns the backing slice. It must be treated as read-only.
func (c *Corpus) Items() []Item { return c.items }

// Bytes returns the total payload size.
func (c *Corpus) Bytes() int64 { return c.size }

// Checksum returns the CRC32C of all payloads in order. Two runs with the
// same checksum wrote the same bytes.
func (c *Corpus) Checksum() uint32 { return c.sum }

// Codec returns the codec the payloads were encoded with.
func (c *Corpus) Codec() codec.Codec { return c.codec }

type options struct {
	fs      fs.FileSystem
	exclude []string
	codec   codec.Codec
}

// Option configures Load.
type Option func(*options)

// WithFileSystem overrides the filesystem used to read the directory.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithExclude replaces the reserved-file patterns (path.Match syntax,
// matched against the base name).
func WithExclude(patterns ...string) Option {
	return func(o *options) {
		o.exclude = patterns
	}
}

// WithCodec encodes every payload once at load time.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// Load reads every regular file in dir.
//
// Any enumeration or read failure aborts the load; a partially read corpus is
// never returned.
func Load(dir string, optFns ...Option) (*Corpus, error) {
	o := options{
		fs:      fs.Default,
		exclude: DefaultExclude,
		codec:   codec.Default,
	}
	for _, fn := range optFns {
		fn(&o)
	}

	for _, p := range o.exclude {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("corpus: invalid exclude pattern %q: %w", p, err)
		}
	}

	entries, err := o.fs.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Path: dir, cause: err}
	}

	c := &Corpus{
		items: make([]Item, 0, len(entries)),
		codec: o.codec,
	}

	for _, e := range entries {
		if e.IsDir() || excluded(e.Name(), o.exclude) {
			continue
		}

		p := filepath.Join(dir, e.Name())

		data, err := fs.ReadFile(o.fs, p)
		if err != nil {
			return nil, &LoadError{Path: p, cause: err}
		}

		content, err := o.codec.Encode(nil, data)
		if err != nil {
			return nil, &LoadError{Path: p, cause: fmt.Errorf("%s encode: %w", o.codec.Name(), err)}
		}

		c.items = append(c.items, Item{ID: e.Name(), Content: content})
	}

	c.seal()
	return c, nil
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
		// Literal suffix match, the way the reserved OS files are named.
		if !strings.ContainsAny(p, "*?[") && strings.HasSuffix(name, p) {
			return true
		}
	}
	return false
}
