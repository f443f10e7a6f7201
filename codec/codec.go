// Package codec centralizes payload encoding for loaded documents.
//
// A codec is applied exactly once, when the corpus is loaded. Every round then
// writes the already-encoded bytes, so the encoding cost never shows up in the
// measured write path.
package codec

import "fmt"

// Codec encodes/decodes document payloads.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Encode appends the encoded form of src to dst and returns the result.
	Encode(dst, src []byte) ([]byte, error)
	// Decode appends the decoded form of src to dst and returns the result.
	Decode(dst, src []byte) ([]byte, error)
	// Name returns the stable codec name used on the command line.
	Name() string
	// ContentEncoding returns the HTTP Content-Encoding token for stores that
	// record it, or "" for unencoded payloads.
	ContentEncoding() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "", "none", "identity":
		return Identity{}, true
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// Names lists the built-in codec names.
func Names() []string {
	return []string{"none", "zstd", "lz4"}
}

// MustEncode is a helper for tests.
func MustEncode(c Codec, src []byte) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Encode(nil, src)
	if err != nil {
		panic(fmt.Errorf("codec %s encode failed: %w", c.Name(), err))
	}
	return b
}

// Default is the codec used when none is configured.
var Default Codec = Identity{}
