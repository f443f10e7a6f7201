package codec

// Identity passes payloads through unchanged.
type Identity struct{}

// Encode appends src to dst.
func (Identity) Encode(dst, src []byte) ([]byte, error) { return append(dst, src...), nil }

// Decode appends src to dst.
func (Identity) Decode(dst, src []byte) ([]byte, error) { return append(dst, src...), nil }

// Name returns "none".
func (Identity) Name() string { return "none" }

// ContentEncoding returns "".
func (Identity) ContentEncoding() string { return "" }
