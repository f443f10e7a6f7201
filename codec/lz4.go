package codec

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 compresses payloads into LZ4 frames.
//
// The frame format is used instead of raw blocks so stored objects can be
// read back with the lz4 command line tool.
type LZ4 struct{}

// Encode appends the LZ4 frame for src to dst.
func (LZ4) Encode(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst)

	w := lz4.NewWriter(buf)
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode appends the decompressed content of the LZ4 frame src to dst.
func (LZ4) Decode(dst, src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(dst)
	if _, err := io.Copy(buf, lz4.NewReader(bytes.NewReader(src))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Name returns "lz4".
func (LZ4) Name() string { return "lz4" }

// ContentEncoding returns "lz4".
func (LZ4) ContentEncoding() string { return "lz4" }
