package codec

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Zstd compresses payloads into standard zstd frames.
type Zstd struct{}

// Encode appends the zstd frame for src to dst.
func (Zstd) Encode(dst, src []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, err
	}
	defer zstdEncoderPool.Put(enc)

	return enc.EncodeAll(src, dst), nil
}

// Decode appends the decompressed content of the zstd frame src to dst.
func (Zstd) Decode(dst, src []byte) ([]byte, error) {
	dec, err := getZstdDecoder()
	if err != nil {
		return nil, err
	}
	defer zstdDecoderPool.Put(dec)

	return dec.DecodeAll(src, dst)
}

// Name returns "zstd".
func (Zstd) Name() string { return "zstd" }

// ContentEncoding returns "zstd".
func (Zstd) ContentEncoding() string { return "zstd" }
