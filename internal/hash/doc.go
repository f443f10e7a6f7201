// Package hash computes CRC32-Castagnoli (CRC32C) checksums.
//
// CRC32C is the checksum S3 accepts in the x-amz-checksum-crc32c header, and
// it is used to fingerprint a loaded corpus so that two runs can be shown to
// have written identical bytes. Go's hash/crc32 uses the SSE4.2 and ARM CRC
// instructions for this polynomial when they are available.
//
// For one-shot checksums:
//
//	sum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(doc1)
//	h.Write(doc2)
//	sum := h.Sum32()
package hash
