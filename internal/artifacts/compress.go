package artifacts

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// CompressedSuffix is appended to an artifact key for its zstd copy.
const CompressedSuffix = ".zst"

// Compress returns a zstd-compressed copy of data. Artifacts are JSON
// and compress well; the compressed copies exist for cheap transfer to
// the presentation layer, the plain files remain the source of truth.
func Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	defer enc.Close()

	return enc.EncodeAll(data, nil), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}
