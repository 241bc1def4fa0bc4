// Package hasher computes the content digests recorded for encoded outputs.
package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Sum returns the xxHash64 of data as 16 hex chars. Two encodes of the
// same asset under the same budget must produce the same digest.
func Sum(data []byte) string {
	return format(xxhash.Sum64(data))
}

// SumReader computes the same digest as Sum, streaming from r.
func SumReader(r io.Reader) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return format(h.Sum64()), nil
}

func format(v uint64) string {
	return hex.EncodeToString(binary.BigEndian.AppendUint64(nil, v))
}
