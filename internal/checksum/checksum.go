// Package checksum computes content digests for uploaded blobs and derives
// the content-addressed storage keys built from them. Two uploads with
// identical bytes collapse to the same key, so re-uploading is overwrite-safe.
package checksum

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Sum returns the 128-bit content digest of data as lowercase hex.
func Sum(data []byte) string {
	h := md5.Sum(data)
	return hex.EncodeToString(h[:])
}

// Key derives the storage key for a blob: "{digest}.{extension}".
func Key(digest, extension string) string {
	return digest + "." + extension
}

// Extension returns the extension tag of a display name: the segment after
// the last dot, or the whole name when it contains none. Comparisons against
// it elsewhere are exact and case-sensitive.
func Extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name
	}
	return name[idx+1:]
}

// SwapExtension replaces the extension tag of a display name, used when a
// derived artifact inherits the source file's name.
func SwapExtension(name, extension string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name + "." + extension
	}
	return name[:idx+1] + extension
}
