// Package cachekey derives stable cache keys for compilation requests.
//
// A key is the SHA256 digest of the request's parameters encoded in a
// canonical form: strings are hashed as raw UTF-8, structured values
// (slices, maps) as JSON with lexicographically sorted map keys, and
// other scalars via their default string form. Fragments are
// concatenated in argument order, so the same logical request always
// produces the same key while any differing argument changes it.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Digest computes the cache key for an ordered sequence of values.
func Digest(args ...any) string {
	h := sha256.New()

	for _, arg := range args {
		encode(h, arg)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// encode writes the canonical encoding of a single value.
// encoding/json sorts map keys, which makes the output independent of
// insertion order inside nested mappings.
func encode(w io.Writer, arg any) {
	switch v := arg.(type) {
	case nil:
		io.WriteString(w, "null")
	case string:
		io.WriteString(w, v)
	case []byte:
		w.Write(v)
	case bool:
		io.WriteString(w, strconv.FormatBool(v))
	case int:
		io.WriteString(w, strconv.Itoa(v))
	case int64:
		io.WriteString(w, strconv.FormatInt(v, 10))
	case float64:
		io.WriteString(w, strconv.FormatFloat(v, 'g', -1, 64))
	default:
		if data, err := json.Marshal(v); err == nil {
			w.Write(data)
			return
		}

		fmt.Fprintf(w, "%v", v)
	}
}
