package font

import (
	"encoding/hex"
	"fmt"
	"path"
	"strings"
)

// obfuscatedLength is the number of leading bytes scrambled in an
// obfuscated font part
const obfuscatedLength = 32

// IsObfuscated reports whether a font part name denotes an obfuscated font
func IsObfuscated(name string) bool {
	return strings.EqualFold(path.Ext(name), ".odttf")
}

// Deobfuscate restores an obfuscated font part. The key is the GUID that
// forms the part's file name; the first 32 bytes of the data are XORed with
// the GUID bytes in reverse order. The input slice is not modified.
//
// Applying Deobfuscate twice with the same name returns the original data.
func Deobfuscate(data []byte, fontName string) ([]byte, error) {
	key, err := guidKey(fontName)
	if err != nil {
		return nil, err
	}
	if len(data) < obfuscatedLength {
		return nil, fmt.Errorf("%w: obfuscated font shorter than %d bytes", ErrInvalidFont, obfuscatedLength)
	}

	out := make([]byte, len(data))
	copy(out, data)
	for i := 0; i < obfuscatedLength; i++ {
		out[i] ^= key[len(key)-1-i%len(key)]
	}
	return out, nil
}

// guidKey extracts the 16 GUID bytes from a name such as
// "/Resources/{0B0D3B4E-7E6E-4A1E-8C40-1A3F2B0C9D11}.odttf"
func guidKey(fontName string) ([]byte, error) {
	base := path.Base(fontName)
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.Trim(base, "{}")
	base = strings.ReplaceAll(base, "-", "")

	if len(base) != 32 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGUID, fontName)
	}
	key, err := hex.DecodeString(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGUID, fontName)
	}
	return key, nil
}
