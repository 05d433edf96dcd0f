// Package signature produces and checks the X-Signature header exchanged with
// the payment gateway: uppercase hex HMAC-SHA256 over the canonical JSON form
// of a payload.
package signature

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

var ErrMismatch = errors.New("signature mismatch")

// CanonicalJSON re-encodes v with object keys sorted, no insignificant
// whitespace and no HTML escaping. Output is pure ASCII: every rune from
// U+007F up is written as a lowercase \uXXXX escape, astral runes as a
// surrogate pair. Numbers in raw JSON input keep their original literal.
func CanonicalJSON(v any) ([]byte, error) {
	raw, ok := v.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("encode canonical payload: %w", err)
	}

	return escapeNonASCII(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// escapeNonASCII rewrites encoder output so it matches the gateway's
// ASCII-only JSON. Non-ASCII bytes only occur inside string literals.
func escapeNonASCII(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] < utf8.RuneSelf && b[i] != 0x7f {
		i++
	}
	if i == len(b) {
		return b
	}

	out := make([]byte, 0, len(b)+len(b)/2)
	out = append(out, b[:i]...)
	for i < len(b) {
		r, size := utf8.DecodeRune(b[i:])
		i += size
		switch {
		case r < 0x7f:
			out = append(out, byte(r))
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, hi, lo)
		default:
			out = fmt.Appendf(out, `\u%04x`, r)
		}
	}
	return out
}

// Sign returns the signature of payload, which is either raw JSON bytes or a
// value to be marshalled.
func Sign(secret string, payload any) (string, error) {
	canonical, err := CanonicalJSON(payload)
	if err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(mac(secret, canonical))), nil
}

// Verify checks header against the signature of the raw body in constant time.
func Verify(secret string, body []byte, header string) error {
	canonical, err := CanonicalJSON(body)
	if err != nil {
		return err
	}

	got, err := hex.DecodeString(strings.TrimSpace(header))
	if err != nil || len(got) == 0 {
		return ErrMismatch
	}

	if !hmac.Equal(mac(secret, canonical), got) {
		return ErrMismatch
	}
	return nil
}

func mac(secret string, data []byte) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(data)
	return h.Sum(nil)
}
