package codepage

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInvalidSequence indicates the bytes are not well formed under the encoding.
	ErrInvalidSequence = errors.New("invalid byte sequence")

	// ErrUnknownEncoding indicates the encoding id is not in the table.
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// DecodeError reports a failed decode of one raw name under one encoding.
type DecodeError struct {
	Encoding EncodingID
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode as %s: %v", e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsValidUnicodeText reports whether raw is already well-formed UTF-8.
func IsValidUnicodeText(raw string) bool {
	return utf8.ValidString(raw)
}

// Decode interprets raw as bytes written in the code page id and returns the
// text as UTF-8. Decoders in x/text substitute U+FFFD for bytes they cannot
// map instead of failing, so a replacement rune in the output is treated as
// an invalid sequence.
func Decode(raw string, id EncodingID) (string, error) {
	entry, ok := byID[id]
	if !ok {
		return "", &DecodeError{Encoding: id, Err: ErrUnknownEncoding}
	}

	out, err := entry.enc.NewDecoder().String(raw)
	if err != nil {
		return "", &DecodeError{Encoding: id, Err: fmt.Errorf("%w: %v", ErrInvalidSequence, err)}
	}

	if !utf8.ValidString(out) || strings.ContainsRune(out, utf8.RuneError) {
		return "", &DecodeError{Encoding: id, Err: ErrInvalidSequence}
	}

	return out, nil
}

// ProposedName returns the repaired name of raw under id. Names that are
// already valid UTF-8 map to themselves.
func ProposedName(raw string, id EncodingID) (string, error) {
	if IsValidUnicodeText(raw) {
		return raw, nil
	}
	return Decode(raw, id)
}
