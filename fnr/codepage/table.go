// Package codepage holds the process-wide table of legacy code pages a mangled
// file name may have been written in, and decodes raw names under them.
//
// The table is built once at package initialisation and never mutated, so it
// may be read from any number of goroutines without locking.
package codepage

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// EncodingID names one code page, e.g. "CP949".
type EncodingID string

func (id EncodingID) String() string { return string(id) }

// Entry is one static record of the table.
type Entry struct {
	ID    EncodingID
	Label string
	// Selectable marks the code pages offered as a bulk repair choice.
	Selectable bool

	enc encoding.Encoding
}

// Encoding returns the decoder backing the entry.
func (e Entry) Encoding() encoding.Encoding { return e.enc }

// candidateTable lists the code pages in the order candidates are tried.
// CP1252 comes first since it is the fallback for unknown locales.
var candidateTable = []Entry{
	{ID: "CP1252", Label: "Western European latin - CP1252", Selectable: true, enc: charmap.Windows1252},
	{ID: "CP936", Label: "Chinese simplified - CP936", Selectable: true, enc: simplifiedchinese.GBK},
	{ID: "CP1250", Label: "Central European latin - CP1250", Selectable: true, enc: charmap.Windows1250},
	{ID: "CP932", Label: "Japanese - CP932", Selectable: true, enc: japanese.ShiftJIS},
	{ID: "CP949", Label: "Korean - CP949", Selectable: true, enc: korean.EUCKR},
	{ID: "CP950", Label: "Chinese traditional - CP950", Selectable: true, enc: traditionalchinese.Big5},
	{ID: "CP1251", Label: "Cyrillic - CP1251", Selectable: true, enc: charmap.Windows1251},
	{ID: "CP1253", Label: "Greek - CP1253", Selectable: true, enc: charmap.Windows1253},
	{ID: "CP1254", Label: "Turkish - CP1254", Selectable: true, enc: charmap.Windows1254},
	{ID: "CP1255", Label: "Hebrew - CP1255", Selectable: true, enc: charmap.Windows1255},
	{ID: "CP1256", Label: "Arabic - CP1256", Selectable: true, enc: charmap.Windows1256},
	{ID: "CP1257", Label: "Baltic - CP1257", Selectable: true, enc: charmap.Windows1257},
	{ID: "CP1258", Label: "Vietnamese - CP1258", Selectable: true, enc: charmap.Windows1258},
	{ID: "CP874", Label: "Thai - CP874", Selectable: true, enc: charmap.Windows874},
	{ID: "CP850", Label: "Multilingual latin 1 - CP850", enc: charmap.CodePage850},
	{ID: "CP852", Label: "Slavic latin 2 - CP852", enc: charmap.CodePage852},
	{ID: "CP855", Label: "Cyrillic - CP855", enc: charmap.CodePage855},
	{ID: "CP858", Label: "Multilingual latin 1 with euro - CP858", enc: charmap.CodePage858},
	{ID: "CP860", Label: "Portuguese - CP860", enc: charmap.CodePage860},
	{ID: "CP863", Label: "French Canadian - CP863", enc: charmap.CodePage863},
	{ID: "CP865", Label: "Nordic - CP865", enc: charmap.CodePage865},
	{ID: "CP862", Label: "Hebrew - CP862", enc: charmap.CodePage862},
	{ID: "CP866", Label: "Cyrillic - CP866", enc: charmap.CodePage866},
	{ID: "CP437", Label: "IBM PC - CP437", enc: charmap.CodePage437},
}

// localeOnlyTable holds code pages reachable only as a locale default.
var localeOnlyTable = []Entry{
	{ID: "CP28604", Label: "Celtic - ISO-8859-14", enc: charmap.ISO8859_14},
}

// selectableOrder is the order bulk repair choices are presented in.
var selectableOrder = []EncodingID{
	"CP874", "CP932", "CP936", "CP949", "CP950",
	"CP1250", "CP1251", "CP1252", "CP1253", "CP1254",
	"CP1255", "CP1256", "CP1257", "CP1258",
}

var byID = func() map[EncodingID]Entry {
	m := make(map[EncodingID]Entry, len(candidateTable)+len(localeOnlyTable))
	for _, e := range candidateTable {
		m[e.ID] = e
	}
	for _, e := range localeOnlyTable {
		m[e.ID] = e
	}
	return m
}()

// CandidateOrder returns the ids tried by the candidate generator, in order.
func CandidateOrder() []EncodingID {
	ids := make([]EncodingID, len(candidateTable))
	for i, e := range candidateTable {
		ids[i] = e.ID
	}
	return ids
}

// Selectable returns the entries offered as bulk repair choices.
func Selectable() []Entry {
	out := make([]Entry, 0, len(selectableOrder))
	for _, id := range selectableOrder {
		out = append(out, byID[id])
	}
	return out
}

// Get returns the entry registered under id.
func Get(id EncodingID) (Entry, bool) {
	e, ok := byID[id]
	return e, ok
}

// Lookup resolves a user supplied encoding name to a table id. It accepts
// table ids in any case ("cp949") and IANA names or aliases ("EUC-KR",
// "windows-1251", "Shift_JIS") of encodings present in the table.
func Lookup(name string) (EncodingID, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty name", ErrUnknownEncoding)
	}

	id := EncodingID(strings.ToUpper(trimmed))
	if _, ok := byID[id]; ok {
		return id, nil
	}

	enc, err := ianaindex.IANA.Encoding(trimmed)
	if err != nil || enc == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}

	for _, e := range candidateTable {
		if e.enc == enc {
			return e.ID, nil
		}
	}
	for _, e := range localeOnlyTable {
		if e.enc == enc {
			return e.ID, nil
		}
	}

	return "", fmt.Errorf("%w: %s is not a supported code page", ErrUnknownEncoding, name)
}
