package codepage

import (
	"os"
	"strings"

	internal "github.com/ZanzyTHEbar/filename-repairer/fnr"

	"github.com/armon/go-radix"
	golocale "github.com/jeandeaual/go-locale"
)

// localeDefaults maps a locale prefix to the code pages Windows used by
// default for it. Some languages were written in two scripts.
var localeDefaults = []struct {
	prefix    string
	encodings []EncodingID
}{
	{"ar", []EncodingID{"CP1256"}},
	{"az", []EncodingID{"CP1251", "CP1254"}},
	{"be", []EncodingID{"CP1251"}},
	{"bg", []EncodingID{"CP1251"}},
	{"cs", []EncodingID{"CP1250"}},
	{"cy", []EncodingID{"CP28604"}},
	{"el", []EncodingID{"CP1253"}},
	{"et", []EncodingID{"CP1257"}},
	{"fa", []EncodingID{"CP1256"}},
	{"he", []EncodingID{"CP1255"}},
	{"hr", []EncodingID{"CP1250"}},
	{"hu", []EncodingID{"CP1250"}},
	{"ja", []EncodingID{"CP932"}},
	{"kk", []EncodingID{"CP1251"}},
	{"ko", []EncodingID{"CP949"}},
	{"ky", []EncodingID{"CP1251"}},
	{"lt", []EncodingID{"CP1257"}},
	{"lv", []EncodingID{"CP1257"}},
	{"mk", []EncodingID{"CP1251"}},
	{"mn", []EncodingID{"CP1251"}},
	{"pl", []EncodingID{"CP1250"}},
	{"ro", []EncodingID{"CP1250"}},
	{"ru", []EncodingID{"CP1251"}},
	{"sk", []EncodingID{"CP1250"}},
	{"sl", []EncodingID{"CP1250"}},
	{"sq", []EncodingID{"CP1250"}},
	{"sr", []EncodingID{"CP1250", "CP1251"}},
	{"th", []EncodingID{"CP874"}},
	{"tr", []EncodingID{"CP1254"}},
	{"tt", []EncodingID{"CP1251"}},
	{"uk", []EncodingID{"CP1251"}},
	{"ur", []EncodingID{"CP1256"}},
	{"uz", []EncodingID{"CP1251", "CP1254"}},
	{"vi", []EncodingID{"CP1258"}},
	{"zh_CN", []EncodingID{"CP936"}},
	{"zh_HK", []EncodingID{"CP950"}},
	{"zh_MO", []EncodingID{"CP950"}},
	{"zh_SG", []EncodingID{"CP936"}},
	{"zh_TW", []EncodingID{"CP950"}},
}

var localeIndex = func() *radix.Tree {
	t := radix.New()
	for _, d := range localeDefaults {
		t.Insert(d.prefix, d.encodings)
	}
	return t
}()

// isLocaleBoundary reports whether a prefix match of length n ends on a
// component boundary of locale, so "ko" matches "ko_KR.UTF-8" but not "kok_IN".
func isLocaleBoundary(locale string, n int) bool {
	if n == len(locale) {
		return true
	}
	switch locale[n] {
	case '_', '.', '@', '-':
		return true
	}
	return false
}

// DefaultEncodingsForLocale returns the code pages configured for locale,
// most specific prefix first. It returns nil when nothing matches.
func DefaultEncodingsForLocale(locale string) []EncodingID {
	var found []EncodingID
	localeIndex.WalkPath(locale, func(prefix string, v interface{}) bool {
		if isLocaleBoundary(locale, len(prefix)) {
			found = v.([]EncodingID)
		}
		return false
	})
	if found == nil {
		return nil
	}
	out := make([]EncodingID, len(found))
	copy(out, found)
	return out
}

// DefaultEncodingForLocale returns the first configured code page for
// locale, or CP1252 when the locale has none.
func DefaultEncodingForLocale(locale string) EncodingID {
	if encs := DefaultEncodingsForLocale(locale); len(encs) > 0 {
		return encs[0]
	}
	return EncodingID(internal.DefaultFallbackEncoding)
}

// SystemLocale returns the character type locale of the process, following
// the POSIX precedence LC_ALL, LC_CTYPE, LANG. When none is set the platform
// locale is used, normalised to the ll_CC form.
func SystemLocale() string {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}

	loc, err := golocale.GetLocale()
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(loc, "-", "_")
}

// FixedLocale is a locale source that always reports the same value.
type FixedLocale string

func (l FixedLocale) Locale() string { return string(l) }

// EnvLocale is a locale source backed by SystemLocale.
type EnvLocale struct{}

func (EnvLocale) Locale() string { return SystemLocale() }
