package candidates

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/filesystem/common"
)

func newGenerator(locale string) *Generator {
	return NewGenerator(WithLocale(codepage.FixedLocale(locale)))
}

func assertUniqueTexts(t *testing.T, list List) {
	t.Helper()
	seen := make(map[string]codepage.EncodingID)
	for _, c := range list {
		prev, dup := seen[c.Text]
		assert.False(t, dup, "text %q produced by both %s and %s", c.Text, prev, c.Encoding)
		seen[c.Text] = c.Encoding
	}
}

func TestScenarioKoreanName(t *testing.T) {
	raw := "\xc7\xd1\xb0\xe8"

	list := newGenerator("ko_KR.UTF-8").GenerateForName(raw)
	require.NotEmpty(t, list)
	assert.Equal(t, Candidate{Encoding: "CP949", Text: "한계", Kind: KindCodepage}, list[0])
	assertUniqueTexts(t, list)

	for _, c := range list {
		assert.NotEqual(t, raw, c.Text, "raw UTF-8 reading must not be offered")
	}

	// without a Korean locale the candidate is still offered, just not first
	list = newGenerator("en_US.UTF-8").GenerateForName(raw)
	assert.Equal(t, codepage.EncodingID("CP1252"), list[0].Encoding)
	assert.True(t, list.Contains("한계"))
}

func TestScenarioPercentEscaped(t *testing.T) {
	g := newGenerator("ko_KR.UTF-8")

	list := g.GenerateForName("caf%C3%A9.txt")
	require.Len(t, list, 1)
	assert.Equal(t, "café.txt", list[0].Text)
	assert.Equal(t, KindURIEscape, list[0].Kind)
	assert.Empty(t, list[0].Encoding)

	list = g.GenerateForName("%E4%B8%AD%E6%96%87")
	assert.Equal(t, []string{"中文"}, list.Texts())
}

func TestPercentEscapeRejected(t *testing.T) {
	g := newGenerator("en_US")

	// decodes to a path separator
	assert.Empty(t, g.GenerateForName("a%2Fb"))
	// malformed escape falls through to code page guessing
	list := g.GenerateForName("50%\xe9")
	require.NotEmpty(t, list)
	assert.Equal(t, "50%é", list[0].Text)
}

func TestPercentEscapedLegacyBytes(t *testing.T) {
	list := newGenerator("ko_KR.UTF-8").GenerateForName("%C7%D1%B0%E8")
	require.NotEmpty(t, list)
	assert.Equal(t, Candidate{Encoding: "CP949", Text: "한계", Kind: KindCodepage, Unescaped: true}, list[0])
	assertUniqueTexts(t, list)
	for _, c := range list {
		assert.True(t, c.Explicit(), "%s", c.Encoding)
		assert.NotContains(t, c.Text, "%")
	}

	list = newGenerator("en_US").GenerateForName("%FF")
	require.NotEmpty(t, list)
	assert.Equal(t, Candidate{Encoding: "CP1252", Text: "ÿ", Kind: KindCodepage, Unescaped: true}, list[0])

	// escaped bytes that decode to a separator are never offered
	for _, c := range newGenerator("en_US").GenerateForName("%2F%FF") {
		assert.NotContains(t, c.Text, "/")
	}
}

func TestCandidateExplicit(t *testing.T) {
	assert.True(t, Candidate{Kind: KindURIEscape}.Explicit())
	assert.True(t, Candidate{Kind: KindCodepage, Unescaped: true}.Explicit())
	assert.False(t, Candidate{Kind: KindCodepage}.Explicit())
}

func TestValidNamesNeedNoRepair(t *testing.T) {
	g := newGenerator("ko_KR")
	for _, name := range []string{"report.txt", "한계.txt", "café", "日本語", "100%"} {
		list := g.GenerateForName(name)
		assert.NotNil(t, list)
		assert.Empty(t, list, "%q", name)
	}
}

func TestDeduplicationByText(t *testing.T) {
	list := newGenerator("en_US.UTF-8").GenerateForName("caf\xe9")

	assert.Equal(t, []string{
		"café", // CP1252, also CP1250, CP1254, CP1256..CP1258
		"cafй", // CP1251
		"cafι", // CP1253
		"cafי", // CP1255
		"caf้", // CP874
		"cafÚ", // CP850, also CP852, CP858
		"cafж", // CP855
		"cafΘ", // CP860, also CP863, CP865, CP862, CP437
		"cafщ", // CP866
	}, list.Texts())
	assert.Equal(t, codepage.EncodingID("CP1252"), list[0].Encoding)
	assertUniqueTexts(t, list)
}

func TestLocalePrecedence(t *testing.T) {
	raw := "\xcf\xf0\xe8\xe2\xe5\xf2"

	list := newGenerator("ru_RU.UTF-8").GenerateForName(raw)
	require.NotEmpty(t, list)
	assert.Equal(t, codepage.EncodingID("CP1251"), list[0].Encoding)
	assert.Equal(t, "Привет", list[0].Text)

	list = newGenerator("en_US.UTF-8").GenerateForName(raw)
	assert.Equal(t, "Ïðèâåò", list[0].Text)
	assert.True(t, list.Contains("Привет"))
	assertUniqueTexts(t, list)
}

func TestLocaleDefaultThatFailsIsNotFirst(t *testing.T) {
	// 0xFF is not a CP949 lead byte
	list := newGenerator("ko_KR").GenerateForName("name\xff")
	require.NotEmpty(t, list)
	assert.NotEqual(t, codepage.EncodingID("CP949"), list[0].Encoding)
	assert.Equal(t, "nameÿ", list[0].Text)
}

func TestGenerateRejectsNonLocal(t *testing.T) {
	ref, err := filesystem.ParseFileRef("smb://nas/share/\xc7\xd1")
	require.NoError(t, err)

	list, err := newGenerator("ko").Generate(ref)
	assert.ErrorIs(t, err, common.ErrNotLocal)
	assert.Nil(t, list)
}

func TestGenerateUsesBasename(t *testing.T) {
	list, err := newGenerator("ko").Generate(filesystem.LocalRef("/data/\xff\xfe/\xc7\xd1\xb0\xe8"))
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, "한계", list[0].Text)
}

func TestGenerateAll(t *testing.T) {
	dir := t.TempDir()
	names := []string{"\xc7\xd1\xb0\xe8", "plain.txt", "caf%C3%A9", "\xc7\xd1\xb1\xdb"}
	refs := make([]filesystem.FileRef, 0, len(names)+1)
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, nil, 0o644))
		refs = append(refs, filesystem.LocalRef(p))
	}
	remote, err := filesystem.ParseFileRef("sftp://host/x")
	require.NoError(t, err)
	refs = append(refs, remote)

	results, err := newGenerator("ko_KR").GenerateAll(context.Background(), refs, 3)
	require.NoError(t, err)
	require.Len(t, results, len(refs))

	for i, r := range results {
		assert.Equal(t, refs[i], r.Ref)
	}
	assert.Equal(t, "한계", results[0].Candidates[0].Text)
	assert.Empty(t, results[1].Candidates)
	assert.Equal(t, []string{"café"}, results[2].Candidates.Texts())
	assert.Equal(t, "한글", results[3].Candidates[0].Text)
	assert.ErrorIs(t, results[4].Err, common.ErrNotLocal)
}

func TestGenerateAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newGenerator("ko").GenerateAll(ctx, []filesystem.FileRef{filesystem.LocalRef("/tmp/x")}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "codepage", KindCodepage.String())
	assert.Equal(t, "uri", KindURIEscape.String())
}
