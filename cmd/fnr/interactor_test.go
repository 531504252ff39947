package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/ports"
)

func newTestInteractor(input string, interactive bool) (*terminalInteractor, *bytes.Buffer) {
	var buf bytes.Buffer
	return &terminalInteractor{
		out:         &buf,
		errOut:      &buf,
		in:          bufio.NewReader(strings.NewReader(input)),
		interactive: interactive,
	}, &buf
}

func TestConfirmOverwriteWithoutTerminal(t *testing.T) {
	ti, buf := newTestInteractor("y\n", false)

	ok, err := ti.ConfirmOverwrite("/a/src", "/a/dst")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ports.ErrNoOperator)
	assert.Empty(t, buf.String(), "nothing is prompted")
}

func TestConfirmOverwriteAnswers(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			ti, buf := newTestInteractor(tt.input, true)
			ok, err := ti.ConfirmOverwrite("/a/src", "/a/dst")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, buf.String(), "Replace it with /a/src?")
		})
	}
}

func TestConfirmOverwriteRestoresSpinner(t *testing.T) {
	ti, _ := newTestInteractor("y\n", true)
	ti.StartSpinner("repairing")
	ti.Tick(3)

	ok, err := ti.ConfirmOverwrite("/a/src", "/a/dst")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotNil(t, ti.bar, "spinner resumes after the prompt")
	assert.Equal(t, 3, ti.ticks)
	assert.Equal(t, "repairing", ti.barDesc)

	ti.StopSpinner(true, "")
	assert.Nil(t, ti.bar)
}
