package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/ZanzyTHEbar/filename-repairer/fnr/codepage"
	"github.com/ZanzyTHEbar/filename-repairer/fnr/ports"
)

// terminalInteractor talks to the operator on the controlling terminal
type terminalInteractor struct {
	out         io.Writer
	errOut      io.Writer
	in          *bufio.Reader
	interactive bool
	bar         *progressbar.ProgressBar
	barDesc     string
	ticks       int
}

func newTerminalInteractor(out, errOut io.Writer) *terminalInteractor {
	return &terminalInteractor{
		out:         out,
		errOut:      errOut,
		in:          bufio.NewReader(os.Stdin),
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

func (t *terminalInteractor) Output(message string) {
	fmt.Fprintln(t.out, message)
}

func (t *terminalInteractor) Warning(message string) {
	fmt.Fprintln(t.errOut, color.Yellow.Sprint(message))
}

func (t *terminalInteractor) Error(message string, err error) {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	fmt.Fprintln(t.errOut, color.Red.Sprint(message))
}

// StartSpinner shows an indeterminate progress indicator on stderr when it
// is a terminal.
func (t *terminalInteractor) StartSpinner(message string) {
	t.barDesc = message
	t.ticks = 0
	t.bar = t.newSpinner(message)
}

func (t *terminalInteractor) newSpinner(message string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(t.errOut),
		progressbar.OptionSetDescription(message),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(term.IsTerminal(int(os.Stderr.Fd()))),
	)
}

// Tick advances the spinner by n entries
func (t *terminalInteractor) Tick(n int) {
	if t.bar != nil && n > 0 {
		t.ticks += n
		_ = t.bar.Add(n)
	}
}

// pauseSpinner clears the spinner so a prompt can use the line, and returns
// a func that brings it back with its count.
func (t *terminalInteractor) pauseSpinner() func() {
	if t.bar == nil {
		return func() {}
	}
	_ = t.bar.Finish()
	t.bar = nil
	return func() {
		t.bar = t.newSpinner(t.barDesc)
		if t.ticks > 0 {
			_ = t.bar.Add(t.ticks)
		}
	}
}

func (t *terminalInteractor) StopSpinner(success bool, message string) {
	if t.bar != nil {
		_ = t.bar.Finish()
		t.bar = nil
	}
	if message == "" {
		return
	}
	if success {
		fmt.Fprintln(t.errOut, color.Green.Sprint(message))
	} else {
		fmt.Fprintln(t.errOut, color.Red.Sprint(message))
	}
}

// ConfirmOverwrite asks on the terminal. Without a terminal nobody can be
// asked and the entry stays a conflict.
func (t *terminalInteractor) ConfirmOverwrite(src, dst string) (bool, error) {
	if !t.interactive {
		return false, ports.ErrNoOperator
	}
	resume := t.pauseSpinner()
	defer resume()

	fmt.Fprintf(t.errOut, "%s already exists. Replace it with %s? [y/N] ",
		color.Bold.Sprint(codepage.EscapedDisplay(dst)), codepage.EscapedDisplay(src))
	line, err := t.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

var _ ports.Interactor = (*terminalInteractor)(nil)
