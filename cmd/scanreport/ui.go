package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/nao1215/scanreport/internal/report"
)

// colorEnabled reports whether w is a terminal that should get colors.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && !color.NoColor && isatty.IsTerminal(f.Fd())
}

// terminalWidth returns the width of w when it is a terminal, or
// report.DefaultWidth.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return report.DefaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return report.DefaultWidth
	}
	return width
}

// ui renders status words and tables for one output stream.
type ui struct {
	ok   *color.Color
	warn *color.Color
	fail *color.Color

	header lipgloss.Style
	dim    lipgloss.Style
}

func newUI(w io.Writer) *ui {
	u := &ui{
		ok:     color.New(color.FgGreen, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		fail:   color.New(color.FgRed, color.Bold),
		header: lipgloss.NewStyle().Bold(true).Underline(true),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
	if !colorEnabled(w) {
		u.ok.DisableColor()
		u.warn.DisableColor()
		u.fail.DisableColor()
		u.header = lipgloss.NewStyle()
		u.dim = lipgloss.NewStyle()
	}
	return u
}

func (u *ui) OK(s string) string   { return u.ok.Sprint(s) }
func (u *ui) Warn(s string) string { return u.warn.Sprint(s) }
func (u *ui) Fail(s string) string { return u.fail.Sprint(s) }

// Header styles a table header line.
func (u *ui) Header(s string) string { return u.header.Render(s) }

// Dim styles secondary text.
func (u *ui) Dim(s string) string { return u.dim.Render(s) }
