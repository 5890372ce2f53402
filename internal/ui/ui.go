// Package ui owns all user-facing terminal output for the chat loop.
//
// Invariants:
// - Quiet mode only suppresses or unstyles output; it never changes state.
// - Warnings for rejected input are shown in both modes.
// - Notices and decorative prefixes appear in normal mode only.
package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	styleReply  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleNotice = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	stylePrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
)

// Printer writes user-visible messages with mode-dependent decoration.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	quiet bool
}

// New creates a Printer writing to out.
func New(out io.Writer, quiet bool) *Printer {
	return &Printer{out: out, quiet: quiet}
}

// SetQuiet switches the output mode.
func (p *Printer) SetQuiet(quiet bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quiet = quiet
}

// Quiet reports whether quiet mode is active.
func (p *Printer) Quiet() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.quiet
}

// Reply prints assistant content. In normal mode it carries the reply
// prefix; in quiet mode it is the bare content, suitable for piping.
func (p *Printer) Reply(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet {
		fmt.Fprintln(p.out, content)
		return
	}
	fmt.Fprintln(p.out, styleReply.Render("assistant:")+" "+content)
}

// Notice prints a non-essential diagnostic. Suppressed in quiet mode.
func (p *Printer) Notice(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, styleNotice.Render(fmt.Sprintf(format, args...)))
}

// Warn prints a warning the user needs to act on (rejected command,
// missing response). Shown in both modes, styled only in normal mode.
func (p *Printer) Warn(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	if p.quiet {
		fmt.Fprintln(p.out, msg)
		return
	}
	fmt.Fprintln(p.out, styleWarn.Render("! "+msg))
}

// Result prints command output such as listings and status lines,
// in both modes.
func (p *Printer) Result(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, fmt.Sprintf(format, args...))
}

// Prompt renders the read-loop prompt for the given agent.
func (p *Printer) Prompt(agent string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet {
		return "> "
	}
	return stylePrompt.Render(agent) + " > "
}
