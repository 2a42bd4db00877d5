// Package cliui holds the terminal styling shared by askstream commands.
package cliui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/askstream/pkg/blocks"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

	// KeyStyle renders config keys and section headings.
	KeyStyle = lipgloss.NewStyle().Bold(true)

	// ValueStyle renders config values.
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	// DimStyle renders secondary text such as URLs and timestamps.
	DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// NameStyle renders source titles.
	NameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	// HashStyle renders record and request ids.
	HashStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// spinnerFrames is the braille dot cycle used by charm spinners.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

const spinnerInterval = 80 * time.Millisecond

// spinner redraws one line on w until stop is called.
type spinner struct {
	w       io.Writer
	msg     string
	done    chan struct{}
	stopped chan struct{}
}

func startSpinner(w io.Writer, msg string) *spinner {
	s := &spinner{
		w:       w,
		msg:     msg,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *spinner) loop() {
	defer close(s.stopped)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		fmt.Fprintf(s.w, "\r  %s %s", spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]), s.msg)
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
	}
}

// stop halts the animation and overwrites the line with the outcome of err.
func (s *spinner) stop(err error, elapsed time.Duration) {
	close(s.done)
	<-s.stopped
	fmt.Fprintf(s.w, "\r  %s %s %s\n", Mark(err), s.msg, StepStyle.Render("("+FormatDuration(elapsed)+")"))
}

// Step animates msg on w while fn runs, then leaves a ✓ or ✗ line with the
// elapsed time. It returns fn's error.
func Step(w io.Writer, msg string, fn func() error) error {
	sp := startSpinner(w, msg)
	start := time.Now()
	err := fn()
	sp.stop(err, time.Since(start))
	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// RenderMarkdown renders an answer for the terminal with glamour, wrapping at
// 80 columns. On failure it returns content unchanged along with the error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}

// WriteSources prints a numbered sources section. Nothing is written for an
// empty list.
func WriteSources(w io.Writer, sources []blocks.NormalizedSource) {
	if len(sources) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", KeyStyle.Render("Sources"))
	for i, s := range sources {
		fmt.Fprintf(w, "  %d. %s", i+1, NameStyle.Render(s.Title))
		if s.URL != "" && s.URL != s.Title {
			fmt.Fprintf(w, " %s", DimStyle.Render(s.URL))
		}
		fmt.Fprintln(w)
	}
}

// WriteRelatedQueries prints the follow-up questions section. Nothing is
// written for an empty list.
func WriteRelatedQueries(w io.Writer, queries []string) {
	if len(queries) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", KeyStyle.Render("Related"))
	for _, q := range queries {
		fmt.Fprintf(w, "  %s %s\n", DimStyle.Render("→"), q)
	}
}
