package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ErrCanceled is returned when the user interrupts a prompt.
var ErrCanceled = errors.New("prompt canceled")

// Prompter asks the user questions.
type Prompter interface {
	Confirm(question string, defaultYes bool) (bool, error)
	Ask(question string) (string, error)
}

// NewPrompter returns a TeaPrompter when both in and out are terminals and
// a LinePrompter otherwise. Both give up with ErrCanceled once ctx is done.
func NewPrompter(ctx context.Context, in, out *os.File) Prompter {
	if isatty.IsTerminal(in.Fd()) && isatty.IsTerminal(out.Fd()) {
		return &TeaPrompter{In: in, Out: out, Ctx: ctx}
	}
	return NewLinePrompter(in, out).WithContext(ctx)
}

// LinePrompter reads answers one line at a time.
type LinePrompter struct {
	r    *bufio.Reader
	w    io.Writer
	done <-chan struct{}

	// pending holds a read that outlived a canceled prompt.
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(in), w: out}
}

// WithContext makes blocked prompts return ErrCanceled when ctx is done.
func (p *LinePrompter) WithContext(ctx context.Context) *LinePrompter {
	p.done = ctx.Done()
	return p
}

// Confirm asks a yes/no question. An empty answer picks the default; anything
// other than y, yes, n or no asks again.
func (p *LinePrompter) Confirm(question string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.w, "? %s (%s) ", question, hint)
		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.w, "Please answer y or n.")
	}
}

// Ask reads a free-text answer with surrounding whitespace removed.
func (p *LinePrompter) Ask(question string) (string, error) {
	fmt.Fprintf(p.w, "? %s ", question)
	return p.readLine()
}

// readLine waits for the next line or for cancellation, whichever comes
// first. The read keeps running in the background after a cancellation.
func (p *LinePrompter) readLine() (string, error) {
	if p.done == nil {
		return p.read()
	}
	select {
	case <-p.done:
		return "", ErrCanceled
	default:
	}
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := p.read()
			ch <- lineResult{line, err}
		}()
		p.pending = ch
	}
	select {
	case res := <-p.pending:
		p.pending = nil
		return res.line, res.err
	case <-p.done:
		return "", ErrCanceled
	}
}

// read returns the next trimmed line. A final line without a newline is
// still returned; io.EOF is only reported when nothing was read.
func (p *LinePrompter) read() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
