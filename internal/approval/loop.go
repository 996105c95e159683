package approval

import (
	"context"
	"fmt"
	"io"

	"github.com/nextscaffold/scaffold/internal/synth"
)

// Questions asked by the loop. Both default to yes.
const (
	QuestionApprove = "Does this look good?"
	QuestionRetry   = "Do you want to try again?"
)

// State is a step of the confirmation dialog.
type State int

const (
	Synthesizing State = iota
	AwaitingApproval
	Approved
	Rejected
	AwaitingRetryDecision
	Aborted
)

func (s State) String() string {
	switch s {
	case Synthesizing:
		return "synthesizing"
	case AwaitingApproval:
		return "awaiting-approval"
	case Approved:
		return "approved"
	case Rejected:
		return "rejected"
	case AwaitingRetryDecision:
		return "awaiting-retry-decision"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Synthesizer produces one scaffold attempt for a description.
type Synthesizer interface {
	Synthesize(ctx context.Context, description string) (*synth.Result, error)
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(question string, defaultYes bool) (bool, error)
}

// Loop drives synthesis until the user approves a tree or gives up.
type Loop struct {
	Synth    Synthesizer
	Prompter Prompter
	Out      io.Writer

	// MaxAttempts bounds the number of synthesis attempts. Zero means no bound.
	MaxAttempts int

	// Present writes a synthesized tree for review. When nil the human
	// scaffold text is written to Out as is.
	Present func(w io.Writer, res *synth.Result)
}

// Outcome reports how the dialog ended.
type Outcome struct {
	Approved bool
	Result   *synth.Result // set only when Approved
	Attempts int
	Trace    []State
}

// Run synthesizes from description and asks for approval, looping on
// rejection while the user wants to try again. A synthesis or prompt error
// ends the loop and is returned along with the outcome so far.
func (l *Loop) Run(ctx context.Context, description string) (*Outcome, error) {
	out := &Outcome{}
	var current *synth.Result
	state := Synthesizing

	for {
		out.Trace = append(out.Trace, state)

		switch state {
		case Synthesizing:
			if err := ctx.Err(); err != nil {
				return out, err
			}
			out.Attempts++
			res, err := l.Synth.Synthesize(ctx, description)
			if err != nil {
				return out, fmt.Errorf("synthesis attempt %d: %w", out.Attempts, err)
			}
			current = res
			state = AwaitingApproval

		case AwaitingApproval:
			l.present(current)
			ok, err := l.Prompter.Confirm(QuestionApprove, true)
			if err != nil {
				return out, fmt.Errorf("reading approval: %w", err)
			}
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if ok {
				state = Approved
			} else {
				state = Rejected
			}

		case Approved:
			out.Approved = true
			out.Result = current
			return out, nil

		case Rejected:
			current = nil
			if l.MaxAttempts > 0 && out.Attempts >= l.MaxAttempts {
				if l.Out != nil {
					fmt.Fprintf(l.Out, "Reached the limit of %d attempts.\n", l.MaxAttempts)
				}
				state = Aborted
			} else {
				state = AwaitingRetryDecision
			}

		case AwaitingRetryDecision:
			again, err := l.Prompter.Confirm(QuestionRetry, true)
			if err != nil {
				return out, fmt.Errorf("reading retry decision: %w", err)
			}
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if again {
				state = Synthesizing
			} else {
				state = Aborted
			}

		case Aborted:
			return out, nil
		}
	}
}

func (l *Loop) present(res *synth.Result) {
	if l.Out == nil {
		return
	}
	if l.Present != nil {
		l.Present(l.Out, res)
		return
	}
	fmt.Fprintln(l.Out, res.Human)
}
