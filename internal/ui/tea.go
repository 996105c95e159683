package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// TeaPrompter runs a small bubbletea program per question.
type TeaPrompter struct {
	In  io.Reader
	Out io.Writer
	// Ctx, when set, stops a running prompt once it is done.
	Ctx context.Context
}

func (p *TeaPrompter) run(m tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{tea.WithInput(p.In), tea.WithOutput(p.Out)}
	if p.Ctx != nil {
		if p.Ctx.Err() != nil {
			return nil, ErrCanceled
		}
		opts = append(opts, tea.WithContext(p.Ctx))
	}
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || (p.Ctx != nil && p.Ctx.Err() != nil) {
			return nil, ErrCanceled
		}
		return nil, fmt.Errorf("running prompt: %w", err)
	}
	return final, nil
}

func (p *TeaPrompter) Confirm(question string, defaultYes bool) (bool, error) {
	final, err := p.run(newConfirmModel(question, defaultYes))
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.canceled {
		return false, ErrCanceled
	}
	return m.value, nil
}

func (p *TeaPrompter) Ask(question string) (string, error) {
	final, err := p.run(newInputModel(question))
	if err != nil {
		return "", err
	}
	m := final.(inputModel)
	if m.canceled {
		return "", ErrCanceled
	}
	return m.value, nil
}

// confirmModel is a yes/no toggle. y and n answer directly, arrows and tab
// move the selection, enter accepts it.
type confirmModel struct {
	question string
	value    bool
	done     bool
	canceled bool
}

func newConfirmModel(question string, defaultYes bool) confirmModel {
	return confirmModel{question: question, value: defaultYes}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.canceled = true
		return m, tea.Quit
	case "y", "Y":
		m.value, m.done = true, true
		return m, tea.Quit
	case "n", "N":
		m.value, m.done = false, true
		return m, tea.Quit
	case "enter":
		m.done = true
		return m, tea.Quit
	case "left", "right", "h", "l", "tab":
		m.value = !m.value
	}
	return m, nil
}

func (m confirmModel) View() string {
	q := Success.Render("? ") + m.question + " "
	if m.done {
		answer := "no"
		if m.value {
			answer = "yes"
		}
		return q + Muted.Render(answer) + "\n"
	}
	yes, no := Muted.Render("Yes"), Muted.Render("No")
	if m.value {
		yes = Success.Underline(true).Render("Yes")
	} else {
		no = Success.Underline(true).Render("No")
	}
	return q + yes + " / " + no
}

// inputModel reads one line of text.
type inputModel struct {
	question string
	input    textinput.Model
	value    string
	done     bool
	canceled bool
}

func newInputModel(question string) inputModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "describe your app"
	ti.CharLimit = 2000
	ti.Width = 60
	ti.Focus()
	return inputModel{question: question, input: ti}
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		case "enter":
			m.value = strings.TrimSpace(m.input.Value())
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	q := Success.Render("? ") + m.question + "\n"
	if m.done {
		return q + Muted.Render(m.value) + "\n"
	}
	return q + m.input.View()
}
