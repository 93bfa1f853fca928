package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hostvm/vm-bridge/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type engineInfo struct {
	name string
	kind engine.Kind
}

type modelState int

const (
	stateSelectEngine modelState = iota
	stateInputOption
	stateShowResult
)

type interactiveModel struct {
	cfg       *engine.Config
	err       error
	optionErr error
	engines   []engineInfo
	result    string
	option    textinput.Model
	selected  int
	state     modelState
}

func newInteractiveModel(cfg *engine.Config) *interactiveModel {
	var engines []engineInfo
	for _, name := range cfg.Names() {
		kind, err := cfg.Resolve(name)
		if err != nil {
			continue
		}
		engines = append(engines, engineInfo{name: name, kind: kind})
	}
	return &interactiveModel{
		cfg:     cfg,
		engines: engines,
		state:   stateSelectEngine,
	}
}

type createdMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != stateInputOption {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectEngine && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectEngine && m.selected < len(m.engines)-1 {
				m.selected++
			}

		case "o":
			if m.state == stateSelectEngine {
				ti := textinput.New()
				ti.Placeholder = "name=value"
				ti.Prompt = "option: "
				ti.Width = 40
				ti.Focus()
				m.option = ti
				m.state = stateInputOption
				return m, nil
			}

		case "enter":
			switch m.state {
			case stateSelectEngine:
				return m, m.createEngine

			case stateInputOption:
				if err := m.cfg.AddOption(m.option.Value()); err != nil {
					m.optionErr = err
					return m, nil
				}
				m.optionErr = nil
				m.state = stateSelectEngine

			case stateShowResult:
				m.state = stateSelectEngine
				m.result = ""
				m.err = nil
			}

		case "esc":
			switch m.state {
			case stateInputOption:
				m.optionErr = nil
				m.state = stateSelectEngine
			case stateShowResult:
				m.state = stateSelectEngine
				m.result = ""
				m.err = nil
			}
		}

	case createdMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputOption {
		var cmd tea.Cmd
		m.option, cmd = m.option.Update(msg)
		return m, cmd
	}

	return m, nil
}

// createEngine constructs the selected engine, reports its self-described
// identity and releases it again.
func (m *interactiveModel) createEngine() tea.Msg {
	name := m.engines[m.selected].name

	vm, err := m.cfg.Create(name)
	if err != nil {
		return createdMsg{err: err}
	}
	defer vm.Close()

	if a, ok := vm.(*engine.Adapter); ok {
		return createdMsg{result: fmt.Sprintf("%s %s", a.Name(), a.Version())}
	}
	return createdMsg{result: name + " (in-process baseline)"}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("VM Bridge"))
	b.WriteString(fmt.Sprintf("  default: %s\n\n", m.cfg.Default()))

	switch m.state {
	case stateSelectEngine:
		b.WriteString("Select an engine to construct:\n\n")
		for i, e := range m.engines {
			line := nameStyle.Render(e.name) + "  " + kindStyle.Render(e.kind.String())
			if e.kind == engine.KindNative && !m.cfg.HasBaseline() {
				line += helpStyle.Render("  (no baseline wired)")
			}
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if opts := m.cfg.Options(); len(opts) > 0 {
			b.WriteString("\nOptions:\n")
			for _, o := range opts {
				b.WriteString(fmt.Sprintf("  %s=%s\n", o.Name, o.Value))
			}
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter construct • o add option • q quit"))

	case stateInputOption:
		b.WriteString("Add an engine option:\n\n")
		b.WriteString(m.option.View())
		b.WriteString("\n")
		if m.optionErr != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.optionErr)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter add • esc back"))

	case stateShowResult:
		name := m.engines[m.selected].name
		b.WriteString(fmt.Sprintf("Constructing %s:\n\n", nameStyle.Render(name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(cfg *engine.Config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
