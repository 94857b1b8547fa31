// internal/tui/app.go
//
// Terminal front end for the decision pipeline. Two inputs collect the
// product URL and the comma separated keywords, Enter runs the analysis and
// the verdict is rendered below the form.

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ProductJudge/internal/domain"
	"ProductJudge/internal/usecase"
)

// Analyzer runs one product decision.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.Request) (domain.Report, error)
}

type appState int

const (
	stateEditing   appState = iota // waiting for input
	stateAnalyzing                 // request in flight
)

const (
	fieldURL = iota
	fieldKeywords
	fieldCount
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4D96FF")).
			MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	buyStyle   = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#6BCB77"))
	skipStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)
)

type analysisDoneMsg struct {
	report domain.Report
	err    error
}

// App is the bubbletea model.
type App struct {
	ctx      context.Context
	analyzer Analyzer

	inputs  []textinput.Model
	focused int
	spinner spinner.Model
	state   appState

	report  *domain.Report
	errText string
	width   int
}

// NewApp builds the model. ctx bounds every analysis started from the UI.
func NewApp(ctx context.Context, analyzer Analyzer) *App {
	url := textinput.New()
	url.Placeholder = "https://shop.example.com/product"
	url.Prompt = "URL      > "
	url.CharLimit = 2048
	url.Focus()

	keywords := textinput.New()
	keywords.Placeholder = "brand, model"
	keywords.Prompt = "Keywords > "
	keywords.CharLimit = 512

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &App{
		ctx:      ctx,
		analyzer: analyzer,
		inputs:   []textinput.Model{url, keywords},
		spinner:  s,
	}
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return a, tea.Quit
		}
		if a.state == stateAnalyzing {
			return a, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			step := 1
			if s := msg.String(); s == "shift+tab" || s == "up" {
				step = fieldCount - 1
			}
			return a, a.focus((a.focused + step) % fieldCount)
		case "enter":
			return a, a.submit()
		}

	case analysisDoneMsg:
		a.state = stateEditing
		if msg.err != nil {
			a.report = nil
			a.errText = usecase.UserMessage(msg.err)
			return a, nil
		}
		a.errText = ""
		a.report = &msg.report
		return a, nil

	case spinner.TickMsg:
		if a.state != stateAnalyzing {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.inputs[a.focused], cmd = a.inputs[a.focused].Update(msg)
	return a, cmd
}

func (a *App) focus(idx int) tea.Cmd {
	a.inputs[a.focused].Blur()
	a.focused = idx
	return a.inputs[idx].Focus()
}

func (a *App) submit() tea.Cmd {
	req := domain.Request{
		URL:      strings.TrimSpace(a.inputs[fieldURL].Value()),
		Keywords: domain.ParseKeywords(a.inputs[fieldKeywords].Value()),
	}
	a.state = stateAnalyzing
	a.errText = ""
	a.report = nil

	analyze := func() tea.Msg {
		report, err := a.analyzer.Analyze(a.ctx, req)
		return analysisDoneMsg{report: report, err: err}
	}
	return tea.Batch(a.spinner.Tick, analyze)
}

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Product Purchase Decision Maker"))
	b.WriteString("\n")
	for _, in := range a.inputs {
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case a.state == stateAnalyzing:
		b.WriteString(a.spinner.View() + " Analyzing product...\n")
	case a.errText != "":
		b.WriteString(skipStyle.Render(a.errText) + "\n")
	case a.report != nil:
		b.WriteString(renderReport(*a.report))
	}

	b.WriteString(helpStyle.Render("tab: switch field • enter: analyze • esc: quit"))
	return b.String()
}

func renderReport(r domain.Report) string {
	d := r.Decision
	style := skipStyle
	if d.Verdict == domain.VerdictBuy {
		style = buyStyle
	}

	var b strings.Builder
	b.WriteString(style.Render("Decision: "+string(d.Verdict)) + "\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("pro %d · con %d · gap %d", d.ProScore, d.ConScore, d.Gap)) + "\n")
	b.WriteString("Reasoning: " + d.Rationale + "\n")
	writeArguments(&b, "For", r.Pros.Arguments)
	writeArguments(&b, "Against", r.Cons.Arguments)
	return b.String()
}

func writeArguments(b *strings.Builder, title string, args []domain.Argument) {
	b.WriteString(labelStyle.Render(title) + "\n")
	if len(args) == 0 {
		b.WriteString("  none\n")
		return
	}
	for _, arg := range args {
		fmt.Fprintf(b, "  %+4d  %s\n", arg.Score, arg.Text)
	}
}
