package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"ProductJudge/internal/domain"
)

type fakeAnalyzer struct {
	report domain.Report
	err    error
	got    domain.Request
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req domain.Request) (domain.Report, error) {
	f.got = req
	return f.report, f.err
}

// runAnalysis executes the command returned by Enter and feeds the result back.
func runAnalysis(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command after submit")
	}
	cmds := []tea.Cmd{cmd}
	if batch, ok := cmd().(tea.BatchMsg); ok {
		cmds = batch
	}
	for _, c := range cmds {
		if c == nil {
			continue
		}
		if msg, ok := c().(analysisDoneMsg); ok {
			a.Update(msg)
			return
		}
	}
	t.Fatalf("analysis command not found")
}

func TestAppTypingAndSubmit(t *testing.T) {
	t.Parallel()

	f := &fakeAnalyzer{report: domain.Report{
		Pros: domain.NewArgumentSet(domain.Pro, domain.Argument{Text: "durable", Score: 80}),
		Cons: domain.NewArgumentSet(domain.Con),
		Decision: domain.Decision{
			Verdict:   domain.VerdictBuy,
			ProScore:  80,
			Gap:       80,
			Rationale: `Buy: "durable" wins.`,
		},
	}}
	a := NewApp(context.Background(), f)

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("https://shop.example.com/x2")})
	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	if a.focused != fieldKeywords {
		t.Fatalf("tab should move focus to keywords, got %d", a.focused)
	}
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("acme, x2")})

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if a.state != stateAnalyzing || !strings.Contains(a.View(), "Analyzing product") {
		t.Fatalf("expected analyzing state")
	}
	runAnalysis(t, a, cmd)

	if f.got.URL != "https://shop.example.com/x2" || len(f.got.Keywords) != 2 || f.got.Keywords[1] != "x2" {
		t.Fatalf("unexpected request %+v", f.got)
	}
	view := a.View()
	for _, want := range []string{"Decision: Buy", "durable", "Against", "none"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestAppShowsUserMessageOnFailure(t *testing.T) {
	t.Parallel()

	f := &fakeAnalyzer{err: fmt.Errorf("fetch content: %w: blocked", domain.ErrFetch)}
	a := NewApp(context.Background(), f)
	a.inputs[fieldURL].SetValue("https://shop.example.com/x2")
	a.inputs[fieldKeywords].SetValue("acme")

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runAnalysis(t, a, cmd)

	if a.state != stateEditing || a.report != nil {
		t.Fatalf("expected editing state without report")
	}
	if !strings.Contains(a.View(), "Could not fetch product information") {
		t.Fatalf("expected fetch message, got:\n%s", a.View())
	}
}

func TestAppIgnoresKeysWhileAnalyzing(t *testing.T) {
	t.Parallel()

	a := NewApp(context.Background(), &fakeAnalyzer{})
	a.state = stateAnalyzing

	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	if a.focused != fieldURL {
		t.Fatalf("focus changed during analysis")
	}
	if _, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("enter should be ignored during analysis")
	}
}

func TestAppQuit(t *testing.T) {
	t.Parallel()

	a := NewApp(context.Background(), &fakeAnalyzer{})
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
}
