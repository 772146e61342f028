package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/seanwallawalla-forks/gyro/pkg/depgraph/engine"
)

// fetchDone is sent once the engine's Fetch call returns.
type fetchDone struct {
	result *engine.FetchResult
	err    error
}

// progressModel is the bubbletea model backing the fetch progress view:
// one line per source, showing the total row count seen across the run
// so far and how many of those rows ended in an error, updated as the
// reconciler drains each batch.
type progressModel struct {
	updates <-chan engine.BatchProgress
	done    <-chan fetchDone

	bySource map[string]*sourceTally
	batch    int
	result   *engine.FetchResult
	err      error
	finished bool
}

type sourceTally struct {
	total, newEntries, errored int
}

func newProgressModel(updates <-chan engine.BatchProgress, done <-chan fetchDone) progressModel {
	return progressModel{updates: updates, done: done, bySource: make(map[string]*sourceTally)}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), waitForDone(m.done))
}

type updateMsg engine.BatchProgress
type doneMsg fetchDone

func waitForUpdate(ch <-chan engine.BatchProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return updateMsg(p)
	}
}

func waitForDone(ch <-chan fetchDone) tea.Cmd {
	return func() tea.Msg {
		return doneMsg(<-ch)
	}
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		t := m.bySource[msg.Source]
		if t == nil {
			t = &sourceTally{}
			m.bySource[msg.Source] = t
		}
		t.total += msg.Total
		t.newEntries += msg.NewEntries
		t.errored += msg.Errored
		m.batch = msg.Batch
		return m, waitForUpdate(m.updates)
	case doneMsg:
		m.finished = true
		m.result = msg.result
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("fetching (batch %d)", m.batch)))
	b.WriteString("\n")

	sources := make([]string, 0, len(m.bySource))
	for s := range m.bySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	for _, s := range sources {
		t := m.bySource[s]
		line := fmt.Sprintf("  %-8s total=%-4d new=%-4d errored=%d", s, t.total, t.newEntries, t.errored)
		if t.errored > 0 {
			b.WriteString(lipgloss.NewStyle().Foreground(colorRed).Render(line))
		} else {
			b.WriteString(StyleDim.Render(line))
		}
		b.WriteString("\n")
	}
	if m.finished {
		b.WriteString(StyleDim.Render("done\n"))
	}
	return b.String()
}

// isInteractive reports whether stderr is a TTY, gating whether fetch
// renders the live progress view or falls back to plain log lines.
func isInteractive() bool {
	return isatty.IsTerminal(os.Stderr.Fd())
}

// runFetchWithProgress runs eng.Fetch on a background goroutine while a
// bubbletea program renders live per-source counts, fed through opts'
// OnBatchProgress callback. It returns the same (result, err) Fetch
// itself would.
func runFetchWithProgress(ctx context.Context, fetch func(onProgress func(engine.BatchProgress)) (*engine.FetchResult, error)) (*engine.FetchResult, error) {
	updates := make(chan engine.BatchProgress, 64)
	done := make(chan fetchDone, 1)

	go func() {
		result, err := fetch(func(p engine.BatchProgress) { updates <- p })
		close(updates)
		done <- fetchDone{result: result, err: err}
	}()

	model := newProgressModel(updates, done)
	finalModel, err := tea.NewProgram(model).Run()
	if err != nil {
		return nil, err
	}
	final := finalModel.(progressModel)
	return final.result, final.err
}
