package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
	"github.com/desertthunder/mtcat/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunningView ViewState = iota
	ResultView
)

// recentFailures is how many failures the running view keeps on screen.
const recentFailures = 5

// HarvestFunc runs a harvest and reports on progress. It must not close progress.
type HarvestFunc func(ctx context.Context, progress chan<- tasks.ProgressUpdate) (*tasks.HarvestResult, error)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	title        string
	view         ViewState
	harvest      HarvestFunc
	width        int
	height       int
	progressChan chan tasks.ProgressUpdate
	doneChan     chan harvestOutcome
	progress     tasks.ProgressUpdate
	bar          progress.Model
	spinner      spinner.Model
	failures     []models.HarvestFailure
	failureList  list.Model
	result       *tasks.HarvestResult
	err          error
	canceled     bool
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model that runs harvest when started.
func NewModel(ctx context.Context, title string, harvest HarvestFunc) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		ctx:     ctx,
		cancel:  cancel,
		title:   title,
		view:    RunningView,
		harvest: harvest,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.title.UnsetMarginBottom())),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the harvest and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startHarvest())
}

// Result returns the harvest result once the run has finished.
func (m *Model) Result() *tasks.HarvestResult { return m.result }

// Err returns the error the harvest finished with.
func (m *Model) Err() error { return m.err }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-8, 10), 80)
		if m.view == ResultView {
			m.failureList.SetSize(msg.Width-4, m.listHeight())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == RunningView {
			return m.handleRunningKeys(msg)
		}
		return m.handleResultKeys(msg)

	case spinner.TickMsg:
		if m.view != RunningView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.applyProgress(msg.data.(tasks.ProgressUpdate))
			return m, m.waitForProgress()
		case MsgHarvestComplete:
			outcome := msg.data.(harvestOutcome)
			m.result = outcome.result
			m.err = outcome.err
			m.view = ResultView
			if m.result != nil {
				m.failures = m.result.Failures
			}
			m.failureList = list.New(failureItems(m.failures), list.NewDefaultDelegate(), m.width-4, m.listHeight())
			m.failureList.Title = "Failed items"
			m.failureList.SetShowHelp(false)
			return m, nil
		}
	}

	if m.view == ResultView {
		var cmd tea.Cmd
		m.failureList, cmd = m.failureList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case RunningView:
		return m.renderRunning()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleRunningKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.cancel) && !m.canceled {
		m.canceled = true
		m.cancel()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		m.cancel()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.failureList, cmd = m.failureList.Update(msg)
	return m, cmd
}

func (m *Model) applyProgress(update tasks.ProgressUpdate) {
	m.progress = update
	if update.Phase == tasks.ItemFailed {
		if f, ok := update.Data.(models.HarvestFailure); ok {
			m.failures = append(m.failures, f)
		}
	}
}

func (m *Model) startHarvest() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.doneChan = make(chan harvestOutcome, 1)

	go func() {
		result, err := m.harvest(m.ctx, m.progressChan)
		m.doneChan <- harvestOutcome{result, err}
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-m.progressChan
		if !ok {
			outcome := <-m.doneChan
			return harvestCompleteMsg(outcome.result, outcome.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) listHeight() int {
	return max(m.height-12, 5)
}

func (m *Model) percent() float64 {
	if m.progress.Total == 0 {
		return 0
	}
	return float64(m.progress.Step) / float64(m.progress.Total)
}

func (m *Model) renderRunning() string {
	var b strings.Builder
	b.WriteString(styles.title.Render(m.title))
	b.WriteString("\n")

	phase := m.progress.Phase.String()
	if phase == "" {
		phase = "starting"
	}
	fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), styles.help.Render(phase))
	b.WriteString(m.bar.ViewAs(m.percent()))
	fmt.Fprintf(&b, "\n%s\n", m.progress.Message)

	if n := len(m.failures); n > 0 {
		fmt.Fprintf(&b, "\n%s\n", styles.warn.Render(fmt.Sprintf("%d failed so far", n)))
		for _, f := range m.failures[max(n-recentFailures, 0):] {
			fmt.Fprintf(&b, "  • %s\n", failureItem{failure: f}.Title())
		}
	}

	if m.canceled {
		fmt.Fprintf(&b, "\n%s\n", styles.warn.Render("Stopping after the current item..."))
	} else {
		fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView([]key.Binding{m.keys.cancel}))
	}
	return b.String()
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return styles.err.Render(fmt.Sprintf("Run failed: %v\n\nPress q to quit", m.err))
	}

	var title string
	switch {
	case errors.Is(m.err, shared.ErrInterrupted):
		title = styles.warn.Bold(true).Render("Run interrupted, partial results kept")
	case m.err != nil:
		title = styles.err.Render(fmt.Sprintf("Run failed: %v", m.err))
	default:
		title = styles.ok.Render("✓ Harvest Complete!")
	}

	info := fmt.Sprintf(
		"\nMode: %s\nCandidates: %d (%d edge cases, %d excluded)\nWork items: %d\nHarvested: %d\nSkipped: %d\nFailed: %d\nRows written: %d",
		m.result.Mode,
		m.result.Candidates,
		len(m.result.EdgeCases),
		m.result.Excluded,
		m.result.Items,
		len(m.result.Fresh),
		m.result.Skipped,
		len(m.result.Failures),
		len(m.result.Records),
	)

	var failed string
	if len(m.failures) > 0 {
		failed = "\n\n" + m.failureList.View()
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.quit})
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
