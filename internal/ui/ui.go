package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"spotexport/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	RunningView ViewState = iota
	DoneView
)

// RunFunc performs one export end to end and returns the archive path.
// It is executed once in the background; progress updates arrive through
// the supplied callback.
type RunFunc func(ctx context.Context, progress tasks.ProgressFunc) (string, error)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	run          RunFunc
	progressChan chan tasks.ProgressUpdate
	update       tasks.ProgressUpdate
	archivePath  string
	err          error
	spinner      spinner.Model
	bar          progress.Model
	help         help.Model
	keys         keyMap
	width        int
}

// keyMap defines the key bindings for the TUI.
type keyMap struct {
	quit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.quit}}
}

type progressMsg tasks.ProgressUpdate

type runCompleteMsg struct {
	archivePath string
	err         error
}

// NewModel creates a TUI model around one export run.
func NewModel(ctx context.Context, run RunFunc) *Model {
	ctx, cancel := context.WithCancel(ctx)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	return &Model{
		ctx:          ctx,
		cancel:       cancel,
		view:         RunningView,
		run:          run,
		progressChan: make(chan tasks.ProgressUpdate, 32),
		spinner:      sp,
		bar:          progress.New(progress.WithDefaultGradient()),
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init starts the export run and the progress listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun(), m.awaitProgress())
}

// startRun executes the export in the background, bridging the synchronous
// progress callback onto the channel.
func (m *Model) startRun() tea.Cmd {
	return func() tea.Msg {
		path, err := m.run(m.ctx, func(u tasks.ProgressUpdate) {
			select {
			case m.progressChan <- u:
			case <-m.ctx.Done():
			}
		})
		close(m.progressChan)
		return runCompleteMsg{archivePath: path, err: err}
	}
}

// awaitProgress waits for the next update from the export loop.
func (m *Model) awaitProgress() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.progressChan
		if !ok {
			return nil
		}
		return progressMsg(u)
	}
}

// Update handles messages and returns the updated model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-4, 60)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			m.cancel()
			return m, tea.Quit
		}
		return m, nil

	case progressMsg:
		m.update = tasks.ProgressUpdate(msg)
		return m, m.awaitProgress()

	case runCompleteMsg:
		m.view = DoneView
		m.archivePath = msg.archivePath
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current state.
func (m *Model) View() string {
	switch m.view {
	case DoneView:
		if m.err != nil {
			return styles.err.Render("✗ Export failed") + "\n" + m.err.Error() + "\n"
		}
		return styles.ok.Render("✓ Export complete") + "\n" + fmt.Sprintf("Archive written to %s\n", m.archivePath)
	default:
		message := m.update.Message
		if message == "" {
			message = "Starting export..."
		}

		return fmt.Sprintf("%s\n%s %s\n%s\n\n%s\n",
			styles.title.Render("Spotify Export"),
			m.spinner.View(),
			message,
			m.bar.ViewAs(float64(m.update.Percent)/100),
			m.help.View(m.keys),
		)
	}
}

// Err returns the terminal error of the run, if any.
func (m *Model) Err() error {
	return m.err
}

// ArchivePath returns the written archive path after a successful run.
func (m *Model) ArchivePath() string {
	return m.archivePath
}
