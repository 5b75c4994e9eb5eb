package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/worldwise/internal/cities"
	"github.com/five82/worldwise/internal/prefs"
	"github.com/five82/worldwise/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewList View = iota
	ViewDetail
	ViewCountries
)

// Store is the part of state.Store the UI drives.
type Store interface {
	Snapshot() state.Snapshot
	LoadAll(ctx context.Context) error
	LoadOne(ctx context.Context, id cities.ID) error
	Create(ctx context.Context, draft cities.Draft) error
	Remove(ctx context.Context, id cities.ID) error
}

var _ Store = (*state.Store)(nil)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     Store
	ThemeName string
	PrefsPath string
	Logger    *slog.Logger
	PollTick  time.Duration // how often the snapshot is re-read; zero uses 500ms
	Now       func() time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	store     Store
	prefsPath string
	logger    *slog.Logger
	pollTick  time.Duration
	now       func() time.Time

	theme       Theme
	keys        keyMap
	help        help.Model
	spinner     spinner.Model
	currentView View
	width       int
	height      int
	ready       bool

	snapshot    state.Snapshot
	selectedRow int

	modal    Modal
	showHelp bool
	notice   string
}

// New creates a new Bubble Tea model. When the store already has a focused
// city the model opens on its detail view.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = 500 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.DefaultTheme
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		prefsPath:   prefsPath,
		logger:      logger,
		pollTick:    pollTick,
		now:         now,
		theme:       GetTheme(themeName),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		currentView: ViewList,
	}
	if m.store != nil {
		m.applySnapshot(m.store.Snapshot())
		if m.snapshot.HasCurrent {
			m.currentView = ViewDetail
			m.selectCurrent()
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		m.spinner.Tick,
		tickCmd(m.pollTick),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		return m, tea.Batch(fetchSnapshotCmd(m.store), tickCmd(m.pollTick))

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case opDoneMsg:
		return m.handleOpDone(msg)

	case draftSubmittedMsg:
		return m, m.storeCmd(opCreate, 0, func(ctx context.Context) error {
			return m.store.Create(ctx, msg.draft)
		})

	case removeRequestedMsg:
		return m, m.storeCmd(opRemove, msg.id, func(ctx context.Context) error {
			return m.store.Remove(ctx, msg.id)
		})

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.modal != nil {
		var cmd tea.Cmd
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var (
			cmd  tea.Cmd
			done bool
		)
		m.modal, cmd, done = m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = m.theme.Name })
		m.notice = "Theme: " + m.theme.Name
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, m.storeCmd(opLoadAll, 0, m.store.LoadAll)

	case key.Matches(msg, m.keys.New):
		m.modal = newCityForm(m.now())
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Countries):
		m.currentView = ViewCountries
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewList {
			return m, tea.Quit
		}
		m.currentView = ViewList
		return m, nil
	}

	switch m.currentView {
	case ViewList:
		return m.handleListKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	}
	return m, nil
}

// handleListKey processes keyboard input for the list view.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.snapshot.Cities)
	if count == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.selectedRow < count-1 {
			m.selectedRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	case key.Matches(msg, m.keys.Open):
		city := m.snapshot.Cities[m.selectedRow]
		return m, m.storeCmd(opLoadOne, city.ID, func(ctx context.Context) error {
			return m.store.LoadOne(ctx, city.ID)
		})
	case key.Matches(msg, m.keys.Delete):
		m.modal = confirmDelete{city: m.snapshot.Cities[m.selectedRow]}
	}
	return m, nil
}

// handleDetailKey processes keyboard input for the detail view.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Delete) && m.snapshot.HasCurrent {
		m.modal = confirmDelete{city: m.snapshot.Current}
	}
	return m, nil
}

// handleOpDone reacts to a finished store operation. Views only change on
// success; a failed load leaves the user where they were.
func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.WarnContext(m.ctx, "ui store operation not run",
			slog.String("op", msg.op.String()),
			slog.String("error", msg.err.Error()),
		)
	}
	m.applySnapshot(m.store.Snapshot())
	if m.snapshot.Error != "" {
		return m, nil
	}

	switch msg.op {
	case opLoadOne, opCreate:
		if m.snapshot.HasCurrent {
			m.currentView = ViewDetail
			m.selectCurrent()
			id := m.snapshot.Current.ID
			m.savePrefs(func(p *prefs.Prefs) { p.LastCityID = id })
		}
	case opRemove:
		m.notice = "Removed city " + msg.id.String()
		if !m.snapshot.HasCurrent && m.currentView == ViewDetail {
			m.currentView = ViewList
		}
		m.savePrefs(func(p *prefs.Prefs) {
			if p.LastCityID == msg.id {
				p.LastCityID = 0
			}
		})
	}
	return m, nil
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	if m.selectedRow >= len(snap.Cities) {
		m.selectedRow = len(snap.Cities) - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

// selectCurrent moves the list cursor onto the focused city.
func (m *Model) selectCurrent() {
	for i, c := range m.snapshot.Cities {
		if c.ID == m.snapshot.Current.ID {
			m.selectedRow = i
			return
		}
	}
}

func (m Model) savePrefs(fn func(*prefs.Prefs)) {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Update(m.prefsPath, fn); err != nil {
		m.logger.Warn("save prefs", slog.String("error", err.Error()))
	}
}

// Store operations

type storeOp int

const (
	opLoadAll storeOp = iota
	opLoadOne
	opCreate
	opRemove
)

func (o storeOp) String() string {
	switch o {
	case opLoadOne:
		return "load one"
	case opCreate:
		return "create"
	case opRemove:
		return "remove"
	default:
		return "load all"
	}
}

// opDoneMsg reports that a store operation returned. err is only set for
// setup problems; gateway failures are read from the snapshot.
type opDoneMsg struct {
	op  storeOp
	id  cities.ID
	err error
}

// storeCmd runs a store operation off the update loop.
func (m Model) storeCmd(op storeOp, id cities.ID, run func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, id: id, err: run(ctx)}
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
