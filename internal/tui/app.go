package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/moodlog/internal/config"
	"github.com/f3rmion/moodlog/internal/history"
	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/logging"
	"github.com/f3rmion/moodlog/internal/metrics"
	"github.com/f3rmion/moodlog/internal/session"
	"github.com/f3rmion/moodlog/internal/tui/views"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ViewType represents the current active view
type ViewType int

const (
	ViewJournal ViewType = iota
	ViewLoading
	ViewResults
	ViewDetail
	ViewHistory
	ViewSettings
)

// MenuItem represents a sidebar menu entry
type MenuItem struct {
	Label    string
	Icon     string
	View     ViewType
	Shortcut string
}

// Store persists reflections.
type Store interface {
	views.HistoryStore
	Save(ctx context.Context, e history.Entry) (history.Entry, error)
}

// Options are the dependencies of the app.
type Options struct {
	Context       context.Context
	Config        *config.Config
	ConfigPath    string
	Session       *session.Session
	Monitor       *session.Monitor      // optional
	ConfigChanges <-chan *config.Config // optional
	Store         Store                 // nil when history is disabled
	Metrics       *metrics.Recorder
	Logger        *zap.Logger
}

// ErrHistoryDisabled is reported when saving without a store.
var ErrHistoryDisabled = errors.New("history is disabled")

type analysisDoneMsg struct {
	outcome session.Outcome
}

type healthMsg session.HealthEvent

type configMsg struct {
	cfg *config.Config
}

// AppModel is the main TUI model
type AppModel struct {
	ctx     context.Context
	config  *config.Config
	session *session.Session
	monitor *session.Monitor
	configs <-chan *config.Config
	store   Store
	metrics *metrics.Recorder
	log     *zap.Logger

	// Layout state
	width        int
	height       int
	sidebarWidth int
	ready        bool

	// Navigation
	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool

	// Sub-models (views)
	journalView  views.JournalModel
	loadingView  views.LoadingModel
	resultsView  views.ResultsModel
	detailView   views.DetailModel
	historyView  views.HistoryModel
	settingsView views.SettingsModel

	// The reflection on screen, for saving
	entryID string
	excerpt string

	health *session.HealthEvent

	showHelp bool
}

// NewApp creates the TUI application.
func NewApp(opts Options) AppModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default("")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.OrNop(opts.Logger)

	sess := opts.Session
	if sess == nil {
		sess = session.New(nil, log)
	}

	var hv views.HistoryStore
	if opts.Store != nil {
		hv = opts.Store
	}

	return AppModel{
		ctx:          ctx,
		config:       cfg,
		session:      sess,
		monitor:      opts.Monitor,
		configs:      opts.ConfigChanges,
		store:        opts.Store,
		metrics:      opts.Metrics,
		log:          log,
		sidebarWidth: 20,
		currentView:  ViewJournal,
		menuItems: []MenuItem{
			{Label: "Journal", Icon: "✎", View: ViewJournal, Shortcut: "1"},
			{Label: "History", Icon: "◷", View: ViewHistory, Shortcut: "2"},
			{Label: "Settings", Icon: "⚙", View: ViewSettings, Shortcut: "3"},
		},

		journalView:  views.NewJournalModel(cfg.ArticleCount(), cfg.Platforms()),
		loadingView:  views.NewLoadingModel(),
		resultsView:  views.NewResultsModel(),
		detailView:   views.NewDetailModel(),
		historyView:  views.NewHistoryModel(hv),
		settingsView: views.NewSettingsModel(cfg, opts.ConfigPath),
	}
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForHealth(), m.waitForConfig(), m.historyView.Load())
}

// CurrentView returns the active view.
func (m AppModel) CurrentView() ViewType {
	return m.currentView
}

// Health returns the last health event, or nil before the first check.
func (m AppModel) Health() *session.HealthEvent {
	return m.health
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth := m.width - m.sidebarWidth - 8
		contentHeight := m.height - 4

		m.journalView.SetSize(contentWidth, contentHeight)
		m.loadingView.SetSize(contentWidth, contentHeight)
		m.resultsView.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.historyView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		return m, nil

	case healthMsg:
		ev := session.HealthEvent(msg)
		m.health = &ev
		return m, m.waitForHealth()

	case configMsg:
		// Backend settings only take effect on restart.
		m.config = msg.cfg
		m.settingsView.SetConfig(msg.cfg)
		m.journalView.SetDefaults(msg.cfg.ArticleCount(), msg.cfg.Platforms())
		m.log.Info("configuration reloaded")
		return m, m.waitForConfig()

	case views.SubmitMsg:
		return m.submit(msg)

	case analysisDoneMsg:
		return m.complete(msg.outcome)

	case views.SaveRequestMsg:
		return m, m.save()

	case views.SavedMsg:
		var cmds []tea.Cmd
		if msg.Err == nil {
			m.metrics.IncSaved()
			m.log.Debug("reflection saved", zap.String("id", msg.ID))
			cmds = append(cmds, m.historyView.Load())
		} else {
			m.log.Warn("saving reflection failed", zap.Error(msg.Err))
		}
		var cmd tea.Cmd
		m.resultsView, cmd = m.resultsView.Update(msg)
		return m, tea.Batch(append(cmds, cmd)...)

	case views.OpenDetailMsg:
		m.detailView.SetResult(m.resultsView.Snapshot().Result, m.session.Normalizer())
		m.currentView = ViewDetail
		return m, nil

	case views.CloseDetailMsg:
		m.currentView = ViewResults
		return m, nil

	case views.NewReflectionMsg:
		m.session.Reset()
		m.entryID, m.excerpt = "", ""
		cmd := m.journalView.Reset()
		m.setView(ViewJournal)
		return m, cmd

	case views.OpenEntryMsg:
		m.restore(msg.Entry)
		return m, nil
	}

	return m, m.broadcast(msg)
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	key := msg.String()
	if key == "ctrl+c" {
		m.session.Cancel()
		return m, tea.Quit
	}

	switch m.currentView {
	case ViewJournal:
		if m.journalView.Typing() {
			return m.delegateKey(msg)
		}
	case ViewLoading:
		switch key {
		case "esc":
			m.session.Cancel()
			m.currentView = ViewJournal
		case "q":
			m.session.Cancel()
			return m, tea.Quit
		}
		return m, nil
	case ViewDetail:
		switch key {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		}
		return m.delegateKey(msg)
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "esc":
		if m.sidebarActive {
			return m, tea.Quit
		}
		m.sidebarActive = true
		return m, nil
	case "1", "2", "3":
		item := m.menuItems[int(key[0]-'1')]
		return m, m.setView(item.View)
	case "tab":
		if m.currentView != ViewJournal {
			m.sidebarActive = !m.sidebarActive
			return m, nil
		}
	}

	if m.sidebarActive {
		switch key {
		case "j", "down":
			if m.selectedMenu < len(m.menuItems)-1 {
				m.selectedMenu++
			}
		case "k", "up":
			if m.selectedMenu > 0 {
				m.selectedMenu--
			}
		case "enter", "l", "right":
			return m, m.setView(m.menuItems[m.selectedMenu].View)
		}
		return m, nil
	}

	return m.delegateKey(msg)
}

// setView switches to a menu view. Journal returns to the results of the
// current reflection while one is shown.
func (m *AppModel) setView(v ViewType) tea.Cmd {
	m.sidebarActive = false
	for i, item := range m.menuItems {
		if item.View == v {
			m.selectedMenu = i
		}
	}

	switch v {
	case ViewJournal:
		switch m.session.State() {
		case session.StateSucceeded, session.StateFailed:
			m.currentView = ViewResults
			return nil
		case session.StateInFlight:
			m.currentView = ViewLoading
			return nil
		}
	case ViewHistory:
		m.currentView = v
		return m.historyView.Load()
	}
	m.currentView = v
	return nil
}

func (m AppModel) delegateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewJournal:
		m.journalView, cmd = m.journalView.Update(msg)
	case ViewResults:
		m.resultsView, cmd = m.resultsView.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}
	return m, cmd
}

// broadcast hands non-key messages to the views with async work. The
// loading and detail views only see them while shown.
func (m *AppModel) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.journalView, cmd = m.journalView.Update(msg)
	cmds = append(cmds, cmd)
	m.resultsView, cmd = m.resultsView.Update(msg)
	cmds = append(cmds, cmd)
	m.historyView, cmd = m.historyView.Update(msg)
	cmds = append(cmds, cmd)

	switch m.currentView {
	case ViewLoading:
		m.loadingView, cmd = m.loadingView.Update(msg)
		cmds = append(cmds, cmd)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m AppModel) submit(msg views.SubmitMsg) (tea.Model, tea.Cmd) {
	ticket, err := m.session.Submit(m.ctx, msg.Request)
	switch {
	case errors.Is(err, session.ErrBusy):
		return m, nil
	case err != nil:
		m.resultsView.SetSnapshot(m.session.Snapshot(), m.session.Normalizer())
		m.currentView = ViewResults
		return m, nil
	}

	m.entryID = uuid.NewString()
	m.excerpt = msg.Excerpt
	m.currentView = ViewLoading
	m.sidebarActive = false

	sess := m.session
	run := func() tea.Msg {
		return analysisDoneMsg{outcome: sess.Run(ticket)}
	}
	return m, tea.Batch(m.loadingView.Start(ticket.Request.Topic), run)
}

func (m AppModel) complete(o session.Outcome) (tea.Model, tea.Cmd) {
	if !m.session.Complete(o) {
		return m, nil
	}

	snap := m.session.Snapshot()
	m.resultsView.SetSnapshot(snap, m.session.Normalizer())
	m.currentView = ViewResults

	if snap.State == session.StateSucceeded && m.store != nil && m.config.History.Enabled {
		return m, m.save()
	}
	return m, nil
}

func (m AppModel) save() tea.Cmd {
	snap := m.resultsView.Snapshot()
	if snap.State != session.StateSucceeded {
		return nil
	}
	if m.store == nil {
		return func() tea.Msg { return views.SavedMsg{Err: ErrHistoryDisabled} }
	}

	entry := history.NewEntry(snap.Request, m.excerpt, snap.View, snap.Result)
	entry.ID = m.entryID
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		saved, err := store.Save(ctx, entry)
		return views.SavedMsg{ID: saved.ID, Err: err}
	}
}

func (m *AppModel) restore(e history.Entry) {
	req := journal.AnalysisRequest{Topic: e.Topic}
	if e.Mode != journal.ModeText {
		req.Attachment = &journal.Attachment{Mode: e.Mode}
	}
	m.session.Restore(req, e.Result)
	m.entryID = e.ID
	m.excerpt = e.Excerpt
	m.resultsView.SetSnapshot(m.session.Snapshot(), m.session.Normalizer())
	m.currentView = ViewResults
}

func (m AppModel) waitForHealth() tea.Cmd {
	if m.monitor == nil {
		return nil
	}
	events := m.monitor.Events()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case ev := <-events:
			return healthMsg(ev)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m AppModel) waitForConfig() tea.Cmd {
	if m.configs == nil {
		return nil
	}
	configs := m.configs
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case cfg, ok := <-configs:
			if !ok {
				return nil
			}
			return configMsg{cfg: cfg}
		case <-ctx.Done():
			return nil
		}
	}
}

// View renders the UI
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var content string
	switch m.currentView {
	case ViewJournal:
		content = m.journalView.View()
	case ViewLoading:
		content = m.loadingView.View()
	case ViewResults:
		content = m.resultsView.View()
	case ViewDetail:
		content = m.detailView.View()
	case ViewHistory:
		content = m.historyView.View()
	case ViewSettings:
		content = m.settingsView.View()
	}

	mainContent := ContentStyle.
		Width(m.width - m.sidebarWidth - 4).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), mainContent)
}

func (m AppModel) renderSidebar() string {
	items := []string{
		SidebarTitleStyle.Render(" ◐ moodlog "),
		"",
	}

	for i, item := range m.menuItems {
		label := item.Shortcut + ". " + item.Icon + " " + item.Label

		style := SidebarItemStyle
		if i == m.selectedMenu {
			if m.sidebarActive {
				style = SidebarItemActiveStyle
			} else {
				style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
			}
		}
		items = append(items, style.Render(label))
	}

	items = append(items, "", m.renderHealth())

	usedHeight := len(items) + 4
	for i := 0; i < m.height-usedHeight-2; i++ {
		items = append(items, "")
	}
	items = append(items, SidebarHelpStyle.Render("? Help  q Quit"))

	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (m AppModel) renderHealth() string {
	switch {
	case m.health == nil:
		return HealthUnknownStyle.Render("○ Checking API")
	case m.health.Healthy:
		return HealthOKStyle.Render("● API Ready")
	}
	return HealthErrorStyle.Render("● API Error")
}

func (m AppModel) renderHelp() string {
	line := func(k, d string) string {
		return HelpKeyStyle.Render(k) + HelpDescStyle.Render(d) + "\n"
	}

	help := HelpTitleStyle.Render("moodlog - AI mood journal") + "\n\n"

	help += HelpSectionStyle.Render("Global Keys") + "\n"
	help += line("1-3", "Journal, History, Settings")
	help += line("tab", "Toggle sidebar focus")
	help += line("?", "Show this help")
	help += line("q", "Quit")

	help += HelpSectionStyle.Render("Journal") + "\n"
	help += line("tab", "Switch Write / Image / Social")
	help += line("ctrl+s", "Analyze")
	help += line("esc / i", "Stop / start typing")

	help += HelpSectionStyle.Render("Analyzing") + "\n"
	help += line("esc", "Cancel and go back")

	help += HelpSectionStyle.Render("Results") + "\n"
	help += line("d", "Detailed analysis")
	help += line("v / y", "Show / copy JSON receipt")
	help += line("s", "Save to history")
	help += line("r", "New reflection / try again")

	help += HelpSectionStyle.Render("Detailed Analysis") + "\n"
	help += line("1 / 2 / 3", "Toggle sections")
	help += line("esc", "Back to results")

	help += HelpSectionStyle.Render("History") + "\n"
	help += line("enter", "Open reflection")
	help += line("x", "Delete reflection")

	help += "\n" + lipgloss.NewStyle().Foreground(ColorMuted).Italic(true).Render("Press any key to close")

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, HelpBoxStyle.Render(help))
}

// Run starts the TUI and blocks until it exits.
func Run(opts Options) error {
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(NewApp(opts), progOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
