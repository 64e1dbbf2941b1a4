// Package tui is the interactive front end: a form for the connection and
// file details, a live log viewport, and a history view, all driven by
// the Bubble Tea message loop.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"dbf2sql/internal/driver"
	"dbf2sql/internal/history"
	"dbf2sql/internal/loader"
	"dbf2sql/internal/logging"
	"dbf2sql/internal/mssql"
	"dbf2sql/internal/progress"
	"dbf2sql/internal/runner"
	"dbf2sql/internal/schema"
	"dbf2sql/internal/settings"
)

type sessionMode int

const (
	modeForm sessionMode = iota
	modeRunning
	modeHistory
)

type formField int

const (
	fieldServer formField = iota
	fieldAuth
	fieldUser
	fieldPassword
	fieldDatabase
	fieldFile
	fieldTable
	fieldBatch
	fieldEncoding
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Server",
	"Authentication",
	"User",
	"Password",
	"Database",
	"DBF file",
	"Table (blank = derive from file)",
	"Batch size",
	"Encoding",
}

var authCycle = []driver.AuthMode{driver.AuthIntegrated, driver.AuthSQLPassword, driver.AuthFederated}

var authLabels = map[driver.AuthMode]string{
	driver.AuthIntegrated:  "Integrated (OS login)",
	driver.AuthSQLPassword: "SQL Server login",
	driver.AuthFederated:   "Azure AD",
}

// ProgressMsg carries cumulative load counts from the worker.
type ProgressMsg struct {
	Inserted int64
	Read     int64
}

// TotalMsg reports the source file's declared record count once it is open.
type TotalMsg struct {
	Total int64
}

// LoadDoneMsg signals that the load worker finished.
type LoadDoneMsg struct {
	Outcome runner.Outcome
	Err     error
}

// DatabasesMsg delivers the result of a database discovery query.
type DatabasesMsg struct {
	Names []string
	Err   error
}

// TestConnMsg delivers the result of a connection test.
type TestConnMsg struct {
	Err error
}

// HistoryMsg delivers past runs for the history view.
type HistoryMsg struct {
	Runs []history.Run
	Err  error
}

// Model is the main TUI model.
type Model struct {
	inputs   [fieldCount]textinput.Model
	authMode driver.AuthMode
	focus    formField

	viewport  viewport.Model
	ready     bool
	width     int
	height    int
	logBuffer string

	mode       sessionMode
	cancelLoad context.CancelFunc
	runStarted time.Time
	snap       progress.Snapshot
	lastStatus string
	statusErr  error

	databases []string
	runs      []history.Run

	dataDir string
	cfg     *settings.Settings
	history *history.Store
}

// InitialModel builds the form, pre-filled from saved settings.
func InitialModel(dataDir string, hist *history.Store) Model {
	cfg := settings.Load(dataDir)

	m := Model{
		dataDir:  dataDir,
		cfg:      cfg,
		history:  hist,
		authMode: driver.AuthIntegrated,
		focus:    fieldServer,
	}
	if mode, err := driver.ParseAuthMode(cfg.AuthMode); err == nil {
		m.authMode = mode
	}

	for f := formField(0); f < fieldCount; f++ {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		m.inputs[f] = ti
	}
	m.inputs[fieldServer].SetValue(cfg.LastServer)
	m.inputs[fieldUser].SetValue(cfg.LastUser)
	m.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	m.inputs[fieldPassword].EchoCharacter = '•'
	m.inputs[fieldDatabase].SetValue(cfg.LastDatabase)
	m.inputs[fieldBatch].SetValue(strconv.Itoa(cfg.BatchSize))
	m.inputs[fieldBatch].CharLimit = 7
	m.inputs[fieldEncoding].SetValue(cfg.Encoding)
	m.inputs[fieldServer].Focus()
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// cycleAuthMode advances to the next auth mode. The credential lifecycle
// is ConnSpec's: SetMode discards whatever was typed for the previous
// mode, and the form mirrors the spec back.
func (m *Model) cycleAuthMode(delta int) {
	idx := 0
	for i, mode := range authCycle {
		if mode == m.authMode {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(authCycle)) % len(authCycle)

	spec := m.connSpec()
	spec.SetMode(authCycle[idx])
	m.inputs[fieldUser].SetValue(spec.User)
	m.inputs[fieldPassword].SetValue(spec.Password)
	m.authMode = spec.Mode
}

func (m *Model) setFocus(f formField) {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focus = f
	if f != fieldAuth {
		m.inputs[f].Focus()
	}
}

func (m *Model) nextField(delta int) {
	f := m.focus
	for {
		f = (f + formField(delta) + fieldCount) % fieldCount
		// User and password are not part of the integrated flow.
		if m.authMode == driver.AuthIntegrated && (f == fieldUser || f == fieldPassword) {
			continue
		}
		break
	}
	m.setFocus(f)
}

func (m *Model) appendLog(s string) {
	m.logBuffer += s
	if !strings.HasSuffix(s, "\n") {
		m.logBuffer += "\n"
	}
	if m.ready {
		m.viewport.SetContent(m.logBuffer)
		m.viewport.GotoBottom()
	}
}

// connSpec builds the connection spec from the current form values.
func (m *Model) connSpec() driver.ConnSpec {
	return driver.ConnSpec{
		Server:          strings.TrimSpace(m.inputs[fieldServer].Value()),
		Database:        strings.TrimSpace(m.inputs[fieldDatabase].Value()),
		Mode:            m.authMode,
		User:            m.inputs[fieldUser].Value(),
		Password:        m.inputs[fieldPassword].Value(),
		TrustServerCert: true,
		DialTimeout:     15 * time.Second,
	}
}

func (m *Model) batchSize() int {
	n, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldBatch].Value()))
	if err != nil || n < 1 {
		return loader.DefaultBatchSize
	}
	return n
}

func (m *Model) tableName() string {
	if t := strings.TrimSpace(m.inputs[fieldTable].Value()); t != "" {
		return t
	}
	file := strings.TrimSpace(m.inputs[fieldFile].Value())
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	return schema.TableNameFromFile(base, m.cfg.TablePrefix)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 18
		if vpHeight < 4 {
			vpHeight = 4
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = vpHeight
		}
		m.viewport.SetContent(m.logBuffer)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case LogMsg:
		m.appendLog(string(msg))
		return m, nil

	case ProgressMsg:
		m.snap.RowsInserted = msg.Inserted
		m.snap.RowsRead = msg.Read
		m.snap.Elapsed = time.Since(m.runStarted)
		return m, nil

	case TotalMsg:
		m.snap.RowsTotal = msg.Total
		return m, nil

	case LoadDoneMsg:
		m.mode = modeForm
		m.cancelLoad = nil
		if msg.Err != nil {
			m.lastStatus = msg.Outcome.Status
			m.statusErr = msg.Err
			m.appendLog(fmt.Sprintf("Load failed: %v", msg.Err))
			if msg.Outcome.Result.RowsInserted > 0 {
				m.appendLog(fmt.Sprintf("%d rows were committed before the failure", msg.Outcome.Result.RowsInserted))
			}
		} else {
			m.lastStatus = history.StatusCompleted
			m.statusErr = nil
			m.snap.RowsInserted = msg.Outcome.Result.RowsInserted
			m.snap.Elapsed = msg.Outcome.Result.Duration
			m.appendLog(fmt.Sprintf("Done: %d rows loaded into %s", msg.Outcome.Result.RowsInserted, msg.Outcome.Table))
			m.rememberSettings()
		}
		return m, nil

	case DatabasesMsg:
		if msg.Err != nil {
			m.appendLog(fmt.Sprintf("Database discovery failed: %v", msg.Err))
			return m, nil
		}
		m.databases = msg.Names
		if len(msg.Names) == 0 {
			m.appendLog("No user databases found")
		} else {
			m.appendLog("Databases: " + strings.Join(msg.Names, ", "))
		}
		return m, nil

	case TestConnMsg:
		if msg.Err != nil {
			m.appendLog(fmt.Sprintf("Connection test failed: %v", msg.Err))
		} else {
			m.appendLog("Connection OK")
		}
		return m, nil

	case HistoryMsg:
		if msg.Err != nil {
			m.appendLog(fmt.Sprintf("Could not read history: %v", msg.Err))
			return m, nil
		}
		m.runs = msg.Runs
		m.mode = modeHistory
		return m, nil
	}

	return m, m.updateFocusedInput(msg)
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	if m.focus == fieldAuth {
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeHistory {
		switch msg.String() {
		case "esc", "q", "ctrl+c":
			m.mode = modeForm
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		if m.mode == modeRunning && m.cancelLoad != nil {
			m.appendLog("Cancelling after the current batch...")
			m.cancelLoad()
			return m, nil
		}
		return m, tea.Quit

	case "esc":
		if m.mode == modeRunning {
			return m, nil
		}
		return m, tea.Quit
	}

	if m.mode == modeRunning {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "tab", "down":
		m.nextField(1)
		return m, nil
	case "shift+tab", "up":
		m.nextField(-1)
		return m, nil
	case "left":
		if m.focus == fieldAuth {
			m.cycleAuthMode(-1)
			return m, nil
		}
	case "right", " ":
		if m.focus == fieldAuth {
			m.cycleAuthMode(1)
			return m, nil
		}
	case "enter":
		if m.focus == fieldAuth {
			m.cycleAuthMode(1)
			return m, nil
		}
		if m.focus == fieldCount-1 {
			return m, m.startLoad()
		}
		m.nextField(1)
		return m, nil
	case "f5":
		return m, m.startLoad()
	case "ctrl+t":
		return m, m.testConnCmd()
	case "ctrl+l":
		return m, m.listDatabasesCmd()
	case "ctrl+h":
		return m, m.historyCmd()
	}

	return m, m.updateFocusedInput(msg)
}

func (m *Model) rememberSettings() {
	m.cfg.LastServer = strings.TrimSpace(m.inputs[fieldServer].Value())
	m.cfg.LastDatabase = strings.TrimSpace(m.inputs[fieldDatabase].Value())
	m.cfg.AuthMode = string(m.authMode)
	m.cfg.LastUser = m.inputs[fieldUser].Value()
	m.cfg.BatchSize = m.batchSize()
	if enc := strings.TrimSpace(m.inputs[fieldEncoding].Value()); enc != "" {
		m.cfg.Encoding = enc
	}
	m.cfg.RememberServer(m.cfg.LastServer)
	if err := m.cfg.Save(m.dataDir); err != nil {
		logging.Warn("Could not save settings: %v", err)
	}
}

// startLoad validates the form and kicks off the worker goroutine. The
// worker reports back exclusively through program messages.
func (m *Model) startLoad() tea.Cmd {
	spec := m.connSpec()
	if err := spec.Validate(); err != nil {
		m.appendLog(fmt.Sprintf("Not ready: %v", err))
		return nil
	}
	file := strings.TrimSpace(m.inputs[fieldFile].Value())
	if file == "" {
		m.appendLog("Not ready: missing required field: dbf file")
		return nil
	}

	params := runner.Params{
		Spec:      spec,
		File:      file,
		Encoding:  strings.TrimSpace(m.inputs[fieldEncoding].Value()),
		Table:     m.tableName(),
		BatchSize: m.batchSize(),
		History:   m.history,
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelLoad = cancel
	m.mode = modeRunning
	m.runStarted = time.Now()
	m.snap = progress.Snapshot{Table: params.Table}
	m.lastStatus = history.StatusRunning
	m.statusErr = nil
	m.appendLog(fmt.Sprintf("Starting load of %s into %s", file, params.Table))

	return func() tea.Msg {
		p := GetProgramRef()
		if p == nil {
			cancel()
			return LoadDoneMsg{Err: fmt.Errorf("internal error: no program reference")}
		}

		params.Progress = func(inserted, read int64) {
			p.Send(ProgressMsg{Inserted: inserted, Read: read})
		}
		params.OnOpen = func(total int64) {
			p.Send(TotalMsg{Total: total})
		}

		go func() {
			defer cancel()
			out, err := runner.Run(ctx, params)
			p.Send(LoadDoneMsg{Outcome: out, Err: err})
		}()
		return nil
	}
}

func (m *Model) testConnCmd() tea.Cmd {
	spec := m.connSpec()
	if err := spec.Validate(); err != nil {
		m.appendLog(fmt.Sprintf("Not ready: %v", err))
		return nil
	}
	m.appendLog("Testing connection...")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		client, err := mssql.Connect(ctx, spec)
		if err != nil {
			return TestConnMsg{Err: err}
		}
		client.Close()
		return TestConnMsg{}
	}
}

func (m *Model) listDatabasesCmd() tea.Cmd {
	spec := m.connSpec()
	if spec.Database == "" {
		// Discovery needs a database to land in; master is always there.
		spec.Database = "master"
	}
	if err := spec.Validate(); err != nil {
		m.appendLog(fmt.Sprintf("Not ready: %v", err))
		return nil
	}
	m.appendLog("Listing databases...")
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		client, err := mssql.Connect(ctx, spec)
		if err != nil {
			return DatabasesMsg{Err: err}
		}
		defer client.Close()
		names, err := client.ListDatabases(ctx)
		return DatabasesMsg{Names: names, Err: err}
	}
}

func (m *Model) historyCmd() tea.Cmd {
	if m.history == nil {
		m.appendLog("History is not available")
		return nil
	}
	store := m.history
	return func() tea.Msg {
		runs, err := store.Recent(20)
		return HistoryMsg{Runs: runs, Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.mode == modeHistory {
		return m.historyView()
	}

	var b strings.Builder
	b.WriteString(styleTitle.Render("DBF to SQL Server Converter"))
	b.WriteString("\n")
	b.WriteString(m.formView())
	b.WriteString("\n")
	b.WriteString(styleViewport.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.statusBarView())
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("tab: next field | f5: convert | ctrl+t: test connection | ctrl+l: list databases | ctrl+h: history | ctrl+c: quit/cancel"))
	return b.String()
}

func (m Model) formView() string {
	var rows []string
	for f := formField(0); f < fieldCount; f++ {
		if m.authMode == driver.AuthIntegrated && (f == fieldUser || f == fieldPassword) {
			continue
		}
		label := fieldLabels[f]
		style := styleLabel
		if f == m.focus {
			style = styleLabelFocused
		}

		var value string
		if f == fieldAuth {
			marker := "  "
			if f == m.focus {
				marker = "‹ "
			}
			value = marker + authLabels[m.authMode]
			if f == m.focus {
				value += " ›"
			}
			value = styleValue.Render(value)
		} else {
			value = m.inputs[f].View()
		}
		rows = append(rows, fmt.Sprintf("%s %s", style.Width(34).Render(label+":"), value))
	}
	return styleFormContainer.Render(strings.Join(rows, "\n"))
}

func (m Model) statusBarView() string {
	switch {
	case m.mode == modeRunning:
		elapsed := time.Since(m.runStarted).Round(time.Second)
		line := fmt.Sprintf("LOADING %s | %s", m.snap, elapsed)
		if rate := m.snap.RowsPerSecond(); rate > 0 {
			line += fmt.Sprintf(" | %d rows/s", rate)
		}
		return styleStatusRunning.Render(line)
	case m.statusErr != nil:
		return styleStatusFailed.Render(fmt.Sprintf("FAILED: %v", m.statusErr))
	case m.lastStatus == history.StatusCompleted:
		return styleStatusDone.Render(fmt.Sprintf("DONE: %d rows loaded", m.snap.RowsInserted))
	default:
		return styleStatusText.Render("Ready")
	}
}

func (m Model) historyView() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Run History"))
	b.WriteString("\n")
	if len(m.runs) == 0 {
		b.WriteString(styleLabel.Render("No runs yet"))
	}
	for _, r := range m.runs {
		line := fmt.Sprintf("%s  %-10s %-24s -> %-24s %8d rows",
			r.StartedAt.Format("2006-01-02 15:04"), r.Status,
			filepath.Base(r.SourceFile), r.Table, r.RowsInserted)
		switch r.Status {
		case history.StatusCompleted:
			b.WriteString(styleSuccess.Render(line))
		case history.StatusFailed:
			b.WriteString(styleError.Render(line))
			if r.ErrorMessage != "" {
				b.WriteString("\n" + styleLabel.Render("          "+r.ErrorMessage))
			}
		default:
			b.WriteString(styleValue.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("esc: back"))
	return b.String()
}

// Start runs the interactive UI until the user quits.
func Start(dataDir string, hist *history.Store) error {
	p := tea.NewProgram(InitialModel(dataDir, hist), tea.WithAltScreen())
	SetProgramRef(p)
	defer SetProgramRef(nil)

	// Log lines land in the viewport instead of corrupting the screen.
	logging.SetOutput(programWriter{})
	defer logging.SetOutput(nil)

	_, err := p.Run()
	return err
}
