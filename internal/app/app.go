// Package app contains the root Bubble Tea model for SPRS.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/sprs/sprs/internal/keys"
	"github.com/sprs/sprs/internal/log"
	"github.com/sprs/sprs/internal/patients/application"
	"github.com/sprs/sprs/internal/patients/domain"
	"github.com/sprs/sprs/internal/pubsub"
	"github.com/sprs/sprs/internal/ui/markdown"
	"github.com/sprs/sprs/internal/ui/picker"
	"github.com/sprs/sprs/internal/ui/styles"
	"github.com/sprs/sprs/internal/ui/toaster"
)

type screen int

const (
	screenMain screen = iota
	screenApp
	screenInput
	screenList
	screenHelp
)

// action is the operation an input prompt feeds.
type action int

const (
	actRegister action = iota
	actRetrieve
	actUpdateID
	actUpdateName
	actDelete
)

const (
	maxActivity   = 5
	defaultWidth  = 80
	defaultHeight = 24
	exitText      = "Exiting SPRS..."
)

// Options configures the root model.
type Options struct {
	ShowActivity  bool
	MarkdownStyle string
	Debug         bool
}

// Model is the root application state.
type Model struct {
	ctx  context.Context
	svc  *application.Service
	opts Options

	keys     keys.KeyMap
	help     help.Model
	mainMenu picker.Model
	appMenu  picker.Model
	input    textinput.Model
	toaster  toaster.Model

	screen     screen
	helpReturn screen
	action     action
	pendingID  string
	result     string
	records    []domain.Record
	activity   []string
	lastLog    string

	changes *pubsub.ContinuousListener[application.Change]
	logs    *log.LogListener

	width    int
	height   int
	quitting bool
}

// New creates the root model. Subscriptions live as long as ctx.
func New(ctx context.Context, svc *application.Service, opts Options) Model {
	m := Model{
		ctx:  ctx,
		svc:  svc,
		opts: opts,
		keys: keys.DefaultKeyMap(),
		help: help.New(),
		mainMenu: picker.New("Welcome to the Simple Patient Record System (SPRS)", []picker.Option{
			{Label: "Run Application", Value: "1"},
			{Label: "Exit", Value: "2"},
		}),
		appMenu: picker.New("Please select one of the following options:", []picker.Option{
			{Label: "Register new patient", Value: "1"},
			{Label: "Retrieve patient by ID", Value: "2"},
			{Label: "Update patient name (ID cannot be changed)", Value: "3"},
			{Label: "Delete patient by ID", Value: "4"},
			{Label: "List all patients", Value: "5"},
			{Label: "Go back to main", Value: "6"},
			{Label: "Exit", Value: "7"},
		}),
		input:   newInput(),
		toaster: toaster.New(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	if opts.ShowActivity {
		m.changes = svc.Listener(ctx)
	}
	if opts.Debug {
		m.logs = log.NewListener(ctx)
	}
	return m
}

func newInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.Width = 40
	return ti
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.changes != nil {
		cmds = append(cmds, m.changes.Listen())
	}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-40, 10)
		return m, nil

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case pubsub.Event[application.Change]:
		m.activity = append(m.activity, describeChange(msg))
		if len(m.activity) > maxActivity {
			m.activity = m.activity[len(m.activity)-maxActivity:]
		}
		return m, m.changes.Listen()

	case log.LogEvent:
		m.lastLog = strings.TrimSpace(msg.Payload)
		return m, m.logs.Listen()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m.quit()
		}
		switch m.screen {
		case screenMain:
			return m.updateMain(msg)
		case screenApp:
			return m.updateApp(msg)
		case screenInput:
			return m.updateInput(msg)
		case screenList:
			return m.updateList(msg)
		case screenHelp:
			return m.updateHelp(msg)
		}
	}

	if m.screen == screenInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		return m.showHelp(), nil
	case key.Matches(msg, m.keys.Enter):
		return m.chooseMain(m.mainMenu.Selected().Value)
	case key.Matches(msg, m.keys.Choose), isDigit(msg):
		return m.chooseMain(msg.String())
	case msg.String() == "q":
		return m.quit()
	}
	m.mainMenu, _ = m.mainMenu.Update(msg)
	return m, nil
}

// isDigit matches single digits outside the bound choices so they reach the
// out-of-range message.
func isDigit(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && msg.Runes[0] >= '0' && msg.Runes[0] <= '9'
}

func (m Model) chooseMain(choice string) (tea.Model, tea.Cmd) {
	switch choice {
	case "1":
		m.screen = screenApp
		m.result = ""
		log.Debug(log.CatUI, "entered application menu")
		return m, nil
	case "2":
		return m.quit()
	default:
		return m.toast("Input must be 1 or 2.", toaster.StyleError)
	}
}

func (m Model) updateApp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Help):
		return m.showHelp(), nil
	case key.Matches(msg, m.keys.Back):
		m.screen = screenMain
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		return m.chooseApp(m.appMenu.Selected().Value)
	case key.Matches(msg, m.keys.Choose), isDigit(msg):
		return m.chooseApp(msg.String())
	case msg.String() == "q":
		return m.quit()
	}
	m.appMenu, _ = m.appMenu.Update(msg)
	return m, nil
}

func (m Model) chooseApp(choice string) (tea.Model, tea.Cmd) {
	switch choice {
	case "1":
		return m.prompt(actRegister, "")
	case "2":
		return m.prompt(actRetrieve, "")
	case "3":
		return m.prompt(actUpdateID, "")
	case "4":
		return m.prompt(actDelete, "")
	case "5":
		m.records = m.svc.List(m.ctx)
		m.screen = screenList
		return m, nil
	case "6":
		m.screen = screenMain
		return m, nil
	case "7":
		return m.quit()
	default:
		return m.toast("Input must be a whole number between 1 and 7 inclusively.", toaster.StyleError)
	}
}

func (m Model) prompt(a action, pendingID string) (tea.Model, tea.Cmd) {
	m.action = a
	m.pendingID = pendingID
	m.screen = screenInput
	m.input.Reset()
	m.input.Placeholder = ""
	if a == actRegister {
		m.input.Placeholder = "will be stored as " + m.svc.NextID()
	}
	return m, m.input.Focus()
}

// promptLabel mirrors the wording of the plain prompt loop.
func (m Model) promptLabel() string {
	switch m.action {
	case actRegister:
		return "Enter Pateint Name: "
	case actRetrieve:
		return "Enter ID of Patient: "
	case actUpdateID:
		return "Enter ID of Patient to be Changed: "
	case actUpdateName:
		return fmt.Sprintf("Enter New Name of %s: ", m.pendingID)
	case actDelete:
		return "Enter ID of Patient to be Deleted: "
	default:
		return ""
	}
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.input.Blur()
		m.screen = screenApp
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		return m.submit(strings.TrimSpace(m.input.Value()))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(value string) (tea.Model, tea.Cmd) {
	m.input.Blur()
	m.screen = screenApp

	switch m.action {
	case actRegister:
		id, err := m.svc.Register(m.ctx, value)
		if err != nil {
			return m.fail(err)
		}
		m.result = "Registered: " + id
		return m.toast(m.result, toaster.StyleSuccess)

	case actRetrieve:
		rec, err := m.svc.Get(m.ctx, value)
		if err != nil {
			return m.fail(err)
		}
		m.result = formatRecord(rec)
		return m, nil

	case actUpdateID:
		if _, err := m.svc.Get(m.ctx, value); err != nil {
			return m.fail(err)
		}
		return m.prompt(actUpdateName, value)

	case actUpdateName:
		rec, err := m.svc.UpdateName(m.ctx, m.pendingID, value)
		if err != nil {
			return m.fail(err)
		}
		m.result = "Updated: " + formatRecord(rec)
		return m.toast(m.result, toaster.StyleSuccess)

	case actDelete:
		if err := m.svc.Delete(m.ctx, value); err != nil {
			return m.fail(err)
		}
		m.result = fmt.Sprintf("Deletion of %s successful.", value)
		return m.toast(m.result, toaster.StyleSuccess)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Enter), msg.String() == "q":
		m.screen = screenApp
	case key.Matches(msg, m.keys.Help):
		return m.showHelp(), nil
	}
	return m, nil
}

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Help), msg.String() == "q":
		m.screen = m.helpReturn
	}
	return m, nil
}

func (m Model) showHelp() Model {
	m.helpReturn = m.screen
	m.screen = screenHelp
	return m
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.result = ""
	return m.toast(err.Error(), toaster.StyleError)
}

func (m Model) toast(msg string, style toaster.Style) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(msg, style)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	log.Debug(log.CatUI, "quit requested")
	return m, tea.Quit
}

func describeChange(ev pubsub.Event[application.Change]) string {
	rec := ev.Payload.Record
	ts := ev.Timestamp.Format("15:04:05")
	switch ev.Type {
	case pubsub.CreatedEvent:
		return fmt.Sprintf("%s registered %s (%s)", ts, rec.ID(), rec.Name())
	case pubsub.UpdatedEvent:
		return fmt.Sprintf("%s renamed %s: %s → %s", ts, rec.ID(), ev.Payload.PreviousName, rec.Name())
	case pubsub.DeletedEvent:
		return fmt.Sprintf("%s deleted %s", ts, rec.ID())
	default:
		return fmt.Sprintf("%s %s %s", ts, ev.Type, rec.ID())
	}
}

func formatRecord(rec domain.Record) string {
	return fmt.Sprintf("%s: %s", rec.ID(), rec.Name())
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return exitText + "\n"
	}

	var body string
	switch m.screen {
	case screenMain:
		body = m.mainMenu.View()
	case screenApp:
		body = m.appView()
	case screenInput:
		body = styles.TitleStyle.Render(m.promptLabel()) + m.input.View()
	case screenList:
		body = m.listView()
	case screenHelp:
		body = m.helpView()
	}

	sections := []string{body}
	if t := m.toaster.View(); t != "" {
		sections = append(sections, t)
	}
	if m.opts.Debug && m.lastLog != "" {
		sections = append(sections, styles.SubtleStyle.Render(truncate.StringWithTail(m.lastLog, uint(max(m.width, 1)), "…")))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) appView() string {
	parts := []string{m.appMenu.View()}
	if m.result != "" {
		parts = append(parts, "", m.result)
	}
	if m.opts.ShowActivity && len(m.activity) > 0 {
		title := styles.SubtleStyle.Render("Recent activity")
		parts = append(parts, "", styles.PanelStyle.Render(title+"\n"+strings.Join(m.activity, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) listView() string {
	title := styles.TitleStyle.Render(fmt.Sprintf("Patients (%d)", len(m.records)))
	if len(m.records) == 0 {
		return title + "\n" + styles.SubtleStyle.Render("No patients registered.")
	}

	idWidth := 0
	for _, rec := range m.records {
		idWidth = max(idWidth, lipgloss.Width(rec.ID()))
	}
	nameWidth := uint(max(m.width-idWidth-4, 8))

	lines := make([]string, 0, len(m.records))
	for _, rec := range m.records {
		id := lipgloss.NewStyle().Width(idWidth).Render(rec.ID())
		lines = append(lines, id+"  "+truncate.StringWithTail(rec.Name(), nameWidth, "…"))
	}
	return title + "\n" + strings.Join(lines, "\n")
}

func (m Model) helpView() string {
	width := max(m.width-2, 20)
	r, err := markdown.New(width, m.opts.MarkdownStyle)
	if err != nil {
		log.ErrorErr(log.CatUI, "markdown renderer unavailable", err, "style", m.opts.MarkdownStyle)
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		log.ErrorErr(log.CatUI, "rendering help failed", err)
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}

const helpMarkdown = `# SPRS help

Patients are kept in memory only and are lost when the program exits.
Identifiers look like **P-101** and are never reused.

## Keys

- **1-7** choose a menu option directly
- **j/k** or arrows move the selection, **enter** selects
- **esc** goes back, **?** toggles this help
- **ctrl+c** quits from anywhere
`
