package app

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprs/sprs/internal/patients/application"
	"github.com/sprs/sprs/internal/patients/domain"
	"github.com/sprs/sprs/internal/pubsub"
	"github.com/sprs/sprs/internal/ui/toaster"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// createTestModel builds a model over a fresh registry.
func createTestModel(t *testing.T, opts Options) (Model, *application.Service) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	svc := application.NewService(domain.NewRegistry())
	t.Cleanup(func() {
		cancel()
		svc.Close()
	})

	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = "notty"
	}
	return New(ctx, svc, opts), svc
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// typeText sends one key per rune, as a terminal would.
func typeText(m Model, s string) Model {
	for _, r := range s {
		m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func view(m Model) string {
	return ansi.Strip(m.View())
}

func TestApp_StartsOnMainMenu(t *testing.T) {
	m, _ := createTestModel(t, Options{})

	assert.Equal(t, screenMain, m.screen)
	assert.Contains(t, view(m), "Welcome to the Simple Patient Record System (SPRS)")
	assert.Contains(t, view(m), "1. Run Application")
	assert.Contains(t, view(m), "2. Exit")
}

func TestApp_WindowSizeMsg(t *testing.T) {
	m, _ := createTestModel(t, Options{})

	m = send(m, tea.WindowSizeMsg{Width: 120, Height: 50})

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 50, m.height)
}

func TestApp_MainMenuChoices(t *testing.T) {
	m, _ := createTestModel(t, Options{})

	m = send(m, runes("9"))
	assert.Equal(t, screenMain, m.screen)
	assert.True(t, m.toaster.Visible())
	assert.Equal(t, "Input must be 1 or 2.", m.toaster.Message())

	m = send(m, runes("1"))
	assert.Equal(t, screenApp, m.screen)
	assert.Contains(t, view(m), "Update patient name (ID cannot be changed)")

	m = send(m, runes("6"))
	assert.Equal(t, screenMain, m.screen)

	m = send(m, runes("j"), enter)
	assert.True(t, m.quitting, "selecting Exit quits")
	assert.Equal(t, "Exiting SPRS...\n", m.View())
}

func TestApp_InvalidAppChoice(t *testing.T) {
	m, _ := createTestModel(t, Options{})

	m = send(m, runes("1"), runes("8"))
	assert.Equal(t, screenApp, m.screen)
	assert.Equal(t, "Input must be a whole number between 1 and 7 inclusively.", m.toaster.Message())

	m.toaster = m.toaster.Hide()
	m = send(m, runes("0"))
	assert.Equal(t, screenApp, m.screen)
	assert.True(t, m.toaster.Visible(), "digits outside the menu still report the valid range")
}

func TestApp_EndToEndScenario(t *testing.T) {
	m, svc := createTestModel(t, Options{})

	m = send(m, runes("1"))

	m = send(m, runes("1"))
	require.Equal(t, screenInput, m.screen)
	assert.Contains(t, view(m), "Enter Pateint Name:")
	m = send(typeText(m, "Alice"), enter)
	assert.Equal(t, "Registered: P-101", m.result)

	m = send(typeText(send(m, runes("1")), "Bob"), enter)
	assert.Equal(t, "Registered: P-102", m.result)

	m = send(typeText(send(m, runes("3")), "P-101"), enter)
	require.Equal(t, screenInput, m.screen)
	assert.Contains(t, view(m), "Enter New Name of P-101:")
	m = send(typeText(m, "Alicia"), enter)
	assert.Equal(t, "Updated: P-101: Alicia", m.result)

	m = send(typeText(send(m, runes("4")), "P-102"), enter)
	assert.Equal(t, "Deletion of P-102 successful.", m.result)
	assert.Equal(t, toaster.StyleSuccess, m.toaster.Style())

	m = send(m, runes("5"))
	require.Equal(t, screenList, m.screen)
	listing := view(m)
	assert.Contains(t, listing, "Patients (1)")
	assert.Contains(t, listing, "P-101  Alicia")
	assert.NotContains(t, listing, "Bob")

	require.Equal(t, []domain.Record{domain.NewRecord("P-101", "Alicia")}, svc.List(context.Background()))

	m = send(m, esc)
	assert.Equal(t, screenApp, m.screen)
}

func TestApp_RetrieveShowsRecord(t *testing.T) {
	m, svc := createTestModel(t, Options{})
	_, err := svc.Register(context.Background(), "Carol")
	require.NoError(t, err)

	m = send(m, runes("1"), runes("2"))
	m = send(typeText(m, " P-101 "), enter)

	assert.Equal(t, screenApp, m.screen)
	assert.Contains(t, view(m), "P-101: Carol")
}

func TestApp_ErrorsAreToasted(t *testing.T) {
	m, svc := createTestModel(t, Options{})

	m = send(m, runes("1"), runes("1"))
	m = send(typeText(m, "   "), enter)
	assert.Equal(t, screenApp, m.screen)
	assert.Equal(t, toaster.StyleError, m.toaster.Style())
	assert.Equal(t, "Name cannot be empty", m.toaster.Message())

	m = send(m, runes("2"), enter)
	assert.Equal(t, "Patient ID cannot be empty", m.toaster.Message())

	m = send(typeText(send(m, runes("3")), "P-999"), enter)
	assert.Equal(t, screenApp, m.screen, "unknown id is reported before asking for a name")
	assert.Equal(t, "No patient found with ID 'P-999'", m.toaster.Message())

	m = send(typeText(send(m, runes("4")), "P-999"), enter)
	assert.Equal(t, "No patient found with ID 'P-999'", m.toaster.Message())

	assert.Empty(t, svc.List(context.Background()))
	assert.Equal(t, "P-101", svc.NextID())
}

func TestApp_EscCancelsInput(t *testing.T) {
	m, svc := createTestModel(t, Options{})

	m = send(m, runes("1"), runes("1"))
	m = send(typeText(m, "Dave"), esc)

	assert.Equal(t, screenApp, m.screen)
	assert.Empty(t, svc.List(context.Background()))

	m = send(m, runes("1"))
	assert.Empty(t, m.input.Value(), "input is reset for the next prompt")
}

func TestApp_RegisterPlaceholderShowsNextID(t *testing.T) {
	m, _ := createTestModel(t, Options{})

	m = send(m, runes("1"), runes("1"))
	assert.Equal(t, "will be stored as P-101", m.input.Placeholder)
}

func TestApp_HelpScreen(t *testing.T) {
	m, _ := createTestModel(t, Options{})

	m = send(m, runes("1"), runes("?"))
	require.Equal(t, screenHelp, m.screen)
	assert.Contains(t, view(m), "SPRS help")
	assert.Contains(t, view(m), "ctrl+c")

	m = send(m, esc)
	assert.Equal(t, screenApp, m.screen, "help returns to the screen it was opened from")
}

func TestApp_CtrlCQuitsFromInput(t *testing.T) {
	m, _ := createTestModel(t, Options{})

	m = send(m, runes("1"), runes("1"))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(Model)

	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_ActivityPanel(t *testing.T) {
	m, _ := createTestModel(t, Options{ShowActivity: true})
	require.NotNil(t, m.changes)
	require.NotNil(t, m.Init())

	m = send(m, runes("1"))
	for i := 0; i < maxActivity+2; i++ {
		next, cmd := m.Update(pubsub.Event[application.Change]{
			Type:      pubsub.CreatedEvent,
			Payload:   application.Change{Record: domain.NewRecord("P-101", "Alice")},
			Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		})
		m = next.(Model)
		require.NotNil(t, cmd, "listener is re-armed after each event")
	}

	assert.Len(t, m.activity, maxActivity)
	assert.Contains(t, view(m), "Recent activity")
	assert.Contains(t, view(m), "03:04:05 registered P-101 (Alice)")
}

func TestDescribeChange(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := domain.NewRecord("P-101", "Alicia")

	got := describeChange(pubsub.Event[application.Change]{
		Type:      pubsub.UpdatedEvent,
		Payload:   application.Change{Record: rec, PreviousName: "Alice"},
		Timestamp: ts,
	})
	assert.Equal(t, "03:04:05 renamed P-101: Alice → Alicia", got)

	got = describeChange(pubsub.Event[application.Change]{Type: pubsub.DeletedEvent, Payload: application.Change{Record: rec}, Timestamp: ts})
	assert.Equal(t, "03:04:05 deleted P-101", got)
}

func TestApp_ListTruncatesLongNames(t *testing.T) {
	m, svc := createTestModel(t, Options{})
	_, err := svc.Register(context.Background(), strings.Repeat("x", 60))
	require.NoError(t, err)

	m = send(m, tea.WindowSizeMsg{Width: 30, Height: 20}, runes("1"), runes("5"))

	listing := view(m)
	assert.Contains(t, listing, "…")
	assert.NotContains(t, listing, strings.Repeat("x", 60))
}

func TestApp_EmptyList(t *testing.T) {
	m, _ := createTestModel(t, Options{})

	m = send(m, runes("1"), runes("5"))
	assert.Contains(t, view(m), "No patients registered.")
}

func TestApp_Teatest(t *testing.T) {
	m, svc := createTestModel(t, Options{ShowActivity: true})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	tm.Send(runes("1"))
	tm.Send(runes("1"))
	tm.Type("Alice")
	tm.Send(enter)

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("P-101"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(Model)
	require.True(t, ok)
	assert.True(t, final.quitting)
	require.Equal(t, []domain.Record{domain.NewRecord("P-101", "Alice")}, svc.List(context.Background()))
}
