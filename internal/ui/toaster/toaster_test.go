package toaster

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestToaster_ShowAndHide(t *testing.T) {
	m := New()
	require.False(t, m.Visible())
	require.Empty(t, m.View())

	m, cmd := m.Show("Registered: P-101", StyleSuccess)
	require.NotNil(t, cmd)
	require.True(t, m.Visible())
	require.Equal(t, "Registered: P-101", m.Message())
	require.Contains(t, ansi.Strip(m.View()), "✓ Registered: P-101")

	m = m.Hide()
	require.False(t, m.Visible())
	require.Empty(t, m.View())
}

func TestToaster_Styles(t *testing.T) {
	m, _ := New().Show("No patient found with ID 'P-999'", StyleError)
	require.Equal(t, StyleError, m.Style())
	require.Contains(t, ansi.Strip(m.View()), "✗ No patient found")

	m, _ = m.Show("updated", StyleInfo)
	require.Contains(t, ansi.Strip(m.View()), "• updated")
}

func TestToaster_StaleDismissIgnored(t *testing.T) {
	m, _ := New().Show("first", StyleSuccess)
	stale := DismissMsg{seq: m.seq}

	m, _ = m.Show("second", StyleSuccess)
	m = m.Update(stale)
	require.True(t, m.Visible(), "dismissal of an older toast keeps the newer one")
	require.Equal(t, "second", m.Message())

	m = m.Update(DismissMsg{seq: m.seq})
	require.False(t, m.Visible())
}
