package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Matches(t *testing.T) {
	km := DefaultKeyMap()

	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}}, km.Choose))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, km.Enter))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEsc}, km.Back))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlC}, km.Quit))
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, km.Down))
	require.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, km.Choose))
}

func TestDefaultKeyMap_ChooseCoversOnlyMenuOptions(t *testing.T) {
	km := DefaultKeyMap()

	for _, r := range "1234567" {
		require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}, km.Choose), string(r))
	}
	for _, r := range "890" {
		require.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}, km.Choose), string(r))
	}
	require.Equal(t, "1-7", km.Choose.Help().Key)
}

func TestKeyMap_Help(t *testing.T) {
	km := DefaultKeyMap()

	require.Len(t, km.ShortHelp(), 5)
	require.Len(t, km.FullHelp(), 2)
	for _, group := range km.FullHelp() {
		for _, b := range group {
			require.NotEmpty(t, b.Help().Key)
		}
	}
}
