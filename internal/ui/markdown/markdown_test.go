package markdown

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r, err := New(60, "notty")
	require.NoError(t, err)
	require.Equal(t, 60, r.Width())

	out, err := r.Render("# Keys\n\n- **enter** select\n")
	require.NoError(t, err)

	plain := ansi.Strip(out)
	require.Contains(t, plain, "Keys")
	require.Contains(t, plain, "enter")
}

func TestNew_DefaultStyle(t *testing.T) {
	_, err := New(40, "")
	require.NoError(t, err)
}
