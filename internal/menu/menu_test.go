package menu

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sprs/sprs/internal/patients/application"
	"github.com/sprs/sprs/internal/patients/domain"
)

func run(t *testing.T, input ...string) string {
	t.Helper()

	svc := application.NewService(domain.NewRegistry())
	t.Cleanup(svc.Close)

	var out bytes.Buffer
	loop := New(svc, strings.NewReader(strings.Join(input, "\n")+"\n"), &out)
	require.NoError(t, loop.Run(context.Background()))
	return out.String()
}

func TestRun_ExitFromMainMenu(t *testing.T) {
	out := run(t, "2")

	require.True(t, strings.HasPrefix(out, MainMenu))
	require.Contains(t, out, ChoiceText)
	require.True(t, strings.HasSuffix(out, ExitText+"\n"))
}

func TestRun_InvalidMainChoice(t *testing.T) {
	out := run(t, "9", "2")
	require.Contains(t, out, "***ERROR*** - Input must be 1 or 2.")
}

func TestRun_EndToEndScenario(t *testing.T) {
	out := run(t,
		"1",
		"1", "Alice",
		"1", "Bob",
		"3", "P-101", "Alicia",
		"4", "P-102",
		"5",
		"7",
	)

	require.Contains(t, out, "Registered:  P-101")
	require.Contains(t, out, "Registered:  P-102")
	require.Contains(t, out, "Enter New Name of P-101: ")
	require.Contains(t, out, "Updated:  P-101: Alicia")
	require.Contains(t, out, "Deletion of P-102 successful.")

	listing := out[strings.LastIndex(out, "Deletion of P-102 successful."):]
	require.Contains(t, listing, "P-101: Alicia")
	require.NotContains(t, listing, "P-102: Bob")
	require.True(t, strings.HasSuffix(out, ExitText+"\n"))
}

func TestRun_ErrorsAreReportedAndLoopContinues(t *testing.T) {
	out := run(t,
		"1",
		"1", "   ",
		"2", "",
		"2", "P-999",
		"4", "P-999",
		"8",
		"7",
	)

	require.Contains(t, out, "***ERROR*** - Name cannot be empty")
	require.Contains(t, out, "***ERROR*** - Patient ID cannot be empty")
	require.Contains(t, out, "***ERROR*** - No patient found with ID 'P-999'")
	require.Contains(t, out, "***ERROR*** - Input must be a whole number between 1 and 7 inclusively.")
	require.NotContains(t, out, "Registered:")
}

func TestRun_UpdateChecksIDBeforeAskingForName(t *testing.T) {
	out := run(t, "1", "3", "P-404", "7")

	require.Contains(t, out, "***ERROR*** - No patient found with ID 'P-404'")
	require.NotContains(t, out, "Enter New Name of")
}

func TestRun_RetrieveAndEmptyList(t *testing.T) {
	out := run(t, "1", "5", "1", "  Carol  ", "2", " P-101 ", "7")

	require.Contains(t, out, "No patients registered.")
	require.Contains(t, out, "P-101: Carol")
}

func TestRun_BackToMainMenu(t *testing.T) {
	out := run(t, "1", "6", "2")

	require.Equal(t, 2, strings.Count(out, "Welcome to the Simple Patient Record System (SPRS)"))
}

func TestRun_EndOfInputExits(t *testing.T) {
	svc := application.NewService(domain.NewRegistry())
	defer svc.Close()

	var out bytes.Buffer
	require.NoError(t, New(svc, strings.NewReader("1\n1\n"), &out).Run(context.Background()))
	require.True(t, strings.HasSuffix(out.String(), ExitText+"\n"))
}

func TestRun_Cancelled(t *testing.T) {
	svc := application.NewService(domain.NewRegistry())
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(svc, strings.NewReader("2\n"), &bytes.Buffer{}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
