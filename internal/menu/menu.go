// Package menu implements the line-oriented SPRS prompt loop used by
// --plain and by terminals that cannot host the full-screen UI.
package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sprs/sprs/internal/log"
	"github.com/sprs/sprs/internal/patients/domain"
)

// Menu text shown to the user.
const (
	MainMenu = "Welcome to the Simple Patient Record System (SPRS)\n" +
		"--------------------------------------------------\n" +
		"Please select one of the following options:\n" +
		"\t 1. Run Application\n" +
		"\t 2. Exit\n"

	AppMenu = "Please select one of the following options:\n" +
		"\t1. Register new patient\n" +
		"\t2. Retrieve patient by ID\n" +
		"\t3. Update patient name (ID cannot be changed)\n" +
		"\t4. Delete patient by ID\n" +
		"\t5. List all patients\n" +
		"\t6. Go back to main\n" +
		"\t7. Exit\n"

	Separator  = "--------------------------------------------------"
	ChoiceText = "Your Choice: "
	ExitText   = "Exiting SPRS..."

	mainChoiceError = "Input must be 1 or 2."
	appChoiceError  = "Input must be a whole number between 1 and 7 inclusively."
)

// Service is the subset of the patient service the loop drives.
type Service interface {
	Register(ctx context.Context, name string) (string, error)
	Get(ctx context.Context, id string) (domain.Record, error)
	UpdateName(ctx context.Context, id, newName string) (domain.Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) []domain.Record
}

// Loop reads choices from in and writes prompts and results to out.
type Loop struct {
	svc Service
	in  *bufio.Scanner
	out io.Writer
}

// New creates a prompt loop over svc.
func New(svc Service, in io.Reader, out io.Writer) *Loop {
	return &Loop{svc: svc, in: bufio.NewScanner(in), out: out}
}

type outcome int

const (
	stay outcome = iota
	back
	quit
)

// Run shows the main menu until the user exits or input ends.
// It returns nil on a normal exit and ctx.Err() when cancelled.
func (l *Loop) Run(ctx context.Context) error {
	log.Debug(log.CatUI, "plain menu started")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(l.out, MainMenu+"\n")
		choice, ok := l.prompt(ChoiceText)
		if !ok {
			return l.exit()
		}
		fmt.Fprintln(l.out, Separator)

		switch choice {
		case "1":
			res, err := l.runApplication(ctx)
			if err != nil {
				return err
			}
			if res == quit {
				return l.exit()
			}
		case "2":
			return l.exit()
		default:
			l.printError(mainChoiceError)
		}
	}
}

func (l *Loop) runApplication(ctx context.Context) (outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return quit, err
		}

		fmt.Fprintln(l.out, Separator)
		fmt.Fprint(l.out, AppMenu+"\n")
		choice, ok := l.prompt(ChoiceText)
		if !ok {
			return quit, nil
		}
		fmt.Fprintln(l.out, Separator)

		res := l.dispatch(ctx, choice)
		if res != stay {
			return res, nil
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, choice string) outcome {
	switch choice {
	case "1":
		return l.register(ctx)
	case "2":
		return l.retrieve(ctx)
	case "3":
		return l.update(ctx)
	case "4":
		return l.remove(ctx)
	case "5":
		l.list(ctx)
		return stay
	case "6":
		return back
	case "7":
		return quit
	default:
		l.printError(appChoiceError)
		return stay
	}
}

func (l *Loop) register(ctx context.Context) outcome {
	name, ok := l.prompt("Enter Pateint Name: ")
	if !ok {
		return quit
	}
	id, err := l.svc.Register(ctx, name)
	if err != nil {
		l.printError(err.Error())
		return stay
	}
	fmt.Fprintln(l.out, "Registered: ", id)
	return stay
}

func (l *Loop) retrieve(ctx context.Context) outcome {
	id, ok := l.prompt("Enter ID of Patient: ")
	if !ok {
		return quit
	}
	rec, err := l.svc.Get(ctx, id)
	if err != nil {
		l.printError(err.Error())
		return stay
	}
	fmt.Fprintln(l.out, FormatRecord(rec))
	return stay
}

func (l *Loop) update(ctx context.Context) outcome {
	id, ok := l.prompt("Enter ID of Patient to be Changed: ")
	if !ok {
		return quit
	}
	if _, err := l.svc.Get(ctx, id); err != nil {
		l.printError(err.Error())
		return stay
	}

	name, ok := l.prompt(fmt.Sprintf("Enter New Name of %s: ", id))
	if !ok {
		return quit
	}
	rec, err := l.svc.UpdateName(ctx, id, name)
	if err != nil {
		l.printError(err.Error())
		return stay
	}
	fmt.Fprintln(l.out, "Updated: ", FormatRecord(rec))
	return stay
}

func (l *Loop) remove(ctx context.Context) outcome {
	id, ok := l.prompt("Enter ID of Patient to be Deleted: ")
	if !ok {
		return quit
	}
	if err := l.svc.Delete(ctx, id); err != nil {
		l.printError(err.Error())
		return stay
	}
	fmt.Fprintf(l.out, "Deletion of %s successful.\n", id)
	return stay
}

func (l *Loop) list(ctx context.Context) {
	records := l.svc.List(ctx)
	if len(records) == 0 {
		fmt.Fprintln(l.out, "No patients registered.")
		return
	}
	for _, rec := range records {
		fmt.Fprintln(l.out, FormatRecord(rec))
	}
}

// FormatRecord renders one record on a single line.
func FormatRecord(rec domain.Record) string {
	return fmt.Sprintf("%s: %s", rec.ID(), rec.Name())
}

// prompt writes label and reads one trimmed line. ok is false at end of input.
func (l *Loop) prompt(label string) (string, bool) {
	fmt.Fprint(l.out, label)
	if !l.in.Scan() {
		fmt.Fprintln(l.out)
		if err := l.in.Err(); err != nil {
			log.ErrorErr(log.CatUI, "reading input failed", err)
		}
		return "", false
	}
	return strings.TrimSpace(l.in.Text()), true
}

func (l *Loop) printError(msg string) {
	fmt.Fprintf(l.out, "***ERROR*** - %s\n", msg)
}

func (l *Loop) exit() error {
	fmt.Fprintln(l.out, ExitText)
	log.Debug(log.CatUI, "plain menu exited")
	return nil
}
