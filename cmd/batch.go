package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/sprs/sprs/internal/config"
	"github.com/sprs/sprs/internal/log"
	"github.com/sprs/sprs/internal/menu"
	"github.com/sprs/sprs/internal/patients/domain"
	"github.com/sprs/sprs/internal/presentation"
)

// Batch script operations.
const (
	opRegister = "register"
	opGet      = "get"
	opUpdate   = "update"
	opDelete   = "delete"
	opList     = "list"
)

// ErrBatchFailed is returned under --strict when any line failed.
var ErrBatchFailed = errors.New("batch had failing operations")

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Apply a script of registry operations",
	Long: `Reads one operation per line from file (or stdin) and prints one result per line.

Operations:
  register <name...>
  get <id>
  update <id> <name...>
  delete <id>
  list

Blank lines and lines starting with # are ignored. A failing line does not stop the run.`,
	Example: `  printf 'register Alice\nregister Bob\nlist\n' | sprs batch
  sprs batch ops.txt --format json --strict`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatchCmd,
}

func init() {
	batchCmd.Flags().String("format", "", "output format: table, json or yaml (default from output.format)")
	batchCmd.Flags().Bool("strict", false, "exit non-zero if any operation failed")
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	if formatName == "" {
		formatName = cfg.Output.Format
	}
	if err := config.ValidateFormat(formatName); err != nil {
		return err
	}
	format, err := presentation.ParseFormat(formatName)
	if err != nil {
		return err
	}
	strict, _ := cmd.Flags().GetBool("strict")

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening batch file: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, release, err := newService(cfg)
	if err != nil {
		return err
	}
	defer release(context.Background())

	results, err := runBatch(ctx, svc, in)
	if err != nil {
		return err
	}
	if err := presentation.NewFormatter(cmd.OutOrStdout(), format).FormatResults(results); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	log.Info(log.CatCLI, "Batch finished", "operations", len(results), "failed", failed)
	if strict && failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, failed, len(results))
	}
	return nil
}

// runBatch executes every operation in r against svc in order.
// Only read errors abort the run; operation errors are recorded per line.
func runBatch(ctx context.Context, svc menu.Service, r io.Reader) ([]presentation.ResultDTO, error) {
	results := []presentation.ResultDTO{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		results = append(results, execLine(ctx, svc, lineNo, line))
	}
	if err := scanner.Err(); err != nil {
		return results, fmt.Errorf("reading batch input: %w", err)
	}
	return results, nil
}

func execLine(ctx context.Context, svc menu.Service, lineNo int, line string) presentation.ResultDTO {
	op, rest := splitWord(line)
	res := presentation.ResultDTO{Line: lineNo, Op: strings.ToLower(op)}

	switch res.Op {
	case opRegister:
		id, err := svc.Register(ctx, rest)
		if err != nil {
			return withError(res, err)
		}
		res.ID = id
		res.Record = &presentation.RecordDTO{ID: id, Name: rest}
	case opGet:
		res.ID = rest
		rec, err := svc.Get(ctx, rest)
		if err != nil {
			return withError(res, err)
		}
		res.Record = recordPtr(rec)
	case opUpdate:
		id, name := splitWord(rest)
		res.ID = id
		rec, err := svc.UpdateName(ctx, id, name)
		if err != nil {
			return withError(res, err)
		}
		res.Record = recordPtr(rec)
	case opDelete:
		res.ID = rest
		if err := svc.Delete(ctx, rest); err != nil {
			return withError(res, err)
		}
	case opList:
		res.Records = presentation.FromDomainRecords(svc.List(ctx))
	default:
		res.Error = fmt.Sprintf("unknown operation %q", op)
	}
	return res
}

func withError(res presentation.ResultDTO, err error) presentation.ResultDTO {
	res.Error = err.Error()
	return res
}

func recordPtr(rec domain.Record) *presentation.RecordDTO {
	dto := presentation.FromDomainRecord(rec)
	return &dto
}

// splitWord returns the first whitespace-delimited word of s and the
// trimmed remainder, which keeps its inner spacing.
func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}
