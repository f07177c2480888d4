package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/qrailibs/lmlang/internal/config"
	"github.com/qrailibs/lmlang/internal/errors"
	"github.com/qrailibs/lmlang/internal/interp"
	"github.com/qrailibs/lmlang/internal/lexer"
	"github.com/qrailibs/lmlang/internal/modules"
	"github.com/qrailibs/lmlang/internal/orchestrator"
	"github.com/qrailibs/lmlang/internal/parser"
	"github.com/qrailibs/lmlang/internal/semantic"
	"github.com/qrailibs/lmlang/internal/stdlib"
	"github.com/spf13/cobra"
)

var dumpAST bool

// scanErrorContextLines is how many source lines FormatDiagnosticsWithContext
// shows around each fault in the CLI's terminal report.
const scanErrorContextLines = 2

var runCmd = &cobra.Command{
	Use:   "run [project-dir]",
	Short: "Run an lml project",
	Long: `Run reads config.yml from project-dir (default: the current
directory), parses and scans the configured entrypoint, spawns the
containers it names, and executes the program.

Examples:
  lml run
  lml run ./examples/hello`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProject,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST before running")
}

func runProject(cmd *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
	}

	cfg, err := config.Load(filepath.Join(projectDir, "config.yml"))
	if err != nil {
		return err
	}

	entryPath := filepath.Join(projectDir, cfg.Entrypoint)
	source, err := os.ReadFile(entryPath)
	if err != nil {
		return fmt.Errorf("reading entrypoint %s: %w", entryPath, err)
	}

	p := parser.New(lexer.New(string(source)))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		diags := errors.FromStrings(msgs, string(source), entryPath)
		fmt.Fprintln(os.Stderr, errors.FormatDiagnosticsWithContext(diags, scanErrorContextLines, true))
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	if dumpAST {
		fmt.Fprintf(os.Stdout, "%+v\n", program)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch := orchestrator.New(projectDir)
	if err := orch.Init(ctx, cfg); err != nil {
		return fmt.Errorf("starting containers: %w", err)
	}
	defer orch.Destroy(context.Background())

	registry := stdlib.Default()
	loader := modules.New(modules.DiskResolver{}, registry, filepath.Dir(entryPath), orch)

	scanner := semantic.New(loader).WithBuiltins(registry.RootSignatures())
	result := scanner.Scan(program)
	if len(result.Diagnostics) > 0 {
		diags := make([]*errors.Diagnostic, len(result.Diagnostics))
		for i, d := range result.Diagnostics {
			diags[i] = errors.New(d.Pos, d.Message, string(source), entryPath)
			if d.Hint != "" {
				diags[i].WithHint(d.Hint)
			}
		}
		fmt.Fprintln(os.Stderr, errors.FormatDiagnosticsWithContext(diags, scanErrorContextLines, true))
		if logErr := writeScanErrorLog(projectDir, diags); logErr != nil {
			fmt.Fprintf(os.Stderr, "warning: writing scan-error log: %v\n", logErr)
		}
		return fmt.Errorf("scanning failed with %d diagnostic(s)", len(result.Diagnostics))
	}

	interpreter := interp.New(orch, loader.Values()).WithBuiltins(registry.RootValues())
	if err := interpreter.Run(ctx, program); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		return fmt.Errorf("execution failed")
	}

	return nil
}

// writeScanErrorLog writes the plain-text, ANSI-stripped scan-error report
// to <projectDir>/.lml/logs/latest.txt, alongside the per-runtime container
// workspaces Orchestrator.Init creates under the same .lml/ root.
func writeScanErrorLog(projectDir string, diags []*errors.Diagnostic) error {
	logDir := filepath.Join(projectDir, ".lml", "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	report := errors.FormatDiagnostics(diags, false)
	return os.WriteFile(filepath.Join(logDir, "latest.txt"), []byte(report), 0o644)
}
