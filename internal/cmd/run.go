package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lite-xl/webshell/internal/headless"
	"github.com/lite-xl/webshell/internal/shellconfig"
)

var runCmd = &cobra.Command{
	Use:   "run <program.wasm> [-- args...]",
	Short: "Run a WASI build of the program natively",
	Long: `Run a WASI build of the program with wazero, driven by the same host bridge
as the browser page. The --state directory is mounted as the home directory
and keeps its contents between runs. The command exits with the program's
exit status.

A program can import "webshell" "upload_files" and "download_files", each
taking a guest path as (pointer, length). upload_files copies the --upload
files into that directory; download_files writes the file, or the directory
as a .tar.gz, into --export-dir.

Examples:
  webshell run lite-xl.wasm --state ./home
  webshell run tool.wasm --state ./home -- --version`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var (
	runState     string
	runScale     float64
	runUploads   []string
	runExportDir string
)

func init() {
	runCmd.Flags().StringVar(&runState, "state", "", "Host directory persisted as the home directory (required)")
	runCmd.Flags().Float64Var(&runScale, "scale", 1, "Value passed as the device pixel ratio")
	runCmd.Flags().StringArrayVar(&runUploads, "upload", nil, "Host file imported when the program calls webshell.upload_files (repeatable)")
	runCmd.Flags().StringVar(&runExportDir, "export-dir", ".", "Directory receiving what the program passes to webshell.download_files")
	_ = runCmd.MarkFlagRequired("state")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := shellconfig.LoadOrDefault(configDir)
	if err != nil {
		return err
	}
	if len(args) > 1 {
		cfg.Arguments = args[1:]
	}

	module, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading program: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := headless.New(headless.Options{
		Config:    cfg,
		Module:    module,
		StateDir:  runState,
		Scale:     runScale,
		Stdin:     cmd.InOrStdin(),
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
		Uploads:   runUploads,
		ExportDir: runExportDir,
	})

	if err := host.Run(ctx); err != nil {
		if errors.Is(err, headless.ErrNotStarted) {
			return fmt.Errorf("%s: %w", cfg.Title, err)
		}
		return err
	}
	if code := host.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
