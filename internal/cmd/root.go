package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lite-xl/webshell/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "webshell",
	Short: "Host an Emscripten build of Lite XL in the browser",
	Long: `webshell generates and serves the page that boots an Emscripten build of
Lite XL (or any similar SDL program) in the browser, with its home directory
persisted in IndexedDB. The same host logic can run a WASI build natively.

Create a config:     webshell init
Generate the page:   webshell html --bridge bridge.wasm -o site/index.html
Serve the site:      webshell serve site
Run headless:        webshell run lite-xl.wasm --state ./home`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

var (
	logLevel  string
	configDir string
	version   = "dev"
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "C", ".", "Directory to search (upwards) for shell.yml")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger.SetLevel(level)
	return nil
}

// ExitError carries a process exit status out of a command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func Execute(v string) error {
	version = v
	rootCmd.Version = v

	err := rootCmd.Execute()
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
