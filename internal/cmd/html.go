package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lite-xl/webshell/internal/html"
	"github.com/lite-xl/webshell/internal/shellconfig"
)

var htmlCmd = &cobra.Command{
	Use:   "html",
	Short: "Generate the self-contained shell page",
	Long: `Generate index.html for static hosting. The page embeds the host bridge
(built with GOOS=js GOARCH=wasm from ./internal/wasm), wasm_exec.js, styles and
the shell.yml settings, and loads the program's Emscripten script next to it.

Examples:
  GOOS=js GOARCH=wasm go build -o bridge.wasm ./internal/wasm
  webshell html --bridge bridge.wasm -o site/index.html
  webshell html --bridge bridge.wasm > index.html`,
	Args: cobra.NoArgs,
	RunE: runHTML,
}

var (
	htmlOutputFile string
	htmlBridge     string
	htmlWasmExec   string
	htmlGoroot     string
)

func init() {
	htmlCmd.Flags().StringVarP(&htmlOutputFile, "output", "o", "", "Output file path (default: stdout)")
	htmlCmd.Flags().StringVar(&htmlBridge, "bridge", "bridge.wasm", "Host bridge binary")
	htmlCmd.Flags().StringVar(&htmlWasmExec, "wasm-exec", "", "wasm_exec.js to embed (default: from GOROOT)")
	htmlCmd.Flags().StringVar(&htmlGoroot, "goroot", "", "Go installation providing wasm_exec.js")
	rootCmd.AddCommand(htmlCmd)
}

func runHTML(cmd *cobra.Command, args []string) error {
	cfg, err := shellconfig.LoadOrDefault(configDir)
	if err != nil {
		return err
	}

	bridgeWASM, err := os.ReadFile(htmlBridge)
	if err != nil {
		return fmt.Errorf("reading bridge: %w", err)
	}

	var wasmExec []byte
	if htmlWasmExec != "" {
		wasmExec, err = os.ReadFile(htmlWasmExec)
	} else {
		wasmExec, err = html.WasmExecJS(htmlGoroot)
	}
	if err != nil {
		return err
	}

	content, err := html.GenerateShellHTML(bridgeWASM, wasmExec, cfg, version)
	if err != nil {
		return err
	}

	if htmlOutputFile == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), content)
		return err
	}

	if dir := filepath.Dir(htmlOutputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(htmlOutputFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Generated %s (%s)\n", htmlOutputFile, formatSize(int64(len(content))))
	return nil
}
