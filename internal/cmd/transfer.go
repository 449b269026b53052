package cmd

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/lite-xl/webshell/internal/headless"
	"github.com/lite-xl/webshell/internal/shellconfig"
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Copy a file or directory out of a state directory",
	Long: `Copy a file out of the home directory persisted in --state, or archive a
directory as <name>.tar.gz. Paths are as the program sees them; relative paths
are taken from the home directory.

Examples:
  webshell export --state ./home
  webshell export --state ./home .config/lite-xl/init.lua -o backup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Copy host files into a state directory",
	Long: `Copy host files into the home directory persisted in --state. Files ending
in .tar.gz or .tgz are unpacked.

Examples:
  webshell import --state ./home notes.md
  webshell import --state ./home --dest .config/lite-xl plugins.tar.gz`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var (
	transferState string
	exportOutput  string
	importDest    string
)

func init() {
	for _, c := range []*cobra.Command{exportCmd, importCmd} {
		c.Flags().StringVar(&transferState, "state", "", "Host directory persisted as the home directory (required)")
		_ = c.MarkFlagRequired("state")
		rootCmd.AddCommand(c)
	}
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", ".", "Host directory to write to")
	importCmd.Flags().StringVar(&importDest, "dest", "", "Destination directory (default: home)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, storage, err := openState()
	if err != nil {
		return err
	}

	target := cfg.Home
	if len(args) > 0 {
		target = guestPath(cfg, args[0])
	}

	out, err := storage.Export(target, exportOutput)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", target, out)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, storage, err := openState()
	if err != nil {
		return err
	}

	dest := cfg.Home
	if importDest != "" {
		dest = guestPath(cfg, importDest)
	}

	written, err := storage.Import(dest, args)
	for _, p := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d file%s into %s\n", len(written), plural(len(written)), dest)
	return nil
}

func openState() (*shellconfig.Config, *headless.Storage, error) {
	cfg, err := shellconfig.LoadOrDefault(configDir)
	if err != nil {
		return nil, nil, err
	}
	storage, err := headless.OpenStorage(transferState, cfg.Home)
	if err != nil {
		return nil, nil, err
	}
	return cfg, storage, nil
}

// guestPath resolves p against the home directory unless it is absolute.
func guestPath(cfg *shellconfig.Config, p string) string {
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(cfg.Home, p)
}
