package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lite-xl/webshell/internal/shellconfig"
	"github.com/lite-xl/webshell/internal/translations"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a shell.yml with the default settings",
	Long: `Create a shell.yml describing how the page boots the program.

The defaults match the stock Lite XL Emscripten build: the program is
/usr/bin/lite-xl, loaded from lite-xl.js, with its home directory at
/home/web_user persisted in IndexedDB.

Example:
  webshell init site
  webshell init --title "My Editor" --env LITE_USERDIR=/home/web_user/.config/lite-xl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initTitle    string
	initProgram  string
	initScript   string
	initHome     string
	initLanguage string
	initArgs     []string
	initEnv      []string
	initForce    bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initTitle, "title", "", "Program name shown on the page")
	initCmd.Flags().StringVar(&initProgram, "program", "", "Program path passed as argv[0]")
	initCmd.Flags().StringVar(&initScript, "script", "", "URL of the Emscripten loader script")
	initCmd.Flags().StringVar(&initHome, "home", "", "Persistent home directory inside the program")
	initCmd.Flags().StringVar(&initLanguage, "language", "", "Page language (en, es, de, fr)")
	initCmd.Flags().StringArrayVar(&initArgs, "arg", nil, "Program argument (repeatable)")
	initCmd.Flags().StringArrayVar(&initEnv, "env", nil, "Environment variable as KEY=VALUE (repeatable)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing shell.yml")
}

func runInit(cmd *cobra.Command, args []string) error {
	if initLanguage != "" && !translations.Supported(initLanguage) {
		return fmt.Errorf("unsupported language %q (supported: %s)", initLanguage, strings.Join(translations.Languages, ", "))
	}

	dirName := "."
	if len(args) > 0 {
		dirName = args[0]
	}
	dir, err := filepath.Abs(dirName)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	cfgPath := filepath.Join(dir, shellconfig.ConfigFileName)
	if _, err := os.Stat(cfgPath); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	}

	env, err := parseEnvFlags(initEnv)
	if err != nil {
		return err
	}

	c := shellconfig.Default()
	c.Path = dir
	setIfNotEmpty(&c.Title, initTitle)
	setIfNotEmpty(&c.Program, initProgram)
	setIfNotEmpty(&c.Script, initScript)
	setIfNotEmpty(&c.Home, initHome)
	setIfNotEmpty(&c.Language, initLanguage)
	if len(initArgs) > 0 {
		c.Arguments = initArgs
	}
	c.Env = env

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := c.Save(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s\n", cfgPath)
	fmt.Fprintf(out, "  Program: %s (%s)\n", c.Program, c.Script)
	fmt.Fprintf(out, "  Home:    %s\n", c.Home)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next: build the bridge and run `webshell html`")
	return nil
}

func setIfNotEmpty(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseEnvFlags parses --env flags in format KEY=VALUE.
func parseEnvFlags(flags []string) (map[string]string, error) {
	env := make(map[string]string, len(flags))
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --env %q (want KEY=VALUE)", f)
		}
		env[key] = value
	}
	return env, nil
}
