package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lite-xl/webshell/internal/pdf"
	"github.com/lite-xl/webshell/internal/shellconfig"
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Generate a printable PDF with the page address as a QR code",
	Long: `Generate a one-page PDF with the page address as a QR code and short
instructions in the configured language.

Examples:
  webshell card -o card.pdf
  webshell card --url https://editor.example.org/ -o card.pdf`,
	Args: cobra.NoArgs,
	RunE: runCard,
}

var (
	cardURL    string
	cardOutput string
)

func init() {
	cardCmd.Flags().StringVar(&cardURL, "url", "", "Page address (default: this machine on :8080)")
	cardCmd.Flags().StringVarP(&cardOutput, "output", "o", "card.pdf", "Output file path")
	rootCmd.AddCommand(cardCmd)
}

func runCard(cmd *cobra.Command, args []string) error {
	cfg, err := shellconfig.LoadOrDefault(configDir)
	if err != nil {
		return err
	}

	url := cardURL
	if url == "" {
		url = serveURL(":8080")
	}

	data, err := pdf.GenerateCard(pdf.CardData{
		Title:    cfg.Title,
		URL:      url,
		Home:     cfg.Home,
		Language: cfg.Language,
		Version:  version,
		Created:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(cardOutput, data, 0644); err != nil {
		return fmt.Errorf("writing card: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Generated %s for %s (%s)\n", cardOutput, url, formatSize(int64(len(data))))
	return nil
}
