// Package pdf renders a printable launch card: the page address as a QR code
// with short instructions, for handing out in classrooms and workshops.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/text/unicode/norm"

	"github.com/lite-xl/webshell/internal/translations"
)

// CardData contains all data needed to generate a launch card.
type CardData struct {
	Title    string
	URL      string
	Home     string
	Language string
	Version  string
	Created  time.Time
}

// Font sizes
const (
	titleSize = 22.0
	bodySize  = 11.0
	monoSize  = 10.0
	metaSize  = 7.0
)

// QR code size in mm on the PDF page.
const qrSizeMM = 80.0

// accent matches the page background.
var accent = [3]int{46, 46, 50}

// coreFontText encodes s for the cp1252 core fonts. cp1252 only has
// precomposed accented letters, and titles or paths typed on some systems
// arrive decomposed (NFD).
func coreFontText(cp1252 func(string) string, s string) string {
	return cp1252(norm.NFC.String(s))
}

// GenerateCard creates the launch card PDF.
func GenerateCard(data CardData) ([]byte, error) {
	if data.URL == "" {
		return nil, fmt.Errorf("card needs a URL")
	}
	lang := data.Language
	if lang == "" {
		lang = "en"
	}

	p := fpdf.New("P", "mm", "A4", "")
	p.SetMargins(20, 20, 20)
	p.SetAutoPageBreak(true, 20)

	cp1252 := p.UnicodeTranslatorFromDescriptor("")
	tr := func(s string) string {
		return coreFontText(cp1252, s)
	}
	t := func(key string, args ...any) string {
		return tr(translations.T(lang, key, args...))
	}

	p.AddPage()
	pageWidth, _ := p.GetPageSize()
	leftMargin, _, rightMargin, _ := p.GetMargins()
	contentWidth := pageWidth - leftMargin - rightMargin

	p.SetFillColor(accent[0], accent[1], accent[2])
	p.Rect(0, 0, pageWidth, 4, "F")

	p.Ln(14)
	p.SetFont("Helvetica", "B", titleSize)
	p.MultiCell(0, 11, t("card_heading", data.Title), "", "C", false)
	p.Ln(4)

	p.SetFont("Helvetica", "", bodySize)
	p.MultiCell(0, 6, t("card_scan"), "", "C", false)
	p.Ln(8)

	qrPNG, err := qrcode.Encode(data.URL, qrcode.Medium, 512)
	if err != nil {
		return nil, fmt.Errorf("generating QR code: %w", err)
	}
	opts := fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	p.RegisterImageOptionsReader("qrcode", opts, bytes.NewReader(qrPNG))
	qrX := leftMargin + (contentWidth-qrSizeMM)/2
	p.ImageOptions("qrcode", qrX, p.GetY(), qrSizeMM, qrSizeMM, false, opts, 0, "")
	p.SetY(p.GetY() + qrSizeMM + 6)

	p.SetFont("Courier", "B", monoSize)
	p.SetFillColor(245, 245, 245)
	p.CellFormat(0, 8, tr(data.URL), "", 1, "C", true, 0, "")
	p.Ln(10)

	if data.Home != "" {
		p.SetFont("Helvetica", "I", bodySize)
		p.MultiCell(0, 6, t("card_storage", data.Home), "", "C", false)
	}

	p.SetY(-25)
	p.SetFont("Courier", "", metaSize)
	p.SetTextColor(150, 150, 150)
	meta := fmt.Sprintf("webshell %s", data.Version)
	if !data.Created.IsZero() {
		meta += " - " + data.Created.Format(time.RFC3339)
	}
	p.CellFormat(0, 4, tr(meta), "", 1, "C", false, 0, "")

	if err := p.Error(); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}
