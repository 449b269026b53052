package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
)

func testCardData() CardData {
	return CardData{
		Title:    "Lite XL",
		URL:      "http://192.168.1.20:8080/",
		Home:     "/home/web_user",
		Language: "en",
		Version:  "v0.0.1-test",
		Created:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerateCard(t *testing.T) {
	pdfBytes, err := GenerateCard(testCardData())
	if err != nil {
		t.Fatalf("GenerateCard: %v", err)
	}
	if !bytes.HasPrefix(pdfBytes, []byte("%PDF-")) {
		t.Error("output does not start with PDF header")
	}
}

func TestGenerateCardLanguages(t *testing.T) {
	for _, lang := range []string{"es", "de", "fr"} {
		data := testCardData()
		data.Language = lang
		if _, err := GenerateCard(data); err != nil {
			t.Errorf("GenerateCard(%s): %v", lang, err)
		}
	}
}

func TestGenerateCardWithoutHome(t *testing.T) {
	data := testCardData()
	data.Home = ""
	data.Created = time.Time{}
	if _, err := GenerateCard(data); err != nil {
		t.Fatalf("GenerateCard: %v", err)
	}
}

func TestGenerateCardRequiresURL(t *testing.T) {
	data := testCardData()
	data.URL = ""
	if _, err := GenerateCard(data); err == nil {
		t.Error("expected error without URL")
	}
}

func TestCoreFontTextComposesAccents(t *testing.T) {
	cp1252 := fpdf.New("P", "mm", "A4", "").UnicodeTranslatorFromDescriptor("")

	tests := []struct {
		input    string
		expected string
	}{
		{"cafe\u0301", "caf\xe9"},
		{"caf\u00e9", "caf\xe9"},
		{"/home/jose\u0301", "/home/jos\xe9"},
		{"http://10.0.0.5:8080/", "http://10.0.0.5:8080/"},
	}
	for _, tt := range tests {
		if got := coreFontText(cp1252, tt.input); got != tt.expected {
			t.Errorf("coreFontText(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}

	data := testCardData()
	data.Title = "Re\u0301sume\u0301"
	if _, err := GenerateCard(data); err != nil {
		t.Fatalf("GenerateCard: %v", err)
	}
}
