// Package html generates the self-contained page that hosts the program in a
// browser: overlays, canvas, text entry, the host bridge and its loader.
package html

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"errors"
	"fmt"
	stdhtml "html"
	"strings"

	"github.com/lite-xl/webshell/internal/shellconfig"
	"github.com/lite-xl/webshell/internal/translations"
)

// ErrNoBridge is returned when no bridge binary is supplied.
var ErrNoBridge = errors.New("bridge wasm is empty")

// GenerateShellHTML creates the complete shell page with all assets embedded.
// bridgeWASM is the compiled host bridge (GOOS=js GOARCH=wasm) and wasmExecJS
// the wasm_exec.js matching the Go version it was built with.
func GenerateShellHTML(bridgeWASM, wasmExecJS []byte, cfg *shellconfig.Config, version string) (string, error) {
	if len(bridgeWASM) == 0 {
		return "", ErrNoBridge
	}
	if len(wasmExecJS) == 0 {
		return "", fmt.Errorf("wasm_exec.js is empty")
	}
	if err := cfg.Validate(); err != nil {
		return "", fmt.Errorf("invalid config: %w", err)
	}

	configJSON, err := cfg.JSON()
	if err != nil {
		return "", err
	}
	wasmB64, err := compressAndEncode(bridgeWASM)
	if err != nil {
		return "", err
	}

	nonce, err := generateCSPNonce()
	if err != nil {
		return "", err
	}

	// One pass over the template: inserted text is never scanned again, so a
	// title or env value that looks like a placeholder stays as it is.
	pairs := []string{
		"{{CSP_NONCE}}", nonce,
		"{{LANG}}", stdhtml.EscapeString(cfg.Language),
		"{{TITLE}}", stdhtml.EscapeString(cfg.Title),
		"{{VERSION}}", stdhtml.EscapeString(version),
		"{{STYLES}}", stylesCSS,
		"{{CONFIG_JSON}}", configJSON,
		"{{WASM_EXEC}}", string(wasmExecJS),
		"{{WASM_BASE64}}", wasmB64,
		"{{LOADER_JS}}", loaderJS,
	}
	pairs = append(pairs, translationPairs(cfg.Language, cfg.Title)...)
	return strings.NewReplacer(pairs...).Replace(shellHTMLTemplate), nil
}

// translationPairs maps every {{T:key}} placeholder to the escaped string for
// lang. The program title is passed as the first argument.
func translationPairs(lang, title string) []string {
	keys, err := translations.GetKeys()
	if err != nil {
		return nil
	}
	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		text := translations.T(lang, key, title)
		pairs = append(pairs, "{{T:"+key+"}}", stdhtml.EscapeString(text))
	}
	return pairs
}

// compressAndEncode gzip-compresses data and returns base64-encoded result.
func compressAndEncode(data []byte) (string, error) {
	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := gz.Write(data); err != nil {
		return "", fmt.Errorf("compressing bridge: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("compressing bridge: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
