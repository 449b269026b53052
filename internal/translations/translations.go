package translations

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed shell/*.json
var shellFS embed.FS

// Component is the only string table: texts shown by the shell page and the bridge.
const Component = "shell"

// Languages lists all supported language codes.
var Languages = []string{"en", "es", "de", "fr"}

// Supported reports whether lang has a string table.
func Supported(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// T returns the translated string for the given language and key,
// with {0}, {1}, ... parameter substitution.
// Falls back to English if the key is not found in the requested language.
// Falls back to the key itself if not found in any language.
func T(lang, key string, args ...any) string {
	text := GetString(lang, key)
	for i, arg := range args {
		text = strings.Replace(text, fmt.Sprintf("{%d}", i), fmt.Sprint(arg), 1)
	}
	return text
}

// GetString returns the raw translated string for the given language and key.
// Falls back to English, then to the key itself.
func GetString(lang, key string) string {
	cache := loadCache()
	if langMap, ok := cache[lang]; ok {
		if val, ok := langMap[key]; ok {
			return val
		}
	}
	if langMap, ok := cache["en"]; ok {
		if val, ok := langMap[key]; ok {
			return val
		}
	}
	return key
}

var (
	cacheOnce sync.Once
	// lang -> key -> value
	cache map[string]map[string]string
)

func loadCache() map[string]map[string]string {
	cacheOnce.Do(func() {
		cache = make(map[string]map[string]string)
		for _, lang := range Languages {
			m, err := GetTranslations(lang)
			if err != nil {
				continue
			}
			cache[lang] = m
		}
	})
	return cache
}

// GetTranslations returns the string table for a language.
func GetTranslations(lang string) (map[string]string, error) {
	data, err := shellFS.ReadFile(Component + "/" + lang + ".json")
	if err != nil {
		return nil, fmt.Errorf("language %s not found", lang)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid JSON for %s: %w", lang, err)
	}
	return m, nil
}

// GetKeys returns all translation keys (using English as reference).
func GetKeys() ([]string, error) {
	m, err := GetTranslations("en")
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
