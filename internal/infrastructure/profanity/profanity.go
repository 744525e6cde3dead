// Package profanity screens participant display names before they reach a
// host's waiting list.
package profanity

import (
	"embed"
	"encoding/json"
	"log"
	"regexp"
	"strings"
	"sync"
)

var (
	// Global instance for reuse (thread-safe)
	defaultFilter *Filter
	once          sync.Once
)

//go:embed words.json
var jsonData embed.FS

func loadBannedWords() []string {
	data, err := jsonData.ReadFile("words.json")
	if err != nil {
		log.Fatalf("Failed to read embedded file: %s", err)
	}

	var bannedWords []string
	if err := json.Unmarshal(data, &bannedWords); err != nil {
		log.Fatalf("Failed to unmarshal JSON: %s", err)
	}
	return bannedWords
}

type Filter struct {
	regex *regexp.Regexp
}

func NewFilter() *Filter {
	once.Do(func() {
		defaultFilter = &Filter{
			regex: buildMasterRegex(),
		}
	})

	return defaultFilter
}

func (f *Filter) Contains(text string) bool {
	if text == "" {
		return false
	}
	return f.regex.MatchString(normalize(text))
}

func normalize(text string) string {
	s := strings.ToLower(text)

	// Defeat the common leetspeak obfuscations in one pass
	s = strings.NewReplacer(
		"@", "a", "4", "a",
		"3", "e", "€", "e",
		"1", "i", "!", "i", "|", "i",
		"0", "o",
		"$", "s", "5", "s",
		"7", "t", "+", "t",
	).Replace(s)

	// Collapse separators people sneak between letters
	s = regexp.MustCompile(`[\s_.\-*/\\|]+`).ReplaceAllString(s, "")

	return s
}

func buildMasterRegex() *regexp.Regexp {
	words := loadBannedWords()

	patterns := make([]string, 0, len(words))
	for _, w := range words {
		patterns = append(patterns, regexp.QuoteMeta(strings.ToLower(w)))
	}

	return regexp.MustCompile(`(` + strings.Join(patterns, "|") + `)`)
}
