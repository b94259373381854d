package media

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguageName normalizes a language tag found in a filename ("eng",
// "en", "fre") to its English display name. It reports false when the
// tag cannot be resolved.
func LanguageName(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}

	tag, err := language.Parse(code)
	if err != nil {
		return "", false
	}

	name := display.English.Languages().Name(tag)
	if name == "" {
		return "", false
	}
	return name, true
}
