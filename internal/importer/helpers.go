package importer

import (
	"strings"
	"unicode"
)

// slugify lowercases a name and collapses everything that is not a letter or
// digit into single hyphens.
func slugify(value string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// makeUniqueSlug appends the record uuid so entities sharing a name never
// collide on slug.
func makeUniqueSlug(baseSlug, uuid string) string {
	uuidSlug := slugify(uuid)
	if uuidSlug == "" {
		return baseSlug
	}
	return baseSlug + "-" + uuidSlug
}

var characterTypeMap = map[string]string{
	"main":                "main",
	"main character":      "main",
	"recurring":           "recurring",
	"recurring character": "recurring",
	"guest":               "guest",
	"guest character":     "guest",
	"mentioned":           "mentioned",
	"mentioned only":      "mentioned",
}

// normalizeCharacterType maps free-form export values onto the four stored
// character types, defaulting to recurring.
func normalizeCharacterType(charType string) string {
	if normalized, ok := characterTypeMap[strings.ToLower(charType)]; ok {
		return normalized
	}
	return "recurring"
}

// truncateField caps a string at maxLen runes, replacing the tail with an
// ellipsis when it does not fit.
func truncateField(value string, maxLen int) string {
	runes := []rune(value)
	if len(runes) <= maxLen {
		return value
	}
	return string(runes[:maxLen-3]) + "..."
}
