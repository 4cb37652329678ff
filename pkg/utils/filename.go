package utils

import (
	"strings"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeFileName makes a user supplied file name safe for object keys:
// lowercase ASCII letters, digits and "_.-" only, diacritics folded
// ("Căn hộ đẹp.JPG" -> "can_ho_dep.jpg"). An empty result becomes "file".
func SanitizeFileName(fileName string) string {
	ext := ""
	name := fileName
	if i := strings.LastIndex(fileName, "."); i > 0 {
		ext = keepOnly(strings.ToLower(fileName[i:]), isExtRune)
		name = fileName[:i]
	}

	name = strings.ToLower(strings.TrimSpace(name))
	name = foldDiacritics(name)

	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case unicode.IsSpace(r) || r == '_':
			if !lastUnderscore {
				b.WriteRune('_')
			}
			lastUnderscore = true
			continue
		case isNameRune(r):
			b.WriteRune(r)
		}
		lastUnderscore = false
	}

	sanitized := strings.Trim(b.String(), "_")
	if sanitized == "" {
		sanitized = "file"
	}
	if ext == "." {
		ext = ""
	}
	return sanitized + ext
}

// ObjectKey builds "<prefix>/<nanoid>-<sanitised name>".
func ObjectKey(prefix, fileName string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	return prefix + "/" + id + "-" + SanitizeFileName(fileName), nil
}

func foldDiacritics(s string) string {
	s = strings.NewReplacer("đ", "d", "Đ", "d").Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isNameRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-'
}

func isExtRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.'
}

func keepOnly(s string, keep func(rune) bool) string {
	return strings.Map(func(r rune) rune {
		if keep(r) {
			return r
		}
		return -1
	}, s)
}
