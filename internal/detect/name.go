package detect

import (
	"strings"
	"unicode/utf16"
)

// titles at or above this many characters are taken to be job titles or
// marketing copy rather than a company name. Characters are UTF-16 code
// units, the way the page itself measures string length, so an emoji
// counts twice.
const maxTitleName = 60

// PageMeta is the part of a page DeriveName looks at.
type PageMeta struct {
	SiteName string // <meta property="og:site_name">
	Title    string // document title
}

// DeriveName picks a display name for the company behind a career page:
// the og:site_name if present, else the title up to its first separator when
// that is shorter than 60 characters, else the slug title-cased.
func DeriveName(slug string, meta PageMeta) string {
	if meta.SiteName != "" {
		return meta.SiteName
	}
	if t := titleHead(meta.Title); t != "" && utf16Len(t) < maxTitleName {
		return t
	}
	return titleCaseSlug(slug)
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// titleHead returns the trimmed text before the first of | – — -.
func titleHead(title string) string {
	if i := strings.IndexAny(title, "|–—-"); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

// titleCaseSlug turns "acme-robotics" into "Acme Robotics". Only ASCII word
// characters start a word.
func titleCaseSlug(slug string) string {
	b := []byte(strings.ReplaceAll(slug, "-", " "))
	prevWord := false
	for i, c := range b {
		word := isWordByte(c)
		if word && !prevWord && c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
		prevWord = word
	}
	return string(b)
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
