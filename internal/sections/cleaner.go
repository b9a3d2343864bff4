package sections

import (
	"regexp"
	"strings"
)

var (
	urlPattern     = regexp.MustCompile(`https?://\S+|www\.\S+`)
	emailPattern   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	controlPattern = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)

	// Page footer lines such as "Page 12 of 300" or a bare page number
	footerPattern = regexp.MustCompile(`(?im)^\s*(page\s+\d+(\s+of\s+\d+)?|\d+)\s*$`)

	// Runs of the same punctuation, common in tables of contents
	repeatPunctPattern = regexp.MustCompile(`\.{3,}|-{3,}|_{3,}|={3,}|\*{3,}`)

	spacesPattern   = regexp.MustCompile(`[ \t]+`)
	newlinesPattern = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes raw extracted filing text. It strips page
// headers and footers, URLs, email addresses, control characters, and
// repeated punctuation runs, then collapses whitespace. Applied before
// section search and again to each extracted section.
func CleanText(text string) string {
	text = controlPattern.ReplaceAllString(text, " ")
	text = urlPattern.ReplaceAllString(text, " ")
	text = emailPattern.ReplaceAllString(text, " ")
	text = footerPattern.ReplaceAllString(text, "")
	text = repeatPunctPattern.ReplaceAllString(text, " ")
	text = spacesPattern.ReplaceAllString(text, " ")

	// Trim each line, then collapse blank-line runs
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.Join(lines, "\n")
	text = newlinesPattern.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}
