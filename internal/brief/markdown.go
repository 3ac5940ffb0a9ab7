package brief

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// TextBrief converts the HTML brief into a Markdown rendition for plain-text
// channels. The HTML version is the primary artifact, so conversion failures
// degrade to an empty string instead of failing the job.
func TextBrief(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(markdown)
}
