package apod

import (
	"fmt"
	"strings"
)

const searchExplanationLimit = 200

// FormatToday renders an entry as the picture-of-the-day markdown summary
func FormatToday(e Entry, hd bool) string {
	return fmt.Sprintf("# NASA Astronomy Picture of the Day - %s\n\n**Title:** %s\n\n**Explanation:** %s\n\n**Image URL:** %s\n\n**Copyright:** %s",
		e.Date, e.Title, e.Explanation, e.ImageURL(hd), e.copyrightOrDefault())
}

// FormatInfo renders every field of an entry
func FormatInfo(e Entry) string {
	hdURL := e.HDURL
	if hdURL == "" {
		hdURL = "Not available"
	}
	return fmt.Sprintf("# APOD Information for %s\n\n**Title:** %s\n\n**Explanation:** %s\n\n**Media Type:** %s\n\n**Service Version:** %s\n\n**Copyright:** %s\n\n**URL:** %s\n\n**HD URL:** %s",
		e.Date, e.Title, e.Explanation, e.MediaType, e.ServiceVersion, e.copyrightOrDefault(), e.URL, hdURL)
}

// FormatSearch renders a numbered list with shortened explanations
func FormatSearch(entries []Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# APOD Search Results\n\nFound %d image(s):\n\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&sb, "## %d. %s (%s)\n", i+1, e.Title, e.Date)
		fmt.Fprintf(&sb, "**Explanation:** %s...\n", truncate(e.Explanation, searchExplanationLimit))
		fmt.Fprintf(&sb, "**URL:** %s\n\n", e.URL)
	}
	return sb.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func (e Entry) copyrightOrDefault() string {
	if c := strings.TrimSpace(e.Copyright); c != "" {
		return c
	}
	return "Public Domain"
}
