package apod

import (
	"strings"
	"time"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
)

const apiDateLayout = "2006-01-02"

var acceptedDateLayouts = []string{
	apiDateLayout,
	"01/02/2006",
	"1/2/2006",
}

// NormalizeDate converts YYYY-MM-DD or MM/DD/YYYY to the YYYY-MM-DD form the
// API expects. An empty date stays empty (today).
func NormalizeDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return "", nil
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t.Format(apiDateLayout), nil
		}
	}
	return "", &domain.InputError{Field: "date", Reason: "expected YYYY-MM-DD or MM/DD/YYYY, got " + date}
}
