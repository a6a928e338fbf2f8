package apod

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	pkgErrors "github.com/pkg/errors"
)

const pageDateLayout = "2006 January 2"

// scrapeToday reads today's entry from the public APOD page. It needs no API key.
func (c *Client) scrapeToday(ctx context.Context) (Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL, nil)
	if err != nil {
		return Entry{}, pkgErrors.Wrap(err, "failed to create page request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; apod-agent/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Entry{}, pkgErrors.Wrap(err, "page request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Entry{}, fmt.Errorf("page request failed with status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Entry{}, pkgErrors.Wrap(err, "failed to parse page")
	}

	base, err := url.Parse(c.pageURL)
	if err != nil {
		return Entry{}, pkgErrors.Wrap(err, "invalid page URL")
	}
	return parsePage(doc, base)
}

func parsePage(doc *goquery.Document, base *url.URL) (Entry, error) {
	entry := Entry{MediaType: "image", ServiceVersion: "page"}

	firstCenter := doc.Find("center").First()
	for _, line := range strings.Split(firstCenter.Find("p").First().Text(), "\n") {
		if t, err := time.Parse(pageDateLayout, strings.TrimSpace(line)); err == nil {
			entry.Date = t.Format(apiDateLayout)
			break
		}
	}

	if src, ok := firstCenter.Find("img").First().Attr("src"); ok {
		entry.URL = resolve(base, src)
	}
	if href, ok := firstCenter.Find("a[href^='image/']").First().Attr("href"); ok {
		entry.HDURL = resolve(base, href)
	}
	if entry.URL == "" {
		if src, ok := firstCenter.Find("iframe").First().Attr("src"); ok {
			entry.URL = resolve(base, src)
			entry.MediaType = "video"
		}
	}

	entry.Title = collapseSpace(doc.Find("center b").First().Text())

	doc.Find("center").EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := collapseSpace(s.Text())
		if idx := strings.Index(text, "Copyright:"); idx >= 0 {
			entry.Copyright = strings.TrimSpace(text[idx+len("Copyright:"):])
			return false
		}
		return true
	})

	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if strings.Contains(s.Find("b").First().Text(), "Explanation") {
			text := collapseSpace(s.Text())
			entry.Explanation = strings.TrimSpace(strings.TrimPrefix(text, "Explanation:"))
			return false
		}
		return true
	})

	if entry.URL == "" || entry.Title == "" {
		return Entry{}, fmt.Errorf("page did not contain a picture of the day")
	}
	return entry, nil
}

func resolve(base *url.URL, ref string) string {
	u, err := base.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return u.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
