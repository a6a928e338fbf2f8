// Package apod is the client for NASA's Astronomy Picture of the Day service.
// It implements domain.PictureSource.
package apod

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	pkgErrors "github.com/pkg/errors"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
	pkgLogger "github.com/fpt/go-apod-agent/pkg/logger"
)

const (
	DefaultBaseURL = "https://api.nasa.gov/planetary/apod"
	DefaultPageURL = "https://apod.nasa.gov/apod/astropix.html"

	DefaultSearchCount = 10
	MaxSearchCount     = 100
)

// Entry is one APOD record as returned by the API
type Entry struct {
	Date           string `json:"date"`
	Title          string `json:"title"`
	Explanation    string `json:"explanation"`
	URL            string `json:"url"`
	HDURL          string `json:"hdurl,omitempty"`
	MediaType      string `json:"media_type"`
	ServiceVersion string `json:"service_version,omitempty"`
	Copyright      string `json:"copyright,omitempty"`
}

// ImageURL returns the HD URL when requested and available
func (e Entry) ImageURL(hd bool) string {
	if hd && e.HDURL != "" {
		return e.HDURL
	}
	return e.URL
}

// IsImage reports whether the entry can be analyzed as an image
func (e Entry) IsImage() bool {
	return e.MediaType == "" || e.MediaType == "image"
}

// APIError is a non-2xx answer from the APOD API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("APOD API status %d: %s", e.StatusCode, e.Message)
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	APIKey     string
	BaseURL    string
	PageURL    string // page scraped when the API is unavailable; "-" disables scraping
	HTTPClient *http.Client
}

// Client talks to the APOD API
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageURL    string
	apiKey     string
	logger     *pkgLogger.Logger
}

// New creates an APOD client
func New(opts Options) *Client {
	if opts.APIKey == "" {
		opts.APIKey = "DEMO_KEY"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	switch opts.PageURL {
	case "":
		opts.PageURL = DefaultPageURL
	case "-":
		opts.PageURL = ""
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient: opts.HTTPClient,
		baseURL:    opts.BaseURL,
		pageURL:    opts.PageURL,
		apiKey:     opts.APIKey,
		logger:     pkgLogger.NewComponentLogger("apod-client"),
	}
}

// Get returns the entry for date (today when empty). When today's entry is
// requested and the API is rate limited or down, the public page is scraped.
func (c *Client) Get(ctx context.Context, date string, hd bool) (Entry, error) {
	date, err := NormalizeDate(date)
	if err != nil {
		return Entry{}, err
	}

	params := url.Values{}
	if date != "" {
		params.Set("date", date)
	}
	if hd {
		params.Set("hd", "true")
	}

	var entry Entry
	err = c.getJSON(ctx, params, func(body []byte) error {
		return json.Unmarshal(body, &entry)
	})
	if err == nil {
		return entry, nil
	}

	if date == "" && c.pageURL != "" && shouldScrape(err) {
		c.logger.WarnWithIcon("⚠️", "APOD API unavailable, scraping page", "error", err)
		scraped, scrapeErr := c.scrapeToday(ctx)
		if scrapeErr == nil {
			return scraped, nil
		}
		c.logger.Warn("Page scrape failed", "error", scrapeErr)
	}
	return Entry{}, err
}

// Info returns the entry for a specific date, which is required.
func (c *Client) Info(ctx context.Context, date string) (Entry, error) {
	if date == "" {
		return Entry{}, &domain.InputError{Field: "date"}
	}
	return c.Get(ctx, date, false)
}

// SearchEntries lists entries in a date range, or count random entries when no
// range is given. count is capped at MaxSearchCount.
func (c *Client) SearchEntries(ctx context.Context, startDate, endDate string, count int) ([]Entry, error) {
	start, err := NormalizeDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := NormalizeDate(endDate)
	if err != nil {
		return nil, err
	}
	if end != "" && start == "" {
		return nil, &domain.InputError{Field: "start_date"}
	}

	params := url.Values{}
	if start != "" {
		params.Set("start_date", start)
		if end != "" {
			params.Set("end_date", end)
		}
	} else {
		if count <= 0 {
			count = DefaultSearchCount
		}
		params.Set("count", strconv.Itoa(min(count, MaxSearchCount)))
	}

	var entries []Entry
	err = c.getJSON(ctx, params, func(body []byte) error {
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '{' {
			var single Entry
			if err := json.Unmarshal(trimmed, &single); err != nil {
				return err
			}
			entries = []Entry{single}
			return nil
		}
		return json.Unmarshal(body, &entries)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Picture implements domain.PictureSource
func (c *Client) Picture(ctx context.Context, date string, hd bool) (domain.Picture, error) {
	entry, err := c.Get(ctx, date, hd)
	if err != nil {
		return domain.Picture{}, err
	}
	return domain.Picture{
		Reference: entry.ImageURL(hd),
		Summary:   FormatToday(entry, hd),
		IsImage:   entry.IsImage(),
	}, nil
}

// Search implements domain.PictureSource. References lists image entries only.
func (c *Client) Search(ctx context.Context, startDate, endDate string, count int) (domain.SearchPayload, error) {
	entries, err := c.SearchEntries(ctx, startDate, endDate, count)
	if err != nil {
		return domain.SearchPayload{}, err
	}

	payload := domain.SearchPayload{Raw: FormatSearch(entries)}
	for _, e := range entries {
		if e.IsImage() && e.URL != "" {
			payload.References = append(payload.References, e.URL)
		}
	}
	return payload, nil
}

func (c *Client) getJSON(ctx context.Context, params url.Values, decode func([]byte) error) error {
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return pkgErrors.Wrap(err, "failed to create APOD request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgErrors.Wrap(err, "APOD request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgErrors.Wrap(err, "failed to read APOD response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: apiErrorMessage(body, resp.Status)}
	}

	if err := decode(body); err != nil {
		return pkgErrors.Wrap(err, "failed to decode APOD response")
	}
	return nil
}

// apiErrorMessage extracts the message from either error shape the API uses:
// {"error":{"code":..,"message":..}} or {"code":..,"msg":..}.
func apiErrorMessage(body []byte, fallback string) string {
	var payload struct {
		Msg   string `json:"msg"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error.Message != "" {
			return payload.Error.Message
		}
		if payload.Msg != "" {
			return payload.Msg
		}
	}
	return fallback
}

func shouldScrape(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}
