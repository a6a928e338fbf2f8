// Package imagefetch downloads the image behind a subject reference so it can be
// sent inline to vision models.
package imagefetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fpt/go-apod-agent/pkg/agent/domain"
)

const (
	providerName = "image-fetch"

	// DefaultMaxBytes bounds a single download; APOD HD images stay well below this.
	DefaultMaxBytes = 20 << 20

	defaultMIMEType = "image/jpeg"
)

// Image is downloaded binary image data
type Image struct {
	Data     []byte
	MIMEType string
}

// Base64 returns the standard base64 encoding of the image bytes
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns the image as a data: URL suitable for OpenAI image parts
func (img Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", img.MIMEType, img.Base64())
}

// Fetcher downloads images over HTTP(S)
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// New creates a fetcher. A nil client gets a 30 second timeout.
func New(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client, maxBytes: DefaultMaxBytes}
}

// Fetch downloads imageURL. Transport failures and non-2xx responses are
// returned as *domain.ProviderError.
func (f *Fetcher) Fetch(ctx context.Context, imageURL string) (Image, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return Image{}, domain.NewProviderError(providerName, 0, fmt.Errorf("invalid image URL: %w", err))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Image{}, &domain.ProviderError{Provider: providerName, Message: "invalid URL scheme: must be http or https"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return Image{}, domain.NewProviderError(providerName, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", "apod-agent/1.0")
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return Image{}, domain.NewProviderError(providerName, 0, fmt.Errorf("failed to fetch image: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Image{}, &domain.ProviderError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP error fetching %s: %s", imageURL, resp.Status),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return Image{}, domain.NewProviderError(providerName, resp.StatusCode, fmt.Errorf("failed to read image: %w", err))
	}
	if int64(len(data)) > f.maxBytes {
		return Image{}, &domain.ProviderError{Provider: providerName, StatusCode: resp.StatusCode, Message: fmt.Sprintf("image exceeds %d bytes", f.maxBytes)}
	}
	if len(data) == 0 {
		return Image{}, domain.NewProviderError(providerName, resp.StatusCode, domain.ErrEmptyResponse)
	}

	return Image{Data: data, MIMEType: detectMIMEType(resp.Header.Get("Content-Type"), data)}, nil
}

func detectMIMEType(header string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && strings.HasPrefix(mt, "image/") {
		return mt
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return defaultMIMEType
}

// Wrap re-labels an error from Fetch as a failure of provider, keeping the
// upstream status code.
func Wrap(provider string, err error) *domain.ProviderError {
	status := 0
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		status = pe.StatusCode
	}
	return domain.NewProviderError(provider, status, err)
}
