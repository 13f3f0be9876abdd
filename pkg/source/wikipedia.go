package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
)

const (
	DefaultLanguage  = "en"
	DefaultUserAgent = "FreqDictBot/1.0 (https://github.com/bastiangx/freqdict)"
	DefaultTimeout   = 30 * time.Second

	// upper bound on a single API response body
	maxResponseBytes = 32 << 20
)

// WikipediaOptions configures the MediaWiki client.
type WikipediaOptions struct {
	// Endpoint overrides the api.php URL. Empty means https://<lang>.wikipedia.org/w/api.php
	Endpoint   string
	Language   string
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Wikipedia fetches plain-text article extracts through the MediaWiki API.
type Wikipedia struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// NewWikipedia creates a client, filling unset options with defaults.
func NewWikipedia(opts WikipediaOptions) *Wikipedia {
	lang := opts.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Wikipedia{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: client,
	}
}

// Endpoint returns the api.php URL in use.
func (w *Wikipedia) Endpoint() string {
	return w.endpoint
}

type queryResponse struct {
	Query struct {
		Pages []queryPage `json:"pages"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

type queryPage struct {
	Title   string `json:"title"`
	Missing bool   `json:"missing"`
	Invalid bool   `json:"invalid"`
	Extract string `json:"extract"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Fetch retrieves the plain-text extract of the article titled title.
func (w *Wikipedia) Fetch(ctx context.Context, title string) (Page, error) {
	page := Page{ID: title}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("titles", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return page, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", w.userAgent)
	req.Header.Set("Accept", "application/json")

	log.Debugf("GET %s titles=%q", w.endpoint, title)
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return page, fmt.Errorf("failed to fetch page %q: %w", title, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return page, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return page, fmt.Errorf("wikipedia API returned status %d for %q", resp.StatusCode, title)
	}

	var result queryResponse
	if err := sonic.Unmarshal(body, &result); err != nil {
		return page, fmt.Errorf("failed to decode response for %q: %w", title, err)
	}
	if result.Error != nil {
		return page, fmt.Errorf("wikipedia API error %s: %s", result.Error.Code, result.Error.Info)
	}

	for _, p := range result.Query.Pages {
		if p.Missing || p.Invalid {
			continue
		}
		page.Exists = true
		page.Text = strings.TrimSpace(p.Extract)
		return page, nil
	}
	return page, nil
}
