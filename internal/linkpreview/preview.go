package linkpreview

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Preview is the card rendered next to a portfolio link in an application
// listing.
type Preview struct {
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	SiteName    string    `json:"site_name,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

type Fetcher struct {
	httpClient *http.Client
	log        *zap.Logger
	maxRetries int
}

func NewFetcher(timeoutMS, maxRetries int, log *zap.Logger) *Fetcher {
	if timeoutMS <= 0 {
		timeoutMS = 10000
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		log:        log,
		maxRetries: maxRetries,
	}
}

// Fetch downloads the page and extracts Open Graph metadata, falling back to
// the document title and meta description.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("unsupported portfolio url %q", rawURL)
	}

	var doc *goquery.Document
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept-Language", "pt-BR,pt;q=0.9,en;q=0.8")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, parsed)
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}

	if lastErr != nil {
		return nil, lastErr
	}

	preview := extract(doc)
	preview.URL = parsed.String()
	preview.FetchedAt = time.Now()
	return preview, nil
}

func extract(doc *goquery.Document) *Preview {
	p := &Preview{}

	p.Title = metaProperty(doc, "og:title")
	if p.Title == "" {
		p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	p.Description = metaProperty(doc, "og:description")
	if p.Description == "" {
		p.Description = metaName(doc, "description")
	}
	if utf8.RuneCountInString(p.Description) > 300 {
		p.Description = string([]rune(p.Description)[:300])
	}

	p.ImageURL = metaProperty(doc, "og:image")
	p.SiteName = metaProperty(doc, "og:site_name")

	return p
}

func metaProperty(doc *goquery.Document, property string) string {
	sel := fmt.Sprintf(`meta[property=%q]`, property)
	if content, ok := doc.Find(sel).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

func metaName(doc *goquery.Document, name string) string {
	sel := fmt.Sprintf(`meta[name=%q]`, name)
	if content, ok := doc.Find(sel).First().Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}
