package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"google.golang.org/api/googleapi"
)

const firecrawlBaseURL = "https://api.firecrawl.dev"

// ScrapedPage is what the scraping provider returns for one URL.
type ScrapedPage struct {
	URL      string
	Markdown string
	HTML     string
}

// Text returns line-oriented page text, preferring the provider's markdown.
func (p *ScrapedPage) Text() string {
	if p == nil {
		return ""
	}
	if strings.TrimSpace(p.Markdown) != "" {
		return p.Markdown
	}
	if strings.TrimSpace(p.HTML) == "" {
		return ""
	}
	text, err := FlattenHTML(p.HTML)
	if err != nil {
		return ""
	}
	return text
}

type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*ScrapedPage, error)
}

type FirecrawlClient struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

type firecrawlRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	Timeout         int64    `json:"timeout"`
}

type firecrawlResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Markdown string `json:"markdown"`
		HTML     string `json:"html"`
	} `json:"data"`
}

// NewFirecrawlClient builds a scraping client with a fixed per-page timeout.
func NewFirecrawlClient(apiKey, baseURL string, timeout time.Duration) *FirecrawlClient {
	if baseURL == "" {
		baseURL = firecrawlBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FirecrawlClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{
			// provider-side timeout plus headroom for the round trip
			Timeout: timeout + 5*time.Second,
		},
	}
}

func (c *FirecrawlClient) Fetch(ctx context.Context, pageURL string) (*ScrapedPage, error) {
	page, err := c.fetch(ctx, pageURL)
	observeUpstream("scrape", err)
	return page, err
}

func (c *FirecrawlClient) fetch(ctx context.Context, pageURL string) (*ScrapedPage, error) {
	payload, err := json.Marshal(firecrawlRequest{
		URL:             pageURL,
		Formats:         []string{"markdown", "html"},
		OnlyMainContent: true,
		Timeout:         c.timeout.Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scraping %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, fmt.Errorf("scraping %s: %w", pageURL, err)
	}

	var body firecrawlResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding scrape response: %w", err)
	}
	if !body.Success {
		return nil, fmt.Errorf("scraping %s: %s", pageURL, body.Error)
	}

	return &ScrapedPage{
		URL:      pageURL,
		Markdown: body.Data.Markdown,
		HTML:     body.Data.HTML,
	}, nil
}

// FlattenHTML turns an HTML page into markdown-ish lines so the extractor can
// treat headings and emphasis the same way it does for provider markdown.
func FlattenHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, footer").Remove()

	var b strings.Builder
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, strong, b, em, time").Each(func(i int, sel *goquery.Selection) {
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text == "" {
			return
		}

		switch goquery.NodeName(sel) {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("## " + text)
		case "strong", "b":
			// already emitted as part of its block unless it stands alone
			if sel.Parent().Is("p, li") {
				return
			}
			b.WriteString("**" + text + "**")
		case "em":
			if sel.Parent().Is("p, li") {
				return
			}
			b.WriteString("_" + text + "_")
		default:
			if strong := sel.ChildrenFiltered("strong, b").First(); strong.Length() > 0 &&
				strings.TrimSpace(strong.Text()) == strings.TrimSpace(sel.Text()) {
				b.WriteString("**" + text + "**")
			} else {
				b.WriteString(text)
			}
		}
		b.WriteString("\n")
	})

	return b.String(), nil
}
