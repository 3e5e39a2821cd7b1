package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/quorum/pkg/httputil"
	"github.com/wonny/quorum/pkg/logger"
)

// NaverSearch resolves Korean company names by scraping the Naver Finance
// stock search page
// ⭐ SSOT: Naver Finance 종목 검색은 여기서만
type NaverSearch struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewNaverSearch creates a Naver Finance search client
func NewNaverSearch(httpClient *httputil.Client, log *logger.Logger) *NaverSearch {
	return &NaverSearch{
		httpClient: httpClient,
		logger:     log.Named("naver_search"),
		baseURL:    "https://finance.naver.com",
	}
}

// WithBaseURL overrides the endpoint, for tests
func (s *NaverSearch) WithBaseURL(baseURL string) *NaverSearch {
	s.baseURL = baseURL
	return s
}

var itemCodeRe = regexp.MustCompile(`code=(\d{6})`)

// Search looks up a company name and returns its 6-digit code and listed
// name. The first stock link in the result page wins.
func (s *NaverSearch) Search(ctx context.Context, name string) (string, string, error) {
	fullURL := fmt.Sprintf("%s/search/searchList.naver?query=%s", s.baseURL, url.QueryEscape(name))

	resp, err := s.httpClient.Get(ctx, fullURL)
	if err != nil {
		return "", "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read response body: %w", err)
	}

	code, company, err := parseSearchHTML(string(body))
	if err != nil {
		return "", "", fmt.Errorf("no listing found for %q", name)
	}

	s.logger.WithFields(map[string]interface{}{
		"query":   name,
		"code":    code,
		"company": company,
	}).Debug("Resolved via Naver search")
	return code, company, nil
}

// parseSearchHTML extracts the first stock item link from the result page
func parseSearchHTML(html string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", err
	}

	var code, company string
	doc.Find("a").EachWithBreak(func(i int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok || !strings.Contains(href, "/item/main") {
			return true
		}

		m := itemCodeRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}

		code = m[1]
		company = strings.TrimSpace(a.Text())
		return false
	})

	if code == "" {
		return "", "", fmt.Errorf("no stock link in search results")
	}
	return code, company, nil
}
