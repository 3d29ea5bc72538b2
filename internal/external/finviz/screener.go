package finviz

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/finsightlab/finsight/internal/contracts"
	"github.com/finsightlab/finsight/pkg/config"
	"github.com/finsightlab/finsight/pkg/httputil"
	"github.com/finsightlab/finsight/pkg/logger"
)

// Screener discovers candidate symbols by scraping the Finviz screener.
// All screener scraping goes through this type.
type Screener struct {
	cfg        config.FinvizConfig
	httpClient *httputil.Client
	logger     *logger.Logger
	limit      int
}

// NewScreener creates a new Finviz screener
func NewScreener(cfg config.FinvizConfig, httpClient *httputil.Client, log *logger.Logger, limit int) *Screener {
	if limit <= 0 {
		limit = 20
	}
	return &Screener{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log,
		limit:      limit,
	}
}

var tickerRe = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// sectorFilters maps preference sector names to Finviz filter tokens
var sectorFilters = map[string]string{
	"technology":             "sec_technology",
	"healthcare":             "sec_healthcare",
	"financial":              "sec_financial",
	"energy":                 "sec_energy",
	"consumer cyclical":      "sec_consumercyclical",
	"consumer defensive":     "sec_consumerdefensive",
	"industrials":            "sec_industrials",
	"utilities":              "sec_utilities",
	"real estate":            "sec_realestate",
	"communication services": "sec_communicationservices",
	"basic materials":        "sec_basicmaterials",
}

// capFilters maps market cap preferences to Finviz filter tokens
var capFilters = map[string]string{
	"large": "cap_largeover",
	"mid":   "cap_mid",
	"small": "cap_smallunder",
}

// Discover scrapes the screener and returns candidate symbols in page
// order, capped at the configured limit
func (s *Screener) Discover(ctx context.Context, prefs contracts.Preferences) ([]string, error) {
	url := s.buildURL(prefs)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create screener request failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("screener request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("screener returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read screener body failed: %w", err)
	}

	symbols := s.parseScreenerHTML(string(body))
	if len(symbols) == 0 {
		return nil, fmt.Errorf("screener returned no symbols")
	}

	s.logger.WithFields(map[string]interface{}{
		"count": len(symbols),
		"url":   url,
	}).Debug("Discovered screener symbols")

	return symbols, nil
}

// buildURL assembles the screener URL from preferences
func (s *Screener) buildURL(prefs contracts.Preferences) string {
	var filters []string

	for _, sector := range prefs.PreferredSectors {
		if token, ok := sectorFilters[strings.ToLower(strings.TrimSpace(sector))]; ok {
			filters = append(filters, token)
			break
		}
	}

	for _, cap := range prefs.MarketCap {
		if token, ok := capFilters[strings.ToLower(strings.TrimSpace(cap))]; ok {
			filters = append(filters, token)
			break
		}
	}

	if prefs.DividendPreference {
		filters = append(filters, "fa_div_pos")
	}

	url := s.cfg.BaseURL + "?v=111&o=-marketcap"
	if len(filters) > 0 {
		url += "&f=" + strings.Join(filters, ",")
	}
	return url
}

// parseScreenerHTML extracts ticker symbols from the result table.
// Finviz renders tickers as links with a quote.ashx href.
func (s *Screener) parseScreenerHTML(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var symbols []string

	doc.Find("a").EachWithBreak(func(i int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if !ok || !strings.Contains(href, "quote.ashx?t=") {
			return true
		}

		ticker := strings.TrimSpace(link.Text())
		if !tickerRe.MatchString(ticker) || seen[ticker] {
			return true
		}

		seen[ticker] = true
		symbols = append(symbols, ticker)
		return len(symbols) < s.limit
	})

	return symbols
}
