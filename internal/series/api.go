package series

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"PriceSweep/internal/model"
)

// APILoader pulls daily closing prices from a self-hosted bars endpoint.
type APILoader struct {
	BaseURL string
	APIKey  string
	Symbol  string
	Limit   int
	Client  *http.Client
}

func NewAPILoader(baseURL, apiKey, symbol, proxyURL string, limit int) *APILoader {
	if limit <= 0 {
		limit = 365
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &APILoader{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Symbol:  symbol,
		Limit:   limit,
		Client:  &http.Client{Timeout: 30 * time.Second, Transport: transport},
	}
}

func (l *APILoader) Name() string { return "api:" + l.Symbol }

type apiBar struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
}

func (l *APILoader) Load() ([]model.PriceRecord, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?symbol=%s&limit=%d",
		l.BaseURL, url.QueryEscape(l.Symbol), l.Limit)
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build bars request: %w", err)
	}
	if l.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+l.APIKey)
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bars endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var bars []apiBar
	if err := json.NewDecoder(resp.Body).Decode(&bars); err != nil {
		return nil, fmt.Errorf("decode bars response: %w", err)
	}

	records := make([]model.PriceRecord, 0, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			continue
		}
		records = append(records, model.PriceRecord{
			Date:  time.Unix(b.Timestamp, 0).UTC().Truncate(24 * time.Hour),
			Price: b.Close,
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("bars endpoint returned no usable bars for %s", l.Symbol)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}
