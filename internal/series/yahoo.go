package series

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"PriceSweep/internal/model"
)

// YahooLoader pulls daily closing prices from Yahoo Finance's public chart
// API. No API key is required.
type YahooLoader struct {
	Symbol    string
	Range     string // lookback window, e.g. "6mo" or "1y"
	Client    *http.Client
	SymbolMap map[string]string
}

func NewYahooLoader(symbol, rng, proxyURL string) *YahooLoader {
	if rng == "" {
		rng = "1y"
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooLoader{
		Symbol: symbol,
		Range:  rng,
		Client: &http.Client{Timeout: 30 * time.Second, Transport: transport},
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (l *YahooLoader) Name() string { return "yahoo:" + l.Symbol }

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// toFloat tolerates the JSON nulls Yahoo emits for non-trading days.
func toFloat(v interface{}) float64 {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return f
}

func (l *YahooLoader) Load() ([]model.PriceRecord, error) {
	symbol := l.Symbol
	if mapped, ok := l.SymbolMap[symbol]; ok {
		symbol = mapped
	}

	endpoint := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s?interval=1d&range=%s",
		url.QueryEscape(symbol), url.QueryEscape(l.Range))
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build yahoo request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch yahoo chart: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned status %d for %s", resp.StatusCode, l.Symbol)
	}

	var data yahooChart
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode yahoo response: %w", err)
	}
	if data.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error for %s: %v", l.Symbol, data.Chart.Error)
	}
	if len(data.Chart.Result) == 0 || len(data.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo returned no data for %s", l.Symbol)
	}

	result := data.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	records := make([]model.PriceRecord, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		c := toFloat(quote.Close[i])
		if c == 0 {
			continue // skip null bars (holidays etc.)
		}
		records = append(records, model.PriceRecord{
			Date:  time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Price: c,
		})
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("yahoo returned no usable bars for %s", l.Symbol)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	return records, nil
}
