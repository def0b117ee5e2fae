package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"StakingLedger/internal/model"
)

// YahooOracle reads the last close from the Yahoo Finance chart API.
type YahooOracle struct {
	BaseURL   string
	Symbol    string
	Client    *http.Client
	SymbolMap map[string]string // maps token symbols to Yahoo tickers
}

// NewYahooOracle creates a Yahoo Finance oracle.
func NewYahooOracle(symbol, proxyURL string) *YahooOracle {
	return &YahooOracle{
		BaseURL: "https://query1.finance.yahoo.com",
		Symbol:  symbol,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"USDC": "USDC-USD",
			"USDT": "USDT-USD",
			"DAI":  "DAI-USD",
		},
	}
}

func (o *YahooOracle) Name() string { return "yahoo" }

func (o *YahooOracle) ticker() string {
	if mapped, ok := o.SymbolMap[o.Symbol]; ok {
		return mapped
	}
	return o.Symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
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
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

func (o *YahooOracle) LatestPrice(ctx context.Context) (model.Price, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1m&range=1d", o.BaseURL, url.PathEscape(o.ticker()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.Price{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := o.Client.Do(req)
	if err != nil {
		return model.Price{}, errors.Wrap(err, "yahoo fetch")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Price{}, errors.Wrap(err, "yahoo read body")
	}
	if resp.StatusCode != http.StatusOK {
		return model.Price{}, errors.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return model.Price{}, errors.Wrap(err, "yahoo decode")
	}
	if chart.Chart.Error != nil {
		return model.Price{}, errors.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return model.Price{}, errors.New("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	// the latest non-null close wins; trailing bars are null while a minute is still open
	for i := len(result.Timestamp) - 1; i >= 0; i-- {
		if i >= len(closes) {
			continue
		}
		if c := toFloat(closes[i]); c > 0 {
			return fromFloat(c, result.Timestamp[i], o.Name())
		}
	}
	return model.Price{}, errors.New("yahoo: no price data")
}
