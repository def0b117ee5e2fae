package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"StakingLedger/internal/model"
)

// HTTPOracle reads quotes from a REST endpoint returning {"price": 1.0001, "timestamp": 1700000000}.
type HTTPOracle struct {
	BaseURL string
	APIKey  string
	Symbol  string
	Client  *http.Client
}

// NewHTTPOracle creates a REST oracle with optional proxy support.
func NewHTTPOracle(baseURL, apiKey, symbol, proxyURL string) *HTTPOracle {
	return &HTTPOracle{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Symbol:  symbol,
		Client:  newHTTPClient(proxyURL),
	}
}

func (o *HTTPOracle) Name() string { return "http" }

func (o *HTTPOracle) LatestPrice(ctx context.Context) (model.Price, error) {
	endpoint := fmt.Sprintf("%s/api/v1/quote?symbol=%s", o.BaseURL, url.QueryEscape(o.Symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Price{}, err
	}
	if o.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.APIKey)
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return model.Price{}, errors.Wrap(err, "fetch quote")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.Price{}, errors.Errorf("fetch quote: status %d, body: %s", resp.StatusCode, string(body))
	}
	var result struct {
		Price     float64 `json:"price"`
		Timestamp int64   `json:"timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return model.Price{}, errors.Wrap(err, "decode quote")
	}
	ts := result.Timestamp
	if ts == 0 {
		ts = time.Now().Unix()
	}
	return fromFloat(result.Price, ts, o.Name())
}
