package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HTTP reads quotes from a JSON price service:
//
//	GET {BaseURL}/quotes/{symbol} -> {"symbol":"ABC","price":"50.00","source":"..."}
type HTTP struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

var _ Source = (*HTTP)(nil)

type quoteBody struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Source string          `json:"source"`
}

func (c *HTTP) GetLatestPrice(ctx context.Context, symbol string) (Quote, error) {
	body, err := c.get(ctx, "/quotes/"+url.PathEscape(strings.ToUpper(symbol)))
	if err != nil {
		return Quote{}, err
	}
	defer body.Close()

	var qb quoteBody
	if err := json.NewDecoder(body).Decode(&qb); err != nil {
		return Quote{}, fmt.Errorf("decode quote for %s: %w", symbol, err)
	}
	if !qb.Price.IsPositive() {
		return Quote{}, fmt.Errorf("quote for %s: non-positive price %s", symbol, qb.Price)
	}
	src := qb.Source
	if src == "" {
		src = "http"
	}
	return Quote{Symbol: symbol, Price: qb.Price, Source: src, Time: time.Now().UTC()}, nil
}

func (c *HTTP) get(ctx context.Context, path string) (io.ReadCloser, error) {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownSymbol)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		resp.Body.Close()
		return nil, fmt.Errorf("quote http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp.Body, nil
}
