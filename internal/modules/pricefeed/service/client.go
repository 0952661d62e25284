package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

// Client — REST-клиент фида цен (Binance-совместимое API).
// Ретраи с удвоением паузы, 429 уважаем через Retry-After.
type Client struct {
	cfg  *config.Config
	http *http.Client
	base string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.FetchTimeout},
		base: cfg.Feed.BaseURL,
	}
}

// Price — текущая цена и суточное изменение одним запросом.
func (c *Client) Price(ctx context.Context, symbol string) (models.PriceTick, error) {
	url := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", c.base, symbol)

	body, err := c.getWithRetry(ctx, url)
	if err != nil {
		return models.PriceTick{}, errors.Wrapf(err, "ticker %s", symbol)
	}

	var resp struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
		ChangePct string `json:"priceChangePercent"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return models.PriceTick{}, errors.Wrapf(err, "ticker decode %s", symbol)
	}

	price, err := strconv.ParseFloat(resp.LastPrice, 64)
	if err != nil || price <= 0 {
		return models.PriceTick{}, errors.Errorf("ticker %s: bad lastPrice %q", symbol, resp.LastPrice)
	}
	change, _ := strconv.ParseFloat(resp.ChangePct, 64)

	return models.PriceTick{
		Symbol:    symbol,
		Price:     price,
		Change24h: change,
		At:        time.Now(),
	}, nil
}

// Klines — закрытые свечи для прогрева истории.
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		limit = 50
	}
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d", c.base, symbol, interval, limit)

	body, err := c.getWithRetry(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "klines %s", symbol)
	}

	// формат: [[openTime, "o","h","l","c","vol", closeTime, ...], ...]
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, errors.Wrapf(err, "klines decode %s", symbol)
	}

	out := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		if len(row) < 7 {
			continue
		}
		var openMs, closeMs int64
		var o, h, l, cl string
		if json.Unmarshal(row[0], &openMs) != nil ||
			json.Unmarshal(row[1], &o) != nil ||
			json.Unmarshal(row[2], &h) != nil ||
			json.Unmarshal(row[3], &l) != nil ||
			json.Unmarshal(row[4], &cl) != nil ||
			json.Unmarshal(row[6], &closeMs) != nil {
			continue
		}
		open, e1 := strconv.ParseFloat(o, 64)
		high, e2 := strconv.ParseFloat(h, 64)
		low, e3 := strconv.ParseFloat(l, 64)
		closep, e4 := strconv.ParseFloat(cl, 64)
		if e1 != nil || e2 != nil || e3 != nil || e4 != nil || closep <= 0 {
			continue
		}
		out = append(out, models.Candle{
			Open:  open,
			High:  high,
			Low:   low,
			Close: closep,
			Start: time.UnixMilli(openMs),
			End:   time.UnixMilli(closeMs),
		})
	}
	return out, nil
}

func (c *Client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	retries := c.cfg.FetchRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := time.Second

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			// Retry-After важнее нашего бэкоффа
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if sec, err := strconv.Atoi(ra); err == nil && sec > 0 {
					backoff = time.Duration(sec) * time.Second
				}
			}
			_ = resp.Body.Close()
			lastErr = errors.Errorf("rate limited: %s", url)
			logger.Warn("feed: 429, backoff %s", backoff)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = errors.Errorf("status %d: %s", resp.StatusCode, url)
			continue
		}
		return body, nil
	}
	return nil, lastErr
}
