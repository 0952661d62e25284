package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	analyzersvc "signal_bot/internal/modules/analyzer/service"
	"signal_bot/pkg/logger"
)

// Client — клиент сканера рекомендаций (TradingView-совместимое API):
// POST /crypto/scan с колонкой Recommend.All|<tf>, в ответе численный
// рейтинг -1..1, который мы переводим в BUY/SELL/HOLD.
type Client struct {
	cfg  *config.Config
	http *http.Client
	base string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.FetchTimeout},
		base: cfg.Indicator.BaseURL,
	}
}

// Votes — голоса по всем таймфреймам: по горутине на таймфрейм, join перед
// возвратом. Упавший таймфрейм деградирует в HOLD; ошибка только когда не
// получили ни одного живого голоса (для trend_fallback в раннере).
func (c *Client) Votes(ctx context.Context, tvSymbol string, timeframes []string) (map[string]models.Decision, error) {
	votes := make(map[string]models.Decision, len(timeframes))
	okCnt := 0

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, tf := range timeframes {
		tf := helper.NormTF(tf)
		wg.Add(1)
		go func() {
			defer wg.Done()

			rec, err := c.recommendation(ctx, tvSymbol, tf)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("indicator: %s %s: %v", tvSymbol, tf, err)
				votes[tf] = models.DecisionHold
				return
			}
			votes[tf] = analyzersvc.ParseVote(rec)
			okCnt++
		}()
	}
	wg.Wait()

	if okCnt == 0 {
		return votes, errors.Errorf("indicator: no usable votes for %s", tvSymbol)
	}
	return votes, nil
}

// recommendation — одна колонка одного символа, с ретраями и бэкоффом.
func (c *Client) recommendation(ctx context.Context, tvSymbol, tf string) (string, error) {
	column := "Recommend.All" + tfSuffix(tf)

	payload, err := json.Marshal(map[string]any{
		"symbols": map[string]any{"tickers": []string{tvSymbol}},
		"columns": []string{column},
	})
	if err != nil {
		return "", err
	}

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
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/crypto/scan", bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if sec, err := strconv.Atoi(ra); err == nil && sec > 0 {
					backoff = time.Duration(sec) * time.Second
				}
			}
			_ = resp.Body.Close()
			lastErr = errors.New("scanner rate limited")
			continue
		}

		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = errors.Errorf("scanner status %d", resp.StatusCode)
			continue
		}

		var parsed struct {
			Data []struct {
				Symbol string    `json:"s"`
				D      []float64 `json:"d"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			lastErr = errors.Wrap(err, "scanner decode")
			continue
		}
		if len(parsed.Data) == 0 || len(parsed.Data[0].D) == 0 {
			lastErr = errors.Errorf("scanner: empty data for %s", tvSymbol)
			continue
		}
		return ratingToRecommendation(parsed.Data[0].D[0]), nil
	}
	return "", lastErr
}

// пороги рейтинга как у tradingview_ta
func ratingToRecommendation(r float64) string {
	switch {
	case r >= 0.5:
		return "STRONG_BUY"
	case r >= 0.1:
		return "BUY"
	case r <= -0.5:
		return "STRONG_SELL"
	case r <= -0.1:
		return "SELL"
	}
	return "NEUTRAL"
}

// суффикс колонки сканера; дневной таймфрейм — колонка без суффикса
func tfSuffix(tf string) string {
	switch tf {
	case "5m":
		return "|5"
	case "15m":
		return "|15"
	case "1h":
		return "|60"
	case "4h":
		return "|240"
	case "1d":
		return ""
	}
	return ""
}
