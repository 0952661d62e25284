package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

func scanConfig(baseURL string) *config.Config {
	cfg := &config.Config{
		FetchTimeout: 2 * time.Second,
		FetchRetries: 1,
	}
	cfg.Indicator.BaseURL = baseURL
	return cfg
}

// сервер сканера: рейтинг на колонку, отсутствующая колонка — 500
func scannerServer(t *testing.T, ratings map[string]float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crypto/scan" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Symbols struct {
				Tickers []string `json:"tickers"`
			} `json:"symbols"`
			Columns []string `json:"columns"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Columns) != 1 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		rating, ok := ratings[req.Columns[0]]
		if !ok {
			http.Error(w, "no data", http.StatusInternalServerError)
			return
		}
		_, _ = fmt.Fprintf(w, `{"data":[{"s":"%s","d":[%v]}]}`, req.Symbols.Tickers[0], rating)
	}))
}

func TestVotesAllTimeframes(t *testing.T) {
	srv := scannerServer(t, map[string]float64{
		"Recommend.All|60":  0.6,   // STRONG_BUY
		"Recommend.All|240": 0.2,   // BUY
		"Recommend.All":     -0.05, // NEUTRAL
	})
	defer srv.Close()

	c := NewClient(scanConfig(srv.URL))
	votes, err := c.Votes(context.Background(), "BINANCE:BTCUSDT", []string{"1h", "4h", "1d"})
	if err != nil {
		t.Fatal(err)
	}
	if votes["1h"] != models.DecisionBuy {
		t.Errorf("1h = %s, want BUY", votes["1h"])
	}
	if votes["4h"] != models.DecisionBuy {
		t.Errorf("4h = %s, want BUY", votes["4h"])
	}
	if votes["1d"] != models.DecisionHold {
		t.Errorf("1d = %s, want HOLD", votes["1d"])
	}
}

func TestVotesFailedTimeframeDegradesToHold(t *testing.T) {
	srv := scannerServer(t, map[string]float64{
		"Recommend.All|60": -0.7, // STRONG_SELL
		"Recommend.All":    -0.3, // SELL
		// 4h отсутствует -> 500 -> HOLD
	})
	defer srv.Close()

	c := NewClient(scanConfig(srv.URL))
	votes, err := c.Votes(context.Background(), "BINANCE:BTCUSDT", []string{"1h", "4h", "1d"})
	if err != nil {
		t.Fatal(err)
	}
	if votes["1h"] != models.DecisionSell || votes["1d"] != models.DecisionSell {
		t.Fatalf("votes = %v", votes)
	}
	if votes["4h"] != models.DecisionHold {
		t.Fatalf("failed timeframe = %s, want HOLD", votes["4h"])
	}
}

func TestVotesAllFailedReturnsError(t *testing.T) {
	srv := scannerServer(t, nil)
	defer srv.Close()

	c := NewClient(scanConfig(srv.URL))
	votes, err := c.Votes(context.Background(), "BINANCE:BTCUSDT", []string{"1h", "4h"})
	if err == nil {
		t.Fatal("want error when no timeframe succeeds")
	}
	// деградация всё равно отдаёт HOLD-голоса
	if votes["1h"] != models.DecisionHold || votes["4h"] != models.DecisionHold {
		t.Fatalf("votes = %v", votes)
	}
}

func TestRatingToRecommendation(t *testing.T) {
	cases := []struct {
		rating float64
		want   string
	}{
		{0.8, "STRONG_BUY"},
		{0.5, "STRONG_BUY"},
		{0.3, "BUY"},
		{0.0, "NEUTRAL"},
		{-0.3, "SELL"},
		{-0.9, "STRONG_SELL"},
	}
	for _, c := range cases {
		if got := ratingToRecommendation(c.rating); got != c.want {
			t.Errorf("rating %v = %s, want %s", c.rating, got, c.want)
		}
	}
}
