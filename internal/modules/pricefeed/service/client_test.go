package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"signal_bot/internal/modules/config"
	"signal_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Init()
	os.Exit(m.Run())
}

func feedConfig(baseURL string) *config.Config {
	cfg := &config.Config{
		FetchTimeout: 2 * time.Second,
		FetchRetries: 3,
	}
	cfg.Feed.BaseURL = baseURL
	return cfg
}

func TestClientPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/24hr" || r.URL.Query().Get("symbol") != "BTCUSDT" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"65000.50","priceChangePercent":"-1.25"}`))
	}))
	defer srv.Close()

	c := NewClient(feedConfig(srv.URL))
	tick, err := c.Price(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatal(err)
	}
	if tick.Price != 65000.50 || tick.Change24h != -1.25 || tick.Symbol != "BTCUSDT" {
		t.Fatalf("tick = %+v", tick)
	}
}

func TestClientPriceRetriesTransientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "oops", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"100","priceChangePercent":"0"}`))
	}))
	defer srv.Close()

	c := NewClient(feedConfig(srv.URL))
	tick, err := c.Price(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatal(err)
	}
	if tick.Price != 100 {
		t.Fatalf("price = %v", tick.Price)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestClientPriceExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := feedConfig(srv.URL)
	cfg.FetchRetries = 2
	c := NewClient(cfg)

	if _, err := c.Price(context.Background(), "BTCUSDT"); err == nil {
		t.Fatal("want error after exhausted retries")
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
}

func TestClientPriceRejectsBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","lastPrice":"zero","priceChangePercent":"0"}`))
	}))
	defer srv.Close()

	c := NewClient(feedConfig(srv.URL))
	if _, err := c.Price(context.Background(), "BTCUSDT"); err == nil {
		t.Fatal("want error for non-numeric price")
	}
}

func TestClientKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("limit") != "3" {
			t.Errorf("limit = %s", r.URL.Query().Get("limit"))
		}
		_, _ = w.Write([]byte(`[
			[1700000000000,"100","101","99","100.5","12.3",1700003599999,"0",1,"0","0","0"],
			[1700003600000,"100.5","102","100","101.7","9.1",1700007199999,"0",1,"0","0","0"]
		]`))
	}))
	defer srv.Close()

	c := NewClient(feedConfig(srv.URL))
	candles, err := c.Klines(context.Background(), "BTCUSDT", "1h", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 2 {
		t.Fatalf("candles = %d, want 2", len(candles))
	}
	if candles[0].Close != 100.5 || candles[1].Close != 101.7 {
		t.Fatalf("closes = %v %v", candles[0].Close, candles[1].Close)
	}
	if candles[0].Start.UnixMilli() != 1700000000000 {
		t.Fatalf("start = %v", candles[0].Start)
	}
}
