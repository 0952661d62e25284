package store

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"signal_bot/internal/models"
)

func newFileStore(t *testing.T) *File {
	t.Helper()
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestFileSignalAppendsJSONL(t *testing.T) {
	f := newFileStore(t)
	ctx := context.Background()
	at := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		ev := models.SignalEvent{At: at, Symbol: "BTCUSDT", TV: "BINANCE:BTCUSDT", Price: 100, Decision: models.DecisionBuy, Reason: "test"}
		if err := f.Signal(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(f.dir, signalsFile))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 2 {
		t.Fatalf("jsonl lines = %d, want 2", len(lines))
	}
	if !strings.Contains(lines[0], `"decision":"BUY"`) {
		t.Fatalf("line = %s", lines[0])
	}

	today, err := f.Today(ctx, at)
	if err != nil {
		t.Fatal(err)
	}
	if today.Buy != 2 || today.Sell != 0 {
		t.Fatalf("today = %+v, want Buy=2", today)
	}
}

func TestFileTradeClosedCSV(t *testing.T) {
	f := newFileStore(t)
	ctx := context.Background()
	opened := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	ct := models.ClosedTrade{
		Symbol: "BTCUSDT", TV: "BINANCE:BTCUSDT", Side: models.DecisionBuy,
		Entry: 100, Exit: 102.5, SL: 99.5, TP1: 101, TP2: 102,
		Reason: models.CloseTP2, ProfitPct: 2.5,
		OpenedAt: opened, ClosedAt: opened.Add(5 * time.Minute), Duration: 5 * time.Minute,
	}
	if err := f.TradeClosed(ctx, ct); err != nil {
		t.Fatal(err)
	}
	if err := f.TradeClosed(ctx, ct); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(filepath.Join(f.dir, tradesFile))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = file.Close() }()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// заголовок пишется один раз
	if len(rows) != 3 {
		t.Fatalf("csv rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "trade_start" {
		t.Fatalf("header = %v", rows[0])
	}
	row := rows[1]
	if row[1] != "BINANCE:BTCUSDT" || row[3] != "BUY" || row[10] != "TP2" || row[12] != "300" {
		t.Fatalf("row = %v", row)
	}

	today, err := f.Today(ctx, opened)
	if err != nil {
		t.Fatal(err)
	}
	if today.Closed != 2 || today.ProfitSum != 5.0 {
		t.Fatalf("today = %+v, want Closed=2 ProfitSum=5", today)
	}
}

func TestFileStateRoundTrip(t *testing.T) {
	f := newFileStore(t)
	ctx := context.Background()

	if err := f.SaveLastDecision(ctx, "BTCUSDT", models.DecisionBuy); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveLastDecision(ctx, "ETHUSDT", models.DecisionHold); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveLastDecision(ctx, "BTCUSDT", models.DecisionSell); err != nil {
		t.Fatal(err)
	}

	got, err := f.LastDecisions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got["BTCUSDT"] != models.DecisionSell || got["ETHUSDT"] != models.DecisionHold {
		t.Fatalf("state = %v", got)
	}
}

func TestFileCorruptStateNotFatal(t *testing.T) {
	f := newFileStore(t)
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(f.dir, stateFile), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := f.LastDecisions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("state = %v, want empty", got)
	}
}

func TestFileTodayEmptyDay(t *testing.T) {
	f := newFileStore(t)
	today, err := f.Today(context.Background(), time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if today.Day != "2026-08-25" || today.Buy != 0 || today.Closed != 0 {
		t.Fatalf("today = %+v", today)
	}
}
