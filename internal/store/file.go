package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
)

const (
	signalsFile = "signals.jsonl"
	tradesFile  = "trades.csv"
	stateFile   = "state.json"
	statsFile   = "daily_stats.json"
)

var tradesHeader = []string{
	"trade_start", "symbol", "coin", "side", "entry", "sl", "tp1", "tp2",
	"exit_time", "exit_price", "exit_reason", "profit_pct", "duration_seconds",
}

// File — рекордер на плоских файлах в data_dir. Аппенды сериализованы
// мьютексом: символьные циклы пишут конкурентно.
type File struct {
	dir string
	mu  sync.Mutex
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "store: mkdir data dir")
	}
	return &File{dir: dir}, nil
}

func (f *File) path(name string) string { return filepath.Join(f.dir, name) }

func (f *File) Signal(_ context.Context, ev models.SignalEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	line, err := sonic.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "store: marshal signal")
	}
	if err := appendLine(f.path(signalsFile), line); err != nil {
		return err
	}

	if ev.Decision.Directional() {
		return f.bumpStats(ev.At, func(st *models.DailyStats) {
			if ev.Decision == models.DecisionBuy {
				st.Buy++
			} else {
				st.Sell++
			}
		})
	}
	return nil
}

func (f *File) TradeClosed(_ context.Context, ct models.ClosedTrade) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.path(tradesFile)
	writeHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		writeHeader = true
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "store: open trades csv")
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	if writeHeader {
		if err := w.Write(tradesHeader); err != nil {
			return errors.Wrap(err, "store: trades header")
		}
	}
	row := []string{
		ct.OpenedAt.UTC().Format("2006-01-02 15:04:05"),
		ct.TV,
		ct.Symbol,
		string(ct.Side),
		fmt.Sprintf("%v", ct.Entry),
		fmt.Sprintf("%v", ct.SL),
		fmt.Sprintf("%v", ct.TP1),
		fmt.Sprintf("%v", ct.TP2),
		ct.ClosedAt.UTC().Format("2006-01-02 15:04:05"),
		fmt.Sprintf("%v", ct.Exit),
		string(ct.Reason),
		fmt.Sprintf("%.6f", ct.ProfitPct),
		fmt.Sprintf("%d", int(ct.Duration.Seconds())),
	}
	if err := w.Write(row); err != nil {
		return errors.Wrap(err, "store: trades row")
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "store: trades flush")
	}

	return f.bumpStats(ct.ClosedAt, func(st *models.DailyStats) {
		st.Closed++
		st.ProfitSum += ct.ProfitPct
	})
}

func (f *File) LastDecisions(_ context.Context) (map[string]models.Decision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readState()
}

func (f *File) readState() (map[string]models.Decision, error) {
	out := make(map[string]models.Decision)
	raw, err := os.ReadFile(f.path(stateFile))
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "store: read state")
	}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		// битый стейт не фатален: начнём с чистого
		return make(map[string]models.Decision), nil
	}
	return out, nil
}

func (f *File) SaveLastDecision(_ context.Context, symbol string, d models.Decision) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	state, err := f.readState()
	if err != nil {
		return err
	}
	state[symbol] = d
	raw, err := sonic.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "store: marshal state")
	}
	return errors.Wrap(os.WriteFile(f.path(stateFile), raw, 0o644), "store: write state")
}

func (f *File) Today(_ context.Context, now time.Time) (models.DailyStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	day := helper.DayKey(now)
	stats, err := f.readStats()
	if err != nil {
		return models.DailyStats{}, err
	}
	st, ok := stats[day]
	if !ok {
		return models.DailyStats{Day: day}, nil
	}
	return st, nil
}

// bumpStats мутирует статистику дня под уже взятым мьютексом.
func (f *File) bumpStats(at time.Time, mut func(*models.DailyStats)) error {
	stats, err := f.readStats()
	if err != nil {
		return err
	}

	day := helper.DayKey(at)
	st := stats[day]
	st.Day = day
	mut(&st)
	stats[day] = st

	raw, err := sonic.Marshal(stats)
	if err != nil {
		return errors.Wrap(err, "store: marshal stats")
	}
	return errors.Wrap(os.WriteFile(f.path(statsFile), raw, 0o644), "store: write stats")
}

func (f *File) readStats() (map[string]models.DailyStats, error) {
	out := make(map[string]models.DailyStats)
	raw, err := os.ReadFile(f.path(statsFile))
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "store: read stats")
	}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return make(map[string]models.DailyStats), nil
	}
	return out, nil
}

func appendLine(path string, line []byte) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "store: open jsonl")
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return errors.Wrap(err, "store: append jsonl")
	}
	return nil
}
