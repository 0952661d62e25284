package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	healthsvc "signal_bot/internal/modules/health/service"
	"signal_bot/pkg/logger"
)

// staleAfter — дольше этого кэш тика считается протухшим и цикл пропускается
const staleAfter = 90 * time.Second

// Stream — один WebSocket на все символы (miniTicker), кэш последнего тика
// на символ. При обрыве переподключается сам и дёргает health-флаг фида.
type Stream struct {
	cfg    *config.Config
	health *healthsvc.State
	dialer *websocket.Dialer

	mu    sync.RWMutex
	ticks map[string]models.PriceTick
}

func NewStream(cfg *config.Config, health *healthsvc.State) *Stream {
	return &Stream{
		cfg:    cfg,
		health: health,
		dialer: &websocket.Dialer{},
		ticks:  make(map[string]models.PriceTick),
	}
}

// Price отдаёт последний тик из кэша. Нет свежего тика — ошибка,
// раннер пропустит цикл и попробует на следующем тике.
func (s *Stream) Price(_ context.Context, symbol string) (models.PriceTick, error) {
	s.mu.RLock()
	tick, ok := s.ticks[symbol]
	s.mu.RUnlock()

	if !ok {
		return models.PriceTick{}, errors.Errorf("stream: no tick yet for %s", symbol)
	}
	if time.Since(tick.At) > staleAfter {
		return models.PriceTick{}, errors.Errorf("stream: stale tick for %s (%s)", symbol, time.Since(tick.At))
	}
	return tick, nil
}

// Start крутит connect/read-loop до отмены контекста.
func (s *Stream) Start(ctx context.Context) {
	streams := make([]string, 0, len(s.cfg.Symbols))
	for _, sym := range s.cfg.Symbols {
		streams = append(streams, strings.ToLower(sym.Name)+"@miniTicker")
	}
	url := s.cfg.Feed.WSURL + "/stream?streams=" + strings.Join(streams, "/")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		logger.Info("stream: connecting %d symbols", len(streams))
		conn, _, err := s.dialer.DialContext(ctx, url, nil)
		if err != nil {
			logger.Error("stream: dial error: %v", err)
			time.Sleep(time.Second)
			continue
		}
		s.health.SetFeedConnected(true)

		// keepalive, иначе сервер рвёт тихое соединение
		stopPing := make(chan struct{})
		go func() {
			t := time.NewTicker(20 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-stopPing:
					return
				case <-t.C:
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}()

		s.readLoop(ctx, conn)
		close(stopPing)
		_ = conn.Close()
		s.health.SetFeedConnected(false)

		select {
		case <-ctx.Done():
			return
		default:
			time.Sleep(time.Second)
		}
	}
}

func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.Error("stream: read error: %v", err)
			}
			return
		}

		var frame struct {
			Data struct {
				Symbol string `json:"s"`
				Close  string `json:"c"`
				Open   string `json:"o"`
			} `json:"data"`
		}
		if err := json.Unmarshal(msg, &frame); err != nil || frame.Data.Symbol == "" {
			continue
		}

		price, err := strconv.ParseFloat(frame.Data.Close, 64)
		if err != nil || price <= 0 {
			continue
		}

		// miniTicker не несёт суточный процент — считаем от открытия суток
		var change float64
		if open, err := strconv.ParseFloat(frame.Data.Open, 64); err == nil && open > 0 {
			change = (price - open) / open * 100
		}

		s.mu.Lock()
		s.ticks[frame.Data.Symbol] = models.PriceTick{
			Symbol:    frame.Data.Symbol,
			Price:     price,
			Change24h: change,
			At:        time.Now(),
		}
		s.mu.Unlock()
	}
}
