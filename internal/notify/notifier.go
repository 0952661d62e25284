package notify

import (
	"context"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// Notifier — типизированные алерты ядра. Доставка fire-and-forget:
// ошибку логирует зовущий, ретраев и блокировок переходов нет.
type Notifier interface {
	DecisionChange(ctx context.Context, ev models.SignalEvent, lv models.Levels) error
	PartialTarget(ctx context.Context, symbol, level string, price float64) error
	TradeClosed(ctx context.Context, ct models.ClosedTrade) error
	HoldTimeout(ctx context.Context, symbol string, elapsed time.Duration) error
	Dashboard(ctx context.Context, sum models.DashboardSummary) error
}

// StatusProvider отдаёт снапшоты состояния для команд бота.
// Реализует раннер; здесь только чтение.
type StatusProvider interface {
	Dashboard() models.DashboardSummary
	OpenTrades() []models.OpenTradeView
}

// Telegram шлёт HTML-сообщения в один чат и обрабатывает
// /dashboard и /positions через long-polling.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
	status StatusProvider
}

func NewTelegram(token string, chatID int64, status StatusProvider) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: b, chatID: chatID, status: status}, nil
}

func (t *Telegram) send(msg string) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return nil
	}
	m := tgbot.NewMessage(t.chatID, msg)
	m.ParseMode = tgbot.ModeHTML
	_, err := t.bot.Send(m)
	return err
}

func (t *Telegram) DecisionChange(_ context.Context, ev models.SignalEvent, lv models.Levels) error {
	return t.send(FormatDecisionChange(ev, lv))
}

func (t *Telegram) PartialTarget(_ context.Context, symbol, level string, price float64) error {
	return t.send(FormatPartialTarget(symbol, level, price))
}

func (t *Telegram) TradeClosed(_ context.Context, ct models.ClosedTrade) error {
	return t.send(FormatTradeClosed(ct))
}

func (t *Telegram) HoldTimeout(_ context.Context, symbol string, elapsed time.Duration) error {
	return t.send(FormatHoldTimeout(symbol, elapsed))
}

func (t *Telegram) Dashboard(_ context.Context, sum models.DashboardSummary) error {
	return t.send(FormatDashboard(sum))
}

// Start: long-polling команд. Сообщения из чужих чатов игнорируем.
func (t *Telegram) Start(ctx context.Context) error {
	if t == nil || t.bot == nil {
		return nil
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				if upd.Message == nil || upd.Message.Chat == nil ||
					upd.Message.Chat.ID != t.chatID || !upd.Message.IsCommand() {
					continue
				}

				switch upd.Message.Command() {
				case "dashboard":
					if err := t.Dashboard(ctx, t.status.Dashboard()); err != nil {
						logger.Error("telegram: dashboard reply: %v", err)
					}
				case "positions":
					if err := t.send(FormatPositions(t.status.OpenTrades())); err != nil {
						logger.Error("telegram: positions reply: %v", err)
					}
				}
			}
		}
	}()
	return nil
}

// Stdout — нотифайер без телеграма, всё в лог.
type Stdout struct{}

func NewStdout() *Stdout { return &Stdout{} }

func (s *Stdout) DecisionChange(_ context.Context, ev models.SignalEvent, lv models.Levels) error {
	logger.Info("ALERT %s", FormatDecisionChange(ev, lv))
	return nil
}

func (s *Stdout) PartialTarget(_ context.Context, symbol, level string, price float64) error {
	logger.Info("ALERT %s", FormatPartialTarget(symbol, level, price))
	return nil
}

func (s *Stdout) TradeClosed(_ context.Context, ct models.ClosedTrade) error {
	logger.Info("ALERT %s", FormatTradeClosed(ct))
	return nil
}

func (s *Stdout) HoldTimeout(_ context.Context, symbol string, elapsed time.Duration) error {
	logger.Info("ALERT %s", FormatHoldTimeout(symbol, elapsed))
	return nil
}

func (s *Stdout) Dashboard(_ context.Context, sum models.DashboardSummary) error {
	logger.Info("ALERT %s", FormatDashboard(sum))
	return nil
}
