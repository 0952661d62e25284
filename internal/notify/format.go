package notify

import (
	"fmt"
	"strings"
	"time"

	"signal_bot/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// FormatDecisionChange — алерт смены решения со всеми уровнями.
func FormatDecisionChange(ev models.SignalEvent, lv models.Levels) string {
	var b strings.Builder
	b.WriteString("🚀 <b>Market Alert</b>\n")
	fmt.Fprintf(&b, "⏰ <b>%s UTC</b>\n", ev.At.UTC().Format(timeLayout))
	fmt.Fprintf(&b, "💹 <b>%s (%s)</b>\n", ev.TV, ev.Symbol)
	fmt.Fprintf(&b, "💰 Price: %v USD\n", ev.Price)
	fmt.Fprintf(&b, "📈 Decision: <b>%s</b>\n", ev.Decision)
	fmt.Fprintf(&b, "📝 Reason: %s\n", ev.Reason)
	fmt.Fprintf(&b, "⚡ TP/SL: Entry %v, SL %v, TP1 %v, TP2 %v\n", lv.Entry, lv.SL, lv.TP1, lv.TP2)
	fmt.Fprintf(&b, "💵 Expected Profit (TP1): %.2f%%", ev.ExpectedProfit)
	return b.String()
}

func FormatPartialTarget(symbol, level string, price float64) string {
	return fmt.Sprintf("🔔 <b>%s</b> reached %s level (%v).", symbol, level, price)
}

func FormatTradeClosed(ct models.ClosedTrade) string {
	var b strings.Builder
	b.WriteString("🏁 <b>Trade Closed</b>\n")
	fmt.Fprintf(&b, "%s (%s)\n", ct.TV, ct.Symbol)
	fmt.Fprintf(&b, "Side: <b>%s</b>\n", ct.Side)
	fmt.Fprintf(&b, "Entry: %v\n", ct.Entry)
	fmt.Fprintf(&b, "Exit: %v\n", ct.Exit)
	fmt.Fprintf(&b, "Reason: %s\n", ct.Reason)
	fmt.Fprintf(&b, "Profit: <b>%.4f%%</b>\n", ct.ProfitPct)
	fmt.Fprintf(&b, "Duration: %ds", int(ct.Duration.Seconds()))
	return b.String()
}

func FormatHoldTimeout(symbol string, elapsed time.Duration) string {
	return fmt.Sprintf("⚠️ <b>%s</b> has been on HOLD for %d mins.", symbol, int(elapsed.Minutes()))
}

// FormatDashboard — сводка: счётчики решений, открытые сделки с живым
// нереализованным профитом и дневная статистика.
func FormatDashboard(sum models.DashboardSummary) string {
	var b strings.Builder
	b.WriteString("📊 <b>Market Dashboard</b>\n")
	fmt.Fprintf(&b, "⏰ %s UTC\n", sum.At.UTC().Format(timeLayout))
	fmt.Fprintf(&b, "BUY: <b>%d</b>  SELL: <b>%d</b>  HOLD: <b>%d</b>\n", sum.Buy, sum.Sell, sum.Hold)
	fmt.Fprintf(&b, "Active trades: <b>%d</b>", len(sum.Open))
	for _, tr := range sum.Open {
		fmt.Fprintf(&b, "\n• %s %s @ %v → %v (<b>%+.2f%%</b>)", tr.Symbol, tr.Side, tr.Entry, tr.Last, tr.UnrealizedPct)
	}
	if sum.Today.Day != "" {
		fmt.Fprintf(&b, "\nToday: BUY %d / SELL %d / closed %d (%+.2f%%)",
			sum.Today.Buy, sum.Today.Sell, sum.Today.Closed, sum.Today.ProfitSum)
	}
	return b.String()
}

func FormatPositions(open []models.OpenTradeView) string {
	if len(open) == 0 {
		return "📭 Открытых позиций нет"
	}
	var b strings.Builder
	b.WriteString("📊 Открытые позиции:\n")
	for _, tr := range open {
		fmt.Fprintf(&b, "- %s [%s] entry=%v last=%v pnl=%+.2f%% opened=%s\n",
			tr.Symbol, tr.Side, tr.Entry, tr.Last, tr.UnrealizedPct, tr.OpenedAt.UTC().Format(timeLayout))
	}
	return b.String()
}
