package helper

import (
	"math"
	"strings"
	"time"
)

// NormTF приводит таймфрейм к каноничному виду ("60m" и "1H" -> "1h").
func NormTF(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "candle")
	switch s {
	case "60m", "1h":
		return "1h"
	case "240m", "4h":
		return "4h"
	case "1440m", "24h", "d", "1d":
		return "1d"
	case "15m":
		return "15m"
	case "5m":
		return "5m"
	default:
		return s
	}
}

// RoundTo округляет до заданного числа знаков после запятой.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

// DayKey — ключ календарного дня для дневной статистики.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
