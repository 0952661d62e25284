package service

import (
	"math"

	"signal_bot/internal/helper"
	"signal_bot/internal/models"
)

// точность зависит от порядка цены: у дешёвых монет знаков больше
func priceDecimals(price float64) int {
	if price >= 100 {
		return 2
	}
	if price >= 1 {
		return 4
	}
	return 6
}

// ComputeLevels — уровни от процента волатильности.
// Для HOLD все уровни вырождаются в текущую цену.
func ComputeLevels(price float64, side models.Decision, vol float64) models.Levels {
	d := priceDecimals(price)
	lv := models.Levels{Entry: price}

	switch side {
	case models.DecisionBuy:
		lv.SL = helper.RoundTo(price*(1-vol), d)
		lv.TP1 = helper.RoundTo(price*(1+vol*2), d)
		lv.TP2 = helper.RoundTo(price*(1+vol*4), d)
	case models.DecisionSell:
		lv.SL = helper.RoundTo(price*(1+vol), d)
		lv.TP1 = helper.RoundTo(price*(1-vol*2), d)
		lv.TP2 = helper.RoundTo(price*(1-vol*4), d)
	default:
		r := helper.RoundTo(price, d)
		lv.SL, lv.TP1, lv.TP2 = r, r, r
	}
	return lv
}

// ComputeLevelsATR — вариант от абсолютного ATR: SL на один ATR,
// тейки на 1.5 и 3 ATR от входа.
func ComputeLevelsATR(price, atr float64, side models.Decision) models.Levels {
	d := priceDecimals(price)
	lv := models.Levels{Entry: price}

	switch side {
	case models.DecisionBuy:
		lv.SL = helper.RoundTo(price-atr, d)
		lv.TP1 = helper.RoundTo(price+atr*1.5, d)
		lv.TP2 = helper.RoundTo(price+atr*3, d)
	case models.DecisionSell:
		lv.SL = helper.RoundTo(price+atr, d)
		lv.TP1 = helper.RoundTo(price-atr*1.5, d)
		lv.TP2 = helper.RoundTo(price-atr*3, d)
	default:
		r := helper.RoundTo(price, d)
		lv.SL, lv.TP1, lv.TP2 = r, r, r
	}
	return lv
}

// ATR по ценам закрытия: средний модуль движения за period шагов.
// Истории не хватает — вернёт 0, зовущий падает обратно на процентный режим.
func ATR(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 0
	}
	var sum float64
	for i := len(closes) - period; i < len(closes); i++ {
		sum += math.Abs(closes[i] - closes[i-1])
	}
	return sum / float64(period)
}

// ExpectedProfit — ожидаемый профит до TP1 в процентах (для алерта и журнала).
func ExpectedProfit(lv models.Levels, side models.Decision) float64 {
	if lv.Entry <= 0 {
		return 0
	}
	switch side {
	case models.DecisionBuy:
		return (lv.TP1 - lv.Entry) / lv.Entry * 100
	case models.DecisionSell:
		return (lv.Entry - lv.TP1) / lv.Entry * 100
	}
	return 0
}
