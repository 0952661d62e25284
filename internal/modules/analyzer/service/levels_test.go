package service

import (
	"math"
	"testing"

	"signal_bot/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeLevelsBuy(t *testing.T) {
	lv := ComputeLevels(100, models.DecisionBuy, 0.01)

	if lv.Entry != 100 {
		t.Fatalf("entry = %v, want 100", lv.Entry)
	}
	if !almostEqual(lv.SL, 99.00) {
		t.Errorf("sl = %v, want 99.00", lv.SL)
	}
	if !almostEqual(lv.TP1, 102.00) {
		t.Errorf("tp1 = %v, want 102.00", lv.TP1)
	}
	if !almostEqual(lv.TP2, 104.00) {
		t.Errorf("tp2 = %v, want 104.00", lv.TP2)
	}
	if !(lv.SL < lv.Entry && lv.Entry < lv.TP1 && lv.TP1 < lv.TP2) {
		t.Errorf("BUY ordering broken: %+v", lv)
	}
}

func TestComputeLevelsSellSubDollar(t *testing.T) {
	lv := ComputeLevels(0.5, models.DecisionSell, 0.01)

	if !almostEqual(lv.SL, 0.505) {
		t.Errorf("sl = %v, want 0.505", lv.SL)
	}
	if !almostEqual(lv.TP1, 0.49) {
		t.Errorf("tp1 = %v, want 0.49", lv.TP1)
	}
	if !almostEqual(lv.TP2, 0.48) {
		t.Errorf("tp2 = %v, want 0.48", lv.TP2)
	}
	// для SELL неравенства зеркальные
	if !(lv.SL > lv.Entry && lv.Entry > lv.TP1 && lv.TP1 > lv.TP2) {
		t.Errorf("SELL ordering broken: %+v", lv)
	}
}

func TestComputeLevelsHoldDegenerate(t *testing.T) {
	lv := ComputeLevels(42.1234567, models.DecisionHold, 0.01)

	want := 42.1235 // 4 знака для цен от 1 до 100
	if !almostEqual(lv.SL, want) || !almostEqual(lv.TP1, want) || !almostEqual(lv.TP2, want) {
		t.Errorf("HOLD levels = %+v, want all %v", lv, want)
	}
}

func TestComputeLevelsRoundingTiers(t *testing.T) {
	cases := []struct {
		price float64
		want  float64 // ожидаемый SL для BUY с vol=0.001
	}{
		{1000, 999.00}, // >=100 -> 2 знака
		{10, 9.99},     // >=1 -> 4 знака
		{0.1, 0.0999},  // <1 -> 6 знаков
	}

	for _, c := range cases {
		lv := ComputeLevels(c.price, models.DecisionBuy, 0.001)
		if !almostEqual(lv.SL, c.want) {
			t.Errorf("price %v: sl = %v, want %v", c.price, lv.SL, c.want)
		}
	}
}

func TestComputeLevelsATR(t *testing.T) {
	lv := ComputeLevelsATR(100, 2, models.DecisionBuy)
	if !almostEqual(lv.SL, 98) || !almostEqual(lv.TP1, 103) || !almostEqual(lv.TP2, 106) {
		t.Errorf("BUY atr levels = %+v", lv)
	}

	lv = ComputeLevelsATR(100, 2, models.DecisionSell)
	if !almostEqual(lv.SL, 102) || !almostEqual(lv.TP1, 97) || !almostEqual(lv.TP2, 94) {
		t.Errorf("SELL atr levels = %+v", lv)
	}
}

func TestATR(t *testing.T) {
	closes := []float64{1, 2, 4, 7}
	if got := ATR(closes, 3); !almostEqual(got, 2) {
		t.Errorf("atr = %v, want 2", got)
	}

	if got := ATR(closes, 4); got != 0 {
		t.Errorf("atr on short history = %v, want 0", got)
	}
	if got := ATR(nil, 3); got != 0 {
		t.Errorf("atr on empty history = %v, want 0", got)
	}
}

func TestExpectedProfit(t *testing.T) {
	lv := models.Levels{Entry: 100, TP1: 102}
	if got := ExpectedProfit(lv, models.DecisionBuy); !almostEqual(got, 2) {
		t.Errorf("buy expected = %v, want 2", got)
	}

	lv = models.Levels{Entry: 100, TP1: 98}
	if got := ExpectedProfit(lv, models.DecisionSell); !almostEqual(got, 2) {
		t.Errorf("sell expected = %v, want 2", got)
	}

	if got := ExpectedProfit(models.Levels{Entry: 100, TP1: 102}, models.DecisionHold); got != 0 {
		t.Errorf("hold expected = %v, want 0", got)
	}
}
