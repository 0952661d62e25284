package models

import "time"

// PriceTick — текущая цена символа плюс суточное изменение в процентах.
type PriceTick struct {
	Symbol    string
	Price     float64
	Change24h float64
	At        time.Time
}

// Candle — закрытая свеча для REST-прогрева истории.
type Candle struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
	Start time.Time
	End   time.Time
}
