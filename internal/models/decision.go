package models

// Decision — агрегированное направление по символу на текущий цикл.
// Пустая строка = ещё не было ни одного решения (не путать с HOLD).
type Decision string

const (
	DecisionUnset Decision = ""
	DecisionBuy   Decision = "BUY"
	DecisionSell  Decision = "SELL"
	DecisionHold  Decision = "HOLD"
)

// Directional — true для BUY/SELL, по которым открываем симуляцию.
func (d Decision) Directional() bool {
	return d == DecisionBuy || d == DecisionSell
}

func (d Decision) String() string {
	if d == DecisionUnset {
		return "UNSET"
	}
	return string(d)
}

// Action — что дебаунсер велит сделать с алертами в этом цикле.
type Action int

const (
	ActionNone Action = iota
	ActionAlertChange
	ActionHoldTimeout
)
