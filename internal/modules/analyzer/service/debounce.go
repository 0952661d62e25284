package service

import (
	"time"

	"signal_bot/internal/models"
)

// Debounce сравнивает свежее решение с сохранённым и говорит, какой алерт
// слать. Единственный гейт на объём нотификаций: любое изменение — один
// ALERT_CHANGE (включая переход в HOLD), затянувшийся HOLD — не чаще одного
// ALERT_HOLD_TIMEOUT за holdInterval.
func Debounce(st *SymbolState, decision models.Decision, now time.Time, holdInterval time.Duration) models.Action {
	if decision != st.LastDecision {
		st.LastDecision = decision
		if decision == models.DecisionHold {
			st.HoldStartedAt = now
		} else {
			st.HoldStartedAt = time.Time{}
		}
		return models.ActionAlertChange
	}

	if decision == models.DecisionHold && !st.HoldStartedAt.IsZero() &&
		now.Sub(st.HoldStartedAt) >= holdInterval {
		st.HoldStartedAt = now
		return models.ActionHoldTimeout
	}

	return models.ActionNone
}
