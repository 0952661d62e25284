package service

import (
	"strings"

	"signal_bot/internal/models"
)

// Aggregate сводит голоса таймфреймов в одно решение. Порядок голосов не
// важен — только количество. Противоречие (оба направления добрали порог,
// возможно при >3 голосах) трактуем консервативно как HOLD.
func Aggregate(votes []models.Decision, threshold int) models.Decision {
	if threshold <= 0 {
		threshold = 2
	}

	var buy, sell int
	for _, v := range votes {
		switch v {
		case models.DecisionBuy:
			buy++
		case models.DecisionSell:
			sell++
		}
	}

	switch {
	case buy >= threshold && sell >= threshold:
		return models.DecisionHold
	case buy >= threshold:
		return models.DecisionBuy
	case sell >= threshold:
		return models.DecisionSell
	}
	return models.DecisionHold
}

// ParseVote нормализует строку рекомендации провайдера.
// STRONG_* схлопываем в базовое направление, мусор приравниваем к HOLD.
func ParseVote(raw string) models.Decision {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "BUY", "STRONG_BUY":
		return models.DecisionBuy
	case "SELL", "STRONG_SELL":
		return models.DecisionSell
	case "HOLD", "NEUTRAL":
		return models.DecisionHold
	}
	return models.DecisionHold
}
