package runner

import (
	"sync"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/analyzer/service"
	"signal_bot/internal/modules/config"
)

// Manager владеет состоянием всех символов. Мутирует SymbolState только
// цикл своего символа; лок общий, но держится лишь на синхронном блоке
// переходов — фетчи и нотификации живут снаружи.
type Manager struct {
	mu     sync.Mutex
	states map[string]*service.SymbolState
	order  []string
}

func NewManager(cfg *config.Config, eng *service.Engine) *Manager {
	m := &Manager{states: make(map[string]*service.SymbolState, len(cfg.Symbols))}
	for _, s := range cfg.Symbols {
		m.states[s.Name] = eng.NewState(s)
		m.order = append(m.order, s.Name)
	}
	return m
}

// WithState выполняет fn под локом. Весь переход одного цикла — один вызов.
func (m *Manager) WithState(symbol string, fn func(st *service.SymbolState)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[symbol]
	if !ok {
		return false
	}
	fn(st)
	return true
}

// SeedHistory заливает прогретые закрытия, но только пока история пустая:
// живые тики важнее прогрева.
func (m *Manager) SeedHistory(symbol string, closes []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[symbol]
	if !ok || len(st.History) > 0 {
		return
	}
	for _, c := range closes {
		st.PushPrice(c)
	}
}

// Restore подставляет решения прошлого запуска, чтобы рестарт не
// переалертил то, что уже алертилось.
func (m *Manager) Restore(last map[string]models.Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for symbol, d := range last {
		if st, ok := m.states[symbol]; ok {
			st.LastDecision = d
		}
	}
}

// Dashboard — read-only снапшот: счётчики решений (UNSET считаем HOLD)
// и открытые сделки с нереализованным профитом по последней цене.
func (m *Manager) Dashboard() models.DashboardSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	sum := models.DashboardSummary{At: time.Now()}
	for _, name := range m.order {
		st := m.states[name]
		switch st.LastDecision {
		case models.DecisionBuy:
			sum.Buy++
		case models.DecisionSell:
			sum.Sell++
		default:
			sum.Hold++
		}
		if view, ok := openView(st); ok {
			sum.Open = append(sum.Open, view)
		}
	}
	return sum
}

func (m *Manager) OpenTrades() []models.OpenTradeView {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.OpenTradeView, 0)
	for _, name := range m.order {
		if view, ok := openView(m.states[name]); ok {
			out = append(out, view)
		}
	}
	return out
}

func openView(st *service.SymbolState) (models.OpenTradeView, bool) {
	t := st.Trade
	if t == nil || t.Status != models.TradeOpen {
		return models.OpenTradeView{}, false
	}

	var pnl float64
	if st.LastPrice > 0 && t.Entry > 0 {
		if t.Side == models.DecisionBuy {
			pnl = (st.LastPrice - t.Entry) / t.Entry * 100
		} else {
			pnl = (t.Entry - st.LastPrice) / t.Entry * 100
		}
	}
	return models.OpenTradeView{
		Symbol:        t.Symbol,
		Side:          t.Side,
		Entry:         t.Entry,
		Last:          st.LastPrice,
		UnrealizedPct: pnl,
		OpenedAt:      t.OpenedAt,
	}, true
}
