package breaker

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Состояния circuit breaker
const (
	StateClosed   = "CLOSED"
	StateOpen     = "OPEN"
	StateHalfOpen = "HALF_OPEN"
)

// Config задаёт пороги переключения состояний
type Config struct {
	// FailureThreshold - число последовательных ошибок до перехода в OPEN
	FailureThreshold int
	// SuccessThreshold - число последовательных успехов в HALF_OPEN до возврата в CLOSED
	SuccessThreshold int
	// Timeout - время в OPEN до допуска пробного запроса
	Timeout time.Duration
}

// Snapshot - срез состояния breaker для API и логов
type Snapshot struct {
	State            string     `json:"state"`
	FailureCount     int        `json:"failureCount"`
	SuccessCount     int        `json:"successCount"`
	FailureThreshold int        `json:"failureThreshold"`
	SuccessThreshold int        `json:"successThreshold"`
	Timeout          string     `json:"timeout"`
	LastFailureAt    *time.Time `json:"lastFailureAt,omitempty"`
}

// CircuitBreaker защищает вызовы платёжного провайдера.
// Состояние живёт в памяти процесса и не разделяется между инстансами.
type CircuitBreaker struct {
	logger *zap.Logger
	cfg    Config
	now    func() time.Time

	mu            sync.Mutex
	state         string
	failureCount  int
	successCount  int
	lastFailureAt time.Time
}

// New создаёт breaker в состоянии CLOSED
func New(logger *zap.Logger, cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &CircuitBreaker{
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
		state:  StateClosed,
	}
}

// Allow решает, можно ли выполнить вызов провайдера.
// В OPEN после истечения таймаута переводит breaker в HALF_OPEN
// и допускает пробный запрос.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateHalfOpen:
		return true
	case StateOpen:
		if cb.now().After(cb.lastFailureAt.Add(cb.cfg.Timeout)) {
			cb.setState(StateHalfOpen)
			cb.successCount = 0
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess фиксирует успешный вызов провайдера
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.cfg.SuccessThreshold {
			cb.setState(StateClosed)
			cb.failureCount = 0
			cb.successCount = 0
		}
	}
}

// RecordFailure фиксирует неуспешный вызов провайдера.
// В HALF_OPEN любая ошибка возвращает breaker в OPEN.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureAt = cb.now()

	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.cfg.FailureThreshold {
			cb.setState(StateOpen)
		}
	case StateHalfOpen:
		cb.setState(StateOpen)
		cb.successCount = 0
	}
}

// Snapshot возвращает текущее состояние breaker
func (cb *CircuitBreaker) Snapshot() Snapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	snap := Snapshot{
		State:            cb.state,
		FailureCount:     cb.failureCount,
		SuccessCount:     cb.successCount,
		FailureThreshold: cb.cfg.FailureThreshold,
		SuccessThreshold: cb.cfg.SuccessThreshold,
		Timeout:          cb.cfg.Timeout.String(),
	}
	if !cb.lastFailureAt.IsZero() {
		lastFailure := cb.lastFailureAt
		snap.LastFailureAt = &lastFailure
	}
	return snap
}

func (cb *CircuitBreaker) setState(state string) {
	if cb.state == state {
		return
	}
	cb.logger.Warn("circuit breaker state changed",
		zap.String("from", cb.state),
		zap.String("to", state),
		zap.Int("failure_count", cb.failureCount),
	)
	cb.state = state
}
