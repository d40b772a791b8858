package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is the health probe of a storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sizer is implemented by backends that can count their keys cheaply.
type Sizer interface {
	Size() (int, error)
}

// TxCounter is implemented by backends that track their transactions.
type TxCounter interface {
	TxCounts() (open, started int)
}

// Monitor periodically pings the storage backend and caches the result for /health.
type Monitor struct {
	backend string
	store   Pinger

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(backend string, store Pinger, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		backend:  backend,
		store:    store,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Storage
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh probes the backend once and stores the result.
func (m *Monitor) Refresh() Status {
	status := Status{Backend: m.backend, LastCheck: time.Now()}

	if err := m.ping(); err != nil {
		status.Error = err.Error()
	} else {
		status.Storage = true
		if sizer, ok := m.store.(Sizer); ok {
			size, err := sizer.Size()
			if err != nil {
				m.logger.Warn("storage size check failed", zap.Error(err))
			}
			status.Keys = size
		}
		if counter, ok := m.store.(TxCounter); ok {
			status.OpenTx, status.ReadTx = counter.TxCounts()
		}
	}

	m.mu.Lock()
	wasOnline := m.status.Storage || m.status.LastCheck.IsZero()
	m.status = status
	m.mu.Unlock()

	if wasOnline && !status.Storage {
		m.logger.Warn("storage backend unreachable", zap.String("backend", m.backend), zap.String("error", status.Error))
	} else if !wasOnline && status.Storage {
		m.logger.Info("storage backend recovered", zap.String("backend", m.backend))
	}
	return status
}

func (m *Monitor) ping() error {
	if m.store == nil {
		return errNoStore
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.store.Ping(ctx)
}
