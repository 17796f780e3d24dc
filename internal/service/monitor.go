package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultScanInterval = time.Minute

// DefaultConvergenceThreshold is the similarity above which two sources are
// considered hidden convergences when no threshold is given.
const DefaultConvergenceThreshold = 0.8

// ConvergenceMonitor periodically scans the dependency graph for source pairs
// whose upstream closures overlap above a similarity threshold. Each newly
// observed pair is logged once; repeat sightings are suppressed.
type ConvergenceMonitor struct {
	service *EpistemicService
	logger  *zap.Logger

	interval  time.Duration
	threshold float64
	seen      map[string]struct{}
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

func NewConvergenceMonitor(service *EpistemicService, logger *zap.Logger) *ConvergenceMonitor {
	return &ConvergenceMonitor{
		service:   service,
		logger:    logger,
		interval:  defaultScanInterval,
		threshold: DefaultConvergenceThreshold,
		seen:      make(map[string]struct{}),
		stopCh:    make(chan struct{}),
	}
}

func (m *ConvergenceMonitor) SetInterval(d time.Duration) {
	m.interval = d
}

func (m *ConvergenceMonitor) SetThreshold(t float64) {
	m.threshold = t
}

// Start runs the monitor on a periodic schedule in a background goroutine.
func (m *ConvergenceMonitor) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.logger.Info("convergence monitor started",
			zap.Duration("interval", m.interval),
			zap.Float64("threshold", m.threshold))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				m.scan(ctx)
				cancel()
			case <-m.stopCh:
				m.logger.Info("convergence monitor stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the monitor.
func (m *ConvergenceMonitor) Stop() {
	close(m.stopCh)
	m.wg.Wait()
}

func (m *ConvergenceMonitor) scan(ctx context.Context) {
	convergences, err := m.service.HiddenConvergences(ctx, m.threshold)
	if err != nil {
		m.logger.Error("convergence scan failed", zap.Error(err))
		return
	}

	for _, c := range convergences {
		key := c.SourceA + "|" + c.SourceB
		if _, ok := m.seen[key]; ok {
			continue
		}
		m.seen[key] = struct{}{}
		m.logger.Warn("hidden convergence detected",
			zap.String("source_a", c.SourceA),
			zap.String("source_b", c.SourceB),
			zap.Float64("similarity", c.Similarity))
	}

	m.service.PublishGauges(ctx)
}
