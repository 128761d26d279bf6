package proctor

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"liquidhire/internal/metrics"
)

const (
	// ReasonMultiplePeople fires when more than one person is visible.
	ReasonMultiplePeople = "Multiple people detected"
	// ReasonPhone fires on any phone-like detection.
	ReasonPhone = "Prohibited object: Phone"
	// ReasonBook fires on a visible book.
	ReasonBook = "Prohibited object: Book"
)

// Finding is the monitor's latest verdict on the candidate's camera feed.
type Finding struct {
	Flagged bool      `json:"flagged"`
	Reason  string    `json:"reason,omitempty"`
	At      time.Time `json:"at"`
}

// MonitorConfig carries the proctoring tunables.
type MonitorConfig struct {
	// Interval is the cadence of detection passes over the latest frame.
	Interval time.Duration
	// ScoreThreshold is the minimum detection confidence that counts.
	ScoreThreshold float64
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval:       500 * time.Millisecond,
		ScoreThreshold: 0.5,
	}
}

// Monitor watches a session's camera frames for integrity violations.
// Frames arrive via SubmitFrame; a background loop runs detection at a
// fixed cadence on whichever frame is newest, so a slow model never
// queues work. A nil detector yields an inactive monitor: the interview
// proceeds unproctored rather than failing.
type Monitor struct {
	detector ObjectDetector
	cfg      MonitorConfig
	logger   *zap.Logger

	mu      sync.RWMutex
	frame   []byte
	finding Finding

	onFinding func(Finding)

	stopOnce sync.Once
	started  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewMonitor builds a monitor. onFinding fires on every verdict change
// and may be nil.
func NewMonitor(detector ObjectDetector, cfg MonitorConfig, onFinding func(Finding), logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = 0.5
	}
	return &Monitor{
		detector:  detector,
		cfg:       cfg,
		logger:    logger,
		onFinding: onFinding,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Active reports whether the monitor has a detector to run.
func (m *Monitor) Active() bool {
	return m != nil && m.detector != nil
}

// Start launches the detection loop. Inactive monitors and repeated
// calls return immediately.
func (m *Monitor) Start() {
	if !m.Active() {
		return
	}
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()
	go m.run()
}

// SubmitFrame replaces the frame the next detection pass will inspect.
func (m *Monitor) SubmitFrame(frame []byte) {
	if !m.Active() {
		return
	}
	m.mu.Lock()
	m.frame = frame
	m.mu.Unlock()
}

// Latest returns the most recent verdict.
func (m *Monitor) Latest() Finding {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.finding
}

// Stop halts the loop and releases the detector. Idempotent, and safe
// even when the loop was never started.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		m.mu.RLock()
		started := m.started
		m.mu.RUnlock()
		if started {
			<-m.doneCh
		}
		if m.detector != nil {
			if err := m.detector.Close(); err != nil {
				m.logger.Warn("detector close failed", zap.Error(err))
			}
		}
	})
}

func (m *Monitor) run() {
	defer close(m.doneCh)
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.inspect()
		}
	}
}

func (m *Monitor) inspect() {
	m.mu.RLock()
	frame := m.frame
	m.mu.RUnlock()
	if len(frame) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Interval*4)
	detections, err := m.detector.Detect(ctx, frame)
	cancel()
	if err != nil {
		// Detection errors degrade to "no verdict" rather than flagging
		// the candidate.
		m.logger.Debug("detection pass failed", zap.Error(err))
		return
	}

	next := Classify(detections, m.cfg.ScoreThreshold)
	m.publish(next)
}

func (m *Monitor) publish(next Finding) {
	m.mu.Lock()
	changed := next.Flagged != m.finding.Flagged || next.Reason != m.finding.Reason
	m.finding = next
	m.mu.Unlock()

	if !changed {
		return
	}
	if next.Flagged {
		metrics.ProctorFlagged(next.Reason)
	}
	if m.onFinding != nil {
		m.onFinding(next)
	}
}

// Classify applies the violation rules to one detection pass. Multiple
// people wins over prohibited objects when both are present.
func Classify(detections []Detection, threshold float64) Finding {
	finding := Finding{At: time.Now()}

	persons := 0
	var phone, book bool
	for _, d := range detections {
		if d.Score < threshold {
			continue
		}
		switch label := strings.ToLower(d.Label); {
		case label == "person":
			persons++
		case strings.Contains(label, "phone"):
			phone = true
		case label == "book":
			book = true
		}
	}

	switch {
	case persons > 1:
		finding.Flagged = true
		finding.Reason = ReasonMultiplePeople
	case phone:
		finding.Flagged = true
		finding.Reason = ReasonPhone
	case book:
		finding.Flagged = true
		finding.Reason = ReasonBook
	}
	return finding
}
