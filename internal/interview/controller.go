package interview

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"liquidhire/internal/models"
)

// ErrSessionEnded is returned when End is called on a session whose
// scoring already ran or is running.
var ErrSessionEnded = errors.New("interview session already ended")

// ScoringClient produces the end-of-interview evaluation over the public
// scoring API.
type ScoringClient interface {
	Score(ctx context.Context, history []models.Turn, jobRole, resumeText string) (*models.EndInterviewResponse, error)
}

// RecordStore persists the finished interview record.
type RecordStore interface {
	SaveInterview(ctx context.Context, rec *models.Interview) error
}

// ControllerConfig carries the session-level tunables.
type ControllerConfig struct {
	// SessionDuration is the hard cap on interview length.
	SessionDuration time.Duration
	// ScoreTimeout bounds the end-of-interview scoring request.
	ScoreTimeout time.Duration
}

// ControllerOptions collects the controller's dependencies.
type ControllerOptions struct {
	Session *Session
	Engine  *Engine
	Scorer  ScoringClient
	Store   RecordStore
	Config  ControllerConfig
	Clock   Clock
	Logger  *zap.Logger
	// OnEnded fires once after scoring and persistence, successful or not.
	OnEnded func(result *models.EndInterviewResponse)
}

// Controller owns an interview session's lifecycle: it starts the engine,
// enforces the session clock, and runs the exactly-once end sequence of
// scoring, persistence and cleanup.
type Controller struct {
	mu sync.Mutex

	session *Session
	engine  *Engine
	scorer  ScoringClient
	store   RecordStore
	cfg     ControllerConfig
	clock   Clock
	logger  *zap.Logger
	onEnded func(*models.EndInterviewResponse)

	sessionTimer Timer
	ending       bool
	ended        bool

	closeOnce sync.Once
	closers   []func()
}

func NewController(opts ControllerOptions) *Controller {
	if opts.Clock == nil {
		opts.Clock = NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Config.SessionDuration == 0 {
		opts.Config.SessionDuration = 15 * time.Minute
	}
	if opts.Config.ScoreTimeout == 0 {
		opts.Config.ScoreTimeout = 90 * time.Second
	}
	return &Controller{
		session: opts.Session,
		engine:  opts.Engine,
		scorer:  opts.Scorer,
		store:   opts.Store,
		cfg:     opts.Config,
		clock:   opts.Clock,
		logger:  opts.Logger,
		onEnded: opts.OnEnded,
	}
}

// AddCloser registers extra cleanup (proctor stop, registry unregister)
// to run exactly once when the session closes.
func (c *Controller) AddCloser(f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closers = append(c.closers, f)
}

// Start arms the session clock and kicks off the opening question.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.sessionTimer == nil && !c.ended {
		c.sessionTimer = c.clock.AfterFunc(c.cfg.SessionDuration, c.onExpired)
	}
	c.mu.Unlock()

	c.engine.Begin()
}

// Session exposes the underlying session.
func (c *Controller) Session() *Session {
	return c.session
}

// Engine exposes the turn engine.
func (c *Controller) Engine() *Engine {
	return c.engine
}

func (c *Controller) onExpired() {
	// A session that never produced a turn has nothing to score or save.
	if c.session.Len() == 0 {
		c.logger.Info("session clock expired with no turns",
			zap.String("session_id", c.session.ID()))
		c.Close()
		return
	}
	if _, err := c.End(context.Background()); err != nil && !errors.Is(err, ErrSessionEnded) {
		c.logger.Error("timed end failed",
			zap.String("session_id", c.session.ID()),
			zap.Error(err))
	}
}

// End runs the end sequence once: score the transcript, persist the
// record, then close. Scoring failure degrades to a zero-score result and
// the record is still written. Concurrent and repeated calls get
// ErrSessionEnded and cause no second write.
func (c *Controller) End(ctx context.Context) (*models.EndInterviewResponse, error) {
	c.mu.Lock()
	if c.ending || c.ended {
		c.mu.Unlock()
		return nil, ErrSessionEnded
	}
	c.ending = true
	c.mu.Unlock()

	history := c.session.History()
	role := c.session.JobRole()

	scoreCtx, cancel := context.WithTimeout(ctx, c.cfg.ScoreTimeout)
	result, err := c.scorer.Score(scoreCtx, history, role, c.session.ResumeText())
	cancel()
	if err != nil || result == nil {
		c.logger.Warn("scoring failed, saving unscored record",
			zap.String("session_id", c.session.ID()),
			zap.Error(err))
		result = &models.EndInterviewResponse{
			Score:      0,
			Summary:    "No summary generated.",
			JSONReport: []models.QuestionFeedback{},
		}
	}

	rec := &models.Interview{
		UserID:  c.session.UserID(),
		JobRole: role,
		Score:   result.Score,
		Summary: result.Summary,
	}
	saveErr := rec.SetTranscript(history)
	if saveErr == nil {
		saveErr = rec.SetReport(result.JSONReport)
	}
	if saveErr == nil {
		saveErr = c.store.SaveInterview(ctx, rec)
	}
	if saveErr != nil {
		c.logger.Error("interview record not persisted",
			zap.String("session_id", c.session.ID()),
			zap.Error(saveErr))
	}

	c.mu.Lock()
	c.ended = true
	c.ending = false
	c.mu.Unlock()

	c.Close()
	if c.onEnded != nil {
		c.onEnded(result)
	}
	return result, saveErr
}

// Close tears the session down: session clock, engine, then registered
// closers. Runs at most once no matter how the session exits.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		timer := c.sessionTimer
		closers := c.closers
		c.mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
		c.engine.Close()
		for _, f := range closers {
			f()
		}
	})
}
