package interview

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"liquidhire/internal/models"
)

// State is the engine's turn-taking phase.
type State int32

const (
	// StateIdle is the pre-start state before Begin.
	StateIdle State = iota
	// StateAISpeaking covers question playback on the client. Recognition
	// is suppressed so the interviewer never transcribes itself.
	StateAISpeaking
	// StateListening is the candidate's turn.
	StateListening
	// StateSubmitting covers the in-flight question request.
	StateSubmitting
	// StateEnded is terminal.
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAISpeaking:
		return "ai_speaking"
	case StateListening:
		return "listening"
	case StateSubmitting:
		return "submitting"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// ChatClient requests the interviewer's next question over the public chat
// API. History must be the turns recorded before the current answer.
type ChatClient interface {
	NextQuestion(ctx context.Context, resumeText, jobRole string, history []models.Turn, currentAnswer string) (string, error)
}

// Recognizer is the engine's handle on client-side speech recognition.
type Recognizer interface {
	Start() error
	Stop()
}

// Synthesizer plays interviewer speech on the client.
type Synthesizer interface {
	Speak(text string)
}

// Hooks receive engine notifications. They are invoked with the engine
// lock held and must not call back into the engine.
type Hooks struct {
	OnStateChange func(old, new State)
	OnQuestion    func(text string)
	OnTranscript  func(text string)
	OnCountdown   func(armed bool)
	OnError       func(message string)
}

// EngineConfig carries the turn-taking tunables.
type EngineConfig struct {
	// VolumeThreshold is the 0-255 level above which a sample counts as
	// speech.
	VolumeThreshold int
	// SilenceWindow is how long the candidate must stay quiet, with a
	// pending transcript, before the answer auto-submits.
	SilenceWindow time.Duration
	// RequestTimeout bounds each question request.
	RequestTimeout time.Duration
}

// DefaultEngineConfig matches the production tuning.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		VolumeThreshold: 15,
		SilenceWindow:   2 * time.Second,
		RequestTimeout:  60 * time.Second,
	}
}

// EngineOptions collects the engine's dependencies.
type EngineOptions struct {
	Session     *Session
	Chat        ChatClient
	Recognizer  Recognizer
	Synthesizer Synthesizer
	Config      EngineConfig
	Hooks       Hooks
	// Clock defaults to the runtime clock when nil.
	Clock  Clock
	Logger *zap.Logger
}

// Engine runs one interview's turn-taking state machine. Client events
// arrive as Handle* calls; the engine decides when an answer is complete
// and drives the question round-trip.
type Engine struct {
	mu sync.Mutex

	session *Session
	chat    ChatClient
	rec     Recognizer
	synth   Synthesizer
	cfg     EngineConfig
	hooks   Hooks
	clock   Clock
	logger  *zap.Logger

	state        State
	micOn        bool
	transcript   string
	silenceTimer Timer
	silenceGen   uint64
	submitting   bool
	closed       bool
}

func NewEngine(opts EngineOptions) *Engine {
	if opts.Clock == nil {
		opts.Clock = NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Config.VolumeThreshold == 0 && opts.Config.SilenceWindow == 0 {
		opts.Config = DefaultEngineConfig()
	}
	if opts.Config.RequestTimeout == 0 {
		opts.Config.RequestTimeout = 60 * time.Second
	}
	return &Engine{
		session: opts.Session,
		chat:    opts.Chat,
		rec:     opts.Recognizer,
		synth:   opts.Synthesizer,
		cfg:     opts.Config,
		hooks:   opts.Hooks,
		clock:   opts.Clock,
		logger:  opts.Logger,
		state:   StateIdle,
		micOn:   true,
	}
}

// Begin requests the opening question. The start sentinel is sent as the
// current answer but never recorded as a candidate turn.
func (e *Engine) Begin() {
	e.mu.Lock()
	if e.closed || e.state != StateIdle {
		e.mu.Unlock()
		return
	}
	e.submitting = true
	e.setStateLocked(StateSubmitting)
	resume, role := e.session.ResumeText(), e.session.JobRole()
	e.mu.Unlock()

	go e.requestQuestion(resume, role, nil, models.StartSentinel)
}

// HandlePlaybackStarted marks question playback as live and suppresses
// recognition for its duration.
func (e *Engine) HandlePlaybackStarted() {
	e.mu.Lock()
	if e.closed || e.state == StateEnded {
		e.mu.Unlock()
		return
	}
	e.setStateLocked(StateAISpeaking)
	e.cancelCountdownLocked()
	e.mu.Unlock()

	e.rec.Stop()
}

// HandlePlaybackEnded flips the turn back to the candidate and resumes
// recognition if the mic is on.
func (e *Engine) HandlePlaybackEnded() {
	e.mu.Lock()
	if e.closed || e.state != StateAISpeaking {
		e.mu.Unlock()
		return
	}
	e.setStateLocked(StateListening)
	mic := e.micOn
	e.mu.Unlock()

	if mic {
		e.startRecognizer()
	}
}

// HandleRecognitionResult replaces the pending transcript with the full
// recomputed buffer. Results carry every segment of the current utterance,
// so a dropped interim segment cannot corrupt the answer.
func (e *Engine) HandleRecognitionResult(segments []string) {
	full := strings.Join(segments, "")
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != StateListening {
		return
	}
	if strings.TrimSpace(full) == "" {
		return
	}
	e.transcript = full
	if e.hooks.OnTranscript != nil {
		e.hooks.OnTranscript(full)
	}
}

// HandleRecognitionEnd restarts recognition when the client's recognizer
// gives up mid-turn. The pending transcript is preserved.
func (e *Engine) HandleRecognitionEnd() {
	e.mu.Lock()
	restart := !e.closed && e.state == StateListening && e.micOn
	e.mu.Unlock()

	if restart {
		e.startRecognizer()
	}
}

// HandleVolumeSample feeds one mic level reading (0-255) into the silence
// countdown. Loud samples re-arm the countdown; a quiet sample arms it
// only when no countdown exists yet, so sustained silence after speech
// runs the window down undisturbed.
func (e *Engine) HandleVolumeSample(level int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != StateListening || strings.TrimSpace(e.transcript) == "" {
		return
	}
	if level > e.cfg.VolumeThreshold {
		e.armCountdownLocked()
	} else if e.silenceTimer == nil {
		e.armCountdownLocked()
	}
}

// Submit force-submits the pending transcript, bypassing the silence
// countdown. It reports whether a submission actually started.
func (e *Engine) Submit() bool {
	e.mu.Lock()
	answer := e.transcript
	e.mu.Unlock()
	return e.submit(answer)
}

// SetMicEnabled toggles the candidate's mic. Turning it off with a pending
// transcript submits the answer first, so speech is never silently lost.
func (e *Engine) SetMicEnabled(on bool) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.micOn = on
	pending := e.transcript
	state := e.state
	if !on {
		e.cancelCountdownLocked()
	}
	e.mu.Unlock()

	if !on {
		if strings.TrimSpace(pending) == "" || !e.submit(pending) {
			e.rec.Stop()
		}
		return
	}
	if state == StateListening {
		e.startRecognizer()
	}
}

// State returns the current phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Transcript returns the pending, unsubmitted answer text.
func (e *Engine) Transcript() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transcript
}

// Close ends the engine. Safe to call more than once; all events after
// Close are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.cancelCountdownLocked()
	e.setStateLocked(StateEnded)
	e.mu.Unlock()

	e.rec.Stop()
}

// submit starts the answer round-trip. At most one submission can be in
// flight; overlapping triggers (countdown expiry, mic-off, manual submit)
// collapse into one.
func (e *Engine) submit(answer string) bool {
	if strings.TrimSpace(answer) == "" {
		return false
	}
	e.mu.Lock()
	if e.closed || e.submitting || e.state != StateListening {
		e.mu.Unlock()
		return false
	}
	e.submitting = true
	e.cancelCountdownLocked()
	e.transcript = ""
	e.setStateLocked(StateSubmitting)

	// Snapshot before the append: the wire contract wants prior turns in
	// history and the new answer only in current_answer.
	history := e.session.History()
	e.session.AppendCandidate(answer)
	resume, role := e.session.ResumeText(), e.session.JobRole()
	if e.hooks.OnTranscript != nil {
		e.hooks.OnTranscript("")
	}
	e.mu.Unlock()

	e.rec.Stop()
	go e.requestQuestion(resume, role, history, answer)
	return true
}

func (e *Engine) requestQuestion(resume, role string, history []models.Turn, answer string) {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeout)
	defer cancel()
	question, err := e.chat.NextQuestion(ctx, resume, role, history, answer)

	e.mu.Lock()
	e.submitting = false
	if e.closed || e.state == StateEnded {
		e.mu.Unlock()
		return
	}
	if err != nil {
		e.logger.Warn("question request failed", zap.Error(err))
		if e.hooks.OnError != nil {
			e.hooks.OnError("The interviewer is unavailable right now. Please try again.")
		}
		e.setStateLocked(StateListening)
		mic := e.micOn
		e.mu.Unlock()
		if mic {
			e.startRecognizer()
		}
		return
	}

	e.session.AppendInterviewer(question)
	e.setStateLocked(StateAISpeaking)
	if e.hooks.OnQuestion != nil {
		e.hooks.OnQuestion(question)
	}
	e.mu.Unlock()

	e.synth.Speak(question)
}

func (e *Engine) startRecognizer() {
	if err := e.rec.Start(); err != nil {
		e.logger.Warn("recognizer start failed", zap.Error(err))
	}
}

// armCountdownLocked starts or re-arms the silence countdown. Every arm
// gets a fresh timer carrying the current generation: an expired timer's
// callback may already be scheduled, so an old timer is never reused and
// its late fire is recognized as stale by the generation check.
func (e *Engine) armCountdownLocked() {
	if e.silenceTimer != nil {
		e.silenceTimer.Stop()
	}
	e.silenceGen++
	gen := e.silenceGen
	e.silenceTimer = e.clock.AfterFunc(e.cfg.SilenceWindow, func() {
		e.onSilenceElapsed(gen)
	})
	if e.hooks.OnCountdown != nil {
		e.hooks.OnCountdown(true)
	}
}

func (e *Engine) cancelCountdownLocked() {
	e.silenceGen++
	if e.silenceTimer == nil {
		return
	}
	e.silenceTimer.Stop()
	e.silenceTimer = nil
	if e.hooks.OnCountdown != nil {
		e.hooks.OnCountdown(false)
	}
}

func (e *Engine) onSilenceElapsed(gen uint64) {
	e.mu.Lock()
	// A re-arm or cancel that raced this fire superseded it.
	if gen != e.silenceGen {
		e.mu.Unlock()
		return
	}
	e.silenceTimer = nil
	answer := e.transcript
	e.mu.Unlock()
	e.submit(answer)
}

func (e *Engine) setStateLocked(next State) {
	if e.state == next {
		return
	}
	old := e.state
	e.state = next
	if e.hooks.OnStateChange != nil {
		e.hooks.OnStateChange(old, next)
	}
}
