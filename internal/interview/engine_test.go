package interview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"liquidhire/internal/models"
)

// fakeClock hands out manually fired timers.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) timer(i int) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i >= len(c.timers) {
		return nil
	}
	return c.timers[i]
}

func (c *fakeClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (t *fakeTimer) fire() {
	t.f()
}

func (t *fakeTimer) wasStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type chatCall struct {
	resume  string
	role    string
	history []models.Turn
	answer  string
}

type fakeChat struct {
	mu    sync.Mutex
	calls []chatCall
	reply string
	err   error
}

func (f *fakeChat) NextQuestion(_ context.Context, resume, role string, history []models.Turn, answer string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, chatCall{resume: resume, role: role, history: history, answer: answer})
	return f.reply, f.err
}

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeChat) call(i int) chatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

type fakeRecognizer struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (f *fakeRecognizer) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return nil
}

func (f *fakeRecognizer) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeRecognizer) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

type fakeSynth struct {
	mu     sync.Mutex
	spoken []string
}

func (f *fakeSynth) Speak(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
}

func (f *fakeSynth) spokenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.spoken)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

type engineFixture struct {
	engine *Engine
	sess   *Session
	chat   *fakeChat
	rec    *fakeRecognizer
	synth  *fakeSynth
	clock  *fakeClock
}

func newEngineFixture(t *testing.T, hooks Hooks) *engineFixture {
	t.Helper()
	fx := &engineFixture{
		sess:  NewSession(1, "resume text", "Backend Engineer"),
		chat:  &fakeChat{reply: "Tell me about yourself."},
		rec:   &fakeRecognizer{},
		synth: &fakeSynth{},
		clock: &fakeClock{},
	}
	fx.engine = NewEngine(EngineOptions{
		Session:     fx.sess,
		Chat:        fx.chat,
		Recognizer:  fx.rec,
		Synthesizer: fx.synth,
		Config: EngineConfig{
			VolumeThreshold: 15,
			SilenceWindow:   2 * time.Second,
			RequestTimeout:  time.Second,
		},
		Hooks: hooks,
		Clock: fx.clock,
	})
	return fx
}

// driveToListening runs the opening turn to completion and hands the turn
// to the candidate.
func (fx *engineFixture) driveToListening(t *testing.T) {
	t.Helper()
	fx.engine.Begin()
	waitFor(t, func() bool { return fx.engine.State() == StateAISpeaking })
	fx.engine.HandlePlaybackStarted()
	fx.engine.HandlePlaybackEnded()
	if got := fx.engine.State(); got != StateListening {
		t.Fatalf("state = %v, want %v", got, StateListening)
	}
}

func TestBeginSendsSentinelWithoutRecordingIt(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.engine.Begin()

	waitFor(t, func() bool { return fx.engine.State() == StateAISpeaking })

	if n := fx.chat.callCount(); n != 1 {
		t.Fatalf("chat calls = %d, want 1", n)
	}
	call := fx.chat.call(0)
	if call.answer != models.StartSentinel {
		t.Errorf("answer = %q, want the start sentinel", call.answer)
	}
	if len(call.history) != 0 {
		t.Errorf("history length = %d, want 0", len(call.history))
	}

	// the sentinel never becomes a candidate turn
	history := fx.sess.History()
	if len(history) != 1 {
		t.Fatalf("session history length = %d, want 1", len(history))
	}
	if history[0].Role != models.RoleInterviewer {
		t.Errorf("history[0].Role = %q, want %q", history[0].Role, models.RoleInterviewer)
	}
	if fx.synth.spokenCount() != 1 {
		t.Errorf("spoken count = %d, want 1", fx.synth.spokenCount())
	}
}

func TestBeginIsIdempotent(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.engine.Begin()
	fx.engine.Begin()

	waitFor(t, func() bool { return fx.engine.State() == StateAISpeaking })
	time.Sleep(10 * time.Millisecond)
	if n := fx.chat.callCount(); n != 1 {
		t.Fatalf("chat calls = %d, want 1", n)
	}
}

func TestRecognitionResultReplacesFullBuffer(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.driveToListening(t)

	fx.engine.HandleRecognitionResult([]string{"I built ", "a cache"})
	if got := fx.engine.Transcript(); got != "I built a cache" {
		t.Fatalf("transcript = %q", got)
	}

	// a recomputed buffer replaces, never appends
	fx.engine.HandleRecognitionResult([]string{"I built a queue"})
	if got := fx.engine.Transcript(); got != "I built a queue" {
		t.Fatalf("transcript = %q", got)
	}
}

func TestRecognitionResultIgnoredWhileAISpeaks(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.engine.Begin()
	waitFor(t, func() bool { return fx.engine.State() == StateAISpeaking })

	fx.engine.HandleRecognitionResult([]string{"echo of the question"})
	if got := fx.engine.Transcript(); got != "" {
		t.Fatalf("transcript = %q, want empty", got)
	}
}

func TestSilenceCountdownSubmitsAnswer(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.driveToListening(t)

	fx.engine.HandleRecognitionResult([]string{"my answer"})
	fx.engine.HandleVolumeSample(40)

	if fx.clock.count() != 1 {
		t.Fatalf("timers created = %d, want 1", fx.clock.count())
	}
	fx.clock.timer(0).fire()

	waitFor(t, func() bool { return fx.chat.callCount() == 2 })
	call := fx.chat.call(1)
	if call.answer != "my answer" {
		t.Errorf("answer = %q", call.answer)
	}
	// history carries only turns recorded before this answer
	if len(call.history) != 1 || call.history[0].Role != models.RoleInterviewer {
		t.Errorf("history = %+v, want the single opening question", call.history)
	}

	// the candidate turn was still recorded in the session
	waitFor(t, func() bool { return fx.sess.Len() == 3 })
	history := fx.sess.History()
	if history[1].Role != models.RoleCandidate || history[1].Content != "my answer" {
		t.Errorf("history[1] = %+v", history[1])
	}
}

func TestVolumeSamplesRearmAndArmOnce(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.driveToListening(t)
	fx.engine.HandleRecognitionResult([]string{"something"})

	// quiet from the start arms exactly once
	fx.engine.HandleVolumeSample(3)
	fx.engine.HandleVolumeSample(3)
	if fx.clock.count() != 1 {
		t.Fatalf("timers created = %d, want 1: silence must not disturb a running countdown", fx.clock.count())
	}

	// each loud sample re-arms with a fresh timer, retiring the old one
	fx.engine.HandleVolumeSample(200)
	if fx.clock.count() != 2 {
		t.Fatalf("timers created = %d, want 2", fx.clock.count())
	}
	if !fx.clock.timer(0).wasStopped() {
		t.Fatal("re-arm left the previous timer running")
	}
	fx.engine.HandleVolumeSample(200)
	if fx.clock.count() != 3 {
		t.Fatalf("timers created = %d, want 3", fx.clock.count())
	}

	// back to silence: the running countdown stays untouched
	fx.engine.HandleVolumeSample(3)
	if fx.clock.count() != 3 {
		t.Fatalf("timers created = %d, want 3 after silence", fx.clock.count())
	}
}

func TestRearmedCountdownIgnoresStaleFire(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.driveToListening(t)
	fx.engine.HandleRecognitionResult([]string{"first answer"})

	// silence arms the countdown, then the candidate speaks up again
	fx.engine.HandleVolumeSample(3)
	fx.engine.HandleVolumeSample(200)
	if fx.clock.count() != 2 {
		t.Fatalf("timers created = %d, want 2", fx.clock.count())
	}

	// the retired timer may still fire if expiry raced the re-arm;
	// that fire must not submit while the fresh countdown runs
	fx.clock.timer(0).fire()
	time.Sleep(10 * time.Millisecond)
	if n := fx.chat.callCount(); n != 1 {
		t.Fatalf("chat calls = %d, want 1: stale fire submitted mid-turn", n)
	}
	if got := fx.engine.State(); got != StateListening {
		t.Fatalf("state = %v, want %v", got, StateListening)
	}

	// the live countdown still submits normally
	fx.clock.timer(1).fire()
	waitFor(t, func() bool { return fx.chat.callCount() == 2 })
	if got := fx.chat.call(1).answer; got != "first answer" {
		t.Fatalf("answer = %q", got)
	}
}

func TestVolumeIgnoredWithoutTranscript(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.driveToListening(t)

	fx.engine.HandleVolumeSample(200)
	if fx.clock.count() != 0 {
		t.Fatalf("timers created = %d, want 0: no countdown before any speech", fx.clock.count())
	}
}

func TestMicOffSubmitsPendingTranscript(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.driveToListening(t)
	fx.engine.HandleRecognitionResult([]string{"pending answer"})

	fx.engine.SetMicEnabled(false)

	waitFor(t, func() bool { return fx.chat.callCount() == 2 })
	if got := fx.chat.call(1).answer; got != "pending answer" {
		t.Fatalf("answer = %q", got)
	}
}

func TestMicOffWithoutTranscriptJustStops(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.driveToListening(t)

	fx.engine.SetMicEnabled(false)
	time.Sleep(10 * time.Millisecond)
	if n := fx.chat.callCount(); n != 1 {
		t.Fatalf("chat calls = %d, want 1 (opening only)", n)
	}
}

func TestDoubleSubmitCollapses(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.driveToListening(t)
	fx.engine.HandleRecognitionResult([]string{"the answer"})

	first := fx.engine.Submit()
	second := fx.engine.Submit()
	if !first {
		t.Fatal("first Submit should start a submission")
	}
	if second {
		t.Fatal("second Submit should be a no-op while one is in flight")
	}

	waitFor(t, func() bool { return fx.engine.State() == StateAISpeaking })
	if n := fx.chat.callCount(); n != 2 {
		t.Fatalf("chat calls = %d, want 2", n)
	}
}

func TestRecognitionEndRestartsWhileListening(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.driveToListening(t)
	starts := fx.rec.startCount()

	fx.engine.HandleRecognitionEnd()
	if fx.rec.startCount() != starts+1 {
		t.Fatalf("recognizer not restarted after spontaneous end")
	}

	fx.engine.SetMicEnabled(false)
	starts = fx.rec.startCount()
	fx.engine.HandleRecognitionEnd()
	if fx.rec.startCount() != starts {
		t.Fatalf("recognizer restarted with mic off")
	}
}

func TestChatFailureReturnsToListening(t *testing.T) {
	var errMsg string
	var mu sync.Mutex
	fx := newEngineFixture(t, Hooks{
		OnError: func(m string) {
			mu.Lock()
			errMsg = m
			mu.Unlock()
		},
	})
	fx.driveToListening(t)
	fx.chat.err = errors.New("boom")
	fx.engine.HandleRecognitionResult([]string{"answer"})

	fx.engine.Submit()
	waitFor(t, func() bool { return fx.engine.State() == StateListening })

	mu.Lock()
	defer mu.Unlock()
	if errMsg == "" {
		t.Error("OnError hook not invoked")
	}
	// the candidate turn stays recorded; only the question is missing
	history := fx.sess.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[1].Role != models.RoleCandidate {
		t.Errorf("history[1].Role = %q", history[1].Role)
	}
}

func TestCloseIgnoresLaterEvents(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.driveToListening(t)

	fx.engine.Close()
	fx.engine.Close()

	if got := fx.engine.State(); got != StateEnded {
		t.Fatalf("state = %v, want %v", got, StateEnded)
	}

	fx.engine.HandleRecognitionResult([]string{"late"})
	if fx.engine.Transcript() != "" {
		t.Error("transcript accepted after Close")
	}
	if fx.engine.Submit() {
		t.Error("Submit accepted after Close")
	}
}

func TestPlaybackStartedCancelsCountdown(t *testing.T) {
	fx := newEngineFixture(t, Hooks{})
	fx.driveToListening(t)
	fx.engine.HandleRecognitionResult([]string{"half an answer"})
	fx.engine.HandleVolumeSample(50)

	fx.engine.HandlePlaybackStarted()
	fx.clock.timer(0).fire()
	time.Sleep(10 * time.Millisecond)

	// countdown was cancelled, so firing the stale timer must not submit
	if n := fx.chat.callCount(); n != 1 {
		t.Fatalf("chat calls = %d, want 1", n)
	}
}
