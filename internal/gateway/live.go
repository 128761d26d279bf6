package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"liquidhire/internal/config"
	"liquidhire/internal/interview"
	"liquidhire/internal/metrics"
	"liquidhire/internal/models"
	"liquidhire/internal/proctor"
	"liquidhire/internal/utils"
)

// conn serializes writes to one websocket. gorilla/websocket allows only
// one concurrent writer and the engine's hooks fire from several
// goroutines.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(msg ServerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.WriteJSON(msg)
}

func (c *conn) sendError(message string) {
	c.send(ServerMessage{Type: MsgError, Message: message})
}

// wsRecognizer forwards the engine's recognition control to the browser,
// which owns the actual speech recognizer.
type wsRecognizer struct{ c *conn }

func (r *wsRecognizer) Start() error {
	r.c.send(ServerMessage{Type: MsgRecognition, Action: "start"})
	return nil
}

func (r *wsRecognizer) Stop() {
	r.c.send(ServerMessage{Type: MsgRecognition, Action: "stop"})
}

// wsSynthesizer asks the browser to speak a question aloud.
type wsSynthesizer struct{ c *conn }

func (s *wsSynthesizer) Speak(text string) {
	s.c.send(ServerMessage{Type: MsgSpeak, Text: text})
}

// Handler runs live interview sessions over a websocket. One connection
// is one session: the browser streams recognition results, volume samples
// and camera frames up; the engine streams state, questions and speech
// instructions down.
type Handler struct {
	cfg      *config.Config
	api      *interview.APIClient
	store    interview.RecordStore
	registry *Registry
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewHandler(cfg *config.Config, api *interview.APIClient, store interview.RecordStore, registry *Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		cfg:      cfg,
		api:      api,
		store:    store,
		registry: registry,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser origins are enforced by the CORS layer on the REST
			// surface; the websocket accepts the token as its credential.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Live upgrades GET /ws/interview. Browsers cannot set headers on
// websocket dials, so the bearer token also rides the token query
// parameter.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		if tok := r.URL.Query().Get("token"); tok != "" {
			r.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	claims, err := utils.VerifyToken(r, h.cfg.JWTSecret)
	if err != nil {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Code:    "unauthorized",
			Message: err.Error(),
		})
		return
	}
	sub, err := utils.GetUserIDFromClaims(claims)
	if err != nil {
		utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
			Code:    "unauthorized",
			Message: err.Error(),
		})
		return
	}
	userID := parseUserID(sub)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &conn{ws: ws}

	var (
		ctrl    *interview.Controller
		monitor *proctor.Monitor
	)
	defer func() {
		if ctrl != nil {
			ctrl.Close()
		}
		_ = ws.Close()
	}()

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if ctrl != nil {
				h.logger.Info("live session disconnected",
					zap.String("session_id", ctrl.Session().ID()))
			}
			return
		}
		if mt == websocket.BinaryMessage {
			if monitor != nil {
				monitor.SubmitFrame(data)
			}
			continue
		}

		var ev ClientEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.sendError("malformed event")
			continue
		}

		if ev.Type == EventStart {
			if ctrl != nil {
				c.sendError("session already started")
				continue
			}
			if strings.TrimSpace(ev.JobRole) == "" {
				c.sendError("job_role is required")
				continue
			}
			ctrl, monitor = h.startSession(c, userID, ev)
			continue
		}
		if ctrl == nil {
			c.sendError("session not started")
			continue
		}

		engine := ctrl.Engine()
		switch ev.Type {
		case EventRecognitionResult:
			engine.HandleRecognitionResult(ev.Segments)
		case EventRecognitionEnd:
			engine.HandleRecognitionEnd()
		case EventVolume:
			engine.HandleVolumeSample(ev.Level)
		case EventPlaybackStarted:
			engine.HandlePlaybackStarted()
		case EventPlaybackEnded:
			engine.HandlePlaybackEnded()
		case EventMic:
			engine.SetMicEnabled(ev.Enabled)
		case EventSubmit:
			engine.Submit()
		case EventFrame:
			if monitor != nil && len(ev.Data) > 0 {
				monitor.SubmitFrame(ev.Data)
			}
		case EventEnd:
			if _, err := ctrl.End(r.Context()); err != nil && !errors.Is(err, interview.ErrSessionEnded) {
				h.logger.Error("session end failed",
					zap.String("session_id", ctrl.Session().ID()),
					zap.Error(err))
				c.sendError("interview record could not be saved")
			}
		default:
			c.sendError("unknown event type: " + ev.Type)
		}
	}
}

func (h *Handler) startSession(c *conn, userID uint, ev ClientEvent) (*interview.Controller, *proctor.Monitor) {
	sess := interview.NewSession(userID, ev.ResumeText, ev.JobRole)

	engine := interview.NewEngine(interview.EngineOptions{
		Session:     sess,
		Chat:        h.api,
		Recognizer:  &wsRecognizer{c},
		Synthesizer: &wsSynthesizer{c},
		Config: interview.EngineConfig{
			VolumeThreshold: h.cfg.VolumeThreshold,
			SilenceWindow:   h.cfg.SilenceWindow,
		},
		Hooks: interview.Hooks{
			OnStateChange: func(old, next interview.State) {
				if old == interview.StateListening && next == interview.StateSubmitting {
					metrics.TurnSubmitted()
				}
				c.send(ServerMessage{Type: MsgState, State: next.String()})
			},
			OnQuestion: func(text string) {
				c.send(ServerMessage{Type: MsgQuestion, Text: text})
			},
			OnTranscript: func(text string) {
				c.send(ServerMessage{Type: MsgTranscript, Text: text})
			},
			OnCountdown: func(armed bool) {
				a := armed
				c.send(ServerMessage{Type: MsgCountdown, Armed: &a})
			},
			OnError: func(message string) {
				c.sendError(message)
			},
		},
		Logger: h.logger,
	})

	ctrl := interview.NewController(interview.ControllerOptions{
		Session: sess,
		Engine:  engine,
		Scorer:  h.api,
		Store:   h.store,
		Config: interview.ControllerConfig{
			SessionDuration: h.cfg.SessionDuration,
		},
		Logger: h.logger,
		OnEnded: func(result *models.EndInterviewResponse) {
			c.send(endedMessage(result))
		},
	})

	monitor := h.startProctor(c, ctrl)

	h.registerSession(ctrl, sess, ev.JobRole, userID)

	metrics.SessionStarted()
	ctrl.AddCloser(metrics.SessionClosed)

	h.logger.Info("live session started",
		zap.String("session_id", sess.ID()),
		zap.Uint("user_id", userID),
		zap.String("job_role", ev.JobRole))

	ctrl.Start()
	return ctrl, monitor
}

func (h *Handler) startProctor(c *conn, ctrl *interview.Controller) *proctor.Monitor {
	var detector proctor.ObjectDetector
	if h.cfg.ProctorInferenceURL != "" {
		detector = proctor.NewHTTPDetector(h.cfg.ProctorInferenceURL)
	}
	monitor := proctor.NewMonitor(detector, proctor.MonitorConfig{
		Interval:       h.cfg.ProctorInterval,
		ScoreThreshold: h.cfg.ProctorScoreThreshold,
	}, func(f proctor.Finding) {
		finding := f
		c.send(ServerMessage{Type: MsgProctor, Finding: &finding})
	}, h.logger)

	monitor.Start()
	ctrl.AddCloser(monitor.Stop)
	return monitor
}

func (h *Handler) registerSession(ctrl *interview.Controller, sess *interview.Session, jobRole string, userID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.registry.Register(ctx, sess.ID(), SessionInfo{
		UserID:    userID,
		JobRole:   jobRole,
		StartedAt: time.Now(),
	}); err != nil {
		h.logger.Warn("session registry write failed", zap.Error(err))
		return
	}

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(h.registry.TTL() / 3)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				hbCtx, hbCancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := h.registry.Heartbeat(hbCtx, sess.ID()); err != nil {
					h.logger.Warn("session heartbeat failed", zap.Error(err))
				}
				hbCancel()
			}
		}
	}()
	ctrl.AddCloser(func() {
		close(stop)
		unCtx, unCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer unCancel()
		if err := h.registry.Unregister(unCtx, sess.ID()); err != nil {
			h.logger.Warn("session unregister failed", zap.Error(err))
		}
	})
}

// Sessions serves GET /api/live-sessions from the registry. Entries that
// expired between the scan and the lookup are skipped.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	ids, err := h.registry.Active(r.Context())
	if err != nil {
		h.logger.Error("live session listing failed", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "registry_unavailable",
			Message: "could not list live sessions",
		})
		return
	}

	type liveSession struct {
		SessionID string `json:"session_id"`
		SessionInfo
	}
	sessions := make([]liveSession, 0, len(ids))
	for _, id := range ids {
		info, err := h.registry.Info(r.Context(), id)
		if err != nil {
			continue
		}
		sessions = append(sessions, liveSession{SessionID: id, SessionInfo: *info})
	}
	utils.JSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func parseUserID(sub string) uint {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
