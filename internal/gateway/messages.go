package gateway

import (
	"encoding/json"

	"liquidhire/internal/models"
	"liquidhire/internal/proctor"
)

// ClientEvent is one inbound text frame from the browser.
type ClientEvent struct {
	Type string `json:"type"`

	// start
	ResumeText string `json:"resume_text,omitempty"`
	JobRole    string `json:"job_role,omitempty"`

	// recognition_result
	Segments []string `json:"segments,omitempty"`

	// volume
	Level int `json:"level,omitempty"`

	// mic
	Enabled bool `json:"enabled,omitempty"`

	// frame (JPEG, base64; binary frames are also accepted)
	Data []byte `json:"data,omitempty"`
}

const (
	EventStart             = "start"
	EventRecognitionResult = "recognition_result"
	EventRecognitionEnd    = "recognition_end"
	EventVolume            = "volume"
	EventPlaybackStarted   = "playback_started"
	EventPlaybackEnded     = "playback_ended"
	EventMic               = "mic"
	EventSubmit            = "submit"
	EventFrame             = "frame"
	EventEnd               = "end"
)

// ServerMessage is one outbound text frame to the browser.
type ServerMessage struct {
	Type string `json:"type"`

	State      string           `json:"state,omitempty"`
	Text       string           `json:"text,omitempty"`
	Action     string           `json:"action,omitempty"`
	Armed      *bool            `json:"armed,omitempty"`
	Finding    *proctor.Finding `json:"finding,omitempty"`
	Message    string           `json:"message,omitempty"`
	Result     json.RawMessage  `json:"result,omitempty"`
	Score      *int             `json:"score,omitempty"`
	Summary    string           `json:"summary,omitempty"`
	JSONReport json.RawMessage  `json:"json_report,omitempty"`
}

const (
	MsgState       = "state"
	MsgQuestion    = "question"
	MsgSpeak       = "speak"
	MsgRecognition = "recognition"
	MsgTranscript  = "transcript"
	MsgCountdown   = "countdown"
	MsgProctor     = "proctor"
	MsgError       = "error"
	MsgEnded       = "ended"
)

func endedMessage(result *models.EndInterviewResponse) ServerMessage {
	msg := ServerMessage{Type: MsgEnded}
	if result == nil {
		return msg
	}
	score := result.Score
	msg.Score = &score
	msg.Summary = result.Summary
	if report, err := json.Marshal(result.JSONReport); err == nil {
		msg.JSONReport = report
	}
	return msg
}
