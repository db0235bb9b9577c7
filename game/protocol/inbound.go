package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Inbound event names
const (
	EventJoin        = "join"
	EventChat        = "chat"
	EventAccuse      = "accuse"
	EventVerdict     = "verdict"
	EventNightAction = "nightAction"
)

// Verdict decisions accepted on the wire
const (
	VerdictGuilty   = "guilty"
	VerdictInnocent = "innocent"
)

// Night action kinds accepted on the wire
var NightActionKinds = []string{"kill", "protect", "silence", "jail", "execute", "investigate"}

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrUnknownEvent   = errors.New("unknown event")
	ErrMissingField   = errors.New("missing required field")
	ErrInvalidValue   = errors.New("invalid field value")
)

// Envelope is the JSON frame wrapping every message
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound is a validated client request
type Inbound interface {
	EventName() string
}

// JoinRequest asks to join an open lobby
type JoinRequest struct {
	Nickname string `json:"nickname"`
}

// ChatRequest sends a chat line
type ChatRequest struct {
	Message string `json:"message"`
}

// AccuseRequest casts a day accusation
type AccuseRequest struct {
	Target string `json:"target"`
}

// VerdictRequest casts a defense verdict
type VerdictRequest struct {
	Decision string `json:"decision"`
}

// NightActionRequest submits a concealed night action
type NightActionRequest struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

func (JoinRequest) EventName() string        { return EventJoin }
func (ChatRequest) EventName() string        { return EventChat }
func (AccuseRequest) EventName() string      { return EventAccuse }
func (VerdictRequest) EventName() string     { return EventVerdict }
func (NightActionRequest) EventName() string { return EventNightAction }

// Decode parses and validates an inbound frame
func Decode(raw []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}

	switch env.Event {
	case EventJoin:
		var req JoinRequest
		if err := decodeData(env, &req); err != nil {
			return nil, err
		}
		req.Nickname = strings.TrimSpace(req.Nickname)
		if req.Nickname == "" {
			return nil, fmt.Errorf("%w: nickname", ErrMissingField)
		}
		return req, nil

	case EventChat:
		var req ChatRequest
		if err := decodeData(env, &req); err != nil {
			return nil, err
		}
		if strings.TrimSpace(req.Message) == "" {
			return nil, fmt.Errorf("%w: message", ErrMissingField)
		}
		return req, nil

	case EventAccuse:
		var req AccuseRequest
		if err := decodeData(env, &req); err != nil {
			return nil, err
		}
		if req.Target == "" {
			return nil, fmt.Errorf("%w: target", ErrMissingField)
		}
		return req, nil

	case EventVerdict:
		var req VerdictRequest
		if err := decodeData(env, &req); err != nil {
			return nil, err
		}
		if req.Decision != VerdictGuilty && req.Decision != VerdictInnocent {
			return nil, fmt.Errorf("%w: decision %q", ErrInvalidValue, req.Decision)
		}
		return req, nil

	case EventNightAction:
		var req NightActionRequest
		if err := decodeData(env, &req); err != nil {
			return nil, err
		}
		if !isNightActionKind(req.Kind) {
			return nil, fmt.Errorf("%w: kind %q", ErrInvalidValue, req.Kind)
		}
		if req.Target == "" {
			return nil, fmt.Errorf("%w: target", ErrMissingField)
		}
		return req, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

func decodeData(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: data", ErrMissingField)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedFrame, env.Event, err)
	}
	return nil
}

func isNightActionKind(kind string) bool {
	for _, k := range NightActionKinds {
		if k == kind {
			return true
		}
	}
	return false
}
