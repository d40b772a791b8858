package transport

import (
	"encoding/json"

	"github.com/fastygo/medsched/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String is best-effort JSON for log lines.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// SessionResponse tells the client who is signed in and which screen to open.
type SessionResponse struct {
	User      domain.User `json:"user"`
	Token     string      `json:"token"`
	Dashboard string      `json:"dashboard"`
}

func NewSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		User:      s.User,
		Token:     s.Token,
		Dashboard: s.User.Role.Dashboard(),
	}
}

// ListMeta accompanies collection responses.
type ListMeta struct {
	Count int `json:"count"`
}
