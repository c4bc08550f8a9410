package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	service "github.com/okian/lingua/internal/app"
	"github.com/okian/lingua/internal/domain/model"
)

var errInvalidTS = errors.New("invalid ts; must be epoch milliseconds or RFC3339")

// SessionHandler serves the /session routes.
type SessionHandler struct {
	deps Dependencies
	srv  *Server
}

type startResponse struct {
	SessionID string `json:"sessionId"`
	Prompt    string `json:"prompt"`
}

// turnRequest mirrors the OpenAPI schema for POST /session/{id}/turn.
type turnRequest struct {
	Who  string          `json:"who"`
	Text string          `json:"text"`
	TS   json.RawMessage `json:"ts,omitempty"`
	Key  string          `json:"key,omitempty"`
}

func (t turnRequest) input() (service.TurnInput, error) {
	ts, err := parseTS(t.TS)
	if err != nil {
		return service.TurnInput{}, err
	}
	return service.TurnInput{Who: t.Who, Text: t.Text, TS: ts, Key: strings.TrimSpace(t.Key)}, nil
}

// parseTS accepts epoch milliseconds as a number or numeric string, or an
// RFC3339 string. Absent or null yields the zero time.
func parseTS(raw json.RawMessage) (time.Time, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}
	var ms json.Number
	if err := json.Unmarshal(raw, &ms); err == nil {
		return fromMillis(ms.String())
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, errInvalidTS
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return fromMillis(s)
}

func fromMillis(s string) (time.Time, error) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return time.Time{}, errInvalidTS
	}
	return time.UnixMilli(int64(n)).UTC(), nil
}

type okResponse struct {
	OK bool `json:"ok"`
}

// HandleStart handles POST /session/start. A missing or malformed body
// starts a session with default settings.
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_start"
	body, err := h.srv.readBody(w, r, op)
	if err != nil {
		h.srv.writeServiceError(w, r, err)
		return
	}
	var cfg model.SessionConfig
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &cfg); err != nil {
			cfg = model.SessionConfig{}
		}
	}
	id, script, err := h.deps.CreateSession(r.Context(), cfg)
	if err != nil {
		h.srv.writeServiceError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, startResponse{SessionID: id, Prompt: script})
}

// HandleTurn handles POST /session/{id}/turn.
func (h *SessionHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	const op = "api.session_turn"
	body, err := h.srv.readBody(w, r, op)
	if err != nil {
		h.srv.writeServiceError(w, r, err)
		return
	}
	var req turnRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.srv.writeServiceError(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	in, err := req.input()
	if err != nil {
		h.srv.writeServiceError(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.AppendTurn(r.Context(), r.PathValue("id"), in); err != nil {
		h.srv.writeServiceError(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// HandleEnd handles POST /session/{id}/end.
func (h *SessionHandler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.EndSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.srv.writeServiceError(w, r, Wrap("api.session_end", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleGet handles GET /session/{id}.
func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.srv.writeServiceError(w, r, Wrap("api.session_get", err))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
