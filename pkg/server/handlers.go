package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/codeGROOVE-dev/chanscope/pkg/channelurl"
	"github.com/codeGROOVE-dev/chanscope/pkg/estimate"
	"github.com/codeGROOVE-dev/chanscope/pkg/notify"
	"github.com/codeGROOVE-dev/chanscope/pkg/profile"
	"github.com/codeGROOVE-dev/chanscope/pkg/settings"
)

const maxBodyBytes = 64 << 10

type inputRequest struct {
	Input string `json:"input"`
}

type verifyResponse struct {
	Channel    channelurl.Channel `json:"channel"`
	Profile    profile.Profile    `json:"profile"`
	Estimate   estimate.Estimate  `json:"estimate"`
	ContactURL string             `json:"contactUrl,omitempty"`
}

type estimateRequest struct {
	Seed      string `json:"seed"`
	Followers string `json:"followers"`
}

type leadRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Channel   string `json:"channel"`
	Followers string `json:"followers"`
	Message   string `json:"message"`
}

type valueBody struct {
	Value string `json:"value"`
}

type messageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decode(w, r, &req) {
		return
	}
	ch, err := channelurl.Normalize(req.Input)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	ch, prof, err := s.lookup(r, r.URL.Query().Get("url"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.DebugContext(r.Context(), "channel resolved", "url", ch.URL, "verification", prof.Verification)
	writeJSON(w, http.StatusOK, prof.WithPlaceholders())
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decode(w, r, &req) {
		return
	}
	ch, prof, err := s.lookup(r, req.Input)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	subs, _ := estimate.ParseCount(prof.FollowerCountText)
	writeJSON(w, http.StatusOK, verifyResponse{
		Channel:    ch,
		Profile:    prof.WithPlaceholders(),
		Estimate:   estimate.Generate(ch.URL, subs),
		ContactURL: s.settings.Get(r.Context(), settings.KeyContactURL),
	})
}

// lookup normalizes input and fetches the channel page.
func (s *Server) lookup(r *http.Request, input string) (channelurl.Channel, *profile.Profile, error) {
	ch, err := channelurl.Normalize(input)
	if err != nil {
		return channelurl.Channel{}, nil, err
	}
	prof, err := s.profiles.Fetch(r.Context(), ch.URL)
	if err != nil {
		return ch, nil, err
	}
	if prof.Handle == "" {
		prof.Handle = ch.ID
	}
	return ch, prof, nil
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Seed) == "" {
		writeError(w, http.StatusBadRequest, "seed is required")
		return
	}
	var subs int64
	if strings.TrimSpace(req.Followers) != "" {
		n, ok := estimate.ParseCount(req.Followers)
		if !ok {
			writeError(w, http.StatusBadRequest, "followers is not a count")
			return
		}
		subs = n
	}
	writeJSON(w, http.StatusOK, estimate.Generate(req.Seed, subs))
}

func (s *Server) handleLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if !decode(w, r, &req) {
		return
	}
	lead, err := s.validateLead(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	switch err := s.notifier.SendLead(ctx, lead); {
	case errors.Is(err, notify.ErrNotConfigured):
		s.logger.WarnContext(ctx, "lead accepted without notification", "lead", lead.ID, "channel", lead.Channel)
	case err != nil:
		s.logger.ErrorContext(ctx, "lead notification failed", "lead", lead.ID, "error", err)
		writeError(w, http.StatusBadGateway, "could not deliver lead")
		return
	default:
		s.logger.InfoContext(ctx, "lead accepted", "lead", lead.ID, "channel", lead.Channel)
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": lead.ID})
}

func (s *Server) validateLead(req leadRequest) (notify.Lead, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return notify.Lead{}, errors.New("name is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return notify.Lead{}, errors.New("email is invalid")
	}
	ch, err := channelurl.Normalize(req.Channel)
	if err != nil {
		return notify.Lead{}, fmt.Errorf("channel: %w", err)
	}
	followers := strings.TrimSpace(req.Followers)
	if _, ok := estimate.ParseCount(followers); followers != "" && !ok {
		return notify.Lead{}, errors.New("followers is not a count")
	}
	return notify.Lead{
		ID:          uuid.NewString(),
		Name:        name,
		Email:       addr.Address,
		Channel:     ch.URL,
		Followers:   followers,
		Message:     strings.TrimSpace(req.Message),
		SubmittedAt: s.now().UTC(),
	}, nil
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, valueBody{Value: s.settings.Get(r.Context(), settings.KeyContactURL)})
}

func (s *Server) handlePutContact(w http.ResponseWriter, r *http.Request) {
	if s.adminToken == "" {
		writeError(w, http.StatusForbidden, "settings updates are disabled")
		return
	}
	if !s.authorized(r) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req valueBody
	if !decode(w, r, &req) {
		return
	}
	if err := s.settings.Set(r.Context(), settings.KeyContactURL, req.Value); err != nil {
		if errors.Is(err, settings.ErrInvalidValue) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.fail(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "contact url updated")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.adminToken)) == 1
}

func (s *Server) handleSupport(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.bot.Reply(r.Context(), req.Message))
}

// fail maps domain errors onto HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, profile.ErrInvalidInput):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, profile.ErrProfileNotFound):
		status, msg = http.StatusNotFound, "channel not found"
	case errors.Is(err, profile.ErrParseFailed):
		status, msg = http.StatusUnprocessableEntity, "could not read channel page"
	case errors.Is(err, profile.ErrFetchFailed):
		status, msg = http.StatusBadGateway, "could not reach YouTube"
	}
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, msg)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
