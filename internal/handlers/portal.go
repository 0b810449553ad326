package handlers

import (
	"net/http"

	"github.com/abrezinsky/hypervision/internal/models"
)

// ParticipantCookie carries the portal session token
const ParticipantCookie = "hypervision_participant"

// IndexPageData holds the data passed to the portal template
type IndexPageData struct {
	Title   string
	Summary models.Summary
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := IndexPageData{
		Title:   h.Title,
		Summary: h.Selection.Summary(r.Context()),
	}
	h.templates.Index.Execute(w, data)
}

// participantToken returns the session token from the request cookie
func participantToken(r *http.Request) string {
	cookie, err := r.Cookie(ParticipantCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setParticipantCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     ParticipantCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearParticipantCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     ParticipantCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// handleBeginSession validates a name and starts a portal session
func (h *Handlers) handleBeginSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	session, err := h.Selection.BeginSession(r.Context(), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}

	setParticipantCookie(w, session.Token)
	respondCreated(w, session.SessionResult)
}

// handleEndSession forgets the session so another name can be entered
func (h *Handlers) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if token := participantToken(r); token != "" {
		h.Selection.EndSession(r.Context(), token)
	}
	clearParticipantCookie(w)
	respondSuccess(w, "Session ended")
}

// handlePortal returns the current session view and statistics
func (h *Handlers) handlePortal(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Selection.Portal(r.Context(), participantToken(r)))
}

// handleSelect records the session participant's choice
func (h *Handlers) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.OptionID == "" {
		respondError(w, BadRequest("option_id is required"))
		return
	}

	ctx := r.Context()
	result, err := h.Selection.SelectOption(ctx, participantToken(r), models.OptionID(req.OptionID))
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, SelectResponse{
		SelectionResult: *result,
		Summary:         h.Selection.Summary(ctx),
	})
}

func (h *Handlers) handleGetOptions(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Selection.Statuses(r.Context()))
}

func (h *Handlers) handleGetOption(w http.ResponseWriter, r *http.Request) {
	id, err := optionParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	status, err := h.Selection.OptionStatus(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, status)
}

func (h *Handlers) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Selection.Summary(r.Context()))
}

func (h *Handlers) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	respondOK(w, StatusResponse{AllFull: h.Selection.AllOptionsFull(r.Context())})
}
