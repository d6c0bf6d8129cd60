// Package relay exposes the chat and speech synthesis proxy endpoints.
// Chat never surfaces upstream failures: every turn gets HTTP 200 with a
// displayable reply. Speech synthesis does surface failures, since there
// is no meaningful partial-success path for audio.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/sleighworks/santaline/internal/model/chat"
	"github.com/sleighworks/santaline/internal/model/persona"
	"github.com/sleighworks/santaline/internal/safety"
	"github.com/sleighworks/santaline/internal/service/ai"
	chatService "github.com/sleighworks/santaline/internal/service/chat"
	"github.com/sleighworks/santaline/internal/service/speech"
	"github.com/sleighworks/santaline/pkg/utils"
)

// Fixed in-character replies for the failure paths.
const (
	fallbackDirect   = "Ho ho ho! Try again."
	fallbackUpstream = "Santa is tinkering with toys. Try again."
	fallbackDecode   = "Snow flurry error. Try again."
)

// Replier generates an in-character reply for one turn.
type Replier interface {
	GenerateReply(ctx context.Context, req ai.Request) (string, error)
}

// Synthesizer turns text into MP3 bytes for a given voice role.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceRole string) ([]byte, error)
}

// Handler serves the relay proxy routes.
type Handler struct {
	replier  Replier
	tts      Synthesizer
	filter   *safety.Filter
	chatSvc  *chatService.Service
	personas persona.Store
}

// New wires the relay handler. replier and tts may be nil when the
// corresponding credential is absent; the failure paths then apply.
// A nil filter or persona store gets the built-in defaults.
func New(replier Replier, tts Synthesizer, filter *safety.Filter, chatSvc *chatService.Service, personas persona.Store) *Handler {
	if filter == nil {
		filter = safety.NewFilter(nil)
	}
	if personas == nil {
		personas = persona.NewMemoryStore(persona.Seed())
	}
	return &Handler{replier: replier, tts: tts, filter: filter, chatSvc: chatSvc, personas: personas}
}

// RegisterRoutes mounts the long-running-variant routes under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleDirectChat)
	r.Post("/tts", h.handleTTS)
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}/messages", h.handleTranscript)
	r.Get("/personas", h.handleListPersonas)
	r.Get("/health", h.handleHealth)
}

// RegisterEdgeRoutes mounts the edge-variant routes at the root.
func (h *Handler) RegisterEdgeRoutes(r chi.Router) {
	r.Post("/chat", h.handleEdgeChat)
	r.Post("/tts", h.handleTTS)
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleListPersonas returns the seeded workshop characters so clients
// can present them without hardcoding the roster.
func (h *Handler) handleListPersonas(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.personas.List())
}

type sessionPayload struct {
	ID          string `json:"id,omitempty"`
	KidName     string `json:"kidName"`
	Age         string `json:"age,omitempty"`
	ParentEmail string `json:"parentEmail,omitempty"`
	Consent     bool   `json:"consent"`
}

// handleDirectChat serves POST /api/chat: one child turn plus session
// context, no history. Always HTTP 200 with a reply field.
func (h *Handler) handleDirectChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text    string         `json:"text"`
		Session sessionPayload `json:"session"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": fallbackDecode})
		return
	}

	if term, tripped := h.filter.Check(payload.Text); tripped {
		log.Printf("[safety] direct chat blocked on %q", term)
		h.respondReply(w, r, payload.Session.ID, payload.Text, safety.RedirectReply)
		return
	}

	if h.replier == nil {
		h.respondReply(w, r, payload.Session.ID, payload.Text, fallbackDirect)
		return
	}

	reply, err := h.replier.GenerateReply(r.Context(), ai.Request{
		Persona:  "santa",
		KidName:  payload.Session.KidName,
		Age:      payload.Session.Age,
		UserText: payload.Text,
	})
	if err != nil {
		log.Printf("[chat] upstream failure: %v", err)
		reply = fallbackDirect
	}

	h.respondReply(w, r, payload.Session.ID, payload.Text, reply)
}

// handleEdgeChat serves POST /chat: full trailing history in the body.
// The safety filter scans every message before anything goes upstream.
func (h *Handler) handleEdgeChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		System   string              `json:"system"`
		KidName  string              `json:"kidName"`
		Age      string              `json:"age"`
		Messages []chatModel.Message `json:"messages"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": fallbackDecode})
		return
	}

	texts := make([]string, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		texts = append(texts, m.Text)
	}
	if term, tripped := h.filter.CheckAll(texts); tripped {
		log.Printf("[safety] edge chat blocked on %q", term)
		utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": safety.RedirectReply})
		return
	}

	// Unlike upstream failures, a missing credential is a deployment
	// problem and surfaces as a hard error on this variant.
	if h.replier == nil {
		utils.RespondError(w, http.StatusInternalServerError, "missing provider credential")
		return
	}

	// The latest kid turn is the query; everything before it is history.
	history := payload.Messages
	userText := ""
	if n := len(history); n > 0 && history[n-1].Role == chatModel.RoleKid {
		userText = history[n-1].Text
		history = history[:n-1]
	}

	reply, err := h.replier.GenerateReply(r.Context(), ai.Request{
		System:   payload.System,
		KidName:  payload.KidName,
		Age:      payload.Age,
		History:  history,
		UserText: userText,
	})
	if err != nil {
		log.Printf("[chat] upstream failure: %v", err)
		reply = fallbackUpstream
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// handleTTS serves POST /tts and /api/tts. Unlike chat, failures here
// surface as HTTP errors.
func (h *Handler) handleTTS(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text      string `json:"text"`
		VoiceRole string `json:"voiceRole"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if h.tts == nil {
		utils.RespondError(w, http.StatusUnauthorized, "missing provider credential")
		return
	}

	audio, err := h.tts.Synthesize(r.Context(), payload.Text, payload.VoiceRole)
	if err != nil {
		if errors.Is(err, speech.ErrMissingCredential) {
			utils.RespondError(w, http.StatusUnauthorized, "missing provider credential")
			return
		}
		log.Printf("[tts] synthesis failure: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "synthesis failed")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

// handleCreateSession provisions a server-side transcript session.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload sessionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), payload.KidName, payload.Age, payload.ParentEmail, payload.Consent)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

// handleTranscript returns the stored messages for a session.
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, chatService.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		utils.RespondError(w, status, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

// respondReply writes the chat reply and, when the caller supplied a
// known session id, records both turns in the transcript. Recording is
// best-effort and never blocks the reply.
func (h *Handler) respondReply(w http.ResponseWriter, r *http.Request, sessionID, kidText, reply string) {
	if sessionID != "" && h.chatSvc != nil {
		ctx := r.Context()
		if err := h.chatSvc.SaveMessage(ctx, chatModel.Message{SessionID: sessionID, Role: chatModel.RoleKid, Text: kidText}); err != nil {
			log.Printf("[chat] failed to record kid turn: %v", err)
		} else if err := h.chatSvc.SaveMessage(ctx, chatModel.Message{SessionID: sessionID, Role: chatModel.RoleSanta, Text: reply}); err != nil {
			log.Printf("[chat] failed to record santa turn: %v", err)
		}
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
