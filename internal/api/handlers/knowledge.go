package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Harshitk-cp/sheetqa/internal/domain"
	"github.com/Harshitk-cp/sheetqa/internal/service"
)

type KnowledgeHandler struct {
	svc *service.KnowledgeService
}

func NewKnowledgeHandler(svc *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type knowledgeResponse struct {
	Source           string            `json:"source"`
	Loaded           bool              `json:"loaded"`
	LoadedAt         *time.Time        `json:"loaded_at,omitempty"`
	Count            int               `json:"count"`
	Facts            map[string]string `json:"facts,omitempty"`
	Stale            bool              `json:"stale"`
	LastRefreshError string            `json:"last_refresh_error,omitempty"`
}

func newKnowledgeResponse(source string, state service.KnowledgeState, withFacts bool) knowledgeResponse {
	resp := knowledgeResponse{
		Source:           source,
		Stale:            state.Stale,
		LastRefreshError: state.LastRefreshError,
	}
	if kb := state.Snapshot; kb != nil {
		loadedAt := kb.LoadedAt
		resp.Loaded = true
		resp.LoadedAt = &loadedAt
		resp.Count = kb.Len()
		if withFacts {
			resp.Facts = kb.Facts()
		}
	}
	return resp
}

// Get returns the loaded fact/answer mapping. ?summary=true omits the facts.
func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	withFacts := r.URL.Query().Get("summary") != "true"
	writeJSON(w, http.StatusOK, newKnowledgeResponse(h.svc.SourceName(), h.svc.State(), withFacts))
}

// Refresh reloads the knowledge base from its source.
func (h *KnowledgeHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.Refresh(r.Context()); err != nil {
		if errors.Is(err, domain.ErrKnowledgeBaseLoad) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to refresh knowledge base")
		return
	}

	writeJSON(w, http.StatusOK, newKnowledgeResponse(h.svc.SourceName(), h.svc.State(), false))
}
