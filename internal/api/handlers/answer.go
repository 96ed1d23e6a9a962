package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Harshitk-cp/sheetqa/internal/domain"
	"github.com/Harshitk-cp/sheetqa/internal/service"
	"go.uber.org/zap"
)

type AnswerHandler struct {
	svc    *service.AnswerService
	logger *zap.Logger
}

func NewAnswerHandler(svc *service.AnswerService, logger *zap.Logger) *AnswerHandler {
	return &AnswerHandler{svc: svc, logger: logger}
}

type answerRequest struct {
	Query string `json:"query"`
}

func (h *AnswerHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Answer(r.Context(), req.Query)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyQuery):
			writeError(w, http.StatusBadRequest, "query is required")
		case errors.Is(err, domain.ErrKnowledgeBaseNotLoaded):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, domain.ErrExternalService):
			writeError(w, http.StatusBadGateway, err.Error())
		default:
			h.logger.Error("answer failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to answer query")
		}
		return
	}

	writeJSON(w, http.StatusOK, res)
}
