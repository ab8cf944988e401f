package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vroo/hr-tracker/internal/model"
	candidatesvc "github.com/vroo/hr-tracker/internal/service/candidate"
	apperrors "github.com/vroo/hr-tracker/pkg/errors"
	"github.com/vroo/hr-tracker/pkg/httputil"
	"github.com/vroo/hr-tracker/pkg/logger"
)

type CandidateHandler struct {
	svc    *candidatesvc.Service
	logger *logger.Logger
}

func NewCandidateHandler(svc *candidatesvc.Service, log *logger.Logger) *CandidateHandler {
	return &CandidateHandler{svc: svc, logger: log}
}

func (h *CandidateHandler) List(c *gin.Context) {
	p := paginationFromQuery(c)
	candidates, total, err := h.svc.ListCandidates(c.Request.Context(), p)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPagination(c, candidates, p.Page, p.PageSize, total)
}

func (h *CandidateHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid candidate id", err))
		return
	}

	cand, err := h.svc.GetCandidate(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, cand)
}

func (h *CandidateHandler) Create(c *gin.Context) {
	var req model.CreateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	cand, err := h.svc.CreateCandidate(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, cand)
}

// Update commits the candidate patch and reports the employee sync outcome.
// A sync conflict comes back as 409 carrying the committed candidate: the
// caller must see that the candidate change itself went through.
func (h *CandidateHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid candidate id", err))
		return
	}

	var req model.UpdateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	result, err := h.svc.UpdateCandidate(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if result.SyncErr != nil {
		if apperrors.IsConflict(result.SyncErr) {
			httputil.RespondWithConflict(c, result.Candidate, result.SyncErr.Error())
			return
		}
		h.logger.ZL.Error().Err(result.SyncErr).
			Str("candidate_id", result.Candidate.ID.String()).
			Msg("employee sync failed after candidate update")
	}
	httputil.RespondWithSuccess(c, result.Candidate)
}

func (h *CandidateHandler) RemoveMeet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid candidate id", err))
		return
	}

	if err := h.svc.RemoveHeadInterview(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"removed": true})
}
