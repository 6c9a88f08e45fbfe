package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univpanel/scheduling-api/internal/service"
	appErrors "github.com/univpanel/scheduling-api/pkg/errors"
	"github.com/univpanel/scheduling-api/pkg/response"
)

// SubstitutionHandler handles promotion, reversion and substitution queries.
type SubstitutionHandler struct {
	service *service.SubstitutionService
}

// NewSubstitutionHandler constructs a substitution handler.
func NewSubstitutionHandler(svc *service.SubstitutionService) *SubstitutionHandler {
	return &SubstitutionHandler{service: svc}
}

// Promote godoc
// @Summary Promote a professor to administrator
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param payload body service.PromoteRequest true "Promotion payload"
// @Success 201 {object} response.Envelope
// @Router /substitutions/promote [post]
func (h *SubstitutionHandler) Promote(c *gin.Context) {
	var req service.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Promote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Revert godoc
// @Summary Revert an administrator to professor
// @Tags Substitutions
// @Produce json
// @Param accountId path string true "Account ID"
// @Success 200 {object} response.Envelope
// @Router /substitutions/revert/{accountId} [post]
func (h *SubstitutionHandler) Revert(c *gin.Context) {
	result, err := h.service.Revert(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListActive godoc
// @Summary List substitutions in effect today
// @Tags Substitutions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /substitutions/active [get]
func (h *SubstitutionHandler) ListActive(c *gin.Context) {
	subs, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}

// Get godoc
// @Summary Get a substitution record
// @Tags Substitutions
// @Produce json
// @Param id path string true "Substitution ID"
// @Success 200 {object} response.Envelope
// @Router /substitutions/{id} [get]
func (h *SubstitutionHandler) Get(c *gin.Context) {
	sub, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}

// ListAll godoc
// @Summary List all substitution records
// @Tags Substitutions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /substitutions [get]
func (h *SubstitutionHandler) ListAll(c *gin.Context) {
	subs, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}
