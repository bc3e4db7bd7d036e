package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	"github.com/scribeconnect/scribe-portal-api/internal/service"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
	"github.com/scribeconnect/scribe-portal-api/pkg/response"
)

// ScribeHandler exposes the scribe side of the portal.
type ScribeHandler struct {
	invitations *service.InvitationService
	requests    *service.RequestService
	scribes     *service.ScribeService
	metrics     *service.MetricsService
}

// NewScribeHandler constructs handler. metrics may be nil.
func NewScribeHandler(invitations *service.InvitationService, requests *service.RequestService, scribes *service.ScribeService, metrics *service.MetricsService) *ScribeHandler {
	return &ScribeHandler{
		invitations: invitations,
		requests:    requests,
		scribes:     scribes,
		metrics:     metrics,
	}
}

type tokenRequest struct {
	Token string `json:"token"`
}

// AcceptRequest godoc
// @Summary Redeem an invitation token
// @Tags Scribe
// @Accept json
// @Produce json
// @Param payload body tokenRequest true "Invitation token"
// @Success 200 {object} map[string]interface{}
// @Router /scribe/acceptRequest [post]
func (h *ScribeHandler) AcceptRequest(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	requestID, err := h.invitations.Accept(c.Request.Context(), claims.UserID, req.Token)
	if err != nil {
		h.observeAccept(err)
		response.Error(c, err)
		return
	}
	h.observeAccept(nil)
	response.JSON(c, http.StatusOK, gin.H{
		"message":         "request accepted",
		"exam_request_id": requestID,
	})
}

// RejectInvite godoc
// @Summary Decline a pending invitation
// @Tags Scribe
// @Accept json
// @Produce json
// @Param payload body tokenRequest true "Invitation token"
// @Success 200 {object} map[string]string
// @Router /scribe/reject-invite [post]
func (h *ScribeHandler) RejectInvite(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.invitations.Decline(c.Request.Context(), claims.UserID, req.Token); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "invitation declined")
}

// GetRequests godoc
// @Summary List the scribe's accepted requests
// @Tags Scribe
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Success 200 {object} service.RequestPage
// @Router /scribe/get-request [get]
func (h *ScribeHandler) GetRequests(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.RequestFilter{
		Status: models.RequestStatus(c.Query("status")),
		Page:   queryPage(c),
	}
	page, err := h.requests.ListForScribe(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// Invites godoc
// @Summary List pending invitations with exam context
// @Tags Scribe
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /scribe/invites [get]
func (h *ScribeHandler) Invites(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	invites, err := h.invitations.ListPending(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"invites": invites})
}

// Profile godoc
// @Summary The scribe's own profile
// @Tags Scribe
// @Produce json
// @Success 200 {object} models.ScribeProfile
// @Router /scribe/profile [get]
func (h *ScribeHandler) Profile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.scribes.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// GetUnavailability godoc
// @Summary List blocked dates
// @Tags Scribe
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /scribe/get-unavailability [get]
func (h *ScribeHandler) GetUnavailability(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	records, err := h.scribes.ListUnavailability(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"unavailability": records})
}

// SetUnavailability godoc
// @Summary Block a date
// @Tags Scribe
// @Accept json
// @Produce json
// @Param payload body service.SetUnavailabilityRequest true "Date and reason"
// @Success 200 {object} models.Unavailability
// @Router /scribe/set-unavailability [post]
func (h *ScribeHandler) SetUnavailability(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SetUnavailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rec, err := h.scribes.SetUnavailability(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec)
}

type deleteUnavailabilityRequest struct {
	Date string `json:"date"`
}

// DeleteUnavailability godoc
// @Summary Unblock a date
// @Tags Scribe
// @Accept json
// @Produce json
// @Param payload body deleteUnavailabilityRequest true "Date"
// @Success 200 {object} map[string]string
// @Router /scribe/delete-unavailability [post]
func (h *ScribeHandler) DeleteUnavailability(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req deleteUnavailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.scribes.DeleteUnavailability(c.Request.Context(), claims.UserID, req.Date); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "date unblocked")
}

func (h *ScribeHandler) observeAccept(err error) {
	if h.metrics == nil {
		return
	}
	switch {
	case err == nil:
		h.metrics.ObserveAccept("won")
	case appErrors.FromError(err).Code == appErrors.ErrRequestTaken.Code:
		h.metrics.ObserveAccept("lost")
	default:
		h.metrics.ObserveAccept("rejected")
	}
}
