package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	"github.com/scribeconnect/scribe-portal-api/internal/service"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
	"github.com/scribeconnect/scribe-portal-api/pkg/response"
)

// StudentHandler exposes the student side of the portal.
type StudentHandler struct {
	matching    *service.MatchingService
	invitations *service.InvitationService
	requests    *service.RequestService
	feedback    *service.FeedbackService
	metrics     *service.MetricsService
}

// NewStudentHandler constructs handler. metrics may be nil.
func NewStudentHandler(matching *service.MatchingService, invitations *service.InvitationService, requests *service.RequestService, feedback *service.FeedbackService, metrics *service.MetricsService) *StudentHandler {
	return &StudentHandler{
		matching:    matching,
		invitations: invitations,
		requests:    requests,
		feedback:    feedback,
		metrics:     metrics,
	}
}

// CreateRequest godoc
// @Summary Create an exam request and return the first candidate page
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body service.CreateRequestRequest true "Exam details"
// @Success 201 {object} service.CandidatePage
// @Router /student/createRequest [post]
func (h *StudentHandler) CreateRequest(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	page, err := h.matching.CreateRequestAndMatch(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, page)
}

// LoadScribes godoc
// @Summary Load a further page of ranked candidates
// @Tags Student
// @Produce json
// @Param examRequestId query string true "Exam request id"
// @Param page query int false "Page number"
// @Success 200 {object} service.CandidatePage
// @Router /student/load-scribes [get]
func (h *StudentHandler) LoadScribes(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	page, err := h.matching.LoadMoreCandidates(c.Request.Context(), claims.UserID, c.Query("examRequestId"), queryPage(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// SendRequest godoc
// @Summary Invite selected scribes to the exam request
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body service.SendInvitationsRequest true "Selected scribes"
// @Success 200 {object} map[string]interface{}
// @Router /student/send-request [post]
func (h *StudentHandler) SendRequest(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.SendInvitationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	count, err := h.invitations.SendInvitations(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveInvitations(count)
	}
	response.JSON(c, http.StatusOK, gin.H{"message": "invitations sent", "count": count})
}

// GetRequests godoc
// @Summary List the student's exam requests
// @Tags Student
// @Produce json
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Success 200 {object} service.RequestPage
// @Router /student/get-requests [get]
func (h *StudentHandler) GetRequests(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.RequestFilter{
		Status: models.RequestStatus(c.Query("status")),
		Page:   queryPage(c),
	}
	page, err := h.requests.ListForStudent(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page)
}

// Feedback godoc
// @Summary Rate the scribe of a completed request
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body service.FeedbackRequest true "Rating"
// @Success 201 {object} models.Feedback
// @Router /student/feedback [post]
func (h *StudentHandler) Feedback(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fb, err := h.feedback.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fb)
}

func queryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
