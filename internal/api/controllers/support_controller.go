package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/models/request_models"
	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

type SupportController struct {
	supportService services.SupportServiceInterface
}

func NewSupportController(supportService services.SupportServiceInterface) *SupportController {
	return &SupportController{supportService: supportService}
}

// CreateTicket godoc
// @Summary Open a support ticket
// @Description Creates a ticket numbered from the caller's initials and a per-user sequence
// @Tags Support
// @Accept json
// @Produce json
// @Param request body request_models.CreateTicketRequest true "Ticket payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /support/tickets [post]
func (s *SupportController) CreateTicket(c *gin.Context) {
	var req request_models.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	ticket, err := s.supportService.CreateTicket(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, ticket, "Ticket created successfully")
}

func (s *SupportController) MyTickets(c *gin.Context) {
	tickets, err := s.supportService.MyTickets(c.Request.Context(), callerFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, tickets, "Tickets fetched successfully")
}

// ListTickets godoc
// @Summary List all tickets
// @Tags Support
// @Param status query string false "open | closed"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/support/tickets [get]
func (s *SupportController) ListTickets(c *gin.Context) {
	page, pageSize, ok := parsePaging(c)
	if !ok {
		return
	}

	tickets, err := s.supportService.ListTickets(c.Request.Context(), c.Query("status"), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, tickets, "Tickets fetched successfully")
}

func (s *SupportController) UpdateStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request_models.UpdateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Status must be open or closed")
		return
	}

	if err := s.supportService.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, nil, "Ticket updated successfully")
}

// AddFeedback godoc
// @Summary Reply to a ticket
// @Description Appends a staff reply and notifies the ticket owner by mail
// @Tags Support
// @Accept json
// @Produce json
// @Param id path string true "Ticket id"
// @Param request body request_models.TicketFeedbackRequest true "Reply"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/support/tickets/{id}/feedback [post]
func (s *SupportController) AddFeedback(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req request_models.TicketFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	fb, err := s.supportService.AddFeedback(c.Request.Context(), callerFrom(c), id, req.Message)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, fb, "Feedback added successfully")
}

func (s *SupportController) ListFeedback(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	items, err := s.supportService.ListFeedback(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, items, "Feedback fetched successfully")
}
