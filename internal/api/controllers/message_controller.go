package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/models/request_models"
	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

type MessageController struct {
	messageService services.MessageService
}

func NewMessageController(messageService services.MessageService) *MessageController {
	return &MessageController{messageService: messageService}
}

func (m *MessageController) SendToStaff(c *gin.Context) {
	var req request_models.SendUserMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	msg, err := m.messageService.SendToStaff(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, msg, "Message sent")
}

func (m *MessageController) Inbox(c *gin.Context) {
	msgs, err := m.messageService.Inbox(c.Request.Context(), callerFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, msgs, "Messages fetched successfully")
}

func (m *MessageController) MarkRead(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := m.messageService.MarkRead(c.Request.Context(), callerFrom(c), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Message marked as read")
}

// SendToUser godoc
// @Summary Message a user
// @Tags Messages
// @Accept json
// @Produce json
// @Param request body request_models.SendAdminMessageRequest true "Message"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/messages [post]
func (m *MessageController) SendToUser(c *gin.Context) {
	var req request_models.SendAdminMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	msg, err := m.messageService.SendToUser(c.Request.Context(), callerFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, msg, "Message sent")
}

func (m *MessageController) StaffInbox(c *gin.Context) {
	page, pageSize, ok := parsePaging(c)
	if !ok {
		return
	}
	msgs, err := m.messageService.StaffInbox(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, msgs, "Messages fetched successfully")
}

func (m *MessageController) MarkStaffRead(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := m.messageService.MarkStaffRead(c.Request.Context(), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Message marked as read")
}
