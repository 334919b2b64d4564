package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/models/request_models"
	"bizdesk/internal/models/response_models"
	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

type AccountController struct {
	accountService services.AccountServiceInterface
}

func NewAccountController(accountService services.AccountServiceInterface) *AccountController {
	return &AccountController{
		accountService: accountService,
	}
}

// Login godoc
// @Summary Login to an account
// @Description Authenticate a locally managed user and return a token
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body request_models.LoginRequest true "Login payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Router /accounts/login [post]
func (a *AccountController) Login(c *gin.Context) {
	var req request_models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	token, err := a.accountService.Login(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.LoginResponse{Token: token}, "Login successful")
}

// CreateUser godoc
// @Summary Create a user
// @Description Register the user with the identity provider and store the profile
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.CreateUserRequest true "New user"
// @Success 200 {object} utils.APIResponse
// @Failure 409 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/users [post]
func (a *AccountController) CreateUser(c *gin.Context) {
	var req request_models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	out, err := a.accountService.CreateUser(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, out, "User created successfully")
}

// DeleteUser godoc
// @Summary Delete a user
// @Description Remove the identity and, with deleteUserDoc, the profile row
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body request_models.DeleteUserRequest true "User to delete"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/users [delete]
func (a *AccountController) DeleteUser(c *gin.Context) {
	var req request_models.DeleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := a.accountService.DeleteUser(c.Request.Context(), req); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, response_models.OKResponse{OK: true}, "User deleted successfully")
}

func (a *AccountController) ListUsers(c *gin.Context) {
	page, pageSize, ok := parsePaging(c)
	if !ok {
		return
	}

	users, err := a.accountService.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, users, "Users fetched successfully")
}
