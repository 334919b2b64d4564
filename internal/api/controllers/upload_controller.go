package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/models/request_models"
	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

const maxUploadBytes = 25 << 20

// multipartOverhead covers boundaries and the small text fields around the file.
const multipartOverhead = 1 << 20

type UploadController struct {
	uploadService services.UploadServiceInterface
}

func NewUploadController(uploadService services.UploadServiceInterface) *UploadController {
	return &UploadController{uploadService: uploadService}
}

// UserTransactions godoc
// @Summary Transactions of a user
// @Description Looks up by owner id and falls back to the owner's email
// @Tags Uploads
// @Param id path string true "User id"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/users/{id}/transactions [get]
func (u *UploadController) UserTransactions(c *gin.Context) {
	txns, err := u.uploadService.TransactionsForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, txns, "Transactions fetched successfully")
}

// AssignFile godoc
// @Summary Assign a file to a user
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param userId formData string true "Owner"
// @Param transactionId formData string false "Related transaction"
// @Param file formData file true "File"
// @Success 200 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/uploads [post]
func (u *UploadController) AssignFile(c *gin.Context) {
	limitUploadBody(c)
	var form request_models.AdminUploadForm
	if err := c.ShouldBind(&form); err != nil {
		if rejectOversized(c, err) {
			return
		}
		utils.RespondError(c, http.StatusBadRequest, "userId is required")
		return
	}
	file, closeFn, ok := openUpload(c)
	if !ok {
		return
	}
	defer closeFn()

	row, err := u.uploadService.AssignFile(c.Request.Context(), callerFrom(c), form, file)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, row, "File uploaded successfully")
}

func (u *UploadController) UserUpload(c *gin.Context) {
	limitUploadBody(c)
	var form request_models.UserUploadForm
	if err := c.ShouldBind(&form); err != nil {
		if rejectOversized(c, err) {
			return
		}
		utils.RespondError(c, http.StatusBadRequest, "Invalid form")
		return
	}
	file, closeFn, ok := openUpload(c)
	if !ok {
		return
	}
	defer closeFn()

	row, err := u.uploadService.UserUpload(c.Request.Context(), callerFrom(c), form, file)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, row, "File uploaded successfully")
}

func (u *UploadController) MyUploads(c *gin.Context) {
	rows, err := u.uploadService.MyUploads(c.Request.Context(), callerFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, rows, "Uploads fetched successfully")
}

func (u *UploadController) ListUploads(c *gin.Context) {
	page, pageSize, ok := parsePaging(c)
	if !ok {
		return
	}
	rows, err := u.uploadService.ListUploads(c.Request.Context(), c.Query("userId"), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, rows, "Uploads fetched successfully")
}

func (u *UploadController) Download(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	url, err := u.uploadService.DownloadURL(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"url": url}, "")
}

// Delete serves both DELETE /uploads/:id and DELETE /admin/uploads/:id; the
// service decides from the caller's role what may be removed.
func (u *UploadController) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := u.uploadService.Delete(c.Request.Context(), callerFrom(c), id); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Upload deleted")
}

// limitUploadBody caps the request before gin parses the multipart form, so an
// oversized body is cut off while streaming instead of after spooling to disk.
func limitUploadBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+multipartOverhead)
}

func rejectOversized(c *gin.Context, err error) bool {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return false
	}
	utils.RespondError(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d MB", maxUploadBytes>>20))
	return true
}

func openUpload(c *gin.Context) (services.FileInput, func(), bool) {
	header, err := c.FormFile("file")
	if err != nil {
		if rejectOversized(c, err) {
			return services.FileInput{}, nil, false
		}
		utils.RespondError(c, http.StatusBadRequest, "file is required")
		return services.FileInput{}, nil, false
	}
	if header.Size > maxUploadBytes {
		utils.RespondError(c, http.StatusBadRequest, fmt.Sprintf("file exceeds %d MB", maxUploadBytes>>20))
		return services.FileInput{}, nil, false
	}
	var f multipart.File
	if f, err = header.Open(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "file is unreadable")
		return services.FileInput{}, nil, false
	}
	return services.FileInput{
		Name:        header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Body:        f,
	}, func() { _ = f.Close() }, true
}
