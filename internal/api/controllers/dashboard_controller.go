package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/models/response_models"
	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

type DashboardController struct {
	dashboardService services.DashboardService
}

func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// Summary godoc
// @Summary Purchase summary for the caller
// @Description Count and exact total of the caller's transactions
// @Tags Dashboard
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /dashboard/summary [get]
func (p *DashboardController) Summary(c *gin.Context) {
	summary, err := p.dashboardService.Summary(c.Request.Context(), callerFrom(c).UserID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, summary, "Summary fetched successfully")
}

func (p *DashboardController) Purchases(c *gin.Context) {
	txns, err := p.dashboardService.Purchases(c.Request.Context(), callerFrom(c).UserID)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, txns, "Purchases fetched successfully")
}

// StreamSummary pushes a "summary" server-sent event now and after every
// change to the caller's transactions, until the client disconnects.
func (p *DashboardController) StreamSummary(c *gin.Context) {
	updates := p.dashboardService.Watch(c.Request.Context(), callerFrom(c).UserID)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		summary, ok := <-updates
		if !ok {
			return false
		}
		c.SSEvent("summary", summary)
		return true
	})
}

// GetDashboard godoc
// @Summary Get admin dashboard report
// @Description Fetch KPI blocks, revenue and new user series, package mix, top countries, and recent payments
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param start    query string false "RFC3339 start (e.g. 2026-01-01T00:00:00Z)"
// @Param end      query string false "RFC3339 end   (e.g. 2026-01-31T23:59:59Z)"
// @Param last_days query int   false "Relative lookback in days (mutually exclusive with start/end). Default 30"
// @Param interval query string false "Bucket size: day | week | month (default: day)"
// @Param tz       query string false "IANA timezone for bucketing (default: UTC)"
// @Param currency query string false "ISO 4217 currency code for labeling (default: USD)"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 500 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/dashboard/stats [get]
func (p *DashboardController) GetDashboard(c *gin.Context) {
	currency := strings.ToUpper(c.DefaultQuery("currency", "USD"))
	if !utils.IsCurrencyCode(currency) {
		utils.RespondError(c, http.StatusBadRequest, "currency must be a three-letter code")
		return
	}

	tr, msg := parseTimeRange(c, time.Now().UTC())
	if msg != "" {
		utils.RespondError(c, http.StatusBadRequest, msg)
		return
	}

	report, err := p.dashboardService.BuildDashboard(c.Request.Context(), tr, currency)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, report, "Dashboard data fetched successfully")
}

const defaultLookbackDays = 30

// parseTimeRange reads interval, tz and either last_days or start/end. A
// non-empty message means the query was rejected.
func parseTimeRange(c *gin.Context, now time.Time) (response_models.TimeRange, string) {
	tr := response_models.TimeRange{
		Interval: c.DefaultQuery("interval", "day"),
		Timezone: c.DefaultQuery("tz", "UTC"),
	}
	if !validInterval(tr.Interval) {
		return tr, "interval must be one of: day, week, month"
	}
	if _, err := time.LoadLocation(tr.Timezone); err != nil {
		return tr, "tz must be an IANA timezone"
	}

	startStr, endStr, lastDays := c.Query("start"), c.Query("end"), c.Query("last_days")
	if lastDays != "" {
		if startStr != "" || endStr != "" {
			return tr, "provide either last_days or start/end (not both)"
		}
		d, err := strconv.Atoi(lastDays)
		if err != nil || d <= 0 {
			return tr, "last_days must be a positive integer"
		}
		tr.End = now
		tr.Start = now.AddDate(0, 0, -d)
		return tr, ""
	}

	var err error
	if startStr != "" {
		if tr.Start, err = time.Parse(time.RFC3339, startStr); err != nil {
			return tr, "start must be RFC3339 (e.g. 2026-01-01T00:00:00Z)"
		}
	}
	if endStr != "" {
		if tr.End, err = time.Parse(time.RFC3339, endStr); err != nil {
			return tr, "end must be RFC3339 (e.g. 2026-01-31T23:59:59Z)"
		}
	}
	if tr.End.IsZero() {
		tr.End = now
	}
	if tr.Start.IsZero() {
		tr.Start = tr.End.AddDate(0, 0, -defaultLookbackDays)
	}
	if tr.Start.After(tr.End) {
		tr.Start, tr.End = tr.End, tr.Start
	}
	return tr, ""
}

func validInterval(s string) bool {
	switch s {
	case "day", "week", "month":
		return true
	default:
		return false
	}
}
