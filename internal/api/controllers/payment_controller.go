package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/models/request_models"
	"bizdesk/internal/services"
	"bizdesk/pkg/utils"
)

const maxWebhookBody = 1 << 20

type PaymentController struct {
	paymentService services.PaymentService
	webhookService services.WebhookService
}

func NewPaymentController(paymentService services.PaymentService, webhookService services.WebhookService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		webhookService: webhookService,
	}
}

// CreateCheckout godoc
// @Summary Create a hosted checkout session
// @Description Start a Stripe or PayPal checkout for a package and return the redirect URL
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CheckoutRequest true "Checkout request"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/checkout [post]
func (p *PaymentController) CreateCheckout(c *gin.Context) {
	var request request_models.CheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	out, err := p.paymentService.CreateCheckout(c.Request.Context(), callerFrom(c), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, out, "Checkout session created successfully")
}

// Reconcile godoc
// @Summary Record a returning checkout
// @Description Called with the query parameters the browser landed on after the processor redirect
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.ReconcileRequest true "Redirect parameters"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /payments/reconcile [post]
func (p *PaymentController) Reconcile(c *gin.Context) {
	var request request_models.ReconcileRequest
	if err := c.ShouldBind(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	out, err := p.paymentService.Reconcile(c.Request.Context(), callerFrom(c), request)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, out, "Payment recorded")
}

// HandleWebhook receives processor notifications on /payments/webhooks/:processor.
// The body is read raw; signatures are computed over the exact bytes.
func (p *PaymentController) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Unreadable body")
		return
	}

	if err := p.webhookService.HandleWebhook(c.Request.Context(), c.Param("processor"), body, c.Request.Header); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
