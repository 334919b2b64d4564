package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizdesk/internal/models/db_models"
	"bizdesk/pkg/middleware"
)

func RegisterRoutes(r *gin.Engine, p routerParams) {
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.POST("/accounts/login", p.Accounts.Login)
	// processors authenticate with signatures, not bearer tokens
	r.POST("/payments/webhooks/:processor", p.Payments.HandleWebhook)

	authed := r.Group("/", middleware.JWTAuthMiddleware(p.Verifier))

	payments := authed.Group("/payments")
	payments.POST("/checkout", p.Payments.CreateCheckout)
	payments.POST("/reconcile", p.Payments.Reconcile)

	dash := authed.Group("/dashboard")
	dash.GET("/summary", p.Dashboard.Summary)
	dash.GET("/summary/stream", p.Dashboard.StreamSummary)
	dash.GET("/purchases", p.Dashboard.Purchases)

	support := authed.Group("/support")
	support.POST("/tickets", p.Support.CreateTicket)
	support.GET("/tickets", p.Support.MyTickets)
	support.GET("/tickets/:id/feedback", p.Support.ListFeedback)

	authed.POST("/messages", p.Messages.SendToStaff)
	authed.GET("/messages", p.Messages.Inbox)
	authed.PATCH("/messages/:id/read", p.Messages.MarkRead)

	authed.POST("/uploads", p.Uploads.UserUpload)
	authed.GET("/uploads", p.Uploads.MyUploads)
	authed.GET("/uploads/:id/url", p.Uploads.Download)
	authed.DELETE("/uploads/:id", p.Uploads.Delete)

	admin := authed.Group("/admin", middleware.RoleMiddleware(db_models.RoleAdmin, db_models.RoleManager))
	admin.GET("/dashboard/stats", p.Dashboard.GetDashboard)

	admin.GET("/users", p.Accounts.ListUsers)
	admin.POST("/users", middleware.RoleMiddleware(db_models.RoleAdmin), p.Accounts.CreateUser)
	admin.DELETE("/users", middleware.RoleMiddleware(db_models.RoleAdmin), p.Accounts.DeleteUser)
	admin.GET("/users/:id/transactions", p.Uploads.UserTransactions)

	admin.GET("/support/tickets", p.Support.ListTickets)
	admin.PATCH("/support/tickets/:id/status", p.Support.UpdateStatus)
	admin.POST("/support/tickets/:id/feedback", p.Support.AddFeedback)

	admin.POST("/messages", p.Messages.SendToUser)
	admin.GET("/messages", p.Messages.StaffInbox)
	admin.PATCH("/messages/:id/read", p.Messages.MarkStaffRead)

	admin.POST("/uploads", p.Uploads.AssignFile)
	admin.GET("/uploads", p.Uploads.ListUploads)
	admin.DELETE("/uploads/:id", p.Uploads.Delete)
}
