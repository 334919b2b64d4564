package controllers_fx

import (
	"go.uber.org/fx"

	"bizdesk/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewDashboardController),
	fx.Provide(controllers.NewSupportController),
	fx.Provide(controllers.NewMessageController),
	fx.Provide(controllers.NewUploadController))
