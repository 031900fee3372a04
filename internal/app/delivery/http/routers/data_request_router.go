package routers

import (
	"medbridge-service/internal/app/delivery/http/controllers"
	"medbridge-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachDataRequestRoutes(router chi.Router, middlewares *middlewares.Middlewares, dataRequestController *controllers.DataRequestController) {
	router.Post("/request", dataRequestController.SubmitRequest)
	router.With(middlewares.ProbeRateLimit()).Post("/{id}/approve", dataRequestController.ApproveRequest)
	router.Get("/pending", dataRequestController.FindPendingByHospital)
	router.Get("/history", dataRequestController.FindHistoryByUser)
	router.Get("/{id}", dataRequestController.FindRequestByID)
}
