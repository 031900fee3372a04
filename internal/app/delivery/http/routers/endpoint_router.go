package routers

import (
	"medbridge-service/internal/app/delivery/http/controllers"
	"medbridge-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachEndpointRoutes(router chi.Router, middlewares *middlewares.Middlewares, endpointController *controllers.EndpointController) {
	probeLimit := middlewares.ProbeRateLimit()

	router.Get("/", endpointController.FindEndpointsByHospital)
	router.Post("/", endpointController.CreateEndpoint)
	router.Get("/{id}", endpointController.FindEndpointByID)
	router.Put("/{id}", endpointController.UpdateEndpoint)
	router.Delete("/{id}", endpointController.DeleteEndpoint)
	router.With(probeLimit).Post("/{id}/validate", endpointController.ValidateEndpoint)
	router.With(probeLimit).Post("/hospital/{hospital_id}/validate-all", endpointController.ValidateAllEndpoints)
}
