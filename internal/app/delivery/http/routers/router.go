package routers

import (
	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/delivery/http/controllers"
	"medbridge-service/internal/app/delivery/http/middlewares"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/metrics"
	"medbridge-service/internal/pkg/utils"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	internalConfig *config.InternalConfig,
	middlewares *middlewares.Middlewares,
	m *metrics.Metrics,
	dataRequestController *controllers.DataRequestController,
	endpointController *controllers.EndpointController,
	hospitalSettingController *controllers.HospitalSettingController,
) {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	router.Use(cors.Handler(corsOptions))
	router.Use(middlewares.RequestIDMiddleware)
	router.Use(middlewares.Logging)
	router.Use(middlewares.ErrorHandler)
	router.Use(middlewares.GlobalRateLimit())
	router.Use(middlewares.BodyLimit)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.BuildSuccessResponse(w, constvars.StatusOK, "ok", nil)
	})
	if m != nil {
		router.Method(http.MethodGet, "/metrics", m.Handler())
	}

	endpointPrefix := "/" + strings.Trim(internalConfig.App.EndpointPrefix, "/")

	router.Route(endpointPrefix, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewares.Authenticate)

			r.Route("/"+constvars.ResourceDataRequests, func(r chi.Router) {
				attachDataRequestRoutes(r, middlewares, dataRequestController)
			})

			r.Route("/"+constvars.ResourceDataRequestEndpoints, func(r chi.Router) {
				attachEndpointRoutes(r, middlewares, endpointController)
			})

			r.Route("/"+constvars.ResourceHospitalSettings, func(r chi.Router) {
				attachHospitalSettingRoutes(r, middlewares, hospitalSettingController)
			})
		})
	})
}
