package routers

import (
	"medbridge-service/internal/app/delivery/http/controllers"
	"medbridge-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachHospitalSettingRoutes(router chi.Router, middlewares *middlewares.Middlewares, hospitalSettingController *controllers.HospitalSettingController) {
	probeLimit := middlewares.ProbeRateLimit()

	router.Get("/", hospitalSettingController.FindSettingsByHospital)
	router.Post("/", hospitalSettingController.CreateSetting)
	router.With(probeLimit).Post("/validate-endpoint", hospitalSettingController.ValidateAdHocEndpoint)
	router.Put("/{id}", hospitalSettingController.UpdateSetting)
	router.Delete("/{id}", hospitalSettingController.DeactivateSetting)
	router.With(probeLimit).Post("/{id}/validate", hospitalSettingController.ValidateSetting)
}
