package server

import (
	"net/http"
	"time"

	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type entityView struct {
	UniqueId  string `json:"unique_id"`
	Name      string `json:"name"`
	ModuleId  string `json:"module_id"`
	Device    string `json:"device"`
	Value     any    `json:"value"`
	Unit      string `json:"unit,omitempty"`
	Available bool   `json:"available"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	e.GET("/api/entities", s.EntitiesHandler)
	e.POST("/api/entry/reload", s.ReloadEntryHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) EntitiesHandler(c echo.Context) error {
	entities := s.entities.Entities()
	views := make([]entityView, 0, len(entities))
	for _, e := range entities {
		views = append(views, entityView{
			UniqueId:  e.UniqueID(),
			Name:      e.Name(),
			ModuleId:  e.ModuleId(),
			Device:    e.DeviceInfo().Name,
			Value:     e.NativeValue(),
			Unit:      e.Description().NativeUnitOfMeasurement,
			Available: e.Available(),
		})
	}
	return c.JSON(http.StatusOK, views)
}

func (s *Server) ReloadEntryHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ReloadEntryRequest{}, 5*time.Second).Result()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.ReloadEntryResponse)
	if !ok || response.HasResponseError() {
		return echo.NewHTTPError(http.StatusInternalServerError, "reload failed")
	}
	return c.JSON(http.StatusOK, map[string]int{"entities": response.Entities})
}
