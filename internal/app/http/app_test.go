package httpapp

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	httprouters "vltweb/internal/transport/http"
)

func registeredRoutes(t *testing.T) map[string]string {
	t.Helper()

	s := New(slog.Default(), "secret", "8080", &httprouters.Routers{})
	s.BuildRouters()

	routes := make(map[string]string)
	for _, r := range s.e.Routes() {
		routes[r.Method+" "+r.Path] = r.Name
	}

	return routes
}

func TestBuildRouters_APIPaths(t *testing.T) {
	routes := registeredRoutes(t)

	for _, want := range []string{
		http.MethodGet + " /api/health",
		http.MethodPost + " /api/login",
		http.MethodGet + " /api/images",
		http.MethodGet + " /api/images/:id",
		http.MethodGet + " /api/tracks",
		http.MethodGet + " /api/quiz",
		http.MethodGet + " /api/events",
		http.MethodPost + " /api/events/notify",
		http.MethodPost + " /api/images/bulk",
		http.MethodPost + " /api/tracks/bulk",
		http.MethodPost + " /api/quiz/bulk",
		http.MethodGet + " /metrics",
	} {
		assert.Contains(t, routes, want)
	}

	assert.NotContains(t, routes, http.MethodGet+" /health",
		"health lives under the api prefix")
}

func TestCustomValidator(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}

	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	assert.Error(t, e.Validator.Validate(payload{}))
	assert.NoError(t, e.Validator.Validate(payload{Name: "ok"}))
}
