package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New()

	r := gin.New()
	r.Use(h.Middleware())
	r.GET("/members/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", h.Handler())

	for _, path := range []string{"/members/a", "/members/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(h.requestTotal.WithLabelValues("GET", "/members/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.requestTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.errorTotal.WithLabelValues("GET", "unmatched", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "safefam_http_requests_total")
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
