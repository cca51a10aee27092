package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/launchboard/admission-gateway/internal/core/domain/admission"
	"github.com/launchboard/admission-gateway/internal/infrastructure/httpserver/middleware"
	tmocks "github.com/launchboard/admission-gateway/test/mocks"
)

func runMiddleware(t *testing.T, admitter *tmocks.AdmissionServiceMock, target string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	m := middleware.NewAdmissionMiddleware(admitter, logrus.New(), nil, nil)
	handler := m.Handler()(func(c echo.Context) error { return c.JSON(http.StatusOK, map[string]string{"status": "ok"}) })
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, handler(c)
}

func TestAdmissionMiddleware_AllowedRequestReachesHandler(t *testing.T) {
	admitter := &tmocks.AdmissionServiceMock{AdmitFn: func(ctx context.Context, r *admission.Request) admission.Decision {
		return admission.Allow(map[string]string{
			admission.HeaderRateLimitLimit:     "60",
			admission.HeaderRateLimitRemaining: "59",
			admission.HeaderRateLimitReset:     "1700000000",
		})
	}}

	rec, err := runMiddleware(t, admitter, "/api/v1/posts")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "60", rec.Header().Get(admission.HeaderRateLimitLimit))
	require.Equal(t, "59", rec.Header().Get(admission.HeaderRateLimitRemaining))
	require.Equal(t, "1700000000", rec.Header().Get(admission.HeaderRateLimitReset))
}

func TestAdmissionMiddleware_RateLimitedRendering(t *testing.T) {
	admitter := &tmocks.AdmissionServiceMock{AdmitFn: func(ctx context.Context, r *admission.Request) admission.Decision {
		return admission.Deny(http.StatusTooManyRequests, admission.RateLimitedBody{
			Error:      "rate_limit_exceeded",
			Message:    "rate limit exceeded",
			RetryAfter: 30,
		}, map[string]string{
			admission.HeaderRateLimitLimit:     "60",
			admission.HeaderRateLimitRemaining: "0",
			admission.HeaderRateLimitReset:     "1700000000",
			admission.HeaderRetryAfter:         "30",
		})
	}}

	rec, err := runMiddleware(t, admitter, "/api/v1/posts")
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "30", rec.Header().Get(admission.HeaderRetryAfter))
	require.Equal(t, "0", rec.Header().Get(admission.HeaderRateLimitRemaining))

	var body admission.RateLimitedBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "rate_limit_exceeded", body.Error)
	require.Equal(t, 30, body.RetryAfter)
}

func TestAdmissionMiddleware_BlockedRendering(t *testing.T) {
	admitter := &tmocks.AdmissionServiceMock{AdmitFn: func(ctx context.Context, r *admission.Request) admission.Decision {
		return admission.Deny(http.StatusForbidden, admission.BlockedBody{
			Error: "forbidden", Message: "request blocked", Code: "BLOCKED",
		}, map[string]string{})
	}}

	rec, err := runMiddleware(t, admitter, "/api/v1/posts")
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, rec.Code)

	var body admission.BlockedBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "BLOCKED", body.Code)
}

func TestAdmissionMiddleware_ValidationRendering(t *testing.T) {
	admitter := &tmocks.AdmissionServiceMock{AdmitFn: func(ctx context.Context, r *admission.Request) admission.Decision {
		return admission.Deny(http.StatusBadRequest, admission.ValidationFailedBody{
			Error: "validation_failed", Message: "request validation failed",
			Details: []string{"unsupported content type \"application/xml\""},
		}, map[string]string{})
	}}

	rec, err := runMiddleware(t, admitter, "/api/v1/posts")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body admission.ValidationFailedBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Details, 1)
}

func TestAdmissionMiddleware_PassesRequestMetadata(t *testing.T) {
	var seen *admission.Request
	admitter := &tmocks.AdmissionServiceMock{AdmitFn: func(ctx context.Context, r *admission.Request) admission.Decision {
		seen = r
		return admission.Allow(nil)
	}}

	e := echo.New()
	m := middleware.NewAdmissionMiddleware(admitter, logrus.New(), nil, nil)
	handler := m.Handler()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search?q=jobs", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))

	require.NotNil(t, seen)
	require.Equal(t, "/api/v1/search", seen.Path)
	require.Equal(t, "jobs", seen.Query.Get("q"))
	require.Equal(t, "203.0.113.7", seen.ClientIP())
	require.Equal(t, "Mozilla/5.0", seen.UserAgent)
}
