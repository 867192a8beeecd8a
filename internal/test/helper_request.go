package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/api/httperrors"
	"github/chapool/hw-bridge/internal/types"
)

// GenericPayload is a JSON object request body.
type GenericPayload map[string]any

func (g GenericPayload) Reader(t *testing.T) *bytes.Reader {
	t.Helper()

	b, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("failed to serialize payload: %v", err)
	}

	return bytes.NewReader(b)
}

// PerformRequest runs a request against the server's echo instance and
// returns the recorded response.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body GenericPayload, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyReader = body.Reader(t)
	}

	return PerformRequestWithRawBody(t, s, method, path, bodyReader, headers)
}

func PerformRequestWithRawBody(t *testing.T, s *api.Server, method string, path string, body io.Reader, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)

	if headers != nil {
		req.Header = headers
	}

	if body != nil && req.Header.Get(echo.HeaderContentType) == "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// ParseResponseBody unmarshals the recorded response body into v.
func ParseResponseBody(t *testing.T, res *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(res.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
}

// ParseResponseAndValidate unmarshals the recorded response body into v and
// runs its payload validation.
func ParseResponseAndValidate(t *testing.T, res *httptest.ResponseRecorder, v runtime.Validatable) {
	t.Helper()

	ParseResponseBody(t, res, v)

	require.NoError(t, v.Validate(strfmt.Default))
}

// RequireHTTPError checks that the response matches the given HTTPError.
func RequireHTTPError(t *testing.T, res *httptest.ResponseRecorder, httpError *httperrors.HTTPError) {
	t.Helper()

	require.Equal(t, int(swag.Int64Value(httpError.Code)), res.Result().StatusCode)

	var response types.PublicHTTPError
	ParseResponseBody(t, res, &response)

	require.Equal(t, httpError.PublicHTTPError, response)
}
