package hw_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/api/httperrors"
	"github/chapool/hw-bridge/internal/test"
	"github/chapool/hw-bridge/internal/types"
)

func TestPostScanAndGetDevices(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/hw/scan", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var scanResponse types.GetDevicesResponse
		test.ParseResponseAndValidate(t, res, &scanResponse)
		assert.Len(t, scanResponse.Devices, 2)

		res = test.PerformRequest(t, s, "GET", "/api/v1/hw/devices", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var listResponse types.GetDevicesResponse
		test.ParseResponseAndValidate(t, res, &listResponse)
		assert.Len(t, listResponse.Devices, 2)

		for _, device := range listResponse.Devices {
			assert.Equal(t, "disconnected", swag.StringValue(device.Status))
			assert.Equal(t, "unknown", swag.StringValue(device.Lock))
		}
	})
}

func TestGetDeviceNotFound(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/hw/devices/ghost", nil, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundDevice)
	})
}

func TestConnectDisconnectDevice(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/hw/scan", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "POST", "/api/v1/hw/devices/demo-0/connect", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var device types.DeviceItem
		test.ParseResponseAndValidate(t, res, &device)
		assert.Equal(t, "connected", swag.StringValue(device.Status))
		assert.Equal(t, "unlocked", swag.StringValue(device.Lock))
		assert.NotEmpty(t, device.SessionID)

		// Connecting again keeps the session.
		res = test.PerformRequest(t, s, "POST", "/api/v1/hw/devices/demo-0/connect", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var again types.DeviceItem
		test.ParseResponseAndValidate(t, res, &again)
		assert.Equal(t, device.SessionID, again.SessionID)

		res = test.PerformRequest(t, s, "POST", "/api/v1/hw/devices/demo-0/disconnect", nil, nil)
		require.Equal(t, http.StatusNoContent, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/api/v1/hw/devices/demo-0", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var after types.DeviceItem
		test.ParseResponseAndValidate(t, res, &after)
		assert.Equal(t, "disconnected", swag.StringValue(after.Status))
		assert.Empty(t, after.SessionID)
	})
}

func TestConnectUnknownDevice(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/hw/devices/ghost/connect", nil, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundDevice)
	})
}

func TestDeleteDeviceVanish(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		test.ScanAndConnect(t, s, "demo-0")

		res := test.PerformRequest(t, s, "DELETE", "/api/v1/hw/devices/demo-0", nil, nil)
		require.Equal(t, http.StatusNoContent, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/api/v1/hw/devices/demo-0", nil, nil)
		test.RequireHTTPError(t, res, httperrors.ErrNotFoundDevice)

		// Vanish signals are idempotent.
		res = test.PerformRequest(t, s, "DELETE", "/api/v1/hw/devices/demo-0", nil, nil)
		require.Equal(t, http.StatusNoContent, res.Result().StatusCode)
	})
}

func TestDisconnectIsIdempotent(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		_, err := s.HW.Scan(context.Background())
		require.NoError(t, err)

		res := test.PerformRequest(t, s, "POST", "/api/v1/hw/devices/demo-0/disconnect", nil, nil)
		require.Equal(t, http.StatusNoContent, res.Result().StatusCode)
	})
}
