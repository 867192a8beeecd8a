package hw

import (
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/swag"
	"github/chapool/hw-bridge/internal/hwwallet"
	"github/chapool/hw-bridge/internal/types"
)

func deviceItem(device *hwwallet.Device) *types.DeviceItem {
	item := &types.DeviceItem{
		ID:              swag.String(device.ID),
		Vendor:          string(device.Vendor),
		Model:           device.Model,
		FirmwareVersion: device.FirmwareVersion,
		Method:          string(device.Method),
		Apps:            device.Apps,
		Status:          swag.String(string(device.Status)),
		Lock:            swag.String(string(device.Lock)),
		SessionID:       device.SessionID,
	}

	if !device.LastConnectedAt.IsZero() {
		item.LastConnectedAt = strfmt.DateTime(device.LastConnectedAt)
	}

	return item
}

func devicesResponse(devices []*hwwallet.Device) *types.GetDevicesResponse {
	items := make([]*types.DeviceItem, 0, len(devices))
	for _, device := range devices {
		items = append(items, deviceItem(device))
	}

	return &types.GetDevicesResponse{Devices: items}
}

func accountsResponse(accounts []*hwwallet.Account) *types.GetAccountsResponse {
	items := make([]*types.AccountItem, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, &types.AccountItem{
			Address:        swag.String(account.Address),
			Index:          swag.Int64(int64(account.Index)),
			DerivationPath: swag.String(account.DerivationPath),
		})
	}

	return &types.GetAccountsResponse{Accounts: items}
}

func signingRequestResponse(request *hwwallet.Request) *types.SigningRequestResponse {
	response := &types.SigningRequestResponse{
		ID:             swag.Int64(int64(request.ID)),
		DeviceID:       swag.String(request.DeviceID),
		Status:         swag.String(string(request.Status)),
		AccountAddress: request.AccountAddress,
		DerivationPath: request.DerivationPath,
		RequestType:    string(request.Payload.Type),
		Summary:        request.Payload.Summary,
		CreatedAt:      strfmt.DateTime(request.CreatedAt),
		Reason:         string(request.Reason),
		FailureDetail:  request.FailureDetail,
	}

	if len(request.Signature) > 0 {
		response.Signature = strfmt.Base64(request.Signature)
	}

	return response
}

func eventItem(event hwwallet.Event) *types.EventItem {
	return &types.EventItem{
		Type:      swag.String(string(event.Type)),
		DeviceID:  event.DeviceID,
		RequestID: int64(event.RequestID),
		Detail:    event.Detail,
		At:        strfmt.DateTime(event.At),
	}
}
