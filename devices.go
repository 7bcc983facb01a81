package garminconnect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/dmitrymomot/garminconnect/pkg/async"
	"github.com/dmitrymomot/garminconnect/pkg/sso"
)

// GetDevices returns the devices registered to the account.
func (c *Client) GetDevices(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, "device-service/deviceregistration/devices", nil)
}

// GetDeviceSettings returns the settings of one device.
func (c *Client) GetDeviceSettings(ctx context.Context, deviceID string) (json.RawMessage, error) {
	if deviceID == "" {
		return nil, ErrInvalidDeviceID
	}
	return c.getJSON(ctx, "device-service/deviceservice/device-info/settings/"+url.PathEscape(deviceID), nil)
}

// GetDeviceLastUsed returns the device that synced last.
func (c *Client) GetDeviceLastUsed(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, "device-service/deviceservice/mylastused", nil)
}

// GetDeviceAlarms collects the alarms of every registered device, in device
// order. Settings are fetched concurrently, one request per device.
func (c *Client) GetDeviceAlarms(ctx context.Context) ([]json.RawMessage, error) {
	body, err := c.GetDevices(ctx)
	if err != nil {
		return nil, err
	}

	var devices []struct {
		DeviceID json.Number `json:"deviceId"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &devices); err != nil {
			return nil, fmt.Errorf("%w: devices: %w", sso.ErrMalformedResponse, err)
		}
	}

	ids := make([]string, 0, len(devices))
	for _, d := range devices {
		if d.DeviceID != "" {
			ids = append(ids, d.DeviceID.String())
		}
	}
	c.logger.DebugContext(ctx, "gathering device alarms", "devices", len(ids))

	perDevice, err := async.Map(ctx, ids, func(ctx context.Context, id string) ([]json.RawMessage, error) {
		settings, err := c.GetDeviceSettings(ctx, id)
		if err != nil {
			return nil, err
		}
		var payload struct {
			Alarms []json.RawMessage `json:"alarms"`
		}
		if len(settings) > 0 {
			if err := json.Unmarshal(settings, &payload); err != nil {
				return nil, fmt.Errorf("%w: device %s settings: %w", sso.ErrMalformedResponse, id, err)
			}
		}
		return payload.Alarms, nil
	})
	if err != nil {
		return nil, err
	}

	alarms := make([]json.RawMessage, 0)
	for _, list := range perDevice {
		alarms = append(alarms, list...)
	}
	return alarms, nil
}
