package application

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

//Fields of a Sigfox data callback
const (
	CallbackDevice             = "device"
	CallbackTimestamp          = "timestamp"
	CallbackStationLat         = "station_lat"
	CallbackStationLng         = "station_lng"
	CallbackStationCoordinates = "station_coordinates"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

//NetworkCallback forwards a Sigfox data callback as an attribute update to the platform,
//once for every tenant the platform currently knows about
func (d *Dispatcher) NetworkCallback(ctx context.Context, payload map[string]interface{}) error {
	networkID := text(payload[CallbackDevice])

	record, ok := d.store.LookupPlatformID(networkID)
	if !ok {
		d.log.Warnf("dropping callback from unknown sigfox device [%s]", networkID)
		callbacksTotal.WithLabelValues(outcomeUnmatched).Inc()
		return fmt.Errorf("%w [%s]", ErrUnmatchedCallback, networkID)
	}

	d.log.Infof("retrieved dojot device id [%s] <-> [%s] from sigfox id", record.PlatformID, networkID)

	attrs := normalizeCallback(payload)

	tenants, err := d.tenants.ListTenants(ctx)
	if err != nil {
		d.log.Errorf("unable to list tenants for callback from [%s]: %s", networkID, err.Error())
		callbacksTotal.WithLabelValues(outcomeFailed).Inc()
		return err
	}

	var lastErr error
	for _, tenant := range tenants {
		if err := d.updater.UpdateAttrs(ctx, record.PlatformID, tenant, attrs); err != nil {
			d.log.Errorf("failed to update device [%s] of tenant %s: %s", record.PlatformID, tenant, err.Error())
			lastErr = err
		}
	}

	if lastErr != nil {
		callbacksTotal.WithLabelValues(outcomeFailed).Inc()
		return lastErr
	}

	callbacksTotal.WithLabelValues(outcomeForwarded).Inc()
	return nil
}

//SubmitNetworkCallback processes a callback in the background
func (d *Dispatcher) SubmitNetworkCallback(payload map[string]interface{}) {
	d.tasks.Submit(func() {
		d.NetworkCallback(context.Background(), payload)
	})
}

func normalizeCallback(payload map[string]interface{}) map[string]interface{} {
	attrs := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		attrs[k] = v
	}

	if seconds, ok := epochSeconds(payload[CallbackTimestamp]); ok {
		sec, frac := math.Modf(seconds)
		attrs[CallbackTimestamp] = time.Unix(int64(sec), int64(frac*1e9)).UTC().Format(timestampLayout)
	}

	lat, lng := text(payload[CallbackStationLat]), text(payload[CallbackStationLng])
	if lat != "" && lng != "" {
		attrs[CallbackStationCoordinates] = lat + "," + lng
	}

	return attrs
}

func epochSeconds(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func text(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}
