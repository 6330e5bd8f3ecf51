package application

import (
	"context"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/logging"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/models"
)

//DeviceDirectory is the request/response view of the platform's devices
type DeviceDirectory interface {
	ListTenants(ctx context.Context) ([]string, error)
	ListDevices(ctx context.Context, tenant string) ([]string, error)
	GetDevice(ctx context.Context, deviceID, tenant string) (*models.Device, error)
}

//Replay rebuilds the correlation store from the platform's device directory.
//Failures are logged and skipped. It returns the number of correlated devices.
func Replay(ctx context.Context, log logging.Logger, directory DeviceDirectory, dispatcher *Dispatcher) int {
	tenants, err := directory.ListTenants(ctx)
	if err != nil {
		log.Errorf("unable to list tenants, skipping device replay: %s", err.Error())
		return 0
	}

	tracked := 0

	for _, tenant := range tenants {
		deviceIDs, err := directory.ListDevices(ctx, tenant)
		if err != nil {
			log.Errorf("unable to list devices of tenant %s: %s", tenant, err.Error())
			continue
		}

		for _, deviceID := range deviceIDs {
			if ctx.Err() != nil {
				return tracked
			}

			device, err := directory.GetDevice(ctx, deviceID, tenant)
			if err != nil {
				log.Errorf("unable to get device [%s] of tenant %s: %s", deviceID, tenant, err.Error())
				continue
			}

			if dispatcher.Track(device) {
				tracked++
			}
		}
	}

	log.Infof("device replay done, %d device(s) correlated", tracked)
	return tracked
}
