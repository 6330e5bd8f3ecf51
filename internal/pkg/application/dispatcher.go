package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/domain/correlation"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/domain/template"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/logging"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/sigfox"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/models"
)

//Lifecycle event names
const (
	EventCreate = "device.create"
	EventUpdate = "device.update"
	EventRemove = "device.remove"
)

const (
	operationCreate = "create"
	operationEdit   = "edit"
)

var (
	//ErrNoSigfoxTemplate is returned for devices that are not managed by this agent
	ErrNoSigfoxTemplate = errors.New("device has no sigfox template")
	//ErrUnmatchedCallback is returned for callbacks about unknown sigfox devices
	ErrUnmatchedCallback = errors.New("no device is correlated with sigfox device")
)

//CredentialResolver maps a tenant user to a Sigfox API password
type CredentialResolver interface {
	Resolve(ctx context.Context, tenant, username string) (string, error)
}

//TenantLister lists the tenants known to the platform
type TenantLister interface {
	ListTenants(ctx context.Context) ([]string, error)
}

//AttributeUpdater forwards new attribute values of a device to the platform
type AttributeUpdater interface {
	UpdateAttrs(ctx context.Context, deviceID, tenant string, attrs map[string]interface{}) error
}

//Dispatcher mirrors platform lifecycle events to Sigfox and Sigfox callbacks to the platform.
//Outbound calls are handed to a TaskRunner; their outcome is only logged.
type Dispatcher struct {
	store       *correlation.Store
	credentials CredentialResolver
	sigfox      sigfox.Client
	tenants     TenantLister
	updater     AttributeUpdater
	tasks       TaskRunner
	log         logging.Logger
}

//NewDispatcher creates a dispatcher
func NewDispatcher(
	log logging.Logger,
	store *correlation.Store,
	credentials CredentialResolver,
	sigfoxClient sigfox.Client,
	tenants TenantLister,
	updater AttributeUpdater,
	tasks TaskRunner,
) *Dispatcher {
	return &Dispatcher{
		store:       store,
		credentials: credentials,
		sigfox:      sigfoxClient,
		tenants:     tenants,
		updater:     updater,
		tasks:       tasks,
		log:         log,
	}
}

//DeviceCreated registers a device with a complete Sigfox template in the Sigfox backend
func (d *Dispatcher) DeviceCreated(ctx context.Context, event *models.DeviceEvent) error {
	return d.provision(ctx, EventCreate, event)
}

//DeviceUpdated edits the Sigfox device of a device with a complete Sigfox template
func (d *Dispatcher) DeviceUpdated(ctx context.Context, event *models.DeviceEvent) error {
	return d.provision(ctx, EventUpdate, event)
}

//DeviceRemoved forgets the correlation of a removed device. Sigfox is never asked to delete devices.
func (d *Dispatcher) DeviceRemoved(ctx context.Context, event *models.DeviceEvent) error {
	device := &event.Data
	d.log.Infof("device [%s] removed", device.ID)

	networkID := ""
	if found, ok := template.Extract(device).(template.Found); ok {
		networkID = found.NetworkID
	}
	if networkID == "" {
		networkID, _ = d.store.LookupNetworkID(device.ID)
	}

	if networkID == "" {
		lifecycleEventsTotal.WithLabelValues(EventRemove, outcomeIgnored).Inc()
		return ErrNoSigfoxTemplate
	}

	d.store.Decorrelate(device.ID, networkID)
	correlatedDevices.Set(float64(d.store.Len()))
	d.log.Infof("removing correlation dojot [%s] <-> [%s] sigfox", device.ID, networkID)

	lifecycleEventsTotal.WithLabelValues(EventRemove, outcomeRemoved).Inc()
	return nil
}

//Track correlates a device without provisioning it. Used when replaying the device directory.
func (d *Dispatcher) Track(device *models.Device) bool {
	found, ok := template.Extract(device).(template.Found)
	if !ok {
		return false
	}
	return d.correlate(device, found)
}

func (d *Dispatcher) provision(ctx context.Context, eventName string, event *models.DeviceEvent) error {
	device := &event.Data
	d.log.Infof("device [%s] %s", device.ID, eventName)

	found, ok := template.Extract(device).(template.Found)
	if !ok {
		d.log.Infof("device [%s] has no sigfox template, ignoring %s", device.ID, eventName)
		lifecycleEventsTotal.WithLabelValues(eventName, outcomeIgnored).Inc()
		return ErrNoSigfoxTemplate
	}

	// the correlation is kept even when the template turns out to be unusable
	d.correlate(device, found)

	tmpl, err := template.Parse(found.Attributes)
	if err != nil {
		d.log.Warnf("device [%s] template %s rejected: %s", device.ID, found.TemplateID, err.Error())
		lifecycleEventsTotal.WithLabelValues(eventName, outcomeIncomplete).Inc()
		return err
	}

	var call func(ctx context.Context, creds sigfox.Credentials) (string, error)
	operation := operationCreate

	if eventName == EventCreate {
		registration := template.BuildRegistration(tmpl)
		call = func(ctx context.Context, creds sigfox.Credentials) (string, error) {
			resp, err := d.sigfox.CreateDevices(ctx, tmpl.DeviceTypeID, registration, creds)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("job %s accepted %d device(s), %d transfer(s) failed", resp.JobID, resp.Total, len(resp.TransferFailed)), nil
		}
	} else {
		operation = operationEdit
		edition := template.BuildEdition(tmpl)
		call = func(ctx context.Context, creds sigfox.Credentials) (string, error) {
			resp, err := d.sigfox.EditDevices(ctx, []models.DeviceEdition{edition}, creds)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d device(s) edited, %d error(s) %v", resp.Total, resp.Error, resp.Log), nil
		}
	}

	password, err := d.credentials.Resolve(ctx, event.Tenant(), tmpl.SigfoxUser)
	if err != nil {
		d.log.Errorf("device [%s] not sent to sigfox: %s", device.ID, err.Error())
		lifecycleEventsTotal.WithLabelValues(eventName, outcomeNoCredentials).Inc()
		return err
	}

	creds := sigfox.Credentials{Username: tmpl.SigfoxUser, Password: password}
	d.dispatch(operation, device.ID, func(ctx context.Context) (string, error) {
		return call(ctx, creds)
	})

	lifecycleEventsTotal.WithLabelValues(eventName, outcomeDispatched).Inc()
	return nil
}

func (d *Dispatcher) correlate(device *models.Device, found template.Found) bool {
	if found.NetworkID == "" {
		return false
	}

	d.store.Correlate(device.ID, found.NetworkID, device.TemplateIDs())
	correlatedDevices.Set(float64(d.store.Len()))
	d.log.Infof("adding correlation dojot [%s] <-> [%s] sigfox", device.ID, found.NetworkID)

	return true
}

func (d *Dispatcher) dispatch(operation, deviceID string, call func(ctx context.Context) (string, error)) {
	log := d.log.WithFields(logging.Fields{
		"dispatch":  uuid.NewString(),
		"operation": operation,
		"device":    deviceID,
	})
	log.Debugf("queueing sigfox %s for device [%s]", operation, deviceID)

	d.tasks.Submit(func() {
		summary, err := call(context.Background())
		if err != nil {
			status := statusFailed
			if errors.Is(err, sigfox.ErrUpstreamRejected) {
				status = statusRejected
			}
			outboundRequestsTotal.WithLabelValues(operation, status).Inc()
			log.Errorf("sigfox %s for device [%s] failed: %s", operation, deviceID, err.Error())
			return
		}

		outboundRequestsTotal.WithLabelValues(operation, statusSuccess).Inc()
		log.Infof("sigfox %s for device [%s] done: %s", operation, deviceID, summary)
	})
}
