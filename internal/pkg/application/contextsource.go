package application

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iot-for-tillgenglighet/ngsi-ld-golang/pkg/datamodels/fiware"
	ngsi "github.com/iot-for-tillgenglighet/ngsi-ld-golang/pkg/ngsi-ld"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/domain/correlation"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/logging"
)

const deviceTypeName = "Device"

var errReadOnly = errors.New("correlated devices are managed through platform lifecycle events")

func createContextRegistry(log logging.Logger, store *correlation.Store) ngsi.ContextRegistry {
	contextRegistry := ngsi.NewContextRegistry()
	ctxSource := contextSource{store: store, log: log}
	contextRegistry.Register(&ctxSource)
	return contextRegistry
}

//contextSource exposes every correlated device as an NGSI-LD Device whose value is its Sigfox id
type contextSource struct {
	store *correlation.Store
	log   logging.Logger
}

func (cs contextSource) ProvidesEntitiesWithMatchingID(entityID string) bool {
	return strings.HasPrefix(entityID, fiware.DeviceIDPrefix)
}

func (cs *contextSource) CreateEntity(typeName, entityID string, req ngsi.Request) error {
	cs.log.Warnf("refusing to create %s %s", typeName, entityID)
	return errReadOnly
}

func (cs *contextSource) GetEntities(query ngsi.Query, callback ngsi.QueryEntitiesCallback) error {
	if query == nil {
		return errors.New("GetEntities: query may not be nil")
	}

	for _, typeName := range query.EntityTypes() {
		if typeName != deviceTypeName {
			continue
		}

		for _, record := range cs.store.Records() {
			err := callback(newCorrelatedDevice(record.PlatformID, record.NetworkID))
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func (cs *contextSource) RetrieveEntity(entityID string, req ngsi.Request) (ngsi.Entity, error) {
	platformID := strings.TrimPrefix(entityID, fiware.DeviceIDPrefix)

	networkID, ok := cs.store.LookupNetworkID(platformID)
	if !ok {
		return nil, fmt.Errorf("no correlated device with id %s", entityID)
	}

	return newCorrelatedDevice(platformID, networkID), nil
}

func (cs contextSource) ProvidesAttribute(attributeName string) bool {
	return attributeName == "value"
}

func (cs contextSource) ProvidesType(typeName string) bool {
	return typeName == deviceTypeName
}

func (cs *contextSource) UpdateEntityAttributes(entityID string, req ngsi.Request) error {
	cs.log.Warnf("refusing to update attributes of %s", entityID)
	return errReadOnly
}

func newCorrelatedDevice(platformID, networkID string) *fiware.Device {
	return fiware.NewDevice(fiware.DeviceIDPrefix+platformID, networkID)
}
