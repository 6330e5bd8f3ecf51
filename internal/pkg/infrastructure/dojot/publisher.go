package dojot

import (
	"context"
	"time"

	"github.com/iot-for-tillgenglighet/messaging-golang/pkg/messaging"
)

//DeviceDataTopic is the topic device attribute updates are published on
const DeviceDataTopic = "device-data"

//Publisher is the part of the messaging context used to publish updates
type Publisher interface {
	PublishOnTopic(message messaging.TopicMessage) error
}

//DeviceDataMetadata identifies the device and tenant an update belongs to
type DeviceDataMetadata struct {
	DeviceID  string `json:"deviceid"`
	Tenant    string `json:"tenant"`
	Timestamp int64  `json:"timestamp"`
}

//DeviceDataMessage carries new attribute values of a device
type DeviceDataMessage struct {
	Metadata DeviceDataMetadata     `json:"metadata"`
	Attrs    map[string]interface{} `json:"attrs"`
}

//ContentType returns the content type of the message body
func (m *DeviceDataMessage) ContentType() string {
	return "application/json"
}

//TopicName returns the topic the message is published on
func (m *DeviceDataMessage) TopicName() string {
	return DeviceDataTopic
}

//AttributeUpdater forwards attribute values to the platform
type AttributeUpdater struct {
	publisher Publisher
	now       func() time.Time
}

//NewAttributeUpdater publishes attribute updates through publisher
func NewAttributeUpdater(publisher Publisher) *AttributeUpdater {
	return &AttributeUpdater{
		publisher: publisher,
		now:       time.Now,
	}
}

//UpdateAttrs publishes new attribute values for a device of a tenant
func (u *AttributeUpdater) UpdateAttrs(ctx context.Context, deviceID, tenant string, attrs map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return u.publisher.PublishOnTopic(&DeviceDataMessage{
		Metadata: DeviceDataMetadata{
			DeviceID:  deviceID,
			Tenant:    tenant,
			Timestamp: u.now().UnixNano() / int64(time.Millisecond),
		},
		Attrs: attrs,
	})
}
