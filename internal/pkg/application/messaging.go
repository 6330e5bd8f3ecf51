package application

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/iot-for-tillgenglighet/messaging-golang/pkg/messaging"
	"github.com/streadway/amqp"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/domain/template"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/logging"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/models"
)

//MessagingContext is an interface that allows mocking of messaging.Context parameters
type MessagingContext interface {
	PublishOnTopic(message messaging.TopicMessage) error
	RegisterTopicMessageHandler(routingKey string, handler messaging.TopicMessageHandler)
}

//LifecycleHandler reacts to a device lifecycle event
type LifecycleHandler func(ctx context.Context, event *models.DeviceEvent) error

//RegisterLifecycleHandlers subscribes the dispatcher to the platform's device lifecycle topics
func RegisterLifecycleHandlers(log logging.Logger, messenger MessagingContext, dispatcher *Dispatcher) {
	handlers := map[string]LifecycleHandler{
		EventCreate: dispatcher.DeviceCreated,
		EventUpdate: dispatcher.DeviceUpdated,
		EventRemove: dispatcher.DeviceRemoved,
	}

	for routingKey, handler := range handlers {
		messenger.RegisterTopicMessageHandler(routingKey, newLifecycleMessageHandler(log, routingKey, handler))
	}
}

func newLifecycleMessageHandler(log logging.Logger, eventName string, handler LifecycleHandler) messaging.TopicMessageHandler {
	return func(msg amqp.Delivery) {
		event := &models.DeviceEvent{}

		err := json.Unmarshal(msg.Body, event)
		if err != nil {
			log.Errorf("failed to decode %s event: %s", eventName, err.Error())
			return
		}

		if event.Event == "" {
			event.Event = eventName
		}

		err = handler(context.Background(), event)
		if err != nil && !errors.Is(err, ErrNoSigfoxTemplate) && !errors.Is(err, template.ErrIncompleteTemplate) {
			log.Errorf("%s event for device [%s] abandoned: %s", eventName, event.Data.ID, err.Error())
		}
	}
}
