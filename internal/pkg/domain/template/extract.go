//Package template locates the Sigfox integration template on a platform device,
//validates it against a fixed schema and translates it into Sigfox bulk API requests.
package template

import (
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/models"
)

//DeviceLabel is the reserved attribute label that marks the Sigfox device id
const DeviceLabel = "device"

//Attributes maps attribute labels of a single template to their static values.
//Attributes declared without a static value are present with a nil value.
type Attributes map[string]interface{}

//Result is the outcome of Extract. It is either Found or NotFound.
type Result interface {
	isResult()
}

//Found is returned when a device carries a Sigfox template
type Found struct {
	NetworkID  string
	TemplateID string
	Attributes Attributes
}

//NotFound is returned when no template of the device declares a Sigfox device id
type NotFound struct{}

func (Found) isResult()    {}
func (NotFound) isResult() {}

//Extract scans the device templates in declaration order and returns the first
//template holding a "device" attribute with a static value
func Extract(device *models.Device) Result {
	if device == nil {
		return NotFound{}
	}

	for _, templateID := range device.Templates {
		attrs := device.Attrs[templateID]

		for _, attr := range attrs {
			if attr.Label != DeviceLabel || !attr.HasStaticValue() {
				continue
			}

			return Found{
				NetworkID:  asString(attr.StaticValue),
				TemplateID: string(templateID),
				Attributes: collect(attrs),
			}
		}
	}

	return NotFound{}
}

func collect(attrs []models.Attribute) Attributes {
	result := make(Attributes, len(attrs))
	for _, attr := range attrs {
		// duplicate labels keep their first static value
		if existing, ok := result[attr.Label]; ok && existing != nil {
			continue
		}
		result[attr.Label] = attr.StaticValue
	}
	return result
}
