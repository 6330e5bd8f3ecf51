package template

import (
	"regexp"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/models"
)

//RegistrationPrefix is prepended by Sigfox to the name of every registered device
const RegistrationPrefix = "dojot-sigfox-"

var coordinatesPattern = regexp.MustCompile(`^\s*([+-]?(?:\d+\.?\d*|\.\d+))\s*,\s*([+-]?(?:\d+\.?\d*|\.\d+))\s*$`)

//BuildRegistration converts a complete template into a bulk creation request
func BuildRegistration(t *DeviceTemplate) models.DeviceRegistration {
	return models.DeviceRegistration{
		Prefix:             RegistrationPrefix,
		IDs:                []models.SigfoxDeviceID{{ID: t.Device, PAC: t.PACNumber}},
		ProductCertificate: t.ProductCertificate,
	}
}

//BuildEdition converts a complete template into a device edition. Latitude and
//longitude are only set when the device coordinates parse as "<lat>,<lng>".
func BuildEdition(t *DeviceTemplate) models.DeviceEdition {
	edition := models.DeviceEdition{
		ID:                 t.Device,
		DeviceTypeID:       t.DeviceTypeID,
		ProductCertificate: t.ProductCertificate,
	}

	if lat, lng, ok := ParseCoordinates(t.DeviceCoordinates); ok {
		edition.Lat = &lat
		edition.Lng = &lng
	}

	return edition
}

//ParseCoordinates splits a "lat,lng" pair into its numeric texts
func ParseCoordinates(coordinates string) (lat, lng string, ok bool) {
	match := coordinatesPattern.FindStringSubmatch(coordinates)
	if match == nil {
		return "", "", false
	}
	return match[1], match[2], true
}
