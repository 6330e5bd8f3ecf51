package template

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/models"
)

func completeAttributes() []models.Attribute {
	return []models.Attribute{
		{Label: "device", StaticValue: "dev1"},
		{Label: "pac_number", StaticValue: "PAC1"},
		{Label: "product_certificate", StaticValue: "P_0001_A1B2_01"},
		{Label: "sigfox_user", StaticValue: "api-user"},
		{Label: "device_type_id", StaticValue: "5a7f0f3c"},
		{Label: "device_coordinates", StaticValue: "12.5, -38.2"},
		{Label: "avg_snr", Type: "dynamic"},
		{Label: "rssi", Type: "dynamic"},
		{Label: "seq_number", Type: "dynamic"},
		{Label: "snr", Type: "dynamic"},
		{Label: "station", Type: "dynamic"},
		{Label: "station_coordinates", Type: "dynamic"},
	}
}

func TestExtractReturnsFirstTemplateWithDeviceAttribute(t *testing.T) {
	device := &models.Device{
		ID:        "abc123",
		Templates: []models.TemplateID{"1", "2", "3"},
		Attrs: map[models.TemplateID][]models.Attribute{
			"1": {{Label: "temperature", Type: "dynamic"}},
			"2": completeAttributes(),
			"3": {{Label: "device", StaticValue: "dev2"}},
		},
	}

	found, ok := Extract(device).(Found)
	require.True(t, ok)
	assert.Equal(t, "dev1", found.NetworkID)
	assert.Equal(t, "2", found.TemplateID)
	assert.Equal(t, "PAC1", found.Attributes["pac_number"])
	assert.Contains(t, found.Attributes, "station")
	assert.NotContains(t, found.Attributes, "temperature")
}

func TestExtractFollowsTemplateDeclarationOrder(t *testing.T) {
	device := &models.Device{
		Templates: []models.TemplateID{"9", "4"},
		Attrs: map[models.TemplateID][]models.Attribute{
			"4": {{Label: "device", StaticValue: "from-4"}},
			"9": {{Label: "device", StaticValue: "from-9"}},
		},
	}

	found, ok := Extract(device).(Found)
	require.True(t, ok)
	assert.Equal(t, "from-9", found.NetworkID)
}

func TestExtractSkipsDeviceAttributeWithoutStaticValue(t *testing.T) {
	device := &models.Device{
		Templates: []models.TemplateID{"1", "2"},
		Attrs: map[models.TemplateID][]models.Attribute{
			"1": {{Label: "device", Type: "dynamic"}},
			"2": {{Label: "device", StaticValue: "dev7"}},
		},
	}

	found, ok := Extract(device).(Found)
	require.True(t, ok)
	assert.Equal(t, "dev7", found.NetworkID)
	assert.Equal(t, "2", found.TemplateID)
}

func TestExtractReturnsNotFound(t *testing.T) {
	device := &models.Device{
		Templates: []models.TemplateID{"1"},
		Attrs: map[models.TemplateID][]models.Attribute{
			"1": {{Label: "temperature", StaticValue: 21.5}},
		},
	}

	assert.Equal(t, NotFound{}, Extract(device))
	assert.Equal(t, NotFound{}, Extract(&models.Device{}))
	assert.Equal(t, NotFound{}, Extract(nil))
}

func TestExtractFormatsNumericDeviceIDs(t *testing.T) {
	device := &models.Device{
		Templates: []models.TemplateID{"1"},
		Attrs: map[models.TemplateID][]models.Attribute{
			"1": {{Label: "device", StaticValue: float64(1234567)}},
		},
	}

	found, ok := Extract(device).(Found)
	require.True(t, ok)
	assert.Equal(t, "1234567", found.NetworkID)
}

func TestParseCompleteTemplate(t *testing.T) {
	found := Extract(&models.Device{
		Templates: []models.TemplateID{"1"},
		Attrs:     map[models.TemplateID][]models.Attribute{"1": completeAttributes()},
	}).(Found)

	tmpl, err := Parse(found.Attributes)
	require.NoError(t, err)
	assert.Equal(t, "dev1", tmpl.Device)
	assert.Equal(t, "PAC1", tmpl.PACNumber)
	assert.Equal(t, "api-user", tmpl.SigfoxUser)
	assert.Equal(t, "5a7f0f3c", tmpl.DeviceTypeID)
	assert.Equal(t, "", tmpl.Station)
	assert.Zero(t, tmpl.RSSI)
}

func TestParseRejectsIncompleteTemplate(t *testing.T) {
	attrs := Attributes{"device": "dev1", "pac_number": "PAC1"}

	tmpl, err := Parse(attrs)
	assert.Nil(t, tmpl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompleteTemplate))

	var incomplete *IncompleteTemplateError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{
		"product_certificate", "sigfox_user", "device_type_id", "device_coordinates",
		"avg_snr", "rssi", "seq_number", "snr", "station", "station_coordinates",
	}, incomplete.Missing)
}

func TestParseAcceptsNumericStrings(t *testing.T) {
	attrs := Attributes{}
	for _, label := range SigfoxSchema {
		attrs[label] = nil
	}
	attrs["rssi"] = "-112.5"
	attrs["snr"] = float64(12)

	tmpl, err := Parse(attrs)
	require.NoError(t, err)
	assert.Equal(t, -112.5, tmpl.RSSI)
	assert.Equal(t, float64(12), tmpl.SNR)
}

func TestBuildRegistration(t *testing.T) {
	registration := BuildRegistration(&DeviceTemplate{
		Device:             "dev1",
		PACNumber:          "PAC1",
		ProductCertificate: "P_0001",
	})

	assert.Equal(t, "dojot-sigfox-", registration.Prefix)
	require.Len(t, registration.IDs, 1)
	assert.Equal(t, "dev1", registration.IDs[0].ID)
	assert.Equal(t, "PAC1", registration.IDs[0].PAC)
	assert.Equal(t, "P_0001", registration.ProductCertificate)
}

func TestBuildEditionParsesCoordinates(t *testing.T) {
	edition := BuildEdition(&DeviceTemplate{
		Device:            "dev1",
		DeviceTypeID:      "type1",
		DeviceCoordinates: "12.5, -38.2",
	})

	assert.Equal(t, "dev1", edition.ID)
	assert.Equal(t, "type1", edition.DeviceTypeID)
	require.NotNil(t, edition.Lat)
	require.NotNil(t, edition.Lng)
	assert.Equal(t, "12.5", *edition.Lat)
	assert.Equal(t, "-38.2", *edition.Lng)
}

func TestBuildEditionOmitsUnparsableCoordinates(t *testing.T) {
	edition := BuildEdition(&DeviceTemplate{Device: "dev1", DeviceCoordinates: "invalid"})

	assert.Nil(t, edition.Lat)
	assert.Nil(t, edition.Lng)
}

func TestParseCoordinates(t *testing.T) {
	cases := []struct {
		input    string
		lat, lng string
		ok       bool
	}{
		{"12.5,-38.2", "12.5", "-38.2", true},
		{"  +1 ,  2.  ", "+1", "2.", true},
		{"\t.5,-.25\n", ".5", "-.25", true},
		{"12.5", "", "", false},
		{",", "", "", false},
		{"12.5;-38.2", "", "", false},
		{"a,b", "", "", false},
		{"", "", "", false},
	}

	for _, c := range cases {
		lat, lng, ok := ParseCoordinates(c.input)
		assert.Equal(t, c.ok, ok, c.input)
		assert.Equal(t, c.lat, lat, c.input)
		assert.Equal(t, c.lng, lng, c.input)
	}
}
