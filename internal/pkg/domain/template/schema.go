package template

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

//ErrIncompleteTemplate is returned when a Sigfox template lacks one or more mandatory attributes
var ErrIncompleteTemplate = errors.New("incomplete sigfox template")

//Attribute labels of the Sigfox template
const (
	LabelDevice             = DeviceLabel
	LabelPACNumber          = "pac_number"
	LabelProductCertificate = "product_certificate"
	LabelSigfoxUser         = "sigfox_user"
	LabelDeviceTypeID       = "device_type_id"
	LabelDeviceCoordinates  = "device_coordinates"
	LabelAvgSNR             = "avg_snr"
	LabelRSSI               = "rssi"
	LabelSeqNumber          = "seq_number"
	LabelSNR                = "snr"
	LabelStation            = "station"
	LabelStationCoordinates = "station_coordinates"
)

//Schema lists the attribute labels a template must declare to be complete
type Schema []string

//SigfoxSchema is the schema every Sigfox template is validated against
var SigfoxSchema = Schema{
	LabelDevice,
	LabelPACNumber,
	LabelProductCertificate,
	LabelSigfoxUser,
	LabelDeviceTypeID,
	LabelDeviceCoordinates,
	LabelAvgSNR,
	LabelRSSI,
	LabelSeqNumber,
	LabelSNR,
	LabelStation,
	LabelStationCoordinates,
}

//Missing returns the labels of the schema that are absent from attrs, in schema order
func (s Schema) Missing(attrs Attributes) []string {
	missing := []string{}
	for _, label := range s {
		if _, ok := attrs[label]; !ok {
			missing = append(missing, label)
		}
	}
	return missing
}

//IncompleteTemplateError lists the labels missing from a template
type IncompleteTemplateError struct {
	Missing []string
}

func (e *IncompleteTemplateError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrIncompleteTemplate.Error(), strings.Join(e.Missing, ", "))
}

//Unwrap allows errors.Is(err, ErrIncompleteTemplate)
func (e *IncompleteTemplateError) Unwrap() error {
	return ErrIncompleteTemplate
}

//DeviceTemplate is a complete, typed Sigfox template
type DeviceTemplate struct {
	Device             string
	PACNumber          string
	ProductCertificate string
	SigfoxUser         string
	DeviceTypeID       string
	DeviceCoordinates  string
	AvgSNR             float64
	RSSI               float64
	SeqNumber          float64
	SNR                float64
	Station            string
	StationCoordinates string
}

//Parse validates attrs against SigfoxSchema and copies them into a DeviceTemplate.
//Nothing is copied unless the template is complete.
func Parse(attrs Attributes) (*DeviceTemplate, error) {
	if missing := SigfoxSchema.Missing(attrs); len(missing) > 0 {
		return nil, &IncompleteTemplateError{Missing: missing}
	}

	return &DeviceTemplate{
		Device:             asString(attrs[LabelDevice]),
		PACNumber:          asString(attrs[LabelPACNumber]),
		ProductCertificate: asString(attrs[LabelProductCertificate]),
		SigfoxUser:         asString(attrs[LabelSigfoxUser]),
		DeviceTypeID:       asString(attrs[LabelDeviceTypeID]),
		DeviceCoordinates:  asString(attrs[LabelDeviceCoordinates]),
		AvgSNR:             asFloat(attrs[LabelAvgSNR]),
		RSSI:               asFloat(attrs[LabelRSSI]),
		SeqNumber:          asFloat(attrs[LabelSeqNumber]),
		SNR:                asFloat(attrs[LabelSNR]),
		Station:            asString(attrs[LabelStation]),
		StationCoordinates: asString(attrs[LabelStationCoordinates]),
	}, nil
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func asFloat(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f
		}
	}
	return 0
}
