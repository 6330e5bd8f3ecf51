package models

//SigfoxDeviceID is a device to be registered together with its porting authorization code
type SigfoxDeviceID struct {
	ID  string `json:"id"`
	PAC string `json:"pac"`
}

//DeviceRegistration is the body of a Sigfox bulk device creation request
type DeviceRegistration struct {
	Prefix             string           `json:"prefix"`
	IDs                []SigfoxDeviceID `json:"ids"`
	ProductCertificate string           `json:"productCertificate"`
}

//DeviceEdition changes a single Sigfox device. Optional fields are left out when nil.
type DeviceEdition struct {
	ID                 string  `json:"id"`
	Name               *string `json:"name,omitempty"`
	Lat                *string `json:"lat,omitempty"`
	Lng                *string `json:"lng,omitempty"`
	DeviceTypeID       string  `json:"deviceTypeId,omitempty"`
	ProductCertificate string  `json:"productCertificate,omitempty"`
}
