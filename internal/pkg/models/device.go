package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

//TemplateID identifies a device template in the platform. The device manager
//sends these as numbers, but they are also accepted as strings.
type TemplateID string

//UnmarshalJSON accepts both a JSON number and a JSON string
func (id *TemplateID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = TemplateID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("template id must be a number or a string: %s", string(data))
	}

	*id = TemplateID(n.String())
	return nil
}

//Attribute is a single attribute declaration within a device template
type Attribute struct {
	Label       string      `json:"label"`
	Type        string      `json:"type,omitempty"`
	ValueType   string      `json:"value_type,omitempty"`
	StaticValue interface{} `json:"static_value,omitempty"`
}

//HasStaticValue reports whether the attribute carries a static value
func (a Attribute) HasStaticValue() bool {
	return a.StaticValue != nil
}

//Device is a platform device record as delivered by the device manager
type Device struct {
	ID        string                     `json:"id"`
	Label     string                     `json:"label,omitempty"`
	Templates []TemplateID               `json:"templates"`
	Attrs     map[TemplateID][]Attribute `json:"attrs"`
}

//TemplateIDs returns the template ids of the device as plain strings
func (d *Device) TemplateIDs() []string {
	ids := make([]string, 0, len(d.Templates))
	for _, t := range d.Templates {
		ids = append(ids, string(t))
	}
	return ids
}

//EventMeta carries the metadata of a lifecycle event
type EventMeta struct {
	Service string `json:"service"`
}

//DeviceEvent is a lifecycle notification (device.create, device.update, device.remove)
type DeviceEvent struct {
	Event string    `json:"event"`
	Meta  EventMeta `json:"meta"`
	Data  Device    `json:"data"`
}

//Tenant returns the tenant that owns the device in the event
func (e *DeviceEvent) Tenant() string {
	return e.Meta.Service
}
