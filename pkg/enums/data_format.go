package enum

import (
	"encoding/json"
	"fmt"
	"strings"
)

type DataFormat uint8

const (
	DataFormatUnknown DataFormat = iota
	DataFormatJSON
	DataFormatRaw
	DataFormatArrow
)

var (
	dataFormatName = map[uint8]string{
		0: "UNKNOWN",
		1: "JSON",
		2: "RAW",
		3: "ARROW",
	}

	dataFormatValue = map[string]DataFormat{
		"UNKNOWN": DataFormatUnknown,
		"JSON":    DataFormatJSON,
		"RAW":     DataFormatRaw,
		"ARROW":   DataFormatArrow,
	}
)

// String allows DataFormat to implement fmt.Stringer
func (e DataFormat) String() string {
	return dataFormatName[uint8(e)]
}

// EnumIndex returns the integer representation of the DataFormat.
func (e DataFormat) EnumIndex() uint8 {
	return uint8(e)
}

// MarshalJSON marshals the enum as a quoted json string
func (e DataFormat) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON unmarshals a quoted json string to the enum value
func (e *DataFormat) UnmarshalJSON(data []byte) error {
	var format string
	if err := json.Unmarshal(data, &format); err != nil {
		return err
	}
	parsed, err := ParseDataFormat(format)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// ParseDataFormat maps a wire name like "JSON" to its DataFormat value
func ParseDataFormat(name string) (DataFormat, error) {
	format, ok := dataFormatValue[strings.ToUpper(name)]
	if !ok {
		return DataFormatUnknown, fmt.Errorf("unknown data format: %s", name)
	}
	return format, nil
}
