package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DataType declares the element type of a tensor exchanged with the
// serving server. Wire names follow the server's configuration schema.
type DataType uint8

const (
	DataTypeUnknown DataType = iota
	DataTypeFP16
	DataTypeFP32
	DataTypeFP64
	DataTypeInt8
	DataTypeInt16
	DataTypeInt32
	DataTypeInt64
	DataTypeUint8
	DataTypeUint16
	DataTypeUint32
	DataTypeUint64
	DataTypeBool
	DataTypeString
)

var (
	dataTypeName = map[uint8]string{
		0:  "UNKNOWN",
		1:  "FLOAT16",
		2:  "FLOAT32",
		3:  "FLOAT64",
		4:  "INT8",
		5:  "INT16",
		6:  "INT32",
		7:  "INT64",
		8:  "UINT8",
		9:  "UINT16",
		10: "UINT32",
		11: "UINT64",
		12: "BOOL",
		13: "STRING",
	}

	dataTypeValue = map[string]DataType{
		"UNKNOWN": DataTypeUnknown,
		"FLOAT16": DataTypeFP16,
		"FLOAT32": DataTypeFP32,
		"FLOAT64": DataTypeFP64,
		"INT8":    DataTypeInt8,
		"INT16":   DataTypeInt16,
		"INT32":   DataTypeInt32,
		"INT64":   DataTypeInt64,
		"UINT8":   DataTypeUint8,
		"UINT16":  DataTypeUint16,
		"UINT32":  DataTypeUint32,
		"UINT64":  DataTypeUint64,
		"BOOL":    DataTypeBool,
		"STRING":  DataTypeString,
	}

	dataTypeSize = map[DataType]int{
		DataTypeFP16:   2,
		DataTypeFP32:   4,
		DataTypeFP64:   8,
		DataTypeInt8:   1,
		DataTypeInt16:  2,
		DataTypeInt32:  4,
		DataTypeInt64:  8,
		DataTypeUint8:  1,
		DataTypeUint16: 2,
		DataTypeUint32: 4,
		DataTypeUint64: 8,
		DataTypeBool:   1,
	}
)

// String allows DataType to implement fmt.Stringer
func (d DataType) String() string {
	return dataTypeName[uint8(d)]
}

// SizeBytes returns the number of bytes one element occupies in the raw
// encoding. STRING has no fixed width and returns -1.
func (d DataType) SizeBytes() int {
	size, ok := dataTypeSize[d]
	if !ok {
		return -1
	}
	return size
}

// FixedWidth reports whether elements of this type have a fixed byte width.
func (d DataType) FixedWidth() bool {
	_, ok := dataTypeSize[d]
	return ok
}

// MarshalJSON marshals the enum as a quoted json string
func (d DataType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON unmarshals a quoted json string to the enum value
func (d *DataType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseDataType(name)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDataType maps a wire name like "FLOAT32" to its DataType value
func ParseDataType(name string) (DataType, error) {
	dtype, ok := dataTypeValue[strings.ToUpper(name)]
	if !ok {
		return DataTypeUnknown, fmt.Errorf("unknown data type: %s", name)
	}
	return dtype, nil
}
