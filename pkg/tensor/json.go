package tensor

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mlservingstack/go-sdk/pkg/types"
)

type jsonTensor struct {
	DataType types.DataType  `json:"dataType"`
	Shape    []int64         `json:"shape"`
	Values   json.RawMessage `json:"values"`
}

// EncodeJSON serializes tensors into the server's JSON body format, a
// document keyed by tensor name.
func EncodeJSON(tensors []*Tensor) ([]byte, error) {
	doc := make(map[string]jsonTensor, len(tensors))
	for _, t := range tensors {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		values, err := marshalValues(t)
		if err != nil {
			return nil, err
		}
		doc[t.Name] = jsonTensor{DataType: t.DataType, Shape: t.Shape, Values: values}
	}
	return json.Marshal(doc)
}

// DecodeJSON parses a JSON tensor document. Tensors are returned ordered by
// name so callers get a stable view of the response.
func DecodeJSON(data []byte) ([]*Tensor, error) {
	var doc map[string]jsonTensor
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tensor document: %w", err)
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	tensors := make([]*Tensor, 0, len(doc))
	for _, name := range names {
		entry := doc[name]
		t := &Tensor{Name: name, DataType: entry.DataType, Shape: entry.Shape}
		if err := unmarshalValues(t, entry.Values); err != nil {
			return nil, err
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tensors = append(tensors, t)
	}
	return tensors, nil
}

func marshalValues(t *Tensor) (json.RawMessage, error) {
	switch t.DataType {
	case types.DataTypeFP16:
		return json.Marshal(t.Values.Fp16Values)
	case types.DataTypeFP32:
		return json.Marshal(t.Values.Fp32Values)
	case types.DataTypeFP64:
		return json.Marshal(t.Values.Fp64Values)
	case types.DataTypeInt8:
		return json.Marshal(t.Values.Int8Values)
	case types.DataTypeInt16:
		return json.Marshal(t.Values.Int16Values)
	case types.DataTypeInt32:
		return json.Marshal(t.Values.Int32Values)
	case types.DataTypeInt64:
		return json.Marshal(t.Values.Int64Values)
	case types.DataTypeUint8:
		// json encodes []uint8 as base64, keep numeric arrays on the wire
		widened := make([]uint16, len(t.Values.Uint8Values))
		for i, v := range t.Values.Uint8Values {
			widened[i] = uint16(v)
		}
		return json.Marshal(widened)
	case types.DataTypeUint16:
		return json.Marshal(t.Values.Uint16Values)
	case types.DataTypeUint32:
		return json.Marshal(t.Values.Uint32Values)
	case types.DataTypeUint64:
		return json.Marshal(t.Values.Uint64Values)
	case types.DataTypeBool:
		return json.Marshal(t.Values.BoolValues)
	case types.DataTypeString:
		return json.Marshal(t.Values.StringValues)
	default:
		return nil, fmt.Errorf("tensor %s: unsupported data type %s", t.Name, t.DataType)
	}
}

func unmarshalValues(t *Tensor, raw json.RawMessage) error {
	var err error
	switch t.DataType {
	case types.DataTypeFP16:
		err = json.Unmarshal(raw, &t.Values.Fp16Values)
	case types.DataTypeFP32:
		err = json.Unmarshal(raw, &t.Values.Fp32Values)
	case types.DataTypeFP64:
		err = json.Unmarshal(raw, &t.Values.Fp64Values)
	case types.DataTypeInt8:
		err = json.Unmarshal(raw, &t.Values.Int8Values)
	case types.DataTypeInt16:
		err = json.Unmarshal(raw, &t.Values.Int16Values)
	case types.DataTypeInt32:
		err = json.Unmarshal(raw, &t.Values.Int32Values)
	case types.DataTypeInt64:
		err = json.Unmarshal(raw, &t.Values.Int64Values)
	case types.DataTypeUint8:
		var widened []uint16
		if err = json.Unmarshal(raw, &widened); err == nil {
			t.Values.Uint8Values = make([]uint8, len(widened))
			for i, v := range widened {
				t.Values.Uint8Values[i] = uint8(v)
			}
		}
	case types.DataTypeUint16:
		err = json.Unmarshal(raw, &t.Values.Uint16Values)
	case types.DataTypeUint32:
		err = json.Unmarshal(raw, &t.Values.Uint32Values)
	case types.DataTypeUint64:
		err = json.Unmarshal(raw, &t.Values.Uint64Values)
	case types.DataTypeBool:
		err = json.Unmarshal(raw, &t.Values.BoolValues)
	case types.DataTypeString:
		err = json.Unmarshal(raw, &t.Values.StringValues)
	default:
		return fmt.Errorf("tensor %s: unsupported data type %s", t.Name, t.DataType)
	}
	if err != nil {
		return fmt.Errorf("tensor %s: failed to parse values: %w", t.Name, err)
	}
	return nil
}
