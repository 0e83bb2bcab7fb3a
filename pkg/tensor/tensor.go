package tensor

import (
	"fmt"

	"github.com/mlservingstack/go-sdk/pkg/types"
)

// Values holds the elements of one tensor. Exactly one slice is populated,
// matching the tensor's declared data type. FLOAT16 elements are held as
// float32 in memory and narrowed at encode time.
type Values struct {
	Fp16Values   []float32
	Fp32Values   []float32
	Fp64Values   []float64
	Int8Values   []int8
	Int16Values  []int16
	Int32Values  []int32
	Int64Values  []int64
	Uint8Values  []uint8
	Uint16Values []uint16
	Uint32Values []uint32
	Uint64Values []uint64
	BoolValues   []bool
	StringValues []string
}

// Tensor is a named, typed, shaped value exchanged with the serving server.
type Tensor struct {
	Name     string
	DataType types.DataType
	Shape    []int64
	Values   Values
}

// NumElements returns the element count implied by the shape.
func (t *Tensor) NumElements() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := int64(1)
	for _, dim := range t.Shape {
		n *= dim
	}
	return int(n)
}

// Len returns the number of populated elements.
func (t *Tensor) Len() int {
	switch t.DataType {
	case types.DataTypeFP16:
		return len(t.Values.Fp16Values)
	case types.DataTypeFP32:
		return len(t.Values.Fp32Values)
	case types.DataTypeFP64:
		return len(t.Values.Fp64Values)
	case types.DataTypeInt8:
		return len(t.Values.Int8Values)
	case types.DataTypeInt16:
		return len(t.Values.Int16Values)
	case types.DataTypeInt32:
		return len(t.Values.Int32Values)
	case types.DataTypeInt64:
		return len(t.Values.Int64Values)
	case types.DataTypeUint8:
		return len(t.Values.Uint8Values)
	case types.DataTypeUint16:
		return len(t.Values.Uint16Values)
	case types.DataTypeUint32:
		return len(t.Values.Uint32Values)
	case types.DataTypeUint64:
		return len(t.Values.Uint64Values)
	case types.DataTypeBool:
		return len(t.Values.BoolValues)
	case types.DataTypeString:
		return len(t.Values.StringValues)
	default:
		return 0
	}
}

// Validate checks that the tensor is well formed before encoding.
func (t *Tensor) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tensor name is required")
	}
	if t.DataType == types.DataTypeUnknown {
		return fmt.Errorf("tensor %s: data type is required", t.Name)
	}
	if len(t.Shape) == 0 {
		return fmt.Errorf("tensor %s: shape is required", t.Name)
	}
	for _, dim := range t.Shape {
		if dim <= 0 {
			return fmt.Errorf("tensor %s: invalid shape dimension %d", t.Name, dim)
		}
	}
	if got, want := t.Len(), t.NumElements(); got != want {
		return fmt.Errorf("tensor %s: %d values for shape expecting %d", t.Name, got, want)
	}
	return nil
}
