package tensor

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/mlservingstack/go-sdk/pkg/types"
)

// EncodeRaw packs the tensor's elements into little-endian bytes, the layout
// the server expects for the RAW body parts. STRING tensors have no fixed
// width and cannot use this encoding.
func EncodeRaw(t *Tensor) ([]byte, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if !t.DataType.FixedWidth() {
		return nil, fmt.Errorf("tensor %s: %s is not raw-encodable", t.Name, t.DataType)
	}

	size := t.DataType.SizeBytes()
	out := make([]byte, t.Len()*size)

	switch t.DataType {
	case types.DataTypeFP16:
		for i, v := range t.Values.Fp16Values {
			binary.LittleEndian.PutUint16(out[i*size:], float16.Fromfloat32(v).Bits())
		}
	case types.DataTypeFP32:
		for i, v := range t.Values.Fp32Values {
			binary.LittleEndian.PutUint32(out[i*size:], math.Float32bits(v))
		}
	case types.DataTypeFP64:
		for i, v := range t.Values.Fp64Values {
			binary.LittleEndian.PutUint64(out[i*size:], math.Float64bits(v))
		}
	case types.DataTypeInt8:
		for i, v := range t.Values.Int8Values {
			out[i] = byte(v)
		}
	case types.DataTypeInt16:
		for i, v := range t.Values.Int16Values {
			binary.LittleEndian.PutUint16(out[i*size:], uint16(v))
		}
	case types.DataTypeInt32:
		for i, v := range t.Values.Int32Values {
			binary.LittleEndian.PutUint32(out[i*size:], uint32(v))
		}
	case types.DataTypeInt64:
		for i, v := range t.Values.Int64Values {
			binary.LittleEndian.PutUint64(out[i*size:], uint64(v))
		}
	case types.DataTypeUint8:
		copy(out, t.Values.Uint8Values)
	case types.DataTypeUint16:
		for i, v := range t.Values.Uint16Values {
			binary.LittleEndian.PutUint16(out[i*size:], v)
		}
	case types.DataTypeUint32:
		for i, v := range t.Values.Uint32Values {
			binary.LittleEndian.PutUint32(out[i*size:], v)
		}
	case types.DataTypeUint64:
		for i, v := range t.Values.Uint64Values {
			binary.LittleEndian.PutUint64(out[i*size:], v)
		}
	case types.DataTypeBool:
		for i, v := range t.Values.BoolValues {
			if v {
				out[i] = 1
			}
		}
	}
	return out, nil
}

// DecodeRaw rebuilds a tensor from little-endian bytes given its declared
// type and shape.
func DecodeRaw(name string, dtype types.DataType, shape []int64, data []byte) (*Tensor, error) {
	if !dtype.FixedWidth() {
		return nil, fmt.Errorf("tensor %s: %s is not raw-decodable", name, dtype)
	}

	t := &Tensor{Name: name, DataType: dtype, Shape: shape}
	size := dtype.SizeBytes()
	n := t.NumElements()
	if len(data) != n*size {
		return nil, fmt.Errorf("tensor %s: %d bytes for shape expecting %d", name, len(data), n*size)
	}

	switch dtype {
	case types.DataTypeFP16:
		t.Values.Fp16Values = make([]float32, n)
		for i := range t.Values.Fp16Values {
			t.Values.Fp16Values[i] = float16.Frombits(binary.LittleEndian.Uint16(data[i*size:])).Float32()
		}
	case types.DataTypeFP32:
		t.Values.Fp32Values = make([]float32, n)
		for i := range t.Values.Fp32Values {
			t.Values.Fp32Values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*size:]))
		}
	case types.DataTypeFP64:
		t.Values.Fp64Values = make([]float64, n)
		for i := range t.Values.Fp64Values {
			t.Values.Fp64Values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*size:]))
		}
	case types.DataTypeInt8:
		t.Values.Int8Values = make([]int8, n)
		for i := range t.Values.Int8Values {
			t.Values.Int8Values[i] = int8(data[i])
		}
	case types.DataTypeInt16:
		t.Values.Int16Values = make([]int16, n)
		for i := range t.Values.Int16Values {
			t.Values.Int16Values[i] = int16(binary.LittleEndian.Uint16(data[i*size:]))
		}
	case types.DataTypeInt32:
		t.Values.Int32Values = make([]int32, n)
		for i := range t.Values.Int32Values {
			t.Values.Int32Values[i] = int32(binary.LittleEndian.Uint32(data[i*size:]))
		}
	case types.DataTypeInt64:
		t.Values.Int64Values = make([]int64, n)
		for i := range t.Values.Int64Values {
			t.Values.Int64Values[i] = int64(binary.LittleEndian.Uint64(data[i*size:]))
		}
	case types.DataTypeUint8:
		t.Values.Uint8Values = make([]uint8, n)
		copy(t.Values.Uint8Values, data)
	case types.DataTypeUint16:
		t.Values.Uint16Values = make([]uint16, n)
		for i := range t.Values.Uint16Values {
			t.Values.Uint16Values[i] = binary.LittleEndian.Uint16(data[i*size:])
		}
	case types.DataTypeUint32:
		t.Values.Uint32Values = make([]uint32, n)
		for i := range t.Values.Uint32Values {
			t.Values.Uint32Values[i] = binary.LittleEndian.Uint32(data[i*size:])
		}
	case types.DataTypeUint64:
		t.Values.Uint64Values = make([]uint64, n)
		for i := range t.Values.Uint64Values {
			t.Values.Uint64Values[i] = binary.LittleEndian.Uint64(data[i*size:])
		}
	case types.DataTypeBool:
		t.Values.BoolValues = make([]bool, n)
		for i := range t.Values.BoolValues {
			t.Values.BoolValues[i] = data[i] != 0
		}
	}
	return t, nil
}
