package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mlservingstack/go-sdk/pkg/types"
)

func TestEncodeDecodeArrow(t *testing.T) {
	in := []*Tensor{
		{Name: "scores", DataType: types.DataTypeFP32, Shape: []int64{2, 2}, Values: Values{Fp32Values: []float32{0.25, 0.5, 0.75, 1}}},
		{Name: "counts", DataType: types.DataTypeInt64, Shape: []int64{4}, Values: Values{Int64Values: []int64{1, 2, 3, 4}}},
		{Name: "names", DataType: types.DataTypeString, Shape: []int64{4}, Values: Values{StringValues: []string{"a", "b", "c", "d"}}},
	}

	data, err := EncodeArrow(in)
	assert.NoError(t, err)
	assert.NotEmpty(t, data)

	out, err := DecodeArrow(data)
	assert.NoError(t, err)
	assert.Len(t, out, 3)

	assert.Equal(t, "scores", out[0].Name)
	assert.Equal(t, []int64{2, 2}, out[0].Shape, "shape must survive the columnar round trip")
	assert.Equal(t, in[0].Values.Fp32Values, out[0].Values.Fp32Values)
	assert.Equal(t, in[1].Values.Int64Values, out[1].Values.Int64Values)
	assert.Equal(t, in[2].Values.StringValues, out[2].Values.StringValues)
}

func TestEncodeDecodeArrowFloat16AndBool(t *testing.T) {
	in := []*Tensor{
		{Name: "half", DataType: types.DataTypeFP16, Shape: []int64{2}, Values: Values{Fp16Values: []float32{1.5, -2}}},
		{Name: "mask", DataType: types.DataTypeBool, Shape: []int64{2}, Values: Values{BoolValues: []bool{true, false}}},
	}

	data, err := EncodeArrow(in)
	assert.NoError(t, err)

	out, err := DecodeArrow(data)
	assert.NoError(t, err)
	assert.Equal(t, in[0].Values.Fp16Values, out[0].Values.Fp16Values)
	assert.Equal(t, in[1].Values.BoolValues, out[1].Values.BoolValues)
}

func TestEncodeArrowRejectsUnevenColumns(t *testing.T) {
	in := []*Tensor{
		{Name: "a", DataType: types.DataTypeInt32, Shape: []int64{2}, Values: Values{Int32Values: []int32{1, 2}}},
		{Name: "b", DataType: types.DataTypeInt32, Shape: []int64{3}, Values: Values{Int32Values: []int32{1, 2, 3}}},
	}

	_, err := EncodeArrow(in)
	assert.Error(t, err)
}

func TestDecodeArrowRejectsGarbage(t *testing.T) {
	_, err := DecodeArrow([]byte("not an arrow stream"))
	assert.Error(t, err)
}
