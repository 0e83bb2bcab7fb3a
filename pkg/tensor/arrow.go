package tensor

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/float16"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/mlservingstack/go-sdk/pkg/types"
)

const shapeMetadataKey = "shape"

// EncodeArrow serializes tensors into a single Arrow IPC stream: one record
// batch, one column per tensor, the original shape carried as field metadata.
// Columns of a record batch share a row count, so all tensors must hold the
// same number of elements.
func EncodeArrow(tensors []*Tensor) ([]byte, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("no tensors to encode")
	}

	rows := tensors[0].NumElements()
	fields := make([]arrow.Field, 0, len(tensors))
	for _, t := range tensors {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if t.NumElements() != rows {
			return nil, fmt.Errorf("tensor %s: %d elements, columnar batch requires %d", t.Name, t.NumElements(), rows)
		}
		arrowType, err := toArrowType(t.DataType)
		if err != nil {
			return nil, fmt.Errorf("tensor %s: %w", t.Name, err)
		}
		fields = append(fields, arrow.Field{
			Name:     t.Name,
			Type:     arrowType,
			Metadata: arrow.NewMetadata([]string{shapeMetadataKey}, []string{shapeToString(t.Shape)}),
		})
	}

	schema := arrow.NewSchema(fields, nil)
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for i, t := range tensors {
		appendColumn(builder.Field(i), t)
	}

	record := builder.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	if err := writer.Write(record); err != nil {
		return nil, fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close arrow stream: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeArrow parses the first record batch of an Arrow IPC stream back into
// tensors, restoring shapes from field metadata.
func DecodeArrow(data []byte) ([]*Tensor, error) {
	reader, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open arrow stream: %w", err)
	}
	defer reader.Release()

	if !reader.Next() {
		return nil, fmt.Errorf("arrow stream contains no record batch")
	}
	record := reader.Record()

	tensors := make([]*Tensor, 0, int(record.NumCols()))
	for i := 0; i < int(record.NumCols()); i++ {
		field := record.Schema().Field(i)
		dtype, err := fromArrowType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", field.Name, err)
		}

		shape := []int64{record.NumRows()}
		if idx := field.Metadata.FindKey(shapeMetadataKey); idx >= 0 {
			shape, err = parseShape(field.Metadata.Values()[idx])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", field.Name, err)
			}
		}

		t := &Tensor{Name: field.Name, DataType: dtype, Shape: shape}
		if err := readColumn(t, record.Column(i)); err != nil {
			return nil, err
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tensors = append(tensors, t)
	}
	return tensors, nil
}

func toArrowType(dtype types.DataType) (arrow.DataType, error) {
	switch dtype {
	case types.DataTypeFP16:
		return arrow.FixedWidthTypes.Float16, nil
	case types.DataTypeFP32:
		return arrow.PrimitiveTypes.Float32, nil
	case types.DataTypeFP64:
		return arrow.PrimitiveTypes.Float64, nil
	case types.DataTypeInt8:
		return arrow.PrimitiveTypes.Int8, nil
	case types.DataTypeInt16:
		return arrow.PrimitiveTypes.Int16, nil
	case types.DataTypeInt32:
		return arrow.PrimitiveTypes.Int32, nil
	case types.DataTypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case types.DataTypeUint8:
		return arrow.PrimitiveTypes.Uint8, nil
	case types.DataTypeUint16:
		return arrow.PrimitiveTypes.Uint16, nil
	case types.DataTypeUint32:
		return arrow.PrimitiveTypes.Uint32, nil
	case types.DataTypeUint64:
		return arrow.PrimitiveTypes.Uint64, nil
	case types.DataTypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case types.DataTypeString:
		return arrow.BinaryTypes.String, nil
	default:
		return nil, fmt.Errorf("no arrow mapping for data type %s", dtype)
	}
}

func fromArrowType(arrowType arrow.DataType) (types.DataType, error) {
	switch arrowType.ID() {
	case arrow.FLOAT16:
		return types.DataTypeFP16, nil
	case arrow.FLOAT32:
		return types.DataTypeFP32, nil
	case arrow.FLOAT64:
		return types.DataTypeFP64, nil
	case arrow.INT8:
		return types.DataTypeInt8, nil
	case arrow.INT16:
		return types.DataTypeInt16, nil
	case arrow.INT32:
		return types.DataTypeInt32, nil
	case arrow.INT64:
		return types.DataTypeInt64, nil
	case arrow.UINT8:
		return types.DataTypeUint8, nil
	case arrow.UINT16:
		return types.DataTypeUint16, nil
	case arrow.UINT32:
		return types.DataTypeUint32, nil
	case arrow.UINT64:
		return types.DataTypeUint64, nil
	case arrow.BOOL:
		return types.DataTypeBool, nil
	case arrow.STRING:
		return types.DataTypeString, nil
	default:
		return types.DataTypeUnknown, fmt.Errorf("unsupported arrow type %s", arrowType.Name())
	}
}

func appendColumn(builder array.Builder, t *Tensor) {
	switch b := builder.(type) {
	case *array.Float16Builder:
		narrowed := make([]float16.Num, len(t.Values.Fp16Values))
		for i, v := range t.Values.Fp16Values {
			narrowed[i] = float16.New(v)
		}
		b.AppendValues(narrowed, nil)
	case *array.Float32Builder:
		b.AppendValues(t.Values.Fp32Values, nil)
	case *array.Float64Builder:
		b.AppendValues(t.Values.Fp64Values, nil)
	case *array.Int8Builder:
		b.AppendValues(t.Values.Int8Values, nil)
	case *array.Int16Builder:
		b.AppendValues(t.Values.Int16Values, nil)
	case *array.Int32Builder:
		b.AppendValues(t.Values.Int32Values, nil)
	case *array.Int64Builder:
		b.AppendValues(t.Values.Int64Values, nil)
	case *array.Uint8Builder:
		b.AppendValues(t.Values.Uint8Values, nil)
	case *array.Uint16Builder:
		b.AppendValues(t.Values.Uint16Values, nil)
	case *array.Uint32Builder:
		b.AppendValues(t.Values.Uint32Values, nil)
	case *array.Uint64Builder:
		b.AppendValues(t.Values.Uint64Values, nil)
	case *array.BooleanBuilder:
		b.AppendValues(t.Values.BoolValues, nil)
	case *array.StringBuilder:
		b.AppendValues(t.Values.StringValues, nil)
	}
}

func readColumn(t *Tensor, column arrow.Array) error {
	switch col := column.(type) {
	case *array.Float16:
		t.Values.Fp16Values = make([]float32, col.Len())
		for i := range t.Values.Fp16Values {
			t.Values.Fp16Values[i] = col.Value(i).Float32()
		}
	case *array.Float32:
		t.Values.Fp32Values = append(t.Values.Fp32Values, col.Float32Values()...)
	case *array.Float64:
		t.Values.Fp64Values = append(t.Values.Fp64Values, col.Float64Values()...)
	case *array.Int8:
		t.Values.Int8Values = append(t.Values.Int8Values, col.Int8Values()...)
	case *array.Int16:
		t.Values.Int16Values = append(t.Values.Int16Values, col.Int16Values()...)
	case *array.Int32:
		t.Values.Int32Values = append(t.Values.Int32Values, col.Int32Values()...)
	case *array.Int64:
		t.Values.Int64Values = append(t.Values.Int64Values, col.Int64Values()...)
	case *array.Uint8:
		t.Values.Uint8Values = append(t.Values.Uint8Values, col.Uint8Values()...)
	case *array.Uint16:
		t.Values.Uint16Values = append(t.Values.Uint16Values, col.Uint16Values()...)
	case *array.Uint32:
		t.Values.Uint32Values = append(t.Values.Uint32Values, col.Uint32Values()...)
	case *array.Uint64:
		t.Values.Uint64Values = append(t.Values.Uint64Values, col.Uint64Values()...)
	case *array.Boolean:
		t.Values.BoolValues = make([]bool, col.Len())
		for i := range t.Values.BoolValues {
			t.Values.BoolValues[i] = col.Value(i)
		}
	case *array.String:
		t.Values.StringValues = make([]string, col.Len())
		for i := range t.Values.StringValues {
			t.Values.StringValues[i] = col.Value(i)
		}
	default:
		return fmt.Errorf("column %s: unsupported arrow array %T", t.Name, column)
	}
	return nil
}

func shapeToString(shape []int64) string {
	parts := make([]string, len(shape))
	for i, dim := range shape {
		parts[i] = strconv.FormatInt(dim, 10)
	}
	return strings.Join(parts, ",")
}

func parseShape(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	shape := make([]int64, len(parts))
	for i, part := range parts {
		dim, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid shape metadata %q", s)
		}
		shape[i] = dim
	}
	return shape, nil
}
