// Package series provides typed, immutable data columns with an Apache
// Arrow backend. The cleaned track table stores every column as a Series.
package series

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Series represents a named, typed data column backed by an Arrow array.
// Supported element types: string, int64, float64, bool, arrow.Date32.
type Series[T any] struct {
	name  string
	array arrow.Array
}

// New creates a Series from a slice of values. It panics on an unsupported
// element type; NewSafe returns the error instead.
func New[T any](name string, values []T, mem memory.Allocator) *Series[T] {
	s, err := NewSafe(name, values, mem)
	if err != nil {
		panic(err)
	}
	return s
}

// NewSafe creates a Series from a slice of values, reporting unsupported
// element types as an error.
func NewSafe[T any](name string, values []T, mem memory.Allocator) (*Series[T], error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}

	var arr arrow.Array

	switch v := any(values).(type) {
	case []string:
		builder := array.NewStringBuilder(mem)
		defer builder.Release()
		for _, val := range v {
			builder.Append(val)
		}
		arr = builder.NewArray()
	case []int64:
		builder := array.NewInt64Builder(mem)
		defer builder.Release()
		for _, val := range v {
			builder.Append(val)
		}
		arr = builder.NewArray()
	case []float64:
		builder := array.NewFloat64Builder(mem)
		defer builder.Release()
		for _, val := range v {
			builder.Append(val)
		}
		arr = builder.NewArray()
	case []bool:
		builder := array.NewBooleanBuilder(mem)
		defer builder.Release()
		for _, val := range v {
			builder.Append(val)
		}
		arr = builder.NewArray()
	case []arrow.Date32:
		builder := array.NewDate32Builder(mem)
		defer builder.Release()
		for _, val := range v {
			builder.Append(val)
		}
		arr = builder.NewArray()
	default:
		return nil, fmt.Errorf("series: unsupported element type %T", values)
	}

	return &Series[T]{name: name, array: arr}, nil
}

// Name returns the column name.
func (s *Series[T]) Name() string {
	return s.name
}

// Len returns the number of values in the series.
func (s *Series[T]) Len() int {
	return s.array.Len()
}

// Value returns the value at the given index; the zero value when the index
// is out of range.
func (s *Series[T]) Value(index int) T {
	var result T
	if index < 0 || index >= s.array.Len() {
		return result
	}

	switch arr := s.array.(type) {
	case *array.String:
		if v, ok := any(&result).(*string); ok {
			*v = arr.Value(index)
		}
	case *array.Int64:
		if v, ok := any(&result).(*int64); ok {
			*v = arr.Value(index)
		}
	case *array.Float64:
		if v, ok := any(&result).(*float64); ok {
			*v = arr.Value(index)
		}
	case *array.Boolean:
		if v, ok := any(&result).(*bool); ok {
			*v = arr.Value(index)
		}
	case *array.Date32:
		if v, ok := any(&result).(*arrow.Date32); ok {
			*v = arr.Value(index)
		}
	}

	return result
}

// Values returns the column data as a Go slice.
func (s *Series[T]) Values() []T {
	result := make([]T, s.array.Len())
	for i := range result {
		result[i] = s.Value(i)
	}
	return result
}

// DataType returns the Arrow data type of the backing array.
func (s *Series[T]) DataType() arrow.DataType {
	return s.array.DataType()
}

// IsNull reports whether the value at index is null.
func (s *Series[T]) IsNull(index int) bool {
	return s.array.IsNull(index)
}

// String returns a short description of the series.
func (s *Series[T]) String() string {
	return fmt.Sprintf("Series[%s]: %s (len=%d)", s.array.DataType(), s.name, s.Len())
}

// Release releases the underlying Arrow memory.
func (s *Series[T]) Release() {
	if s.array != nil {
		s.array.Release()
		s.array = nil
	}
}
