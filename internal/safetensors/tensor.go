// Package safetensors reads and writes the safetensors container: an 8-byte
// little-endian header length, a JSON header, then raw little-endian tensor
// data.
package safetensors

import "fmt"

// DType names an element type as spelled in the header.
type DType string

const (
	F32 DType = "F32"
	I64 DType = "I64"
)

// metadataKey holds free-form string metadata in the header.
const metadataKey = "__metadata__"

// Tensor is a named dense tensor. F32 tensors use Data; I64 tensors use Ints.
type Tensor struct {
	Name  string
	DType DType
	Shape []int64
	Data  []float32
	Ints  []int64
}

// Float32 builds an F32 tensor.
func Float32(name string, shape []int64, data []float32) Tensor {
	return Tensor{Name: name, DType: F32, Shape: shape, Data: data}
}

// Int64 builds an I64 tensor.
func Int64(name string, shape []int64, data []int64) Tensor {
	return Tensor{Name: name, DType: I64, Shape: shape, Ints: data}
}

// Len returns the number of stored elements.
func (t *Tensor) Len() int {
	if t.isInt() {
		return len(t.Ints)
	}

	return len(t.Data)
}

func (t *Tensor) isInt() bool {
	return t.DType == I64
}

func dtypeBytes(dtype DType) (int, error) {
	switch dtype {
	case F32:
		return 4, nil
	case I64:
		return 8, nil
	default:
		return 0, fmt.Errorf("unsupported dtype %q", dtype)
	}
}
