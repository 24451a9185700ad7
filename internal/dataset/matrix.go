package dataset

import (
	"fmt"

	"github.com/example/go-dialogprep/internal/safetensors"
	"gorgonia.org/tensor"
)

// Tensor names inside a split file.
const (
	TensorX = "x"
	TensorY = "y"
)

// Dataset holds the encoded input matrix X and, when targets exist, the
// target matrix Y. Both are rows x width int64 matrices and are not
// modified after construction.
type Dataset struct {
	X *tensor.Dense
	Y *tensor.Dense
}

// NewMatrix wraps row-major ids as a rows x cols int64 matrix.
func NewMatrix(rows, cols int, ids []int64) (*tensor.Dense, error) {
	if len(ids) != rows*cols {
		return nil, fmt.Errorf("dataset: %d ids do not fill %dx%d", len(ids), rows, cols)
	}

	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(ids)), nil
}

// Rows returns the number of rows in X.
func (d *Dataset) Rows() int {
	return d.X.Shape()[0]
}

// Row returns a copy of row i of m.
func Row(m *tensor.Dense, i int) []int64 {
	cols := m.Shape()[1]
	ids := m.Data().([]int64)

	return append([]int64(nil), ids[i*cols:(i+1)*cols]...)
}

// Save writes X and, if present, Y as I64 tensors.
func (d *Dataset) Save(path string, metadata map[string]string) error {
	tensors := []safetensors.Tensor{matrixTensor(TensorX, d.X)}
	if d.Y != nil {
		tensors = append(tensors, matrixTensor(TensorY, d.Y))
	}

	return safetensors.WriteFile(path, tensors, metadata)
}

func matrixTensor(name string, m *tensor.Dense) safetensors.Tensor {
	shape := m.Shape()
	return safetensors.Int64(name, []int64{int64(shape[0]), int64(shape[1])}, m.Data().([]int64))
}

// Load reads a split file and keeps the first maxEncLen columns of X and
// the first maxDecLen columns of Y. A limit <= 0 or wider than the stored
// matrix keeps every column.
func Load(path string, maxEncLen, maxDecLen int) (*Dataset, error) {
	store, err := safetensors.OpenStore(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	x, err := loadMatrix(store, TensorX, maxEncLen)
	if err != nil {
		return nil, fmt.Errorf("dataset: load %s: %w", path, err)
	}

	d := &Dataset{X: x}

	if store.Has(TensorY) {
		d.Y, err = loadMatrix(store, TensorY, maxDecLen)
		if err != nil {
			return nil, fmt.Errorf("dataset: load %s: %w", path, err)
		}
	}

	return d, nil
}

func loadMatrix(store *safetensors.Store, name string, limit int) (*tensor.Dense, error) {
	t, err := store.Tensor(name)
	if err != nil {
		return nil, err
	}

	if t.DType != safetensors.I64 {
		return nil, fmt.Errorf("tensor %q has dtype %s, want integer", name, t.DType)
	}

	if len(t.Shape) != 2 {
		return nil, fmt.Errorf("tensor %q has shape %v, want 2D", name, t.Shape)
	}

	m, err := NewMatrix(int(t.Shape[0]), int(t.Shape[1]), t.Ints)
	if err != nil {
		return nil, err
	}

	return sliceColumns(m, limit)
}

// sliceColumns returns m[:, :limit] as a standalone matrix.
func sliceColumns(m *tensor.Dense, limit int) (*tensor.Dense, error) {
	cols := m.Shape()[1]
	if limit <= 0 || limit >= cols {
		return m, nil
	}

	view, err := m.Slice(nil, tensor.S(0, limit))
	if err != nil {
		return nil, fmt.Errorf("slice columns: %w", err)
	}

	out, ok := view.Materialize().(*tensor.Dense)
	if !ok {
		return nil, fmt.Errorf("slice columns: unexpected view type %T", view)
	}

	return out, nil
}
