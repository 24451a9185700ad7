package safetensors

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestWriteFile_RoundTripMixedDTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.safetensors")

	x := Int64("x", []int64{2, 3}, []int64{2, 4, 3, 2, 1, 3})
	emb := Float32("embedding", []int64{2, 2}, []float32{0, 0, 1.5, -0.25})
	meta := map[string]string{"run_id": "abc"}

	if err := WriteFile(path, []Tensor{x, emb}, meta); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v; want 0644", info.Mode().Perm())
	}

	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	if got := store.Names(); !reflect.DeepEqual(got, []string{"embedding", "x"}) {
		t.Errorf("Names = %v", got)
	}

	if store.Metadata()["run_id"] != "abc" {
		t.Errorf("Metadata = %v", store.Metadata())
	}

	gotX, err := store.TensorWithShape("x", []int64{2, 3})
	if err != nil {
		t.Fatalf("Tensor x: %v", err)
	}

	if gotX.DType != I64 || !reflect.DeepEqual(gotX.Ints, x.Ints) {
		t.Errorf("x = %+v; want %+v", gotX, x)
	}

	gotE, err := store.Tensor("embedding")
	if err != nil {
		t.Fatalf("Tensor embedding: %v", err)
	}

	if gotE.DType != F32 || !reflect.DeepEqual(gotE.Data, emb.Data) {
		t.Errorf("embedding = %+v; want %+v", gotE, emb)
	}
}

func TestWriteFile_NoTempLeftover(t *testing.T) {
	dir := t.TempDir()

	if err := WriteFile(filepath.Join(dir, "a.safetensors"), []Tensor{Int64("x", []int64{1}, []int64{7})}, nil); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if len(entries) != 1 {
		t.Errorf("dir has %d entries; want 1", len(entries))
	}
}

func TestEncodeTensors_Errors(t *testing.T) {
	tests := []struct {
		name    string
		tensors []Tensor
		want    string
	}{
		{"none", nil, "no tensors"},
		{"empty name", []Tensor{Int64(" ", []int64{1}, []int64{1})}, "must not be empty"},
		{"reserved name", []Tensor{Int64(metadataKey, []int64{1}, []int64{1})}, "reserved"},
		{"duplicate", []Tensor{Int64("a", []int64{1}, []int64{1}), Float32("a", []int64{1}, []float32{1})}, "duplicate"},
		{"shape mismatch", []Tensor{Int64("a", []int64{2, 2}, []int64{1, 2, 3})}, "expects 4 elements"},
		{"unknown dtype", []Tensor{{Name: "a", DType: "F16", Shape: []int64{1}, Data: []float32{1}}}, "cannot write"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeTensors(tt.tensors, nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v; want containing %q", err, tt.want)
			}
		})
	}
}

func TestOpenStoreFromBytes_Errors(t *testing.T) {
	header := func(s string) []byte {
		b := make([]byte, 8, 8+len(s))
		binary.LittleEndian.PutUint64(b, uint64(len(s)))
		return append(b, s...)
	}

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"too short", []byte{1, 2}, "too short"},
		{"header overflow", header("{}")[:9], "exceeds file size"},
		{"bad json", header("{"), "parse header"},
		{"only metadata", header(`{"__metadata__":{"a":"b"}}`), "no tensors"},
		{"unsupported dtype", header(`{"a":{"dtype":"U8","shape":[1],"data_offsets":[0,1]}}`), "unsupported dtype"},
		{"half precision", header(`{"a":{"dtype":"F16","shape":[1],"data_offsets":[0,2]}}`), "unsupported dtype"},
		{"data beyond file", header(`{"a":{"dtype":"I64","shape":[1],"data_offsets":[0,8]}}`), "exceeds file size"},
		{"short data", append(header(`{"a":{"dtype":"I64","shape":[2],"data_offsets":[0,8]}}`), make([]byte, 8)...), "needs 16 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenStoreFromBytes(tt.data)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v; want containing %q", err, tt.want)
			}
		})
	}
}

func TestStore_TensorNotFoundAndShapeMismatch(t *testing.T) {
	blob, err := EncodeTensors([]Tensor{Int64("x", []int64{2}, []int64{1, 2})}, nil)
	if err != nil {
		t.Fatalf("EncodeTensors: %v", err)
	}

	store, err := OpenStoreFromBytes(blob)
	if err != nil {
		t.Fatalf("OpenStoreFromBytes: %v", err)
	}

	if _, err := store.Tensor("y"); err == nil || !strings.Contains(err.Error(), "available: x") {
		t.Errorf("Tensor(y) err = %v", err)
	}

	if _, err := store.TensorWithShape("x", []int64{1, 2}); err == nil {
		t.Error("TensorWithShape accepted wrong shape")
	}

	if store.Metadata() != nil {
		t.Errorf("Metadata = %v; want nil", store.Metadata())
	}
}

func TestStore_LowercaseDType(t *testing.T) {
	want := int64(-3)
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, uint64(want))

	hdr := `{"i":{"dtype":"i64","shape":[1],"data_offsets":[0,8]}}`
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, uint64(len(hdr)))
	data = append(append(data, hdr...), raw...)

	store, err := OpenStoreFromBytes(data)
	if err != nil {
		t.Fatalf("OpenStoreFromBytes: %v", err)
	}

	i, err := store.Tensor("i")
	if err != nil || !reflect.DeepEqual(i.Ints, []int64{want}) {
		t.Errorf("i = %+v, %v", i, err)
	}
}
