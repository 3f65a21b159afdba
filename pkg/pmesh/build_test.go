package pmesh

import (
	"testing"

	"github.com/df07/go-shape-core/pkg/pmath"
)

func TestCreateTriangleMesh_Validation(t *testing.T) {
	ResetRegistries()

	square := []pmath.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}

	tests := []struct {
		name    string
		params  TriangleMeshParams
		wantErr bool
	}{
		{
			name:    "valid quad as two triangles",
			params:  TriangleMeshParams{P: square, Indices: []int{0, 1, 2, 0, 2, 3}},
			wantErr: false,
		},
		{
			name:    "no vertices",
			params:  TriangleMeshParams{P: nil, Indices: []int{0, 1, 2}},
			wantErr: true,
		},
		{
			name:    "index count not multiple of 3",
			params:  TriangleMeshParams{P: square, Indices: []int{0, 1, 2, 3}},
			wantErr: true,
		},
		{
			name:    "index out of range",
			params:  TriangleMeshParams{P: square, Indices: []int{0, 1, 9}},
			wantErr: true,
		},
		{
			name:    "normal count mismatch",
			params:  TriangleMeshParams{P: square, N: square[:2], Indices: []int{0, 1, 2}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateTriangleMesh(tt.params)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateTriangleMesh() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTriangleMesh_TriangleVertices(t *testing.T) {
	ResetRegistries()

	p := []pmath.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
	}
	handle, err := CreateTriangleMesh(TriangleMeshParams{P: p, Indices: []int{0, 1, 2}})
	if err != nil {
		t.Fatalf("CreateTriangleMesh() error = %v", err)
	}

	mesh := GetTriangleMesh(handle)
	if mesh.NumTriangles() != 1 {
		t.Fatalf("NumTriangles() = %d, want 1", mesh.NumTriangles())
	}

	p0, p1, p2 := mesh.TriangleVertices(0)
	if p0 != p[0] || p1 != p[1] || p2 != p[2] {
		t.Errorf("TriangleVertices(0) = %v,%v,%v, want %v,%v,%v", p0, p1, p2, p[0], p[1], p[2])
	}
}

func TestGetTriangleMesh_InvalidHandlePanics(t *testing.T) {
	ResetRegistries()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for invalid mesh handle")
		}
	}()
	GetTriangleMesh(42)
}

func TestCreateBilinearPatchMesh_Validation(t *testing.T) {
	ResetRegistries()

	square := []pmath.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 1, Y: 1, Z: 0},
	}

	tests := []struct {
		name    string
		params  BilinearPatchMeshParams
		wantErr bool
	}{
		{
			name:    "valid single patch",
			params:  BilinearPatchMeshParams{P: square, Indices: []int{0, 1, 2, 3}},
			wantErr: false,
		},
		{
			name:    "index count not multiple of 4",
			params:  BilinearPatchMeshParams{P: square, Indices: []int{0, 1, 2}},
			wantErr: true,
		},
		{
			name:    "index out of range",
			params:  BilinearPatchMeshParams{P: square, Indices: []int{0, 1, 2, 9}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateBilinearPatchMesh(tt.params)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateBilinearPatchMesh() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
