package pmesh

import (
	"fmt"

	"github.com/df07/go-shape-core/pkg/pmath"
)

// TriangleMeshParams collects the raw arrays a scene loader gathers for
// one CreateTriangleMesh call. P and Indices are required; the rest are
// optional and left nil when absent.
type TriangleMeshParams struct {
	P                  []pmath.Vec3
	N                  []pmath.Vec3
	S                  []pmath.Vec3
	UV                 []pmath.Vec2
	Indices            []int
	FaceIndices        []int
	ReverseOrientation bool
	TransformSwapsHandedness bool
}

// CreateTriangleMesh validates params and registers a new TriangleMesh,
// returning the handle to pass to individual Triangle shapes. It mirrors
// the teacher's constructor-time validation style (bounds- and
// length-check up front, fmt.Errorf on mismatch) rather than panicking
// deep inside per-triangle code.
func CreateTriangleMesh(p TriangleMeshParams) (int, error) {
	if len(p.P) == 0 {
		return 0, fmt.Errorf("pmesh: triangle mesh needs at least one vertex")
	}
	if len(p.Indices) == 0 || len(p.Indices)%3 != 0 {
		return 0, fmt.Errorf("pmesh: triangle mesh index count %d must be a positive multiple of 3", len(p.Indices))
	}
	for _, idx := range p.Indices {
		if idx < 0 || idx >= len(p.P) {
			return 0, fmt.Errorf("pmesh: triangle vertex index %d out of range [0,%d)", idx, len(p.P))
		}
	}
	if p.N != nil && len(p.N) != len(p.P) {
		return 0, fmt.Errorf("pmesh: normal count %d must match vertex count %d", len(p.N), len(p.P))
	}
	if p.S != nil && len(p.S) != len(p.P) {
		return 0, fmt.Errorf("pmesh: tangent count %d must match vertex count %d", len(p.S), len(p.P))
	}
	if p.UV != nil && len(p.UV) != len(p.P) {
		return 0, fmt.Errorf("pmesh: uv count %d must match vertex count %d", len(p.UV), len(p.P))
	}
	numTris := len(p.Indices) / 3
	if p.FaceIndices != nil && len(p.FaceIndices) != numTris {
		return 0, fmt.Errorf("pmesh: face index count %d must match triangle count %d", len(p.FaceIndices), numTris)
	}

	mesh := &TriangleMesh{
		P:                        p.P,
		N:                        p.N,
		S:                        p.S,
		UV:                       p.UV,
		VertexIndices:            p.Indices,
		FaceIndices:              p.FaceIndices,
		ReverseOrientation:       p.ReverseOrientation,
		TransformSwapsHandedness: p.TransformSwapsHandedness,
	}
	return RegisterTriangleMesh(mesh), nil
}

// BilinearPatchMeshParams collects the raw arrays for one
// CreateBilinearPatchMesh call, laid out the same way as
// TriangleMeshParams.
type BilinearPatchMeshParams struct {
	P                        []pmath.Vec3
	N                        []pmath.Vec3
	UV                       []pmath.Vec2
	Indices                  []int
	ReverseOrientation       bool
	TransformSwapsHandedness bool
	ImageDistribution        []float64
}

// CreateBilinearPatchMesh validates params and registers a new
// BilinearPatchMesh, returning its handle.
func CreateBilinearPatchMesh(p BilinearPatchMeshParams) (int, error) {
	if len(p.P) == 0 {
		return 0, fmt.Errorf("pmesh: bilinear patch mesh needs at least one vertex")
	}
	if len(p.Indices) == 0 || len(p.Indices)%4 != 0 {
		return 0, fmt.Errorf("pmesh: bilinear patch mesh index count %d must be a positive multiple of 4", len(p.Indices))
	}
	for _, idx := range p.Indices {
		if idx < 0 || idx >= len(p.P) {
			return 0, fmt.Errorf("pmesh: bilinear patch vertex index %d out of range [0,%d)", idx, len(p.P))
		}
	}
	if p.N != nil && len(p.N) != len(p.P) {
		return 0, fmt.Errorf("pmesh: normal count %d must match vertex count %d", len(p.N), len(p.P))
	}
	if p.UV != nil && len(p.UV) != len(p.P) {
		return 0, fmt.Errorf("pmesh: uv count %d must match vertex count %d", len(p.UV), len(p.P))
	}

	mesh := &BilinearPatchMesh{
		P:                        p.P,
		N:                        p.N,
		UV:                       p.UV,
		VertexIndices:            p.Indices,
		ReverseOrientation:       p.ReverseOrientation,
		TransformSwapsHandedness: p.TransformSwapsHandedness,
		ImageDistribution:        p.ImageDistribution,
	}
	return RegisterBilinearPatchMesh(mesh), nil
}
