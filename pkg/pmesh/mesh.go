// Package pmesh holds the shared vertex/index buffers backing triangle
// and bilinear-patch meshes, plus the process-wide registries that let an
// individual Triangle or BilinearPatch shape stay a small POD value (a
// mesh handle plus a face index) instead of duplicating its own copy of
// the mesh's geometry.
package pmesh

import (
	"fmt"
	"sync"

	"github.com/df07/go-shape-core/pkg/plog"
	"github.com/df07/go-shape-core/pkg/pmath"
)

// TriangleMesh holds the vertex attributes and per-triangle vertex
// indices for a batch of triangles built from a single CreateTriangleMesh
// call, following the shared-mesh layout every geometry-heavy renderer in
// the original_source distillation uses to avoid an allocation per
// triangle.
type TriangleMesh struct {
	// P holds one position per unique vertex.
	P []pmath.Vec3
	// N optionally holds one shading normal per unique vertex; nil if
	// the mesh has no per-vertex normals.
	N []pmath.Vec3
	// S optionally holds one shading tangent per unique vertex; nil if
	// the mesh has no per-vertex tangents.
	S []pmath.Vec3
	// UV optionally holds one texture coordinate per unique vertex; nil
	// if the mesh has no UVs (triangles then fall back to (0,0),(1,0),(1,1)).
	UV []pmath.Vec2
	// VertexIndices holds 3 indices into P/N/S/UV per triangle.
	VertexIndices []int
	// FaceIndices optionally maps each triangle to an external face id
	// (e.g. a polygon it was fanned out of), used only for
	// texture-space discontinuity handling. nil if absent.
	FaceIndices []int
	// ReverseOrientation records whether the mesh's winding was flagged
	// to reverse the geometric normal at load time.
	ReverseOrientation bool
	// TransformSwapsHandedness records whether the transform that placed
	// this mesh in the scene flips handedness, which XORs with
	// ReverseOrientation to give each triangle's final orientation flag.
	TransformSwapsHandedness bool
}

// NumTriangles returns the number of triangles described by the mesh.
func (m *TriangleMesh) NumTriangles() int {
	return len(m.VertexIndices) / 3
}

// TriangleVertices returns the three vertex positions of triangle i.
func (m *TriangleMesh) TriangleVertices(i int) (p0, p1, p2 pmath.Vec3) {
	base := 3 * i
	return m.P[m.VertexIndices[base]], m.P[m.VertexIndices[base+1]], m.P[m.VertexIndices[base+2]]
}

// HasNormals reports whether per-vertex shading normals are present.
func (m *TriangleMesh) HasNormals() bool { return m.N != nil }

// HasUV reports whether per-vertex texture coordinates are present.
func (m *TriangleMesh) HasUV() bool { return m.UV != nil }

// TriangleUVs returns the three UV coordinates of triangle i, falling
// back to the implicit (0,0),(1,0),(1,1) triangle when the mesh carries
// no explicit UVs.
func (m *TriangleMesh) TriangleUVs(i int) (uv0, uv1, uv2 pmath.Vec2) {
	if m.UV == nil {
		return pmath.Vec2{X: 0, Y: 0}, pmath.Vec2{X: 1, Y: 0}, pmath.Vec2{X: 1, Y: 1}
	}
	base := 3 * i
	return m.UV[m.VertexIndices[base]], m.UV[m.VertexIndices[base+1]], m.UV[m.VertexIndices[base+2]]
}

// TriangleNormals returns the three shading normals of triangle i. Only
// valid when HasNormals() is true.
func (m *TriangleMesh) TriangleNormals(i int) (n0, n1, n2 pmath.Vec3) {
	base := 3 * i
	return m.N[m.VertexIndices[base]], m.N[m.VertexIndices[base+1]], m.N[m.VertexIndices[base+2]]
}

// BilinearPatchMesh holds the vertex attributes and per-patch vertex
// indices for a batch of bilinear patches, the quadrilateral analogue of
// TriangleMesh.
type BilinearPatchMesh struct {
	P                        []pmath.Vec3
	N                        []pmath.Vec3
	UV                       []pmath.Vec2
	VertexIndices            []int
	ReverseOrientation       bool
	TransformSwapsHandedness bool
	// ImageDistribution optionally carries per-texel emission luminance
	// for the mesh. It is stored with the mesh only: BilinearPatch
	// sampling does not read it.
	ImageDistribution []float64
}

// NumPatches returns the number of quadrilaterals described by the mesh.
func (m *BilinearPatchMesh) NumPatches() int {
	return len(m.VertexIndices) / 4
}

// PatchVertices returns the four corner positions of patch i in the
// order (0,0), (1,0), (0,1), (1,1) of the patch's (u,v) domain.
func (m *BilinearPatchMesh) PatchVertices(i int) (p00, p10, p01, p11 pmath.Vec3) {
	base := 4 * i
	idx := m.VertexIndices
	return m.P[idx[base]], m.P[idx[base+1]], m.P[idx[base+2]], m.P[idx[base+3]]
}

// HasNormals reports whether per-vertex shading normals are present.
func (m *BilinearPatchMesh) HasNormals() bool { return m.N != nil }

// PatchNormals returns the four corner normals of patch i. Only valid
// when HasNormals() is true.
func (m *BilinearPatchMesh) PatchNormals(i int) (n00, n10, n01, n11 pmath.Vec3) {
	base := 4 * i
	idx := m.VertexIndices
	return m.N[idx[base]], m.N[idx[base+1]], m.N[idx[base+2]], m.N[idx[base+3]]
}

// PatchUVs returns the four corner UVs of patch i, falling back to the
// implicit unit square when the mesh carries no explicit UVs.
func (m *BilinearPatchMesh) PatchUVs(i int) (uv00, uv10, uv01, uv11 pmath.Vec2) {
	if m.UV == nil {
		return pmath.Vec2{X: 0, Y: 0}, pmath.Vec2{X: 1, Y: 0}, pmath.Vec2{X: 0, Y: 1}, pmath.Vec2{X: 1, Y: 1}
	}
	base := 4 * i
	idx := m.VertexIndices
	return m.UV[idx[base]], m.UV[idx[base+1]], m.UV[idx[base+2]], m.UV[idx[base+3]]
}

var (
	registryMu sync.RWMutex

	triangleMeshes []*TriangleMesh
	bilinearMeshes []*BilinearPatchMesh

	logger plog.Logger = &plog.NopLogger{}
)

// SetLogger installs the logger mesh registration writes setup-time
// diagnostics through. The default is a no-op, matching the teacher's
// habit of only wiring a real logger at the top of a rendering session.
func SetLogger(l plog.Logger) {
	if l == nil {
		l = &plog.NopLogger{}
	}
	logger = l
}

// RegisterTriangleMesh adds a mesh to the process-wide registry and
// returns the handle later Triangle shapes reference it by. Registration
// happens once per mesh during single-threaded scene construction; the
// mutex only guards against a caller building meshes concurrently, since
// the returned handle is a plain slice index and reads afterward take no
// lock.
func RegisterTriangleMesh(mesh *TriangleMesh) int {
	registryMu.Lock()
	defer registryMu.Unlock()
	triangleMeshes = append(triangleMeshes, mesh)
	handle := len(triangleMeshes) - 1
	logger.Printf("pmesh: registered triangle mesh %d (%d triangles)\n", handle, mesh.NumTriangles())
	return handle
}

// GetTriangleMesh looks up a mesh by the handle RegisterTriangleMesh
// returned. It panics on an invalid handle since that indicates a bug in
// the caller building Triangle shapes, not a recoverable runtime state.
func GetTriangleMesh(handle int) *TriangleMesh {
	if handle < 0 || handle >= len(triangleMeshes) {
		panic(fmt.Sprintf("pmesh: invalid triangle mesh handle %d", handle))
	}
	return triangleMeshes[handle]
}

// RegisterBilinearPatchMesh adds a mesh to the process-wide registry and
// returns its handle.
func RegisterBilinearPatchMesh(mesh *BilinearPatchMesh) int {
	registryMu.Lock()
	defer registryMu.Unlock()
	bilinearMeshes = append(bilinearMeshes, mesh)
	handle := len(bilinearMeshes) - 1
	logger.Printf("pmesh: registered bilinear patch mesh %d (%d patches)\n", handle, mesh.NumPatches())
	return handle
}

// GetBilinearPatchMesh looks up a mesh by handle.
func GetBilinearPatchMesh(handle int) *BilinearPatchMesh {
	if handle < 0 || handle >= len(bilinearMeshes) {
		panic(fmt.Sprintf("pmesh: invalid bilinear patch mesh handle %d", handle))
	}
	return bilinearMeshes[handle]
}

// ResetRegistries clears both registries. Tests call this between cases
// so mesh handles stay small and predictable; production scene loading
// never needs it.
func ResetRegistries() {
	registryMu.Lock()
	defer registryMu.Unlock()
	triangleMeshes = nil
	bilinearMeshes = nil
}
