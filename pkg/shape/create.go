package shape

import (
	"fmt"
	"math"

	"github.com/df07/go-shape-core/pkg/pmath"
	"github.com/df07/go-shape-core/pkg/pmesh"
)

// ParamSet is a scene-file parameter dictionary, the same loosely-typed
// bag of named values a pbrt scene description parses each shape's
// parameter list into before a Create call applies shape-specific
// defaults. It is not a general scene-description parser, only the
// narrow shape-parameter surface this package's Create* functions read.
type ParamSet map[string]interface{}

func (ps ParamSet) float(name string, def float64) float64 {
	if v, ok := ps[name]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return def
}

func (ps ParamSet) boolean(name string, def bool) bool {
	if v, ok := ps[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func (ps ParamSet) point3Slice(name string) []pmath.Vec3 {
	if v, ok := ps[name]; ok {
		if p, ok := v.([]pmath.Vec3); ok {
			return p
		}
	}
	return nil
}

func (ps ParamSet) vec2Slice(name string) []pmath.Vec2 {
	if v, ok := ps[name]; ok {
		if p, ok := v.([]pmath.Vec2); ok {
			return p
		}
	}
	return nil
}

func (ps ParamSet) intSlice(name string) []int {
	if v, ok := ps[name]; ok {
		if p, ok := v.([]int); ok {
			return p
		}
	}
	return nil
}

func (ps ParamSet) curveTypeString(name, def string) string {
	if v, ok := ps[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// CreateSphere builds a Sphere from a scene parameter set, applying
// pbrt's named defaults: radius=1, zmin=-radius, zmax=radius,
// phimax=360 (degrees).
func CreateSphere(objectToWorld *pmath.Transform, reverseOrientation bool, ps ParamSet) (ShapeHandle, error) {
	radius := ps.float("radius", 1)
	zMin := ps.float("zmin", -radius)
	zMax := ps.float("zmax", radius)
	phiMaxDeg := ps.float("phimax", 360)

	s, err := NewSphere(SphereParams{
		ObjectToWorld:      objectToWorld,
		Radius:             radius,
		ZMin:               zMin,
		ZMax:               zMax,
		PhiMax:             phiMaxDeg * math.Pi / 180,
		ReverseOrientation: reverseOrientation,
	})
	if err != nil {
		return ShapeHandle{}, err
	}
	return NewSphereHandle(s), nil
}

// CreateDisk builds a Disk, applying pbrt's named defaults: height=0,
// radius=1, innerradius=0, phimax=360 (degrees).
func CreateDisk(objectToWorld *pmath.Transform, reverseOrientation bool, ps ParamSet) (ShapeHandle, error) {
	height := ps.float("height", 0)
	radius := ps.float("radius", 1)
	innerRadius := ps.float("innerradius", 0)
	phiMaxDeg := ps.float("phimax", 360)

	d, err := NewDisk(DiskParams{
		ObjectToWorld:      objectToWorld,
		Height:             height,
		Radius:             radius,
		InnerRadius:        innerRadius,
		PhiMax:             phiMaxDeg * math.Pi / 180,
		ReverseOrientation: reverseOrientation,
	})
	if err != nil {
		return ShapeHandle{}, err
	}
	return NewDiskHandle(d), nil
}

// CreateCylinder builds a Cylinder, applying pbrt's named defaults:
// radius=1, zmin=-1, zmax=1, phimax=360 (degrees).
func CreateCylinder(objectToWorld *pmath.Transform, reverseOrientation bool, ps ParamSet) (ShapeHandle, error) {
	radius := ps.float("radius", 1)
	zMin := ps.float("zmin", -1)
	zMax := ps.float("zmax", 1)
	phiMaxDeg := ps.float("phimax", 360)

	c, err := NewCylinder(CylinderParams{
		ObjectToWorld:      objectToWorld,
		Radius:             radius,
		ZMin:               zMin,
		ZMax:               zMax,
		PhiMax:             phiMaxDeg * math.Pi / 180,
		ReverseOrientation: reverseOrientation,
	})
	if err != nil {
		return ShapeHandle{}, err
	}
	return NewCylinderHandle(c), nil
}

// CreateTriangleMesh registers a triangle mesh (indices, P required; N,
// S, uv, faceIndices optional) and returns one ShapeHandle per triangle,
// each wrapping a Triangle referencing the shared mesh by handle.
func CreateTriangleMesh(objectToWorld *pmath.Transform, reverseOrientation bool, ps ParamSet) ([]ShapeHandle, error) {
	indices := ps.intSlice("indices")
	p := ps.point3Slice("P")
	if len(p) == 0 {
		return nil, fmt.Errorf("shape: triangle mesh requires P")
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("shape: triangle mesh requires indices")
	}

	worldP := make([]pmath.Vec3, len(p))
	for i, pt := range p {
		worldP[i] = objectToWorld.ApplyPoint(pt)
	}
	var worldN []pmath.Vec3
	if n := ps.point3Slice("N"); n != nil {
		worldN = make([]pmath.Vec3, len(n))
		for i, v := range n {
			worldN[i] = objectToWorld.ApplyNormal(v).Normalize()
		}
	}
	var worldS []pmath.Vec3
	if s := ps.point3Slice("S"); s != nil {
		worldS = make([]pmath.Vec3, len(s))
		for i, v := range s {
			worldS[i] = objectToWorld.ApplyVector(v)
		}
	}

	handle, err := pmesh.CreateTriangleMesh(pmesh.TriangleMeshParams{
		P:                        worldP,
		N:                        worldN,
		S:                        worldS,
		UV:                       ps.vec2Slice("uv"),
		Indices:                  indices,
		FaceIndices:              ps.intSlice("faceIndices"),
		ReverseOrientation:       reverseOrientation,
		TransformSwapsHandedness: objectToWorld.SwapsHandedness(),
	})
	if err != nil {
		return nil, err
	}

	numTris := len(indices) / 3
	handles := make([]ShapeHandle, numTris)
	for i := 0; i < numTris; i++ {
		handles[i] = NewTriangleHandle(NewTriangle(handle, i))
	}
	return handles, nil
}

// CreateBilinearPatchMesh registers a bilinear-patch mesh (indices, P
// required; N, uv optional, 4 vertices per patch) and returns one
// ShapeHandle per patch.
func CreateBilinearPatchMesh(objectToWorld *pmath.Transform, reverseOrientation bool, ps ParamSet) ([]ShapeHandle, error) {
	indices := ps.intSlice("indices")
	p := ps.point3Slice("P")
	if len(p) == 0 {
		return nil, fmt.Errorf("shape: bilinear patch mesh requires P")
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("shape: bilinear patch mesh requires indices")
	}

	worldP := make([]pmath.Vec3, len(p))
	for i, pt := range p {
		worldP[i] = objectToWorld.ApplyPoint(pt)
	}
	var worldN []pmath.Vec3
	if n := ps.point3Slice("N"); n != nil {
		worldN = make([]pmath.Vec3, len(n))
		for i, v := range n {
			worldN[i] = objectToWorld.ApplyNormal(v).Normalize()
		}
	}

	handle, err := pmesh.CreateBilinearPatchMesh(pmesh.BilinearPatchMeshParams{
		P:                        worldP,
		N:                        worldN,
		UV:                       ps.vec2Slice("uv"),
		Indices:                  indices,
		ReverseOrientation:       reverseOrientation,
		TransformSwapsHandedness: objectToWorld.SwapsHandedness(),
	})
	if err != nil {
		return nil, err
	}

	numPatches := len(indices) / 4
	handles := make([]ShapeHandle, numPatches)
	for i := 0; i < numPatches; i++ {
		handles[i] = NewBilinearPatchHandle(NewBilinearPatch(handle, i))
	}
	return handles, nil
}

// CreateCurve builds a curve from its 4 object-space control points,
// width0/width1, a type in {flat, cylinder, ribbon}, and (for ribbon)
// two normals N.
func CreateCurve(objectToWorld *pmath.Transform, reverseOrientation bool, ps ParamSet) (ShapeHandle, error) {
	p := ps.point3Slice("P")
	if len(p) != 4 {
		return ShapeHandle{}, fmt.Errorf("shape: curve requires exactly 4 control points, got %d", len(p))
	}
	var cpObj [4]pmath.Vec3
	copy(cpObj[:], p)

	width0 := ps.float("width0", 1)
	width1 := ps.float("width1", width0)

	var curveType CurveType
	switch ps.curveTypeString("type", "flat") {
	case "flat":
		curveType = CurveFlat
	case "cylinder":
		curveType = CurveCylinder
	case "ribbon":
		curveType = CurveRibbon
	default:
		return ShapeHandle{}, fmt.Errorf("shape: unknown curve type %q", ps.curveTypeString("type", "flat"))
	}

	var nPtr *[2]pmath.Vec3
	if n := ps.point3Slice("N"); n != nil {
		if len(n) != 2 {
			return ShapeHandle{}, fmt.Errorf("shape: ribbon curve requires exactly 2 normals, got %d", len(n))
		}
		nPtr = &[2]pmath.Vec3{n[0], n[1]}
	}

	common, err := NewCurveCommon(objectToWorld, cpObj, width0, width1, curveType, nPtr, reverseOrientation)
	if err != nil {
		return ShapeHandle{}, err
	}
	return NewCurveHandle(NewCurve(common)), nil
}
