package math

// GenerateNormals computes flat face normals for an indexed triangle list.
// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
func GenerateNormals(positions []Vec3, indices []uint32) []Vec3 {
	normals := make([]Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= len(positions) || int(i1) >= len(positions) || int(i2) >= len(positions) {
			continue
		}
		edge1 := positions[i1].Sub(positions[i0])
		edge2 := positions[i2].Sub(positions[i0])

		c := edge1.Cross(edge2)
		if c.Len() == 0 {
			continue
		}
		normal := c.Normalize()
		normals[i0] = normal
		normals[i1] = normal
		normals[i2] = normal
	}
	return normals
}

// ComputeExtents returns the bounding box of positions.
func ComputeExtents(positions []Vec3) Extents3D {
	if len(positions) == 0 {
		return Extents3D{}
	}
	ext := Extents3D{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		for k := 0; k < 3; k++ {
			ext.Min[k] = min(ext.Min[k], p[k])
			ext.Max[k] = max(ext.Max[k], p[k])
		}
	}
	return ext
}
