package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// MeshLoader reads Wavefront OBJ files into geometry.
type MeshLoader struct{}

func (ml *MeshLoader) Load(path string) (*metadata.Resource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	geometry, err := ParseOBJ(path, f)
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{
		Type:     metadata.ResourceTypeMesh,
		FullPath: path,
		DataSize: uint64(len(geometry.Vertices)),
		Data:     geometry,
	}, nil
}

func (ml *MeshLoader) Unload(*metadata.Resource) error {
	return nil
}

type objParser struct {
	name      string
	line      int
	positions []math.Vec3
	normals   []math.Vec3
	uvs       []math.Vec2

	vertices    []metadata.Vertex
	indices     []uint32
	seen        map[string]uint32
	needNormals []uint32
}

// ParseOBJ reads positions (v), normals (vn), texture coordinates (vt) and faces (f).
// Every distinct face corner text such as "5/1/1" becomes one vertex laid out as
// [position, uv, normal]; repeated corners reuse the index of the first. Polygons are
// fanned into triangles. Corners without a normal get a flat face normal.
func ParseOBJ(name string, r io.Reader) (*metadata.Geometry, error) {
	p := &objParser{name: name, seen: make(map[string]uint32)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		var err error
		switch fields[0] {
		case "v":
			var v math.Vec3
			if v, err = p.vec3(fields[1:]); err == nil {
				p.positions = append(p.positions, v)
			}
		case "vn":
			var v math.Vec3
			if v, err = p.vec3(fields[1:]); err == nil {
				p.normals = append(p.normals, v)
			}
		case "vt":
			err = p.uv(fields[1:])
		case "f":
			err = p.face(fields[1:])
		}
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	p.fillNormals()
	return &metadata.Geometry{
		Name:     name,
		Vertices: p.vertices,
		Indices:  p.indices,
	}, nil
}

func (p *objParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s:%d: %s", p.name, p.line, fmt.Sprintf(format, args...))
}

func (p *objParser) floats(fields []string) ([]float32, error) {
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, p.errorf("invalid number '%s'", f)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func (p *objParser) vec3(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, p.errorf("expected 3 components, got %d", len(fields))
	}
	values, err := p.floats(fields[:3])
	if err != nil {
		return math.Vec3{}, err
	}
	return math.NewVec3(values[0], values[1], values[2]), nil
}

func (p *objParser) uv(fields []string) error {
	if len(fields) != 2 {
		return p.errorf("texture coordinates must have exactly 2 components, got %d", len(fields))
	}
	values, err := p.floats(fields)
	if err != nil {
		return err
	}
	p.uvs = append(p.uvs, math.Vec2{values[0], values[1]})
	return nil
}

func (p *objParser) face(corners []string) error {
	if len(corners) < 3 {
		return p.errorf("a face needs at least 3 vertices, got %d", len(corners))
	}
	indices := make([]uint32, len(corners))
	for i, c := range corners {
		idx, err := p.corner(c)
		if err != nil {
			return err
		}
		indices[i] = idx
	}
	for i := 1; i+1 < len(indices); i++ {
		p.indices = append(p.indices, indices[0], indices[i], indices[i+1])
	}
	return nil
}

func (p *objParser) corner(text string) (uint32, error) {
	if idx, ok := p.seen[text]; ok {
		return idx, nil
	}

	parts := strings.Split(text, "/")
	if len(parts) > 3 {
		return 0, p.errorf("malformed face vertex '%s'", text)
	}
	pos, err := p.resolve(parts[0], len(p.positions), text)
	if err != nil {
		return 0, err
	}
	uv := []float32{0, 0}
	if len(parts) > 1 && parts[1] != "" {
		i, err := p.resolve(parts[1], len(p.uvs), text)
		if err != nil {
			return 0, err
		}
		uv = []float32{p.uvs[i][0], p.uvs[i][1]}
	}
	normal := []float32{0, 0, 0}
	hasNormal := len(parts) > 2 && parts[2] != ""
	if hasNormal {
		i, err := p.resolve(parts[2], len(p.normals), text)
		if err != nil {
			return 0, err
		}
		n := p.normals[i]
		normal = []float32{n[0], n[1], n[2]}
	}

	position := p.positions[pos]
	idx := uint32(len(p.vertices))
	p.vertices = append(p.vertices, metadata.Vertex{
		{position[0], position[1], position[2]},
		uv,
		normal,
	})
	if !hasNormal {
		p.needNormals = append(p.needNormals, idx)
	}
	p.seen[text] = idx
	return idx, nil
}

// resolve turns a 1-based (or negative, relative) OBJ index into a slice index.
func (p *objParser) resolve(field string, count int, corner string) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, p.errorf("invalid index '%s' in face vertex '%s'", field, corner)
	}
	i := n - 1
	if n < 0 {
		i = count + n
	}
	if n == 0 || i < 0 || i >= count {
		return 0, p.errorf("index %d out of range in face vertex '%s'", n, corner)
	}
	return i, nil
}

func (p *objParser) fillNormals() {
	if len(p.needNormals) == 0 {
		return
	}
	positions := make([]math.Vec3, len(p.vertices))
	for i, v := range p.vertices {
		positions[i] = math.NewVec3(v[0][0], v[0][1], v[0][2])
	}
	normals := math.GenerateNormals(positions, p.indices)
	for _, idx := range p.needNormals {
		n := normals[idx]
		p.vertices[idx][2] = []float32{n[0], n[1], n[2]}
	}
}
