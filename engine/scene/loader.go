package scene

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
	"github.com/spaghettifunk/lumen/engine/renderer/shader"
)

// Resolver turns the asset paths of a scene file into GPU resources. Meshes are packed
// with the layout of the program that draws them.
type Resolver interface {
	Shader(path string) (*shader.Program, error)
	Mesh(path string, program *shader.Program) (*metadata.Mesh, error)
}

type sceneFile struct {
	Nodes []nodeConfig `yaml:"nodes"`
}

type transformConfig struct {
	Position []float32 `yaml:"position"`
	Rotation []float32 `yaml:"rotation"`
	Scale    []float32 `yaml:"scale"`
}

type materialConfig struct {
	Name      string    `yaml:"name"`
	Ambient   float32   `yaml:"ambient"`
	Diffuse   []float32 `yaml:"diffuse"`
	Specular  []float32 `yaml:"specular"`
	Shininess float32   `yaml:"shininess"`
}

type lightConfig struct {
	Color     []float32 `yaml:"color"`
	Constant  float32   `yaml:"constant"`
	Linear    float32   `yaml:"linear"`
	Quadratic float32   `yaml:"quadratic"`
}

type nodeConfig struct {
	Name      string           `yaml:"name"`
	Type      string           `yaml:"type"`
	Transform *transformConfig `yaml:"transform"`
	Mesh      string           `yaml:"mesh"`
	Shader    string           `yaml:"shader"`
	Material  *materialConfig  `yaml:"material"`
	Light     *lightConfig     `yaml:"light"`
	Children  []nodeConfig     `yaml:"children"`
}

// LoadSceneYAML reads a scene description:
//
//	nodes:
//	  - name: lamp
//	    type: light
//	    transform: {position: [0, 2, 0]}
//	    light: {color: [1, 1, 1], constant: 1, linear: 0.09, quadratic: 0.032}
//	    mesh: meshes/cube.obj
//	    shader: shaders/lamp.glsl
//	    children: [...]
//
// A light node without a light section is accepted here and rejected by Build.
func LoadSceneYAML(r io.Reader, camera CameraView, resolver Resolver) (*SceneGraph, error) {
	var file sceneFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, &core.ConfigurationError{Subject: "scene file", Reason: err.Error()}
	}

	g := NewSceneGraph(camera)
	for i := range file.Nodes {
		n, err := buildNode(&file.Nodes[i], resolver)
		if err != nil {
			g.Clear()
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func buildNode(cfg *nodeConfig, resolver Resolver) (*SceneNode, error) {
	subject := fmt.Sprintf("node '%s'", cfg.Name)

	nodeType, err := ParseNodeType(cfg.Type)
	if err != nil {
		return nil, core.NewConfigurationError(subject, fmt.Sprintf("unknown node type '%s'", cfg.Type))
	}

	var data NodeData
	if cfg.Transform != nil {
		if data.Transform, err = cfg.Transform.build(subject); err != nil {
			return nil, err
		}
	}
	if cfg.Light != nil {
		color, err := vec3(subject+" light color", cfg.Light.Color, math.NewVec3One())
		if err != nil {
			return nil, err
		}
		data.Light = &metadata.LightParams{
			Color:     color,
			Constant:  cfg.Light.Constant,
			Linear:    cfg.Light.Linear,
			Quadratic: cfg.Light.Quadratic,
		}
	}
	if cfg.Mesh != "" || cfg.Shader != "" {
		if resolver == nil {
			return nil, core.NewConfigurationError(subject, "scene has renderables but no asset resolver")
		}
		if cfg.Mesh == "" || cfg.Shader == "" {
			return nil, core.NewConfigurationError(subject, "a renderable needs both mesh and shader")
		}
		program, err := resolver.Shader(cfg.Shader)
		if err != nil {
			return nil, fmt.Errorf("%s: shader '%s': %w", subject, cfg.Shader, err)
		}
		mesh, err := resolver.Mesh(cfg.Mesh, program)
		if err != nil {
			return nil, fmt.Errorf("%s: mesh '%s': %w", subject, cfg.Mesh, err)
		}
		data.Object = &Renderable{Mesh: mesh, Shader: program}
		if cfg.Material != nil {
			if data.Object.Material, err = cfg.Material.build(subject); err != nil {
				return nil, err
			}
		}
	}

	n := NewSceneNode(nodeType, data)
	n.Name = cfg.Name
	for i := range cfg.Children {
		child, err := buildNode(&cfg.Children[i], resolver)
		if err != nil {
			return nil, err
		}
		if err := n.AddNode(child); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (t *transformConfig) build(subject string) (*math.Transform, error) {
	position, err := vec3(subject+" position", t.Position, math.NewVec3Zero())
	if err != nil {
		return nil, err
	}
	tr := math.TransformFromPosition(position)
	if t.Rotation != nil {
		r, err := vec3(subject+" rotation", t.Rotation, math.NewVec3Zero())
		if err != nil {
			return nil, err
		}
		tr.SetRotation(r)
	}
	if t.Scale != nil {
		s, err := vec3(subject+" scale", t.Scale, math.NewVec3One())
		if err != nil {
			return nil, err
		}
		tr.SetScale(s)
	}
	return tr, nil
}

func (m *materialConfig) build(subject string) (*metadata.Material, error) {
	def := metadata.NewDefaultMaterial()
	diffuse, err := vec3(subject+" diffuse", m.Diffuse, def.Diffuse)
	if err != nil {
		return nil, err
	}
	specular, err := vec3(subject+" specular", m.Specular, def.Specular)
	if err != nil {
		return nil, err
	}
	name := m.Name
	if name == "" {
		name = def.Name
	}
	return &metadata.Material{
		Name:      name,
		Ambient:   m.Ambient,
		Diffuse:   diffuse,
		Specular:  specular,
		Shininess: m.Shininess,
	}, nil
}

// vec3 converts a YAML sequence; an absent sequence yields def.
func vec3(subject string, values []float32, def math.Vec3) (math.Vec3, error) {
	if values == nil {
		return def, nil
	}
	if len(values) != 3 {
		return math.Vec3{}, core.NewConfigurationError(subject, fmt.Sprintf("expected 3 components, got %d", len(values)))
	}
	return math.NewVec3(values[0], values[1], values[2]), nil
}
