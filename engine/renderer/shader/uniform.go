package shader

import (
	"fmt"

	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// SlotState is the upload state of a uniform slot.
type SlotState uint8

const (
	// SlotClean: the GPU holds the slot's value, or nothing was ever set.
	SlotClean SlotState = iota
	// SlotDirty: a value is pending upload.
	SlotDirty
)

func (s SlotState) String() string {
	if s == SlotDirty {
		return "dirty"
	}
	return "clean"
}

type uploadFunc func(value interface{})

// UniformSlot is one leaf uniform of a program. It moves Clean -> Dirty(value) on Set
// and back to Clean on Upload. Uploading a clean slot does nothing, including a slot
// that never received a value.
type UniformSlot struct {
	name     string
	kind     metadata.UniformType
	location metadata.UniformLocation
	upload   uploadFunc

	state   SlotState
	pending interface{}
	current interface{}
}

func newUniformSlot(gpu renderer.Backend, name string, kind metadata.UniformType, location metadata.UniformLocation) *UniformSlot {
	return &UniformSlot{
		name:     name,
		kind:     kind,
		location: location,
		upload:   newUploadFunc(gpu, kind, location),
	}
}

func (s *UniformSlot) Name() string                       { return s.name }
func (s *UniformSlot) Type() metadata.UniformType         { return s.kind }
func (s *UniformSlot) Location() metadata.UniformLocation { return s.location }
func (s *UniformSlot) State() SlotState                   { return s.state }

// Value returns the pending value if dirty, otherwise the last uploaded one.
func (s *UniformSlot) Value() (interface{}, bool) {
	if s.state == SlotDirty {
		return s.pending, true
	}
	return s.current, s.current != nil
}

// Set converts value to the slot's type and marks the slot dirty.
func (s *UniformSlot) Set(value interface{}) error {
	v, err := s.prepare(value)
	if err != nil {
		return err
	}
	s.assign(v)
	return nil
}

// Upload sends a pending value to the GPU. It reports whether anything was uploaded.
func (s *UniformSlot) Upload() bool {
	if s.state != SlotDirty {
		return false
	}
	s.upload(s.pending)
	s.current = s.pending
	s.pending = nil
	s.state = SlotClean
	return true
}

func (s *UniformSlot) prepare(value interface{}) (interface{}, error) {
	v, ok := convertUniformValue(s.kind, value)
	if !ok {
		return nil, fmt.Errorf("cannot assign %T to %s", value, s.kind)
	}
	return v, nil
}

func (s *UniformSlot) assign(v interface{}) {
	s.pending = v
	s.state = SlotDirty
}

// convertUniformValue normalises the Go types a caller may reasonably pass for a uniform
// type into the one the upload function expects.
func convertUniformValue(kind metadata.UniformType, value interface{}) (interface{}, bool) {
	switch kind {
	case metadata.UniformTypeFloat:
		switch v := value.(type) {
		case float32:
			return v, true
		case float64:
			return float32(v), true
		case int:
			return float32(v), true
		case int32:
			return float32(v), true
		}
	case metadata.UniformTypeInt, metadata.UniformTypeSampler2D, metadata.UniformTypeSamplerCube:
		switch v := value.(type) {
		case int32:
			return v, true
		case int:
			return int32(v), true
		case uint32:
			return int32(v), true
		case int64:
			return int32(v), true
		}
	case metadata.UniformTypeUInt:
		switch v := value.(type) {
		case uint32:
			return v, true
		case int:
			if v >= 0 {
				return uint32(v), true
			}
		case int32:
			if v >= 0 {
				return uint32(v), true
			}
		}
	case metadata.UniformTypeBool:
		switch v := value.(type) {
		case bool:
			if v {
				return int32(1), true
			}
			return int32(0), true
		case int32:
			return v, true
		case int:
			return int32(v), true
		}
	case metadata.UniformTypeVec2:
		switch v := value.(type) {
		case math.Vec2:
			return v, true
		case []float32:
			if len(v) == 2 {
				return math.Vec2{v[0], v[1]}, true
			}
		}
	case metadata.UniformTypeVec3:
		switch v := value.(type) {
		case math.Vec3:
			return v, true
		case []float32:
			if len(v) == 3 {
				return math.Vec3{v[0], v[1], v[2]}, true
			}
		}
	case metadata.UniformTypeVec4:
		switch v := value.(type) {
		case math.Vec4:
			return v, true
		case []float32:
			if len(v) == 4 {
				return math.Vec4{v[0], v[1], v[2], v[3]}, true
			}
		}
	case metadata.UniformTypeMat3:
		if v, ok := value.(math.Mat3); ok {
			return v, true
		}
	case metadata.UniformTypeMat4:
		if v, ok := value.(math.Mat4); ok {
			return v, true
		}
	}
	return nil, false
}

// newUploadFunc binds an upload function to one location. Values reaching it have been
// normalised by convertUniformValue.
func newUploadFunc(gpu renderer.Backend, kind metadata.UniformType, location metadata.UniformLocation) uploadFunc {
	switch kind {
	case metadata.UniformTypeFloat:
		return func(v interface{}) { gpu.Uniform1f(location, v.(float32)) }
	case metadata.UniformTypeInt, metadata.UniformTypeBool, metadata.UniformTypeSampler2D, metadata.UniformTypeSamplerCube:
		return func(v interface{}) { gpu.Uniform1i(location, v.(int32)) }
	case metadata.UniformTypeUInt:
		return func(v interface{}) { gpu.Uniform1ui(location, v.(uint32)) }
	case metadata.UniformTypeVec2:
		return func(v interface{}) { gpu.Uniform2f(location, v.(math.Vec2)) }
	case metadata.UniformTypeVec3:
		return func(v interface{}) { gpu.Uniform3f(location, v.(math.Vec3)) }
	case metadata.UniformTypeVec4:
		return func(v interface{}) { gpu.Uniform4f(location, v.(math.Vec4)) }
	case metadata.UniformTypeMat3:
		return func(v interface{}) { gpu.UniformMatrix3f(location, v.(math.Mat3)) }
	case metadata.UniformTypeMat4:
		return func(v interface{}) { gpu.UniformMatrix4f(location, v.(math.Mat4)) }
	}
	return nil
}
