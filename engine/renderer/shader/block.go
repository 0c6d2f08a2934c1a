package shader

import (
	"maps"
	"slices"

	"github.com/spaghettifunk/lumen/engine/core"
)

// UniformBlock is the set of leaf uniform slots of a program, keyed by qualified name.
// Set and SetSubset validate every name and value before changing any slot, so a
// failed call leaves the block exactly as it was.
type UniformBlock struct {
	slots map[string]*UniformSlot
	names []string
}

func NewUniformBlock(slots ...*UniformSlot) *UniformBlock {
	b := &UniformBlock{slots: make(map[string]*UniformSlot, len(slots))}
	for _, s := range slots {
		b.slots[s.name] = s
	}
	b.names = slices.Sorted(maps.Keys(b.slots))
	return b
}

type stagedValue struct {
	slot  *UniformSlot
	value interface{}
}

// Set assigns every slot from data. A slot without an entry in data is a BindingError.
// Entries of data that name no slot are ignored.
func (b *UniformBlock) Set(data map[string]interface{}) error {
	staged := make([]stagedValue, 0, len(b.names))
	for _, name := range b.names {
		raw, ok := data[name]
		if !ok {
			return core.NewBindingError(name, "missing from uniform data")
		}
		slot := b.slots[name]
		v, err := slot.prepare(raw)
		if err != nil {
			return core.NewBindingError(name, err.Error())
		}
		staged = append(staged, stagedValue{slot, v})
	}
	for _, s := range staged {
		s.slot.assign(s.value)
	}
	return nil
}

// SetSubset assigns only the slots named in data. A name without a slot is a BindingError.
func (b *UniformBlock) SetSubset(data map[string]interface{}) error {
	staged := make([]stagedValue, 0, len(data))
	for _, name := range slices.Sorted(maps.Keys(data)) {
		slot, ok := b.slots[name]
		if !ok {
			return core.NewBindingError(name, "no such uniform in block")
		}
		v, err := slot.prepare(data[name])
		if err != nil {
			return core.NewBindingError(name, err.Error())
		}
		staged = append(staged, stagedValue{slot, v})
	}
	for _, s := range staged {
		s.slot.assign(s.value)
	}
	return nil
}

// Upload sends every dirty slot to the GPU in name order and returns how many were sent.
func (b *UniformBlock) Upload() int {
	uploaded := 0
	for _, name := range b.names {
		if b.slots[name].Upload() {
			uploaded++
		}
	}
	return uploaded
}

// Names returns the qualified slot names in sorted order.
func (b *UniformBlock) Names() []string {
	return slices.Clone(b.names)
}

func (b *UniformBlock) Slot(name string) (*UniformSlot, bool) {
	s, ok := b.slots[name]
	return s, ok
}

func (b *UniformBlock) Len() int {
	return len(b.names)
}

// Dirty lists the slots with a pending value.
func (b *UniformBlock) Dirty() []string {
	var out []string
	for _, name := range b.names {
		if b.slots[name].state == SlotDirty {
			out = append(out, name)
		}
	}
	return out
}
