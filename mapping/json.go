package mapping

import "encoding/json"

// jsonSlot mirrors Slot's shape for the on-disk descriptor-set mapping
// format consumed by cmd/ilcc's --mapping flag.
type jsonSlot struct {
	Type      string      `json:"type"`
	NextLevel *jsonMapping `json:"next_level,omitempty"`
}

type jsonMapping struct {
	Slots []jsonSlot `json:"slots"`
}

// ParseJSON decodes a descriptor-set mapping from its on-disk JSON
// representation: a "slots" array of {"type": ..., "next_level": ...}
// entries, type one of unused/shader_resource/shader_uav/shader_sampler/
// next_descriptor_set.
func ParseJSON(data []byte) (*DescriptorSetMapping, error) {
	var jm jsonMapping
	if err := json.Unmarshal(data, &jm); err != nil {
		return nil, err
	}
	return jm.toMapping()
}

func (jm *jsonMapping) toMapping() (*DescriptorSetMapping, error) {
	if jm == nil {
		return nil, nil
	}
	m := &DescriptorSetMapping{Slots: make([]Slot, len(jm.Slots))}
	for i, js := range jm.Slots {
		slotType, err := parseSlotType(js.Type)
		if err != nil {
			return nil, err
		}
		next, err := js.NextLevel.toMapping()
		if err != nil {
			return nil, err
		}
		m.Slots[i] = Slot{Type: slotType, NextLevel: next}
	}
	return m, nil
}

func parseSlotType(s string) (SlotType, error) {
	switch s {
	case "", "unused":
		return Unused, nil
	case "shader_resource":
		return ShaderResource, nil
	case "shader_uav":
		return ShaderUAV, nil
	case "shader_sampler":
		return ShaderSampler, nil
	case "next_descriptor_set":
		return NextDescriptorSet, nil
	default:
		return Unused, &UnknownSlotTypeError{Value: s}
	}
}

// UnknownSlotTypeError reports a descriptor-set mapping JSON document
// naming a slot type outside the SlotType enum.
type UnknownSlotTypeError struct {
	Value string
}

func (e *UnknownSlotTypeError) Error() string {
	return "mapping: unknown slot type " + e.Value
}
