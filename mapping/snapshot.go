package mapping

import (
	"fmt"
	"maps"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

const snapshotVersion = 1

type snapshot struct {
	Version  int               `msgpack:"version"`
	Entities []*CompiledEntity `msgpack:"entities"`
}

// MarshalSnapshot encodes the compiled model.
func (c *Compiled) MarshalSnapshot() ([]byte, error) {
	s := snapshot{Version: snapshotVersion}
	for _, name := range c.Names() {
		s.Entities = append(s.Entities, c.entities[name])
	}
	data, err := msgpack.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("mapping: encode snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a compiled model produced by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (*Compiled, error) {
	var s snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("mapping: decode snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("mapping: unsupported snapshot version %d", s.Version)
	}
	c := &Compiled{entities: make(map[string]*CompiledEntity, len(s.Entities))}
	for _, ce := range s.Entities {
		if ce == nil || ce.Name == "" {
			return nil, fmt.Errorf("mapping: snapshot entity without name")
		}
		c.entities[ce.Name] = ce
	}
	if err := checkSuperclasses(c.entities); err != nil {
		return nil, err
	}
	return c, nil
}

// checkSuperclasses rejects superclass references to unknown entities and
// inheritance cycles.
func checkSuperclasses(entities map[string]*CompiledEntity) error {
	for _, name := range slices.Sorted(maps.Keys(entities)) {
		seen := map[string]bool{name: true}
		for ce := entities[name]; ce.Superclass != ""; {
			parent, ok := entities[ce.Superclass]
			if !ok {
				return fmt.Errorf("mapping: snapshot entity %s has unknown superclass %s", ce.Name, ce.Superclass)
			}
			if seen[parent.Name] {
				return fmt.Errorf("mapping: snapshot superclass cycle through %s", name)
			}
			seen[parent.Name] = true
			ce = parent
		}
	}
	return nil
}
