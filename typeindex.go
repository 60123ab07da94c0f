package bramble

// typeIndex maps a type tag to the entities carrying it, in insertion order
// so that "first hit" collision queries are deterministic.
type typeIndex struct {
	byType map[string][]*Entity
}

func newTypeIndex() typeIndex {
	return typeIndex{byType: make(map[string][]*Entity)}
}

func (ix *typeIndex) add(e *Entity) {
	for _, t := range e.types {
		ix.byType[t] = append(ix.byType[t], e)
	}
}

func (ix *typeIndex) remove(e *Entity) {
	for _, t := range e.types {
		list := removeEntity(ix.byType[t], e)
		if len(list) == 0 {
			delete(ix.byType, t)
			continue
		}
		ix.byType[t] = list
	}
}

// get returns the entities tagged t. The returned slice MUST NOT be mutated.
func (ix *typeIndex) get(t string) []*Entity {
	return ix.byType[t]
}

// OfType returns the entities owned by s that carry tag t, including those
// still pending addition. The returned slice MUST NOT be mutated.
func (s *Screen) OfType(t string) []*Entity {
	return s.index.get(t)
}
