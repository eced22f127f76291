package metadata

import "strings"

// PropertyPath is a dotted chain of properties starting at a root entity.
type PropertyPath struct {
	root  *Entity
	props []*Property
}

// PropertyPath resolves a dotted path against the entity. It returns nil
// when a segment is unknown or a non-terminal segment is not an
// association.
func (e *Entity) PropertyPath(path string) *PropertyPath {
	if path == "" {
		return nil
	}
	names := strings.Split(path, ".")
	props := make([]*Property, 0, len(names))
	cur := e
	for i, name := range names {
		if cur == nil {
			return nil
		}
		p := cur.Property(name)
		if p == nil {
			return nil
		}
		props = append(props, p)
		if i < len(names)-1 {
			if !p.IsAssociation() {
				return nil
			}
			cur = p.TargetEntity()
		}
	}
	return &PropertyPath{root: e, props: props}
}

// Root returns the entity the path starts at.
func (pp *PropertyPath) Root() *Entity { return pp.root }

// Len returns the number of segments.
func (pp *PropertyPath) Len() int { return len(pp.props) }

// Properties returns the path segments in order.
func (pp *PropertyPath) Properties() []*Property {
	props := make([]*Property, len(pp.props))
	copy(props, pp.props)
	return props
}

// Terminal returns the last property of the path.
func (pp *PropertyPath) Terminal() *Property { return pp.props[len(pp.props)-1] }

// Names returns the segment names.
func (pp *PropertyPath) Names() []string {
	names := make([]string, len(pp.props))
	for i, p := range pp.props {
		names[i] = p.Name
	}
	return names
}

// String returns the dotted path.
func (pp *PropertyPath) String() string {
	return strings.Join(pp.Names(), ".")
}
