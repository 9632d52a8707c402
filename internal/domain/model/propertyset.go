package model

// Submission holds raw form fields keyed by field name. Keys are arbitrary;
// only those matching configured property names survive projection.
type Submission map[string]string

// PropertySet is an ordered mapping of property names to string values.
// Keys preserves insertion order, which follows the configured property order.
type PropertySet struct {
	keys   []string
	values map[string]string
}

// NewPropertySet returns an empty PropertySet.
func NewPropertySet() PropertySet {
	return PropertySet{keys: []string{}, values: map[string]string{}}
}

// Set assigns value to name. Re-setting an existing name replaces its value
// without changing its position.
func (p *PropertySet) Set(name, value string) {
	if p.values == nil {
		p.values = map[string]string{}
	}
	if _, ok := p.values[name]; !ok {
		p.keys = append(p.keys, name)
	}
	p.values[name] = value
}

// Get returns the value stored for name and whether it was present.
func (p PropertySet) Get(name string) (string, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Keys returns the property names in insertion order.
func (p PropertySet) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Len returns the number of properties in the set.
func (p PropertySet) Len() int {
	return len(p.keys)
}

// Map returns a copy of the set as a plain map. The result is never nil, so it
// always encodes as a JSON object.
func (p PropertySet) Map() map[string]string {
	out := make(map[string]string, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Project extracts the configured property names from a submission. A name is
// included when it is present as a key in s, with its value unchanged (empty
// strings included). Names absent from s are omitted, and keys of s that are
// not configured are dropped.
func Project(names []string, s Submission) PropertySet {
	set := NewPropertySet()
	for _, name := range names {
		if v, ok := s[name]; ok {
			set.Set(name, v)
		}
	}
	return set
}
