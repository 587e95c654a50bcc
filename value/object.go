package value

// Object is a plain JS object with insertion-ordered string keys.
type Object struct {
	props map[string]any
	keys  []string
}

// NewObject creates an empty object.
func NewObject() *Object {
	return &Object{props: make(map[string]any)}
}

// ObjectOf builds an object from alternating key, value arguments.
// It panics if a key is not a string.
func ObjectOf(kv ...any) *Object {
	o := NewObject()
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

// Set assigns a property, appending new keys at the end.
func (o *Object) Set(key string, v any) {
	if _, exists := o.props[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.props[key] = v
}

// Get returns a property value.
func (o *Object) Get(key string) (any, bool) {
	v, ok := o.props[key]
	return v, ok
}

// Delete removes a property.
func (o *Object) Delete(key string) bool {
	if _, ok := o.props[key]; !ok {
		return false
	}
	delete(o.props, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the own keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of own properties.
func (o *Object) Len() int {
	return len(o.keys)
}

// Each calls fn for every property in order until fn returns false.
func (o *Object) Each(fn func(key string, v any) bool) {
	for _, k := range o.keys {
		if !fn(k, o.props[k]) {
			return
		}
	}
}
