package graphql

import (
	"bytes"
	"encoding/json"
)

// OrderedMap is a response object that keeps keys in selection order when encoded.
type OrderedMap struct {
	keys   []string
	values map[string]interface{}
}

// NewOrderedMap creates an empty OrderedMap sized for n keys.
func NewOrderedMap(n int) *OrderedMap {
	return &OrderedMap{
		keys:   make([]string, 0, n),
		values: make(map[string]interface{}, n),
	}
}

// Set stores value under key. A new key is appended; an existing key keeps its position.
func (m *OrderedMap) Set(key string, value interface{}) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *OrderedMap) Get(key string) (interface{}, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m *OrderedMap) Len() int {
	return len(m.keys)
}

// MarshalJSON encodes the map as a JSON object in insertion order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
