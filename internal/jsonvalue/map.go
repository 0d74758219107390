package jsonvalue

// Member is a single key/value pair of a Map.
type Member struct {
	Key   string
	Value Value
}

// Map is a string-keyed mapping that remembers insertion order.
type Map struct {
	members []Member
	index   map[string]int
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// Set stores value under key. Existing keys keep their original position.
func (m *Map) Set(key string, value Value) {
	if i, ok := m.index[key]; ok {
		m.members[i].Value = value
		return
	}
	m.index[key] = len(m.members)
	m.members = append(m.members, Member{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	i, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.members[i].Value, true
}

// Len returns the number of members.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.members)
}

// Members returns the members in insertion order. Callers must not modify it.
func (m *Map) Members() []Member {
	if m == nil {
		return nil
	}
	return m.members
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, m.Len())
	for _, member := range m.Members() {
		keys = append(keys, member.Key)
	}
	return keys
}
