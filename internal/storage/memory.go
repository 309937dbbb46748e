package storage

import "sort"

// Memory is an in-process provider for tests. FailSaves makes every
// save fail, for exercising the rollback paths.
type Memory struct {
	data      map[string][]byte
	FailSaves error
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Load(key string) ([]byte, bool, error) {
	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

func (m *Memory) Save(key string, data []byte) error {
	if m.FailSaves != nil {
		return &PersistenceError{Op: "save", Key: key, Err: m.FailSaves}
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[key] = cp
	return nil
}

func (m *Memory) Keys() ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
