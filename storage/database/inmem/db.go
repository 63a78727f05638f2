package inmemdb

import (
	"encoding/json"
	"sync"
)

type (
	// DB keeps every table in memory. Rows are stored as JSON so callers never share memory with the store.
	DB struct {
		user    *table
		catalog *table
		course  *table
		malags  *table
	}

	table struct {
		mutex sync.RWMutex
		rows  map[string][]byte
	}
)

func Open() *DB {
	return &DB{
		user:    newTable(),
		catalog: newTable(),
		course:  newTable(),
		malags:  newTable(),
	}
}

func newTable() *table {
	return &table{rows: make(map[string][]byte)}
}

func (t *table) get(id string, dst interface{}) (bool, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(row, dst)
}

func (t *table) put(id string, src interface{}) error {
	row, err := json.Marshal(src)
	if err != nil {
		return err
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.rows[id] = row
	return nil
}

// putIfAbsent reports whether the row was inserted.
func (t *table) putIfAbsent(id string, src interface{}) (bool, error) {
	row, err := json.Marshal(src)
	if err != nil {
		return false, err
	}
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if _, ok := t.rows[id]; ok {
		return false, nil
	}
	t.rows[id] = row
	return true, nil
}

func (t *table) delete(id string) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

func (t *table) each(fn func(row []byte) error) error {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	for _, row := range t.rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}
