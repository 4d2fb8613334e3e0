package memory

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/xraph/tally"
	"github.com/xraph/tally/backup"
	"github.com/xraph/tally/id"
)

// table is an insertion-ordered set of records keyed by ID. Records are
// copied on the way in and on the way out so callers never alias stored
// state. The caller holds the store lock.
type table[T any] struct {
	name     string
	notFound error
	idOf     func(*T) id.ID
	detach   func(*T)

	rows  []T
	index map[string]int
}

func newTable[T any](name string, notFound error, idOf func(*T) id.ID, detach func(*T)) *table[T] {
	return &table[T]{
		name:     name,
		notFound: notFound,
		idOf:     idOf,
		detach:   detach,
		index:    make(map[string]int),
	}
}

func (t *table[T]) copyOf(v *T) *T {
	cp := *v
	if t.detach != nil {
		t.detach(&cp)
	}
	return &cp
}

func (t *table[T]) insert(v *T) error {
	key := t.idOf(v).String()
	if key == "" {
		return fmt.Errorf("%w: %s record has no id", tally.ErrInvalidInput, t.name)
	}
	if _, exists := t.index[key]; exists {
		return tally.ErrAlreadyExists
	}
	t.index[key] = len(t.rows)
	t.rows = append(t.rows, *t.copyOf(v))
	return nil
}

func (t *table[T]) get(i id.ID) (*T, error) {
	idx, ok := t.index[i.String()]
	if !ok {
		return nil, t.notFound
	}
	return t.copyOf(&t.rows[idx]), nil
}

func (t *table[T]) find(match func(*T) bool) (*T, bool) {
	for i := range t.rows {
		if match(&t.rows[i]) {
			return t.copyOf(&t.rows[i]), true
		}
	}
	return nil, false
}

func (t *table[T]) update(v *T) error {
	idx, ok := t.index[t.idOf(v).String()]
	if !ok {
		return t.notFound
	}
	t.rows[idx] = *t.copyOf(v)
	return nil
}

// remove reports whether a record was deleted.
func (t *table[T]) remove(i id.ID) bool {
	key := i.String()
	idx, ok := t.index[key]
	if !ok {
		return false
	}

	t.rows = slices.Delete(t.rows, idx, idx+1)
	delete(t.index, key)
	for j := idx; j < len(t.rows); j++ {
		t.index[t.idOf(&t.rows[j]).String()] = j
	}
	return true
}

func (t *table[T]) list(match func(*T) bool, limit, offset int) []*T {
	result := make([]*T, 0)
	skipped := 0
	for i := range t.rows {
		if match != nil && !match(&t.rows[i]) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		result = append(result, t.copyOf(&t.rows[i]))
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}

func (t *table[T]) tableName() string { return t.name }

func (t *table[T]) marshal() ([]byte, error) {
	if len(t.rows) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(t.rows)
}

// stage decodes data into a replacement table and returns a function that
// installs it. Nothing changes until the returned function runs.
func (t *table[T]) stage(data []byte) (func(), error) {
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: table %q: %w", backup.ErrInvalidFormat, t.name, err)
	}

	index := make(map[string]int, len(rows))
	for i := range rows {
		key := t.idOf(&rows[i]).String()
		if key == "" {
			return nil, fmt.Errorf("%w: table %q: row %d has no id", backup.ErrInvalidFormat, t.name, i)
		}
		if _, dup := index[key]; dup {
			return nil, fmt.Errorf("%w: table %q: duplicate id %q", backup.ErrInvalidFormat, t.name, key)
		}
		index[key] = i
	}

	return func() {
		t.rows = rows
		t.index = index
	}, nil
}

// tabler is the name-addressed view of a table used by backup and
// persistence.
type tabler interface {
	tableName() string
	marshal() ([]byte, error)
	stage(data []byte) (func(), error)
}
