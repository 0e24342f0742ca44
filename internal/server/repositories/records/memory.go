package records

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/capacitanet/internal/common"
)

// MemoryRepository keeps records in process memory.
type MemoryRepository struct {
	mu     sync.Mutex
	tables map[string]map[string]Item
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tables: make(map[string]map[string]Item)}
}

func (r *MemoryRepository) table(name string) map[string]Item {
	t, ok := r.tables[name]
	if !ok {
		t = make(map[string]Item)
		r.tables[name] = t
	}
	return t
}

func (r *MemoryRepository) Get(ctx context.Context, table Table, key string) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.table(table.Name)[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &item, nil
}

func (r *MemoryRepository) Put(ctx context.Context, table Table, item Item, cond Condition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.table(table.Name)
	existing, ok := t[item.Key]
	if ok && cond == IfNotExists {
		return common.ErrConditionFailed
	}
	item.Version = existing.Version + 1
	t[item.Key] = item
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, table Table, key string, data string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.table(table.Name)
	t[key] = Item{Key: key, Data: data, Version: t[key].Version + 1}
	return nil
}

func (r *MemoryRepository) UpdateIfVersion(ctx context.Context, table Table, key string, data string, version int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.table(table.Name)
	existing, ok := t[key]
	if !ok || existing.Version != version {
		return common.ErrConditionFailed
	}
	t[key] = Item{Key: key, Data: data, Version: version + 1}
	return nil
}

// Scan returns items ordered by key.
func (r *MemoryRepository) Scan(ctx context.Context, table Table) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.table(table.Name)
	items := make([]Item, 0, len(t))
	for _, item := range t {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items, nil
}
