package courses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/capacitanet/internal/common"
	"github.com/dmitrijs2005/capacitanet/internal/server/models"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/records"
)

// RecordRepository stores each course as one JSON blob keyed by course id.
type RecordRepository struct {
	store      records.Repository
	table      records.Table
	optimistic bool
}

func NewRecordRepository(store records.Repository, table records.Table, optimistic bool) *RecordRepository {
	return &RecordRepository{store: store, table: table, optimistic: optimistic}
}

func (r *RecordRepository) Get(ctx context.Context, courseID string) (*models.Course, error) {
	item, err := r.store.Get(ctx, r.table, courseID)
	if err != nil {
		return nil, err
	}
	return decode(item)
}

func (r *RecordRepository) Create(ctx context.Context, course *models.Course) error {
	data, err := encode(course)
	if err != nil {
		return err
	}

	err = r.store.Put(ctx, r.table, records.Item{Key: course.CourseID, Data: data}, records.IfNotExists)
	if err != nil {
		if errors.Is(err, common.ErrConditionFailed) {
			return common.ErrorAlreadyExists
		}
		return err
	}

	course.Version = 1
	return nil
}

func (r *RecordRepository) Save(ctx context.Context, course *models.Course) error {
	data, err := encode(course)
	if err != nil {
		return err
	}

	if r.optimistic {
		err = r.store.UpdateIfVersion(ctx, r.table, course.CourseID, data, course.Version)
		if errors.Is(err, common.ErrConditionFailed) {
			return common.ErrVersionConflict
		}
	} else {
		err = r.store.Update(ctx, r.table, course.CourseID, data)
	}
	if err != nil {
		return err
	}

	course.Version++
	return nil
}

// List returns every stored course. Any record that fails to decode fails
// the whole listing.
func (r *RecordRepository) List(ctx context.Context) ([]*models.Course, error) {
	items, err := r.store.Scan(ctx, r.table)
	if err != nil {
		return nil, err
	}

	out := make([]*models.Course, 0, len(items))
	for i := range items {
		c, err := decode(&items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func encode(course *models.Course) (string, error) {
	course.Normalize()
	data, err := json.Marshal(course)
	if err != nil {
		return "", fmt.Errorf("encode course %s: %w", course.CourseID, err)
	}
	return string(data), nil
}

func decode(item *records.Item) (*models.Course, error) {
	c := &models.Course{}
	if err := json.Unmarshal([]byte(item.Data), c); err != nil {
		return nil, fmt.Errorf("decode course %s: %w", item.Key, err)
	}
	c.Normalize()
	c.Version = item.Version
	return c, nil
}
