package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/capacitanet/internal/common"
	"github.com/dmitrijs2005/capacitanet/internal/server/models"
	"github.com/dmitrijs2005/capacitanet/internal/server/repositories/records"
)

// RecordRepository stores each user as one JSON blob keyed by username.
type RecordRepository struct {
	store      records.Repository
	table      records.Table
	optimistic bool
}

// NewRecordRepository binds the repository to table. When optimistic is set,
// Save only succeeds if the record is still at the version it was read at.
func NewRecordRepository(store records.Repository, table records.Table, optimistic bool) *RecordRepository {
	return &RecordRepository{store: store, table: table, optimistic: optimistic}
}

func (r *RecordRepository) Get(ctx context.Context, username string) (*models.User, error) {
	item, err := r.store.Get(ctx, r.table, username)
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	if err := json.Unmarshal([]byte(item.Data), user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", username, err)
	}
	user.Normalize()
	user.Version = item.Version

	return user, nil
}

func (r *RecordRepository) Create(ctx context.Context, user *models.User) error {
	user.Normalize()
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", user.Username, err)
	}

	err = r.store.Put(ctx, r.table, records.Item{Key: user.Username, Data: string(data)}, records.IfNotExists)
	if err != nil {
		if errors.Is(err, common.ErrConditionFailed) {
			return common.ErrorAlreadyExists
		}
		return err
	}

	user.Version = 1
	return nil
}

func (r *RecordRepository) Save(ctx context.Context, user *models.User) error {
	user.Normalize()
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", user.Username, err)
	}

	if !r.optimistic {
		if err := r.store.Update(ctx, r.table, user.Username, string(data)); err != nil {
			return err
		}
		user.Version++
		return nil
	}

	err = r.store.UpdateIfVersion(ctx, r.table, user.Username, string(data), user.Version)
	if err != nil {
		if errors.Is(err, common.ErrConditionFailed) {
			return common.ErrVersionConflict
		}
		return err
	}

	user.Version++
	return nil
}
