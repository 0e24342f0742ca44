package users

import (
	"context"

	"github.com/dmitrijs2005/capacitanet/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
}
