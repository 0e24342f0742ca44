package courses

import (
	"context"

	"github.com/dmitrijs2005/capacitanet/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, courseID string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Save(ctx context.Context, course *models.Course) error
	List(ctx context.Context) ([]*models.Course, error)
}
