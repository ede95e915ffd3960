package repository

import (
	"context"

	"github.com/jaekwang-park/vici/internal/model"
)

type TaskRepository interface {
	Create(ctx context.Context, userID string, task model.Task) (model.Task, error)
	GetByID(ctx context.Context, userID, taskID string) (model.Task, error)
	Update(ctx context.Context, userID string, task model.Task) (model.Task, error)
	Delete(ctx context.Context, userID, taskID string) error
	List(ctx context.Context, userID string) ([]model.Task, error)
	// Reorder assigns positions following ids. Unknown ids yield sql.ErrNoRows.
	Reorder(ctx context.Context, userID string, ids []string) error
}
