package settlement

import (
	"context"

	"paysofter-checkout/internal/common/models"
	database "paysofter-checkout/internal/pkg/db"
)

type IRepository interface {
	Create(ctx context.Context, stl *models.Settlement) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.Settlement, error)
	FindByReferenceID(ctx context.Context, referenceID string) (*models.Settlement, error)
	List(ctx context.Context, limit, offset int) ([]models.Settlement, int64, error)
}

type Repository struct {
	db *database.Database
}

func NewRepo(db *database.Database) IRepository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, stl *models.Settlement) error {
	return r.db.WithContext(ctx).Create(stl).Error
}

func (r *Repository) FindBySessionID(ctx context.Context, sessionID string) (*models.Settlement, error) {
	var stl models.Settlement
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&stl).Error
	if err != nil {
		return nil, err
	}
	return &stl, nil
}

func (r *Repository) FindByReferenceID(ctx context.Context, referenceID string) (*models.Settlement, error) {
	var stl models.Settlement
	err := r.db.WithContext(ctx).Where("reference_id = ?", referenceID).First(&stl).Error
	if err != nil {
		return nil, err
	}
	return &stl, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Settlement, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Settlement{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Settlement
	err := r.db.WithContext(ctx).
		Order("settled_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
