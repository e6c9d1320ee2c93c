package repository

import (
	"github.com/pulsecraft/marketing-engine-backend/internal/models"

	"gorm.io/gorm"
)

type LearningRepository struct {
	db *gorm.DB
}

func NewLearningRepository(db *gorm.DB) *LearningRepository {
	return &LearningRepository{db: db}
}

// Create appends a learning record to the shared corpus
func (r *LearningRepository) Create(learning *models.Learning) error {
	return r.db.Create(learning).Error
}

// GetRecent retrieves the most recent learning records, oldest first
func (r *LearningRepository) GetRecent(limit int) ([]*models.Learning, error) {
	var learnings []*models.Learning
	err := r.db.Order("id DESC").Limit(limit).Find(&learnings).Error
	if err != nil {
		return nil, err
	}
	// reverse so callers see insertion order
	for i, j := 0, len(learnings)-1; i < j; i, j = i+1, j-1 {
		learnings[i], learnings[j] = learnings[j], learnings[i]
	}
	return learnings, nil
}
