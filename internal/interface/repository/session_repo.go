package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"planner-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormSessionRepository implements the SessionRepository interface
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GORM session repository
func NewGormSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &GormSessionRepository{
		db: db,
	}
}

// Sessions GORM model for database mapping
type Sessions struct {
	SessionID         string `gorm:"column:session_id;primaryKey"`
	PreferredPrograms string `gorm:"column:preferred_programs"` // comma-separated program codes
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName overrides the default table name
func (Sessions) TableName() string {
	return "m_sessions"
}

// Exists reports whether the session id is known
func (r *GormSessionRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&Sessions{}).Where("session_id = ?", sessionID).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// GetPreferredPrograms returns the session's preferred loyalty programs
func (r *GormSessionRepository) GetPreferredPrograms(ctx context.Context, sessionID string) ([]string, error) {
	var session Sessions
	result := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}

	var programs []string
	for _, p := range strings.Split(session.PreferredPrograms, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			programs = append(programs, trimmed)
		}
	}
	return programs, nil
}
