package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/domain"
	"gorm.io/gorm"
)

// SubmissionFilters contains filter options for listing submissions
type SubmissionFilters struct {
	ReportingYear *int
	EntryID       *uuid.UUID
}

// SubmissionRepository stores the append-only submission log
type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *SubmissionRepository) WithTx(tx *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db: tx}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	var submission domain.Submission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// SetArchivePath records where the archived snapshot was written
func (r *SubmissionRepository) SetArchivePath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&domain.Submission{}).
		Where("id = ?", id).
		Update("archive_path", path).Error
}

func (r *SubmissionRepository) List(ctx context.Context, page, pageSize int, filters *SubmissionFilters) ([]domain.Submission, int64, error) {
	var submissions []domain.Submission
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Submission{})
	if filters != nil {
		if filters.ReportingYear != nil {
			query = query.Where("reporting_year = ?", *filters.ReportingYear)
		}
		if filters.EntryID != nil {
			query = query.Where("entry_id = ?", *filters.EntryID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("submitted_at DESC").Offset(offset).Limit(pageSize).Find(&submissions).Error

	return submissions, total, err
}
