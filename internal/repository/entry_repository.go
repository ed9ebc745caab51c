package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/straye-as/cbam-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryFilters contains all filter options for listing entries
type EntryFilters struct {
	ReportingYear      *int
	CNCodePrefix       *string
	CountryOfOrigin    *string
	ValidationStatus   *cbam.ValidationStatus
	VerificationStatus *cbam.VerificationStatus
	Submitted          *bool
	SearchQuery        *string
}

// EntrySortOption represents available sort options
type EntrySortOption string

const (
	EntrySortByCreatedDesc  EntrySortOption = "created_desc"
	EntrySortByCreatedAsc   EntrySortOption = "created_asc"
	EntrySortByUpdatedDesc  EntrySortOption = "updated_desc"
	EntrySortByYearDesc     EntrySortOption = "year_desc"
	EntrySortByYearAsc      EntrySortOption = "year_asc"
	EntrySortByCNCode       EntrySortOption = "cn_code"
	EntrySortByQuantityDesc EntrySortOption = "quantity_desc"
)

type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// WithTx returns a repository bound to an open transaction
func (r *EntryRepository) WithTx(tx *gorm.DB) *EntryRepository {
	return &EntryRepository{db: tx}
}

// WithTransaction executes operations within a transaction
func (r *EntryRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *EntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	// Precursors are created with the entry; locks start empty
	return r.db.WithContext(ctx).Omit("Locks").Create(entry).Error
}

func (r *EntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	var entry domain.Entry
	err := r.withChildren(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetByIDForUpdate loads an entry and locks its row until the surrounding
// transaction ends. SQLite has no row locks; its single writer serializes
// transactions instead.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	query := r.db.WithContext(ctx)
	if query.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var entry domain.Entry
	if err := query.Where("id = ?", id).First(&entry).Error; err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Update saves the entry's own columns; child rows are managed separately
func (r *EntryRepository) Update(ctx context.Context, entry *domain.Entry) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(entry).Error
}

// Delete removes an entry together with its precursor and lock rows
func (r *EntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", id).Delete(&domain.EntryPrecursor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entry_id = ?", id).Delete(&domain.EntryLock{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Entry{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *EntryRepository) List(ctx context.Context, page, pageSize int, filters *EntryFilters, sortBy EntrySortOption) ([]domain.Entry, int64, error) {
	var entries []domain.Entry
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Entry{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, sortBy)

	offset := (page - 1) * pageSize
	err := r.withChildren(query).Offset(offset).Limit(pageSize).Find(&entries).Error

	return entries, total, err
}

// ForEachOpenBatch walks all entries that have not been submitted, in
// batches of batchSize. Returning an error from fn stops the walk.
func (r *EntryRepository) ForEachOpenBatch(ctx context.Context, batchSize int, fn func(batch []domain.Entry) error) error {
	var batch []domain.Entry
	result := r.withChildren(r.db.WithContext(ctx)).
		Where("submitted_at IS NULL").
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	return result.Error
}

// CountOpen returns the number of entries that have not been submitted
func (r *EntryRepository) CountOpen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Entry{}).Where("submitted_at IS NULL").Count(&count).Error
	return count, err
}

// Precursors

func (r *EntryRepository) AddPrecursor(ctx context.Context, p *domain.EntryPrecursor) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// DeletePrecursor removes one precursor line of an entry
func (r *EntryRepository) DeletePrecursor(ctx context.Context, entryID, precursorID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND entry_id = ?", precursorID, entryID).
		Delete(&domain.EntryPrecursor{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceAutoPrecursors swaps the default-composition lines of an entry for
// a new set. User-supplied lines are left untouched.
func (r *EntryRepository) ReplaceAutoPrecursors(ctx context.Context, entryID uuid.UUID, lines []domain.EntryPrecursor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ? AND source = ?", entryID, cbam.PrecursorAutoDefault).
			Delete(&domain.EntryPrecursor{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		return tx.Create(&lines).Error
	})
}

// Locks

func (r *EntryRepository) AddLock(ctx context.Context, lock *domain.EntryLock) error {
	return r.db.WithContext(ctx).Create(lock).Error
}

func (r *EntryRepository) GetLock(ctx context.Context, entryID, lockID uuid.UUID) (*domain.EntryLock, error) {
	var lock domain.EntryLock
	err := r.db.WithContext(ctx).
		Where("id = ? AND entry_id = ?", lockID, entryID).
		First(&lock).Error
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

func (r *EntryRepository) UpdateLock(ctx context.Context, lock *domain.EntryLock) error {
	return r.db.WithContext(ctx).Save(lock).Error
}

func (r *EntryRepository) withChildren(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Precursors", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Locks", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (r *EntryRepository) loadChildren(ctx context.Context, entry *domain.Entry) error {
	if err := r.db.WithContext(ctx).
		Where("entry_id = ?", entry.ID).
		Order("created_at ASC").
		Find(&entry.Precursors).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("entry_id = ?", entry.ID).
		Order("created_at ASC").
		Find(&entry.Locks).Error
}

// applyFilters applies all filter criteria to the query
func (r *EntryRepository) applyFilters(query *gorm.DB, filters *EntryFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.ReportingYear != nil {
		query = query.Where("reporting_year = ?", *filters.ReportingYear)
	}

	if filters.CNCodePrefix != nil && *filters.CNCodePrefix != "" {
		query = query.Where("cn_code LIKE ?", *filters.CNCodePrefix+"%")
	}

	if filters.CountryOfOrigin != nil {
		query = query.Where("UPPER(country_of_origin) = ?", strings.ToUpper(*filters.CountryOfOrigin))
	}

	if filters.ValidationStatus != nil {
		query = query.Where("validation_status = ?", *filters.ValidationStatus)
	}

	if filters.VerificationStatus != nil {
		query = query.Where("verification_status = ?", *filters.VerificationStatus)
	}

	if filters.Submitted != nil {
		if *filters.Submitted {
			query = query.Where("submitted_at IS NOT NULL")
		} else {
			query = query.Where("submitted_at IS NULL")
		}
	}

	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		pattern := "%" + strings.ToLower(*filters.SearchQuery) + "%"
		query = query.Where("LOWER(reference) LIKE ? OR LOWER(goods_description) LIKE ? OR LOWER(importer) LIKE ?",
			pattern, pattern, pattern)
	}

	return query
}

// applySorting applies the sort option to the query
func (r *EntryRepository) applySorting(query *gorm.DB, sortBy EntrySortOption) *gorm.DB {
	switch sortBy {
	case EntrySortByCreatedAsc:
		return query.Order("created_at ASC")
	case EntrySortByUpdatedDesc:
		return query.Order("updated_at DESC")
	case EntrySortByYearDesc:
		return query.Order("reporting_year DESC").Order("created_at DESC")
	case EntrySortByYearAsc:
		return query.Order("reporting_year ASC").Order("created_at DESC")
	case EntrySortByCNCode:
		return query.Order("cn_code ASC").Order("created_at DESC")
	case EntrySortByQuantityDesc:
		return query.Order("quantity DESC")
	default:
		return query.Order("created_at DESC")
	}
}
