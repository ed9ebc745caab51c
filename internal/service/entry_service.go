package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/auth"
	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/straye-as/cbam-api/internal/domain"
	"github.com/straye-as/cbam-api/internal/mapper"
	"github.com/straye-as/cbam-api/internal/repository"
	"github.com/straye-as/cbam-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// EntryService manages stored entries. Every rule about what may change is
// taken from the state derived by the calculation core; nothing here keeps a
// state column of its own.
type EntryService struct {
	entryRepo        *repository.EntryRepository
	submissionRepo   *repository.SubmissionRepository
	reference        *ReferenceService
	archive          *storage.Archive
	certificatePrice *float64
	logger           *zap.Logger
	now              func() time.Time
}

// NewEntryService creates an entry service. archive may be nil, in which
// case submissions are recorded without a snapshot document.
func NewEntryService(
	entryRepo *repository.EntryRepository,
	submissionRepo *repository.SubmissionRepository,
	reference *ReferenceService,
	archive *storage.Archive,
	certificatePrice *float64,
	logger *zap.Logger,
) *EntryService {
	return &EntryService{
		entryRepo:        entryRepo,
		submissionRepo:   submissionRepo,
		reference:        reference,
		archive:          archive,
		certificatePrice: certificatePrice,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// entryMutation changes a locked, unsubmitted entry inside a transaction.
// state is the entry's derived state before the change.
type entryMutation func(repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator, state cbam.State) error

// Create stores a new entry. CN codes are normalized; a malformed code is
// rejected, an unknown but well-formed one is kept and leaves the entry in
// DRAFT.
func (s *EntryService) Create(ctx context.Context, req *domain.CreateEntryRequest) (*domain.EntryDTO, error) {
	entry := mapper.NewEntry(req, auth.Actor(ctx))

	cn, err := normalizeCNCode(req.CNCode)
	if err != nil {
		return nil, err
	}
	entry.CNCode = cn
	entry.CountryOfOrigin = strings.TrimSpace(entry.CountryOfOrigin)

	for i := range entry.Precursors {
		code, err := normalizeCNCode(entry.Precursors[i].CNCode)
		if err != nil {
			return nil, err
		}
		entry.Precursors[i].CNCode = code
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	s.logger.Info("entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("cn_code", entry.CNCode),
		zap.Int("reporting_year", entry.ReportingYear),
		zap.String("created_by", entry.CreatedBy),
	)

	return s.GetByID(ctx, entry.ID)
}

func (s *EntryService) GetByID(ctx context.Context, id uuid.UUID) (*domain.EntryDTO, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToEntryDTO(entry, s.reference.Calculator())
	return &dto, nil
}

func (s *EntryService) List(ctx context.Context, page, pageSize int, filters *repository.EntryFilters, sortBy repository.EntrySortOption) (*domain.PaginatedResponse, error) {
	page, pageSize = clampPage(page, pageSize)

	entries, total, err := s.entryRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	calc := s.reference.Calculator()
	dtos := make([]domain.EntryDTO, len(entries))
	for i := range entries {
		dtos[i] = mapper.ToEntryDTO(&entries[i], calc)
	}

	return paginated(dtos, total, page, pageSize), nil
}

// Update applies a partial update. Every field that actually changes must be
// editable in the current state; otherwise nothing is saved and the
// rejected fields are reported. Any change to a calculation input drops the
// stored calculation, and correcting a VALIDATION_FAILED entry sends it back
// to validation.
func (s *EntryService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateEntryRequest) (*domain.EntryDTO, error) {
	return s.mutateAndReload(ctx, id, func(repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator, state cbam.State) error {
		var denied []string
		inputsChanged := false
		compositionChanged := false

		allow := func(field string, changed bool) bool {
			if !changed {
				return false
			}
			if !cbam.CanEditField(state, field) {
				denied = append(denied, field)
				return false
			}
			inputsChanged = true
			return true
		}

		if req.Reference != nil {
			entry.Reference = *req.Reference
		}
		if req.GoodsDescription != nil {
			entry.GoodsDescription = *req.GoodsDescription
		}
		if req.Importer != nil {
			entry.Importer = *req.Importer
		}

		if req.CNCode != nil {
			cn, err := normalizeCNCode(*req.CNCode)
			if err != nil {
				return err
			}
			if allow(cbam.FieldCNCode, cn != entry.CNCode) {
				entry.CNCode = cn
				compositionChanged = true
			}
		}
		if req.CountryOfOrigin != nil {
			country := strings.TrimSpace(*req.CountryOfOrigin)
			if allow(cbam.FieldCountry, country != entry.CountryOfOrigin) {
				entry.CountryOfOrigin = country
				compositionChanged = true
			}
		}
		if req.Quantity != nil && allow(cbam.FieldQuantity, *req.Quantity != entry.Quantity) {
			entry.Quantity = *req.Quantity
			compositionChanged = true
		}
		if req.ProductionRoute != nil && allow(cbam.FieldProductionRoute, *req.ProductionRoute != entry.ProductionRoute) {
			entry.ProductionRoute = *req.ProductionRoute
		}
		if req.ReportingYear != nil && allow(cbam.FieldReportingYear, *req.ReportingYear != entry.ReportingYear) {
			entry.ReportingYear = *req.ReportingYear
		}

		emissionsChanged := (req.DirectEmissionsSpecific != nil && *req.DirectEmissionsSpecific != entry.DirectEmissionsSpecific) ||
			(req.IndirectEmissionsSpecific != nil && *req.IndirectEmissionsSpecific != entry.IndirectEmissionsSpecific)
		if allow(cbam.FieldEmissions, emissionsChanged) {
			if req.DirectEmissionsSpecific != nil {
				entry.DirectEmissionsSpecific = *req.DirectEmissionsSpecific
			}
			if req.IndirectEmissionsSpecific != nil {
				entry.IndirectEmissionsSpecific = *req.IndirectEmissionsSpecific
			}
		}

		if req.CarbonPriceDuePaid != nil && allow(cbam.FieldCarbonPricePaid, *req.CarbonPriceDuePaid != entry.CarbonPriceDuePaid) {
			entry.CarbonPriceDuePaid = *req.CarbonPriceDuePaid
		}
		if req.DeMinimisThresholdExceeded != nil {
			changed := entry.DeMinimisThresholdExceeded == nil || *entry.DeMinimisThresholdExceeded != *req.DeMinimisThresholdExceeded
			if allow(cbam.FieldDeMinimis, changed) {
				entry.DeMinimisThresholdExceeded = req.DeMinimisThresholdExceeded
			}
		}
		if req.BenchmarkIntensity != nil {
			changed := entry.BenchmarkIntensity == nil || *entry.BenchmarkIntensity != *req.BenchmarkIntensity
			if allow(cbam.FieldBenchmark, changed) {
				benchmark := *req.BenchmarkIntensity
				entry.BenchmarkIntensity = &benchmark
			}
		}

		if len(denied) > 0 {
			return &StateError{State: state, Action: "edit", Fields: denied}
		}

		if inputsChanged {
			mapper.ClearCalculation(entry)
			if state == cbam.StateValidationFailed {
				entry.ValidationStatus = cbam.ValidationPending
				entry.ValidatedAt = nil
			}
		}
		if compositionChanged {
			// Default composition lines were apportioned from the old values
			if err := repo.ReplaceAutoPrecursors(ctx, entry.ID, nil); err != nil {
				return fmt.Errorf("failed to drop default precursors: %w", err)
			}
		}

		if err := repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}

		s.logger.Info("entry updated",
			zap.String("entry_id", entry.ID.String()),
			zap.String("state", string(state)),
			zap.Bool("inputs_changed", inputsChanged),
		)
		return nil
	})
}

func (s *EntryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.mutate(ctx, id, func(repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator, state cbam.State) error {
		if !cbam.CapabilitiesFor(state).CanDelete {
			return &StateError{State: state, Action: "delete the entry"}
		}
		if err := repo.Delete(ctx, entry.ID); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		s.logger.Info("entry deleted", zap.String("entry_id", entry.ID.String()), zap.String("by", auth.Actor(ctx)))
		return nil
	})
}

// AddPrecursor adds a user-supplied precursor line. Default composition
// lines are removed, since real data replaces the apportioned estimate.
func (s *EntryService) AddPrecursor(ctx context.Context, id uuid.UUID, req *domain.PrecursorRequest) (*domain.EntryDTO, error) {
	return s.mutateAndReload(ctx, id, func(repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator, state cbam.State) error {
		if !cbam.CapabilitiesFor(state).CanAddPrecursors {
			return &StateError{State: state, Action: "add precursors"}
		}
		cn, err := normalizeCNCode(req.CNCode)
		if err != nil {
			return err
		}

		if err := repo.ReplaceAutoPrecursors(ctx, entry.ID, nil); err != nil {
			return fmt.Errorf("failed to drop default precursors: %w", err)
		}
		precursor := mapper.NewEntryPrecursor(entry.ID, *req)
		precursor.CNCode = cn
		if err := repo.AddPrecursor(ctx, &precursor); err != nil {
			return fmt.Errorf("failed to add precursor: %w", err)
		}

		mapper.ClearCalculation(entry)
		return repo.Update(ctx, entry)
	})
}

func (s *EntryService) RemovePrecursor(ctx context.Context, id, precursorID uuid.UUID) (*domain.EntryDTO, error) {
	return s.mutateAndReload(ctx, id, func(repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator, state cbam.State) error {
		if !cbam.CapabilitiesFor(state).CanRemovePrecursors {
			return &StateError{State: state, Action: "remove precursors"}
		}
		if err := repo.DeletePrecursor(ctx, entry.ID, precursorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPrecursorNotFound
			}
			return fmt.Errorf("failed to remove precursor: %w", err)
		}

		mapper.ClearCalculation(entry)
		return repo.Update(ctx, entry)
	})
}

// RecordValidation stores the outcome of data validation
func (s *EntryService) RecordValidation(ctx context.Context, id uuid.UUID, req *domain.RecordValidationRequest) (*domain.EntryDTO, error) {
	return s.mutateAndReload(ctx, id, func(repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator, state cbam.State) error {
		if !cbam.CapabilitiesFor(state).CanRecordValidation {
			return &StateError{State: state, Action: "record validation"}
		}

		entry.ValidationStatus = req.Status
		entry.ValidationNotes = req.Notes
		entry.ValidatedAt = nil
		if req.Status != cbam.ValidationPending {
			now := s.now()
			entry.ValidatedAt = &now
		}

		if err := repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to record validation: %w", err)
		}
		s.logger.Info("validation recorded",
			zap.String("entry_id", entry.ID.String()),
			zap.String("status", string(req.Status)),
			zap.String("by", auth.Actor(ctx)),
		)
		return nil
	})
}

// RecordVerification stores the verifier's opinion. The calculation method
// follows the verification status, so a stored calculation is dropped
// whenever the status changes.
func (s *EntryService) RecordVerification(ctx context.Context, id uuid.UUID, req *domain.RecordVerificationRequest) (*domain.EntryDTO, error) {
	return s.mutateAndReload(ctx, id, func(repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator, state cbam.State) error {
		if !cbam.CapabilitiesFor(state).CanRecordVerification {
			return &StateError{State: state, Action: "record verification"}
		}

		if req.Status != entry.VerificationStatus {
			mapper.ClearCalculation(entry)
		}
		entry.VerificationStatus = req.Status
		entry.VerifierName = req.VerifierName
		entry.VerifiedAt = nil
		if req.Status != cbam.VerificationNotVerified {
			now := s.now()
			entry.VerifiedAt = &now
		}

		if err := repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to record verification: %w", err)
		}
		s.logger.Info("verification recorded",
			zap.String("entry_id", entry.ID.String()),
			zap.String("status", string(req.Status)),
			zap.String("method", string(cbam.DeriveCalculationMethod(req.Status))),
		)
		return nil
	})
}

// RequestChange sends a validated entry back to validation, dropping its
// stored calculation. The reason is kept in the validation notes.
func (s *EntryService) RequestChange(ctx context.Context, id uuid.UUID, req *domain.RequestChangeRequest) (*domain.EntryDTO, error) {
	return s.mutateAndReload(ctx, id, func(repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator, state cbam.State) error {
		if !cbam.CapabilitiesFor(state).CanRequestChange {
			return &StateError{State: state, Action: "request a change"}
		}

		entry.ValidationStatus = cbam.ValidationPending
		entry.ValidatedAt = nil
		entry.ValidationNotes = fmt.Sprintf("Change requested by %s: %s", auth.Actor(ctx), req.Reason)
		mapper.ClearCalculation(entry)

		next := calc.DetermineState(mapper.ToCBAMEntry(entry))
		if ok, reason := cbam.CanTransition(state, next); !ok {
			return fmt.Errorf("%w: %s", ErrNotAllowedInState, reason)
		}

		if err := repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to request change: %w", err)
		}
		s.logger.Info("change requested",
			zap.String("entry_id", entry.ID.String()),
			zap.String("from", string(state)),
			zap.String("to", string(next)),
		)
		return nil
	})
}

// AddLock opens a lifecycle lock. Locks may be opened in any state before
// submission.
func (s *EntryService) AddLock(ctx context.Context, id uuid.UUID, req *domain.CreateLockRequest) (*domain.EntryDTO, error) {
	return s.mutateAndReload(ctx, id, func(repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator, state cbam.State) error {
		lock := &domain.EntryLock{
			EntryID:   entry.ID,
			Type:      req.Type,
			Status:    cbam.LockPending,
			Reason:    req.Reason,
			CreatedBy: auth.Actor(ctx),
		}
		if err := repo.AddLock(ctx, lock); err != nil {
			return fmt.Errorf("failed to add lock: %w", err)
		}
		s.logger.Info("lock added",
			zap.String("entry_id", entry.ID.String()),
			zap.String("lock_id", lock.ID.String()),
			zap.String("type", string(lock.Type)),
		)
		return nil
	})
}

// ResolveLock closes an active lifecycle lock
func (s *EntryService) ResolveLock(ctx context.Context, id, lockID uuid.UUID, req *domain.ResolveLockRequest) (*domain.EntryDTO, error) {
	return s.mutateAndReload(ctx, id, func(repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator, state cbam.State) error {
		lock, err := repo.GetLock(ctx, entry.ID, lockID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLockNotFound
			}
			return fmt.Errorf("failed to get lock: %w", err)
		}
		if !lock.Status.IsActive() {
			return ErrLockClosed
		}

		now := s.now()
		lock.Status = req.Status
		lock.ResolvedBy = auth.Actor(ctx)
		lock.ResolvedAt = &now
		if err := repo.UpdateLock(ctx, lock); err != nil {
			return fmt.Errorf("failed to resolve lock: %w", err)
		}
		s.logger.Info("lock resolved",
			zap.String("entry_id", entry.ID.String()),
			zap.String("lock_id", lock.ID.String()),
			zap.String("status", string(lock.Status)),
		)
		return nil
	})
}

// Recalculate runs the official calculation and stores the result
func (s *EntryService) Recalculate(ctx context.Context, id uuid.UUID) (*domain.EntryDTO, error) {
	return s.mutateAndReload(ctx, id, s.recalculate(ctx))
}

// RecalculateStale recalculates every open entry whose stored calculation
// was made with another reference version. Failures are counted and logged;
// they do not stop the run.
func (s *EntryService) RecalculateStale(ctx context.Context, batchSize int) (*domain.RecalculationSummaryDTO, error) {
	if batchSize < 1 {
		batchSize = 100
	}
	version := s.reference.Calculator().Version()
	summary := &domain.RecalculationSummaryDTO{ReferenceVersion: version}

	err := s.entryRepo.ForEachOpenBatch(ctx, batchSize, func(batch []domain.Entry) error {
		for i := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			summary.Scanned++

			entry := &batch[i]
			if entry.CalculatedAt == nil || entry.ReferenceVersion == version {
				continue
			}
			if err := s.mutate(ctx, entry.ID, s.recalculate(ctx)); err != nil {
				summary.Failed++
				s.logger.Warn("failed to recalculate entry",
					zap.String("entry_id", entry.ID.String()),
					zap.String("stored_version", entry.ReferenceVersion),
					zap.Error(err),
				)
				continue
			}
			summary.Recalculated++
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("failed to recalculate entries: %w", err)
	}
	return summary, nil
}

func (s *EntryService) recalculate(ctx context.Context) entryMutation {
	return func(repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator, state cbam.State) error {
		if !cbam.CapabilitiesFor(state).CanRecalculate {
			return &StateError{State: state, Action: "recalculate"}
		}
		if err := s.syncDefaultPrecursors(ctx, repo, entry, calc); err != nil {
			return err
		}

		mapper.ClearCalculation(entry)
		res, err := calc.Calculate(mapper.ToCBAMEntry(entry), cbam.CalculateOptions{CertificatePrice: s.certificatePrice})
		if err != nil {
			return calculationError(err)
		}
		mapper.ApplyCalculation(entry, res, s.now())

		if err := repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to store calculation: %w", err)
		}
		s.logger.Debug("entry recalculated",
			zap.String("entry_id", entry.ID.String()),
			zap.Float64("certificates_required", res.CertificatesRequired),
			zap.String("reference_version", res.ReferenceVersion),
		)
		return nil
	}
}

// syncDefaultPrecursors stores the default composition of a complex good
// that has no user-supplied precursors, so the lines become visible and
// count towards precursor completeness. Lines from an earlier run are
// replaced. User-supplied lines are never touched.
func (s *EntryService) syncDefaultPrecursors(ctx context.Context, repo *repository.EntryRepository, entry *domain.Entry, calc *cbam.Calculator) error {
	for _, p := range entry.Precursors {
		if p.Source != cbam.PrecursorAutoDefault {
			return nil
		}
	}

	var rows []domain.EntryPrecursor
	if entry.Quantity > 0 {
		rows = mapper.PrecursorsFromCBAM(entry.ID, calc.DefaultPrecursors(entry.CNCode, entry.CountryOfOrigin, entry.Quantity))
	}
	if len(rows) == 0 && len(entry.Precursors) == 0 {
		return nil
	}

	if err := repo.ReplaceAutoPrecursors(ctx, entry.ID, rows); err != nil {
		return fmt.Errorf("failed to store default precursors: %w", err)
	}
	entry.Precursors = rows
	return nil
}

// Evaluate derives everything the UI shows for an entry. States that show
// the official calculation get a fresh one; earlier states get the
// conservative preview instead.
func (s *EntryService) Evaluate(ctx context.Context, id uuid.UUID) (*domain.EntryEvaluationDTO, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	calc := s.reference.Calculator()
	record := mapper.ToCBAMEntry(entry)
	desc := calc.Describe(record)

	out := &domain.EntryEvaluationDTO{
		Entry: mapper.ToEntryDTO(entry, calc),
		State: desc,
		Gates: calc.EvaluateGates(record),
	}

	if desc.VisibilityRules.ShowCalculation {
		res, err := calc.Calculate(record, cbam.CalculateOptions{CertificatePrice: s.certificatePrice})
		if err != nil {
			out.CalculationError = err.Error()
		} else {
			out.Calculation = &res
		}
	} else {
		preview := calc.Preview(record, s.certificatePrice)
		out.Preview = &preview
	}

	return out, nil
}

func (s *EntryService) GetState(ctx context.Context, id uuid.UUID) (*domain.EntryStateDTO, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.EntryStateDTO{
		EntryID:          entry.ID,
		StateDescription: s.reference.Calculator().Describe(mapper.ToCBAMEntry(entry)),
	}, nil
}

func (s *EntryService) GetGates(ctx context.Context, id uuid.UUID) (*domain.EntryGatesDTO, error) {
	entry, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	calc := s.reference.Calculator()
	record := mapper.ToCBAMEntry(entry)
	return &domain.EntryGatesDTO{
		EntryID:        entry.ID,
		State:          calc.DetermineState(record),
		GateEvaluation: calc.EvaluateGates(record),
	}, nil
}

func (s *EntryService) mutate(ctx context.Context, id uuid.UUID, fn entryMutation) error {
	calc := s.reference.Calculator()
	return s.entryRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		repo := s.entryRepo.WithTx(tx)
		entry, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return fmt.Errorf("failed to get entry: %w", err)
		}
		if entry.IsSubmitted() {
			return ErrEntrySubmitted
		}
		return fn(repo, entry, calc, calc.DetermineState(mapper.ToCBAMEntry(entry)))
	})
}

func (s *EntryService) mutateAndReload(ctx context.Context, id uuid.UUID, fn entryMutation) (*domain.EntryDTO, error) {
	if err := s.mutate(ctx, id, fn); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *EntryService) load(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	entry, err := s.entryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

func normalizeCNCode(raw string) (string, error) {
	code, ok := cbam.NormalizeCNCode(raw)
	if !ok {
		return "", fmt.Errorf("%w: malformed CN code %q", ErrInvalidInput, raw)
	}
	return code, nil
}

func clampPage(page, pageSize int) (int, int) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}
	return page, pageSize
}

func paginated(data interface{}, total int64, page, pageSize int) *domain.PaginatedResponse {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
