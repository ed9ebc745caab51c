package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/auth"
	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/straye-as/cbam-api/internal/domain"
	applog "github.com/straye-as/cbam-api/internal/logger"
	"github.com/straye-as/cbam-api/internal/mapper"
	"github.com/straye-as/cbam-api/internal/repository"
	"github.com/straye-as/cbam-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submit finalizes an entry. The stored entry must derive to REPORT_READY,
// but that alone is not trusted: inside one transaction, with the entry row
// locked, the calculation is redone from the stored data and all gates are
// evaluated again. Only if every gate passes is the submission marker set and
// the submission recorded; any failure there rolls the submission back.
//
// The snapshot is archived after the commit so that a failed commit never
// leaves an archive object behind. A failed archive write is logged and the
// submission stays recorded without an archive path.
func (s *EntryService) Submit(ctx context.Context, id uuid.UUID) (*domain.SubmitResponse, error) {
	calc := s.reference.Calculator()
	actor := auth.Actor(ctx)

	var (
		submission *domain.Submission
		gates      cbam.GateEvaluation
		snapshot   *storage.SubmissionSnapshot
	)

	err := s.entryRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		repo := s.entryRepo.WithTx(tx)
		submissions := s.submissionRepo.WithTx(tx)

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
		if stored := calc.DetermineState(mapper.ToCBAMEntry(entry)); !cbam.CapabilitiesFor(stored).CanSubmit {
			return &StateError{State: stored, Action: "submit"}
		}

		mapper.ClearCalculation(entry)
		res, err := calc.Calculate(mapper.ToCBAMEntry(entry), cbam.CalculateOptions{CertificatePrice: s.certificatePrice})
		if err != nil {
			return calculationError(err)
		}
		now := s.now()
		mapper.ApplyCalculation(entry, res, now)

		record := mapper.ToCBAMEntry(entry)
		gates = calc.EvaluateGates(record)
		if !gates.CanSubmit {
			return &GateError{Evaluation: gates}
		}
		state := calc.DetermineState(record)
		if ok, reason := cbam.CanTransition(state, cbam.StateSubmitted); !ok {
			return fmt.Errorf("%w: %s", ErrNotAllowedInState, reason)
		}

		entry.SubmittedAt = &now
		entry.SubmittedBy = actor
		if err := repo.Update(ctx, entry); err != nil {
			return fmt.Errorf("failed to mark entry submitted: %w", err)
		}

		gatesJSON, err := json.Marshal(gates)
		if err != nil {
			return fmt.Errorf("failed to encode gates: %w", err)
		}
		calcJSON, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to encode calculation: %w", err)
		}

		submission = &domain.Submission{
			EntryID:              entry.ID,
			ReportingYear:        entry.ReportingYear,
			CNCode:               entry.CNCode,
			SubmittedBy:          actor,
			SubmittedAt:          now,
			CertificatesRequired: res.CertificatesRequired,
			TotalEmissions:       res.TotalEmbeddedEmissions,
			ReferenceVersion:     res.ReferenceVersion,
			Gates:                datatypes.JSON(gatesJSON),
			Calculation:          datatypes.JSON(calcJSON),
		}
		if err := submissions.Create(ctx, submission); err != nil {
			return fmt.Errorf("failed to record submission: %w", err)
		}

		snapshot = &storage.SubmissionSnapshot{
			SubmissionID:     submission.ID,
			EntryID:          entry.ID,
			SubmittedAt:      now,
			SubmittedBy:      actor,
			ReferenceVersion: res.ReferenceVersion,
			Entry:            mapper.ToCBAMEntry(entry),
			Calculation:      res,
			Gates:            gates,
		}
		return nil
	})
	if err != nil {
		var gateErr *GateError
		if errors.As(err, &gateErr) {
			s.logger.Info("submission blocked",
				zap.String("entry_id", id.String()),
				zap.Strings("reasons", gateErr.Evaluation.BlockedReasons),
			)
		}
		return nil, err
	}

	log := applog.WithEntry(s.logger, id.String(), submission.CNCode, submission.ReportingYear)
	if key, err := s.archiveSnapshot(ctx, snapshot); err != nil {
		log.Error("failed to archive submission snapshot",
			zap.String("submission_id", submission.ID.String()),
			zap.Error(err),
		)
	} else {
		submission.ArchivePath = key
	}

	log.Info("entry submitted",
		zap.String("submission_id", submission.ID.String()),
		zap.Float64("certificates_required", submission.CertificatesRequired),
		zap.String("reference_version", submission.ReferenceVersion),
		zap.String("archive_path", submission.ArchivePath),
		zap.String("by", actor),
	)

	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.SubmitResponse{
		Entry:      *entry,
		Submission: mapper.ToSubmissionDTO(submission),
		Gates:      gates,
	}, nil
}

// archiveSnapshot writes a committed submission's snapshot and records its
// key. It returns an empty key when no archive is configured.
func (s *EntryService) archiveSnapshot(ctx context.Context, snapshot *storage.SubmissionSnapshot) (string, error) {
	if s.archive == nil {
		return "", nil
	}
	key, err := s.archive.Write(ctx, snapshot)
	if err != nil {
		return "", err
	}
	if err := s.submissionRepo.SetArchivePath(ctx, snapshot.SubmissionID, key); err != nil {
		if delErr := s.archive.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove unreferenced snapshot", zap.String("key", key), zap.Error(delErr))
		}
		return "", fmt.Errorf("failed to store archive path: %w", err)
	}
	return key, nil
}

func (s *EntryService) ListSubmissions(ctx context.Context, page, pageSize int, filters *repository.SubmissionFilters) (*domain.PaginatedResponse, error) {
	page, pageSize = clampPage(page, pageSize)

	submissions, total, err := s.submissionRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	dtos := make([]domain.SubmissionDTO, len(submissions))
	for i := range submissions {
		dtos[i] = mapper.ToSubmissionDTO(&submissions[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

func (s *EntryService) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.SubmissionDTO, error) {
	submission, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToSubmissionDTO(submission)
	return &dto, nil
}

// GetSubmissionArchive reads the archived snapshot of a submission
func (s *EntryService) GetSubmissionArchive(ctx context.Context, id uuid.UUID) (*storage.SubmissionSnapshot, error) {
	if s.archive == nil {
		return nil, ErrArchiveUnavailable
	}
	submission, err := s.getSubmission(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission.ArchivePath == "" {
		return nil, fmt.Errorf("submission %s has no archive: %w", id, ErrNotFound)
	}

	snap, err := s.archive.Read(ctx, submission.ArchivePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("archive %s: %w", submission.ArchivePath, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return snap, nil
}

func (s *EntryService) getSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return submission, nil
}
