package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/auth"
	"github.com/straye-as/cbam-api/internal/cbam"
	"github.com/straye-as/cbam-api/internal/domain"
	"github.com/straye-as/cbam-api/internal/refdata"
	"github.com/straye-as/cbam-api/internal/repository"
	"github.com/straye-as/cbam-api/internal/service"
	"github.com/straye-as/cbam-api/internal/storage"
	"github.com/straye-as/cbam-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	entries *service.EntryService
	ctx     context.Context
}

func setupEntryService(t *testing.T) *testEnv {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return setupEntryServiceWithStore(t, local)
}

func setupEntryServiceWithStore(t *testing.T, store storage.Storage) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	reference := service.NewReferenceService(refdata.MustDefaultCalculator(), "", logger)

	svc := service.NewEntryService(
		repository.NewEntryRepository(db),
		repository.NewSubmissionRepository(db),
		reference,
		storage.NewArchive(store, "submissions"),
		nil,
		logger,
	)

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: "u-1",
		Email:  "declarant@example.com",
		Roles:  []string{auth.RoleDeclarant},
	})
	return &testEnv{db: db, entries: svc, ctx: ctx}
}

func ptr[T any](v T) *T { return &v }

// hotRolledCoil is a complex good with no precursor data and an unlisted
// country, so it runs entirely on default values.
func hotRolledCoil() *domain.CreateEntryRequest {
	return &domain.CreateEntryRequest{
		Reference:                  "MRN-26NO0001",
		GoodsDescription:           "Hot-rolled coil",
		CNCode:                     "7208 10 00",
		CountryOfOrigin:            "ZZ",
		Quantity:                   100,
		ReportingYear:              2026,
		DeMinimisThresholdExceeded: ptr(true),
	}
}

// verifiedIron is a simple good with reported actual data. Once verified it
// is fully covered by free allocation in 2026.
func verifiedIron() *domain.CreateEntryRequest {
	return &domain.CreateEntryRequest{
		CNCode:                     "72061000",
		CountryOfOrigin:            "IN",
		Quantity:                   100,
		ReportingYear:              2026,
		DirectEmissionsSpecific:    1.5,
		BenchmarkIntensity:         ptr(1.7),
		DeMinimisThresholdExceeded: ptr(true),
	}
}

func (env *testEnv) create(t *testing.T, req *domain.CreateEntryRequest) *domain.EntryDTO {
	t.Helper()
	dto, err := env.entries.Create(env.ctx, req)
	require.NoError(t, err)
	return dto
}

func (env *testEnv) validate(t *testing.T, id uuid.UUID) *domain.EntryDTO {
	t.Helper()
	dto, err := env.entries.RecordValidation(env.ctx, id, &domain.RecordValidationRequest{Status: cbam.ValidationValidated})
	require.NoError(t, err)
	return dto
}

func TestEntryService_Create(t *testing.T) {
	env := setupEntryService(t)

	dto := env.create(t, hotRolledCoil())
	assert.Equal(t, "72081000", dto.CNCode, "CN code is normalized")
	assert.Equal(t, cbam.CategoryIronSteel, dto.Category)
	assert.Equal(t, cbam.MethodDefaultValues, dto.CalculationMethod)
	assert.Equal(t, cbam.StateDataCollection, dto.State, "complex good without precursors")
	assert.Equal(t, "declarant@example.com", dto.CreatedBy)

	outOfScope := env.create(t, &domain.CreateEntryRequest{CNCode: "84713000", ReportingYear: 2026})
	assert.Equal(t, cbam.StateDraft, outOfScope.State)

	_, err := env.entries.Create(env.ctx, &domain.CreateEntryRequest{CNCode: "72A8", ReportingYear: 2026})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = env.entries.GetByID(env.ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrEntryNotFound)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestEntryService_List(t *testing.T) {
	env := setupEntryService(t)
	env.create(t, hotRolledCoil())
	env.create(t, verifiedIron())

	year := 2026
	res, err := env.entries.List(env.ctx, 0, 0, &repository.EntryFilters{ReportingYear: &year}, repository.EntrySortByCNCode)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.PageSize)
	assert.Equal(t, 1, res.TotalPages)

	dtos, ok := res.Data.([]domain.EntryDTO)
	require.True(t, ok)
	assert.Equal(t, "72061000", dtos[0].CNCode)
}

func TestEntryService_DefaultValueLifecycle(t *testing.T) {
	env := setupEntryService(t)
	entry := env.create(t, hotRolledCoil())

	recalculated, err := env.entries.Recalculate(env.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, cbam.StateValidationPending, recalculated.State)
	require.Len(t, recalculated.Precursors, 3)
	for _, p := range recalculated.Precursors {
		assert.Equal(t, cbam.PrecursorAutoDefault, p.Source)
	}
	assert.True(t, recalculated.DefaultApplied)
	assert.Zero(t, recalculated.DirectEmissionsSpecific, "reported value is kept")
	require.NotNil(t, recalculated.CalculatedDirectSpecific)
	assert.InDelta(t, 2.535, *recalculated.CalculatedDirectSpecific, 1e-9)
	require.NotNil(t, recalculated.CertificatesRequired)
	assert.InDelta(t, 299.98, *recalculated.CertificatesRequired, 1e-6)
	assert.Equal(t, "2026.1", recalculated.ReferenceVersion)

	validated := env.validate(t, entry.ID)
	assert.Equal(t, cbam.StateReportReady, validated.State)

	res, err := env.entries.Submit(env.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, cbam.StateSubmitted, res.Entry.State)
	assert.Equal(t, "declarant@example.com", res.Entry.SubmittedBy)
	assert.True(t, res.Gates.CanSubmit)
	assert.InDelta(t, 299.98, res.Submission.CertificatesRequired, 1e-6)
	assert.InDelta(t, 429.46, res.Submission.TotalEmissions, 1e-6)
	assert.NotEmpty(t, res.Submission.ArchivePath)

	snap, err := env.entries.GetSubmissionArchive(env.ctx, res.Submission.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, snap.EntryID)
	assert.Equal(t, "72081000", snap.Entry.CNCode)
	assert.True(t, snap.Entry.IsSubmitted())
	assert.InDelta(t, 299.98, snap.Calculation.CertificatesRequired, 1e-6)

	list, err := env.entries.ListSubmissions(env.ctx, 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
}

func TestEntryService_SubmittedEntryIsImmutable(t *testing.T) {
	env := setupEntryService(t)
	entry := env.create(t, hotRolledCoil())
	_, err := env.entries.Recalculate(env.ctx, entry.ID)
	require.NoError(t, err)
	env.validate(t, entry.ID)
	_, err = env.entries.Submit(env.ctx, entry.ID)
	require.NoError(t, err)

	_, err = env.entries.Update(env.ctx, entry.ID, &domain.UpdateEntryRequest{Reference: ptr("changed")})
	assert.ErrorIs(t, err, service.ErrEntrySubmitted)
	assert.ErrorIs(t, err, service.ErrConflict)

	_, err = env.entries.Submit(env.ctx, entry.ID)
	assert.ErrorIs(t, err, service.ErrEntrySubmitted)

	_, err = env.entries.Recalculate(env.ctx, entry.ID)
	assert.ErrorIs(t, err, service.ErrEntrySubmitted)

	_, err = env.entries.AddLock(env.ctx, entry.ID, &domain.CreateLockRequest{Type: cbam.LockRecalculationRequest})
	assert.ErrorIs(t, err, service.ErrEntrySubmitted)

	assert.ErrorIs(t, env.entries.Delete(env.ctx, entry.ID), service.ErrEntrySubmitted)
}

func TestEntryService_SubmitRequiresReportReady(t *testing.T) {
	env := setupEntryService(t)
	entry := env.create(t, verifiedIron())
	assert.Equal(t, cbam.StateValidationPending, entry.State)

	_, err := env.entries.Submit(env.ctx, entry.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNotAllowedInState)

	var stateErr *service.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, cbam.StateValidationPending, stateErr.State)
}

func TestEntryService_SubmitRevalidatesFromStoredData(t *testing.T) {
	env := setupEntryService(t)
	entry := env.create(t, verifiedIron())

	_, err := env.entries.RecordVerification(env.ctx, entry.ID, &domain.RecordVerificationRequest{
		Status:       cbam.VerificationSatisfactory,
		VerifierName: "Nordic Verification AS",
	})
	require.NoError(t, err)
	env.validate(t, entry.ID)

	recalculated, err := env.entries.Recalculate(env.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, cbam.MethodEU, recalculated.CalculationMethod)
	require.NotNil(t, recalculated.CertificatesRequired)
	assert.Zero(t, *recalculated.CertificatesRequired)
	assert.Equal(t, cbam.StateVerified, recalculated.State, "zero certificates above de minimis blocks")

	// A stale stored figure makes the entry look ready
	require.NoError(t, env.db.Model(&domain.Entry{}).Where("id = ?", entry.ID).
		Update("certificates_required", 5.0).Error)
	stale, err := env.entries.GetByID(env.ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, cbam.StateReportReady, stale.State)

	_, err = env.entries.Submit(env.ctx, entry.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrSubmissionBlocked)

	var gateErr *service.GateError
	require.ErrorAs(t, err, &gateErr)
	assert.False(t, gateErr.Evaluation.CanSubmit)
	require.Len(t, gateErr.Evaluation.BlockedReasons, 1)
	assert.Contains(t, gateErr.Evaluation.BlockedReasons[0], "zero")

	after, err := env.entries.GetByID(env.ctx, entry.ID)
	require.NoError(t, err)
	assert.Nil(t, after.SubmittedAt, "blocked submission rolls back")
	require.NotNil(t, after.CertificatesRequired)
	assert.Equal(t, 5.0, *after.CertificatesRequired)

	list, err := env.entries.ListSubmissions(env.ctx, 1, 10, nil)
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestEntryService_UpdateCapabilities(t *testing.T) {
	env := setupEntryService(t)

	t.Run("open editing before validation", func(t *testing.T) {
		entry := env.create(t, &domain.CreateEntryRequest{CNCode: "72081000", ReportingYear: 2026})
		assert.Equal(t, cbam.StateScopeResolved, entry.State)

		updated, err := env.entries.Update(env.ctx, entry.ID, &domain.UpdateEntryRequest{
			CountryOfOrigin:         ptr("IN"),
			Quantity:                ptr(50.0),
			DirectEmissionsSpecific: ptr(1.9),
		})
		require.NoError(t, err)
		assert.Equal(t, "IN", updated.CountryOfOrigin)
		assert.Equal(t, 50.0, updated.Quantity)
		assert.Equal(t, cbam.StateDataCollection, updated.State, "complex good still lacks precursors")

		_, err = env.entries.Recalculate(env.ctx, entry.ID)
		require.NoError(t, err)
		_, err = env.entries.Update(env.ctx, entry.ID, &domain.UpdateEntryRequest{Quantity: ptr(0.0)})
		assert.ErrorIs(t, err, service.ErrNotAllowedInState, "quantity is frozen once validation is pending")
	})

	t.Run("frozen fields in validation pending", func(t *testing.T) {
		entry := env.create(t, verifiedIron())

		_, err := env.entries.Update(env.ctx, entry.ID, &domain.UpdateEntryRequest{
			Quantity:        ptr(200.0),
			CountryOfOrigin: ptr("IN"),
			Reference:       ptr("MRN-2"),
		})
		require.Error(t, err)
		var stateErr *service.StateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, []string{cbam.FieldQuantity}, stateErr.Fields, "unchanged values are not rejected")

		unchanged, err := env.entries.GetByID(env.ctx, entry.ID)
		require.NoError(t, err)
		assert.Empty(t, unchanged.Reference, "nothing is saved when a field is rejected")

		described, err := env.entries.Update(env.ctx, entry.ID, &domain.UpdateEntryRequest{Reference: ptr("MRN-2")})
		require.NoError(t, err)
		assert.Equal(t, "MRN-2", described.Reference)
	})

	t.Run("correcting a failed validation resets it", func(t *testing.T) {
		entry := env.create(t, verifiedIron())
		failed, err := env.entries.RecordValidation(env.ctx, entry.ID, &domain.RecordValidationRequest{
			Status: cbam.ValidationFlagged,
			Notes:  "quantity does not match customs declaration",
		})
		require.NoError(t, err)
		assert.Equal(t, cbam.StateValidationFailed, failed.State)

		_, err = env.entries.Update(env.ctx, entry.ID, &domain.UpdateEntryRequest{CNCode: ptr("72011011")})
		assert.ErrorIs(t, err, service.ErrNotAllowedInState, "CN code needs a lock in this state")

		corrected, err := env.entries.Update(env.ctx, entry.ID, &domain.UpdateEntryRequest{Quantity: ptr(95.0)})
		require.NoError(t, err)
		assert.Equal(t, cbam.ValidationPending, corrected.ValidationStatus)
		assert.Equal(t, cbam.StateValidationPending, corrected.State)
	})
}

func TestEntryService_RecalculateUnknownYear(t *testing.T) {
	env := setupEntryService(t)
	entry := env.create(t, &domain.CreateEntryRequest{CNCode: "72081000", CountryOfOrigin: "ZZ", Quantity: 10, ReportingYear: 2026})
	require.Equal(t, cbam.StateDataCollection, entry.State)

	_, err := env.entries.Update(env.ctx, entry.ID, &domain.UpdateEntryRequest{ReportingYear: ptr(2025)})
	require.NoError(t, err)
	_, err = env.entries.Recalculate(env.ctx, entry.ID)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	unchanged, err := env.entries.GetByID(env.ctx, entry.ID)
	require.NoError(t, err)
	assert.Empty(t, unchanged.Precursors, "failed recalculation stores no default lines")
	assert.Nil(t, unchanged.CertificatesRequired)

	_, err = env.entries.Update(env.ctx, entry.ID, &domain.UpdateEntryRequest{ReportingYear: ptr(2027)})
	require.NoError(t, err)
	calculated, err := env.entries.Recalculate(env.ctx, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, calculated.CertificatesRequired)
	require.Len(t, calculated.Precursors, 3)
	assert.Equal(t, cbam.StateValidationPending, calculated.State)

	_, err = env.entries.RemovePrecursor(env.ctx, entry.ID, calculated.Precursors[0].ID)
	assert.ErrorIs(t, err, service.ErrNotAllowedInState)
}

func TestEntryService_Precursors(t *testing.T) {
	env := setupEntryService(t)
	entry := env.create(t, &domain.CreateEntryRequest{CNCode: "72081000", CountryOfOrigin: "ZZ", ReportingYear: 2026})
	assert.Equal(t, cbam.StateDataCollection, entry.State)

	withLine, err := env.entries.AddPrecursor(env.ctx, entry.ID, &domain.PrecursorRequest{
		CNCode:         "7207.11.11",
		Name:           "Semi-finished billet",
		Quantity:       80,
		EmissionFactor: 1.9,
	})
	require.NoError(t, err)
	require.Len(t, withLine.Precursors, 1)
	assert.Equal(t, "72071111", withLine.Precursors[0].CNCode)
	assert.InDelta(t, 152.0, withLine.Precursors[0].EmbeddedEmissions, 1e-9)
	assert.Equal(t, cbam.PrecursorActual, withLine.Precursors[0].Source)

	removed, err := env.entries.RemovePrecursor(env.ctx, entry.ID, withLine.Precursors[0].ID)
	require.NoError(t, err)
	assert.Empty(t, removed.Precursors)

	_, err = env.entries.RemovePrecursor(env.ctx, entry.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrPrecursorNotFound)
}

func TestEntryService_UserPrecursorReplacesDefaults(t *testing.T) {
	env := setupEntryService(t)
	entry := env.create(t, &domain.CreateEntryRequest{CNCode: "72081000", CountryOfOrigin: "ZZ", Quantity: 100, ReportingYear: 2026})

	// Materialize defaults, then flag validation to reopen editing
	_, err := env.entries.Recalculate(env.ctx, entry.ID)
	require.NoError(t, err)
	_, err = env.entries.RecordValidation(env.ctx, entry.ID, &domain.RecordValidationRequest{Status: cbam.ValidationRejected})
	require.NoError(t, err)

	updated, err := env.entries.AddPrecursor(env.ctx, entry.ID, &domain.PrecursorRequest{CNCode: "72011011", Quantity: 50, EmissionFactor: 2})
	require.NoError(t, err)
	require.Len(t, updated.Precursors, 1)
	assert.Equal(t, cbam.PrecursorActual, updated.Precursors[0].Source)
	assert.Nil(t, updated.CertificatesRequired, "stored calculation is dropped")

	recalculated, err := env.entries.Recalculate(env.ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, recalculated.Precursors, 1, "user lines are never replaced")
}

func TestEntryService_Verification(t *testing.T) {
	env := setupEntryService(t)
	entry := env.create(t, verifiedIron())
	_, err := env.entries.Recalculate(env.ctx, entry.ID)
	require.NoError(t, err)

	verified, err := env.entries.RecordVerification(env.ctx, entry.ID, &domain.RecordVerificationRequest{
		Status:       cbam.VerificationSatisfactory,
		VerifierName: "Nordic Verification AS",
	})
	require.NoError(t, err)
	assert.Equal(t, cbam.MethodEU, verified.CalculationMethod)
	assert.Equal(t, "Nordic Verification AS", verified.VerifierName)
	assert.Nil(t, verified.TotalEmbeddedEmissions, "method changed, calculation dropped")

	scopeOnly := env.create(t, &domain.CreateEntryRequest{CNCode: "72061000", ReportingYear: 2026})
	_, err = env.entries.RecordVerification(env.ctx, scopeOnly.ID, &domain.RecordVerificationRequest{Status: cbam.VerificationSatisfactory})
	assert.ErrorIs(t, err, service.ErrNotAllowedInState)

	_, err = env.entries.RecordValidation(env.ctx, scopeOnly.ID, &domain.RecordValidationRequest{Status: cbam.ValidationValidated})
	assert.ErrorIs(t, err, service.ErrNotAllowedInState)
}

func TestEntryService_RequestChange(t *testing.T) {
	env := setupEntryService(t)
	entry := env.create(t, hotRolledCoil())

	_, err := env.entries.RequestChange(env.ctx, entry.ID, &domain.RequestChangeRequest{Reason: "wrong CN code"})
	assert.ErrorIs(t, err, service.ErrNotAllowedInState, "nothing to send back in data collection")

	_, err = env.entries.Recalculate(env.ctx, entry.ID)
	require.NoError(t, err)
	ready := env.validate(t, entry.ID)
	require.Equal(t, cbam.StateReportReady, ready.State)

	back, err := env.entries.RequestChange(env.ctx, entry.ID, &domain.RequestChangeRequest{Reason: "importer disputes quantity"})
	require.NoError(t, err)
	assert.Equal(t, cbam.StateValidationPending, back.State)
	assert.Equal(t, cbam.ValidationPending, back.ValidationStatus)
	assert.Contains(t, back.ValidationNotes, "importer disputes quantity")
	assert.Nil(t, back.CertificatesRequired)
}

func TestEntryService_Locks(t *testing.T) {
	env := setupEntryService(t)
	entry := env.create(t, hotRolledCoil())
	_, err := env.entries.Recalculate(env.ctx, entry.ID)
	require.NoError(t, err)
	env.validate(t, entry.ID)

	locked, err := env.entries.AddLock(env.ctx, entry.ID, &domain.CreateLockRequest{
		Type:   cbam.LockCNCodeChange,
		Reason: "reclassify as 7208 25",
	})
	require.NoError(t, err)
	require.Len(t, locked.Locks, 1)
	assert.Equal(t, cbam.LockPending, locked.Locks[0].Status)
	assert.Equal(t, "declarant@example.com", locked.Locks[0].CreatedBy)
	assert.Equal(t, cbam.StateVerified, locked.State, "an active lock blocks report readiness")

	gates, err := env.entries.GetGates(env.ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, gates.CanSubmit)

	resolved, err := env.entries.ResolveLock(env.ctx, entry.ID, locked.Locks[0].ID, &domain.ResolveLockRequest{Status: cbam.LockRejected})
	require.NoError(t, err)
	assert.Equal(t, cbam.LockRejected, resolved.Locks[0].Status)
	assert.NotNil(t, resolved.Locks[0].ResolvedAt)
	assert.Equal(t, cbam.StateReportReady, resolved.State)

	_, err = env.entries.ResolveLock(env.ctx, entry.ID, locked.Locks[0].ID, &domain.ResolveLockRequest{Status: cbam.LockApproved})
	assert.ErrorIs(t, err, service.ErrLockClosed)

	_, err = env.entries.ResolveLock(env.ctx, entry.ID, uuid.New(), &domain.ResolveLockRequest{Status: cbam.LockApproved})
	assert.ErrorIs(t, err, service.ErrLockNotFound)
}

func TestEntryService_Delete(t *testing.T) {
	env := setupEntryService(t)

	draft := env.create(t, hotRolledCoil())
	require.NoError(t, env.entries.Delete(env.ctx, draft.ID))
	_, err := env.entries.GetByID(env.ctx, draft.ID)
	assert.ErrorIs(t, err, service.ErrEntryNotFound)

	validated := env.create(t, verifiedIron())
	env.validate(t, validated.ID)
	assert.ErrorIs(t, env.entries.Delete(env.ctx, validated.ID), service.ErrNotAllowedInState)

	assert.ErrorIs(t, env.entries.Delete(env.ctx, uuid.New()), service.ErrEntryNotFound)
}

func TestEntryService_Evaluate(t *testing.T) {
	env := setupEntryService(t)
	entry := env.create(t, hotRolledCoil())

	early, err := env.entries.Evaluate(env.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, cbam.StateDataCollection, early.State.State)
	assert.Nil(t, early.Calculation)
	require.NotNil(t, early.Preview)
	assert.NotEmpty(t, early.Preview.Warnings)
	assert.False(t, early.Gates.CanSubmit)

	_, err = env.entries.Recalculate(env.ctx, entry.ID)
	require.NoError(t, err)
	env.validate(t, entry.ID)

	ready, err := env.entries.Evaluate(env.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, cbam.StateReportReady, ready.State.State)
	assert.True(t, ready.State.Capabilities.CanSubmit)
	assert.Nil(t, ready.Preview)
	require.NotNil(t, ready.Calculation)
	assert.InDelta(t, 299.98, ready.Calculation.CertificatesRequired, 1e-6)
	assert.True(t, ready.Gates.CanSubmit)

	state, err := env.entries.GetState(env.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, cbam.StateReportReady, state.State)
	assert.Empty(t, state.EditableFields)
}

func TestEntryService_RecalculateStale(t *testing.T) {
	env := setupEntryService(t)

	stale := env.create(t, hotRolledCoil())
	current := env.create(t, verifiedIron())
	env.create(t, &domain.CreateEntryRequest{CNCode: "72061000", ReportingYear: 2026})
	for _, id := range []uuid.UUID{stale.ID, current.ID} {
		_, err := env.entries.Recalculate(env.ctx, id)
		require.NoError(t, err)
	}
	require.NoError(t, env.db.Model(&domain.Entry{}).Where("id = ?", stale.ID).
		Update("reference_version", "2025.4").Error)

	summary, err := env.entries.RecalculateStale(env.ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "2026.1", summary.ReferenceVersion)
	assert.Equal(t, 3, summary.Scanned)
	assert.Equal(t, 1, summary.Recalculated)
	assert.Zero(t, summary.Failed)

	refreshed, err := env.entries.GetByID(env.ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, "2026.1", refreshed.ReferenceVersion)
}

// failingStore rejects every write
type failingStore struct{}

func (failingStore) Put(context.Context, string, string, io.Reader) (int64, error) {
	return 0, errors.New("blob store unavailable")
}

func (failingStore) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (failingStore) Delete(context.Context, string) error {
	return nil
}

func (env *testEnv) verify(t *testing.T, id uuid.UUID) {
	t.Helper()
	_, err := env.entries.RecordVerification(env.ctx, id, &domain.RecordVerificationRequest{Status: cbam.VerificationSatisfactory})
	require.NoError(t, err)
}

func TestEntryService_SubmitRequiresCertificatesUnlessBelowDeMinimis(t *testing.T) {
	env := setupEntryService(t)

	t.Run("flag never set and no calculation", func(t *testing.T) {
		req := verifiedIron()
		req.DeMinimisThresholdExceeded = nil
		entry := env.create(t, req)
		env.verify(t, entry.ID)
		validated := env.validate(t, entry.ID)
		assert.Nil(t, validated.DeMinimisThresholdExceeded)
		assert.Nil(t, validated.CertificatesRequired)
		assert.Equal(t, cbam.StateVerified, validated.State)

		_, err := env.entries.Submit(env.ctx, entry.ID)
		var stateErr *service.StateError
		require.ErrorAs(t, err, &stateErr)
		assert.Equal(t, cbam.StateVerified, stateErr.State)
	})

	t.Run("flag never set and zero certificates at submit", func(t *testing.T) {
		req := verifiedIron()
		req.DeMinimisThresholdExceeded = nil
		entry := env.create(t, req)
		env.verify(t, entry.ID)
		env.validate(t, entry.ID)

		// A stale stored figure gets the entry to REPORT_READY; the fresh
		// calculation at submit yields zero certificates
		require.NoError(t, env.db.Model(&domain.Entry{}).Where("id = ?", entry.ID).
			Update("certificates_required", 5.0).Error)
		stale, err := env.entries.GetByID(env.ctx, entry.ID)
		require.NoError(t, err)
		require.Equal(t, cbam.StateReportReady, stale.State)

		_, err = env.entries.Submit(env.ctx, entry.ID)
		assert.ErrorIs(t, err, service.ErrSubmissionBlocked)
		var gateErr *service.GateError
		require.ErrorAs(t, err, &gateErr)
		for _, g := range gateErr.Evaluation.Gates {
			if g.Gate == cbam.GateCertificatesRequired {
				assert.False(t, g.Passed)
			}
		}

		after, err := env.entries.GetByID(env.ctx, entry.ID)
		require.NoError(t, err)
		assert.Nil(t, after.SubmittedAt)
	})

	t.Run("explicitly below de minimis", func(t *testing.T) {
		req := verifiedIron()
		req.DeMinimisThresholdExceeded = ptr(false)
		entry := env.create(t, req)
		env.verify(t, entry.ID)
		ready := env.validate(t, entry.ID)
		require.Equal(t, cbam.StateReportReady, ready.State)

		res, err := env.entries.Submit(env.ctx, entry.ID)
		require.NoError(t, err)
		assert.Zero(t, res.Submission.CertificatesRequired)
		assert.Equal(t, cbam.StateSubmitted, res.Entry.State)
	})
}

func TestEntryService_SubmitArchiveFailureKeepsSubmission(t *testing.T) {
	env := setupEntryServiceWithStore(t, failingStore{})

	req := verifiedIron()
	req.DeMinimisThresholdExceeded = ptr(false)
	entry := env.create(t, req)
	env.verify(t, entry.ID)
	env.validate(t, entry.ID)

	res, err := env.entries.Submit(env.ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, cbam.StateSubmitted, res.Entry.State)
	assert.Empty(t, res.Submission.ArchivePath)

	stored, err := env.entries.GetSubmission(env.ctx, res.Submission.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ArchivePath)

	_, err = env.entries.GetSubmissionArchive(env.ctx, res.Submission.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}
