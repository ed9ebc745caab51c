package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/cbam"
)

// SubmissionSnapshot is the immutable record archived when an entry is
// submitted. It holds everything needed to reproduce the reported figures.
type SubmissionSnapshot struct {
	SubmissionID     uuid.UUID              `json:"submissionId"`
	EntryID          uuid.UUID              `json:"entryId"`
	SubmittedAt      time.Time              `json:"submittedAt"`
	SubmittedBy      string                 `json:"submittedBy,omitempty"`
	ReferenceVersion string                 `json:"referenceVersion"`
	Entry            cbam.Entry             `json:"entry"`
	Calculation      cbam.CalculationResult `json:"calculation"`
	Gates            cbam.GateEvaluation    `json:"gates"`
}

// Archive writes submission snapshots as JSON documents to a Storage
type Archive struct {
	store  Storage
	prefix string
}

// NewArchive creates an archive writing below prefix
func NewArchive(store Storage, prefix string) *Archive {
	return &Archive{store: store, prefix: prefix}
}

// Key returns the storage key of a snapshot:
// <prefix>/<reporting year>/<entry id>/<submission id>.json
func (a *Archive) Key(reportingYear int, entryID, submissionID uuid.UUID) string {
	return path.Join(a.prefix, strconv.Itoa(reportingYear), entryID.String(), submissionID.String()+".json")
}

// Write stores a snapshot and returns its key
func (a *Archive) Write(ctx context.Context, snap *SubmissionSnapshot) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode submission snapshot: %w", err)
	}

	key := a.Key(snap.Entry.ReportingYear, snap.EntryID, snap.SubmissionID)
	if _, err := a.store.Put(ctx, key, "application/json", bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to archive submission: %w", err)
	}
	return key, nil
}

// Delete removes a snapshot by key
func (a *Archive) Delete(ctx context.Context, key string) error {
	return a.store.Delete(ctx, key)
}

// Read loads a snapshot by key
func (a *Archive) Read(ctx context.Context, key string) (*SubmissionSnapshot, error) {
	rc, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var snap SubmissionSnapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode submission snapshot: %w", err)
	}
	return &snap, nil
}
