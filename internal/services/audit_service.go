package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rcabrera/medtrack-api/internal/models"
	"github.com/rcabrera/medtrack-api/internal/repository"
)

// AuditService owns the append-only audit trail. Entries are written in
// batches (one batch per logical operation, sharing a change-set ID) and are
// never updated or deleted.
type AuditService struct {
	audits    repository.AuditRepository
	directory EntityDirectory
}

// NewAuditService creates a new audit service
func NewAuditService(audits repository.AuditRepository, directory EntityDirectory) *AuditService {
	return &AuditService{
		audits:    audits,
		directory: directory,
	}
}

// RecordInput describes one audited operation
type RecordInput struct {
	TableName string
	RecordID  uint
	Operation string
	ChangedBy uint
	Reason    string
	Changes   []models.FieldChange
}

// buildAuditEntries turns a RecordInput into concrete audit rows. Inserts and
// deletes produce a single whole-row entry; updates produce one entry per
// changed field, dropping fields whose values did not change. All rows of one
// call share a change-set ID.
func buildAuditEntries(in RecordInput, at time.Time) ([]models.AuditEntry, error) {
	if in.ChangedBy == 0 {
		return nil, ErrUnauthorizedChange
	}

	changeSet := uuid.New()

	switch in.Operation {
	case models.OpInsert, models.OpDelete:
		return []models.AuditEntry{{
			ChangeSetID: changeSet,
			TableName:   in.TableName,
			RecordID:    in.RecordID,
			Operation:   in.Operation,
			ChangedByID: in.ChangedBy,
			ChangedAt:   at,
			Reason:      in.Reason,
		}}, nil
	case models.OpUpdate:
		entries := make([]models.AuditEntry, 0, len(in.Changes))
		for _, change := range in.Changes {
			if change.OldValue == change.NewValue {
				continue
			}
			field := change.FieldName
			entries = append(entries, models.AuditEntry{
				ChangeSetID: changeSet,
				TableName:   in.TableName,
				RecordID:    in.RecordID,
				Operation:   in.Operation,
				FieldName:   &field,
				OldValue:    change.OldValue,
				NewValue:    change.NewValue,
				ChangedByID: in.ChangedBy,
				ChangedAt:   at,
				Reason:      in.Reason,
			})
		}
		return entries, nil
	default:
		return nil, fmt.Errorf("unknown audit operation: %s", in.Operation)
	}
}

// Record appends the entries for one observed change. The actor must resolve
// to an existing staff member; the trail never logs an anonymous change. The
// audited table/record pairing is deliberately not validated, so the trail
// survives deletion of the audited row.
func (s *AuditService) Record(ctx context.Context, in RecordInput) ([]models.AuditEntry, error) {
	if in.ChangedBy == 0 {
		return nil, ErrUnauthorizedChange
	}
	ok, err := s.directory.StaffExists(ctx, in.ChangedBy)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUnauthorizedChange
	}

	entries, err := buildAuditEntries(in, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.audits.CreateBatch(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// HistoryFor returns all audit entries for a record, most recent first
func (s *AuditService) HistoryFor(ctx context.Context, tableName string, recordID uint) ([]models.AuditEntry, error) {
	return s.audits.HistoryFor(ctx, tableName, recordID)
}

// RecentActivity returns entries within a trailing window of days, optionally
// filtered by table. Used by the compliance dashboard.
func (s *AuditService) RecentActivity(ctx context.Context, windowDays int, tableName string) ([]models.AuditEntry, error) {
	if windowDays < 1 {
		windowDays = 1
	}
	since := time.Now().AddDate(0, 0, -windowDays)
	return s.audits.RecentActivity(ctx, since, tableName)
}

// CountSince returns the number of entries recorded since a point in time
func (s *AuditService) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return s.audits.CountSince(ctx, since)
}
