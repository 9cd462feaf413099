package services

import (
	"context"
	"testing"
	"time"

	"github.com/rcabrera/medtrack-api/internal/models"

	"github.com/stretchr/testify/assert"
)

type auditFixture struct {
	store     *fakeStore
	audits    *fakeAuditRepo
	directory *fakeDirectory
	service   *AuditService
}

func newAuditFixture() *auditFixture {
	store := newFakeStore()
	audits := &fakeAuditRepo{store: store}
	directory := newFakeDirectory()
	directory.staff[actorID] = true

	return &auditFixture{
		store:     store,
		audits:    audits,
		directory: directory,
		service:   NewAuditService(audits, directory),
	}
}

func TestRecordInsertWritesWholeRowEntry(t *testing.T) {
	f := newAuditFixture()

	entries, err := f.service.Record(context.Background(), RecordInput{
		TableName: "patients",
		RecordID:  patientID,
		Operation: models.OpInsert,
		ChangedBy: actorID,
		Reason:    "registration",
	})
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, models.OpInsert, entries[0].Operation)
	assert.Nil(t, entries[0].FieldName)
	assert.Equal(t, actorID, entries[0].ChangedByID)
	assert.Len(t, f.store.audits, 1)
}

func TestRecordUpdateWritesOneEntryPerChangedField(t *testing.T) {
	f := newAuditFixture()

	entries, err := f.service.Record(context.Background(), RecordInput{
		TableName: "patients",
		RecordID:  patientID,
		Operation: models.OpUpdate,
		ChangedBy: actorID,
		Changes: []models.FieldChange{
			{FieldName: "full_name", OldValue: "Ana Perez", NewValue: "Ana Lopez"},
			{FieldName: "phone", OldValue: "555-0100", NewValue: "555-0100"},
			{FieldName: "blood_type", OldValue: "O+", NewValue: "A+"},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	// Unchanged fields never produce rows
	for _, e := range entries {
		assert.NotEqual(t, "phone", *e.FieldName)
	}

	// All rows of one operation share a change-set ID
	assert.Equal(t, entries[0].ChangeSetID, entries[1].ChangeSetID)
}

func TestRecordUpdateWithNoRealChanges(t *testing.T) {
	f := newAuditFixture()

	entries, err := f.service.Record(context.Background(), RecordInput{
		TableName: "patients",
		RecordID:  patientID,
		Operation: models.OpUpdate,
		ChangedBy: actorID,
		Changes: []models.FieldChange{
			{FieldName: "phone", OldValue: "555-0100", NewValue: "555-0100"},
		},
	})
	assert.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.store.audits)
}

func TestRecordRefusesMissingActor(t *testing.T) {
	f := newAuditFixture()

	_, err := f.service.Record(context.Background(), RecordInput{
		TableName: "patients",
		RecordID:  patientID,
		Operation: models.OpInsert,
	})
	assert.ErrorIs(t, err, ErrUnauthorizedChange)

	_, err = f.service.Record(context.Background(), RecordInput{
		TableName: "patients",
		RecordID:  patientID,
		Operation: models.OpInsert,
		ChangedBy: 777,
	})
	assert.ErrorIs(t, err, ErrUnauthorizedChange)
	assert.Empty(t, f.store.audits)
}

func TestRecordUnknownOperation(t *testing.T) {
	f := newAuditFixture()

	_, err := f.service.Record(context.Background(), RecordInput{
		TableName: "patients",
		RecordID:  patientID,
		Operation: "truncate",
		ChangedBy: actorID,
	})
	assert.Error(t, err)
	assert.Empty(t, f.store.audits)
}

func TestRecordSurvivesDeletedRecord(t *testing.T) {
	f := newAuditFixture()

	// Auditing a record that no longer exists must still succeed
	entries, err := f.service.Record(context.Background(), RecordInput{
		TableName: "patients",
		RecordID:  9999,
		Operation: models.OpDelete,
		ChangedBy: actorID,
		Reason:    "duplicate registration",
	})
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHistoryForMostRecentFirst(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()

	now := time.Now()
	field := "full_name"
	f.store.audits = []models.AuditEntry{
		{ID: 1, TableName: "patients", RecordID: patientID, Operation: models.OpInsert, ChangedAt: now.Add(-2 * time.Hour)},
		{ID: 2, TableName: "patients", RecordID: patientID, Operation: models.OpUpdate, FieldName: &field, ChangedAt: now.Add(-1 * time.Hour)},
		{ID: 3, TableName: "patients", RecordID: 555, Operation: models.OpInsert, ChangedAt: now},
	}

	entries, err := f.service.HistoryFor(ctx, "patients", patientID)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, uint(2), entries[0].ID)
	assert.Equal(t, uint(1), entries[1].ID)
}

func TestRecentActivityWindowAndTableFilter(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()

	now := time.Now()
	f.store.audits = []models.AuditEntry{
		{ID: 1, TableName: "patients", RecordID: 1, Operation: models.OpInsert, ChangedAt: now.Add(-48 * time.Hour)},
		{ID: 2, TableName: "patients", RecordID: 2, Operation: models.OpInsert, ChangedAt: now.Add(-240 * time.Hour)},
		{ID: 3, TableName: "staff", RecordID: 3, Operation: models.OpInsert, ChangedAt: now.Add(-1 * time.Hour)},
	}

	entries, err := f.service.RecentActivity(ctx, 7, "")
	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = f.service.RecentActivity(ctx, 7, "patients")
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, uint(1), entries[0].ID)

	// Window below one day clamps to one day
	entries, err = f.service.RecentActivity(ctx, 0, "")
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, uint(3), entries[0].ID)
}

func TestCountSince(t *testing.T) {
	f := newAuditFixture()
	ctx := context.Background()

	now := time.Now()
	f.store.audits = []models.AuditEntry{
		{ID: 1, TableName: "patients", RecordID: 1, ChangedAt: now.Add(-2 * time.Hour)},
		{ID: 2, TableName: "patients", RecordID: 2, ChangedAt: now.Add(-30 * time.Hour)},
	}

	count, err := f.service.CountSince(ctx, now.Add(-24*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
