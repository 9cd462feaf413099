package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rcabrera/medtrack-api/internal/models"
	"github.com/rcabrera/medtrack-api/internal/repository"

	"gorm.io/gorm"
)

// fakeStore is the in-memory backing state shared by the fake repositories.
// The fake transaction manager snapshots it before each unit of work and
// restores it on error, mirroring the rollback the real store provides.
type fakeStore struct {
	assignments []models.Assignment
	audits      []models.AuditEntry
	patients    []models.Patient
	nextID      uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (s *fakeStore) snapshot() fakeStore {
	copied := fakeStore{nextID: s.nextID}
	copied.assignments = append([]models.Assignment(nil), s.assignments...)
	copied.audits = append([]models.AuditEntry(nil), s.audits...)
	copied.patients = append([]models.Patient(nil), s.patients...)
	return copied
}

func (s *fakeStore) restore(from fakeStore) {
	s.assignments = from.assignments
	s.audits = from.audits
	s.patients = from.patients
	s.nextID = from.nextID
}

// fakeTxManager serializes units of work with a mutex (the fake equivalent of
// the row locks and unique index the real store uses) and rolls the store
// back when fn fails.
type fakeTxManager struct {
	mu    sync.Mutex
	store *fakeStore
	repos *repository.Repositories
}

func newFakeTxManager(store *fakeStore, repos *repository.Repositories) *fakeTxManager {
	return &fakeTxManager{store: store, repos: repos}
}

func (m *fakeTxManager) Do(ctx context.Context, fn func(r *repository.Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := m.store.snapshot()
	if err := fn(m.repos); err != nil {
		m.store.restore(before)
		return err
	}
	return nil
}

// fakeAssignmentRepo implements repository.AssignmentRepository over fakeStore
type fakeAssignmentRepo struct {
	store *fakeStore

	// failure injection
	createErr error
	closeErr  error
}

func (r *fakeAssignmentRepo) FindByID(ctx context.Context, id uint) (*models.Assignment, error) {
	for i := range r.store.assignments {
		if r.store.assignments[i].ID == id {
			a := r.store.assignments[i]
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAssignmentRepo) findCurrentIndex(entityType string, entityID uint) int {
	for i := range r.store.assignments {
		a := &r.store.assignments[i]
		if a.EntityType == entityType && a.EntityID == entityID && a.IsCurrent {
			return i
		}
	}
	return -1
}

func (r *fakeAssignmentRepo) FindCurrent(ctx context.Context, entityType string, entityID uint) (*models.Assignment, error) {
	if i := r.findCurrentIndex(entityType, entityID); i >= 0 {
		a := r.store.assignments[i]
		return &a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAssignmentRepo) FindCurrentForUpdate(ctx context.Context, entityType string, entityID uint) (*models.Assignment, error) {
	return r.FindCurrent(ctx, entityType, entityID)
}

func (r *fakeAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	// Enforce the partial unique index on (entity_type, entity_id) WHERE is_current
	if assignment.IsCurrent && r.findCurrentIndex(assignment.EntityType, assignment.EntityID) >= 0 {
		return gorm.ErrDuplicatedKey
	}
	assignment.ID = r.store.nextID
	r.store.nextID++
	r.store.assignments = append(r.store.assignments, *assignment)
	return nil
}

func (r *fakeAssignmentRepo) Close(ctx context.Context, id uint, endedAt time.Time) error {
	if r.closeErr != nil {
		err := r.closeErr
		r.closeErr = nil
		return err
	}
	for i := range r.store.assignments {
		a := &r.store.assignments[i]
		if a.ID == id && a.IsCurrent {
			ended := endedAt
			a.IsCurrent = false
			a.EndedAt = &ended
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeAssignmentRepo) UpdateReason(ctx context.Context, id uint, reason string) error {
	for i := range r.store.assignments {
		if r.store.assignments[i].ID == id {
			r.store.assignments[i].Reason = reason
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeAssignmentRepo) HistoryOf(ctx context.Context, entityType string, entityID uint) ([]models.Assignment, error) {
	var history []models.Assignment
	for _, a := range r.store.assignments {
		if a.EntityType == entityType && a.EntityID == entityID {
			history = append(history, a)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		if !history[i].StartedAt.Equal(history[j].StartedAt) {
			return history[i].StartedAt.After(history[j].StartedAt)
		}
		return history[i].ID > history[j].ID
	})
	return history, nil
}

func (r *fakeAssignmentRepo) FindCurrentByDepartment(ctx context.Context, departmentID uint) ([]models.Assignment, error) {
	var current []models.Assignment
	for _, a := range r.store.assignments {
		if a.DepartmentID == departmentID && a.IsCurrent {
			current = append(current, a)
		}
	}
	sort.Slice(current, func(i, j int) bool {
		return current[i].StartedAt.Before(current[j].StartedAt)
	})
	return current, nil
}

func (r *fakeAssignmentRepo) CountCurrentByDepartment(ctx context.Context, departmentID uint, entityType string) (int64, error) {
	var count int64
	for _, a := range r.store.assignments {
		if a.DepartmentID == departmentID && a.IsCurrent && (entityType == "" || a.EntityType == entityType) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAssignmentRepo) CountDistinctEntities(ctx context.Context, departmentID uint) (int64, error) {
	seen := make(map[string]struct{})
	for _, a := range r.store.assignments {
		if a.DepartmentID == departmentID {
			seen[entityKey(a)] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (r *fakeAssignmentRepo) CountStartedSince(ctx context.Context, departmentID uint, since time.Time) (int64, error) {
	var count int64
	for _, a := range r.store.assignments {
		if a.DepartmentID == departmentID && !a.StartedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAssignmentRepo) FindDuplicateCurrent(ctx context.Context) ([]models.Assignment, error) {
	counts := make(map[string]int)
	for _, a := range r.store.assignments {
		if a.IsCurrent {
			counts[entityKey(a)]++
		}
	}
	var duplicates []models.Assignment
	for _, a := range r.store.assignments {
		if a.IsCurrent && counts[entityKey(a)] > 1 {
			duplicates = append(duplicates, a)
		}
	}
	return duplicates, nil
}

func (r *fakeAssignmentRepo) DeleteByEntity(ctx context.Context, entityType string, entityID uint) error {
	kept := r.store.assignments[:0]
	for _, a := range r.store.assignments {
		if !(a.EntityType == entityType && a.EntityID == entityID) {
			kept = append(kept, a)
		}
	}
	r.store.assignments = append([]models.Assignment(nil), kept...)
	return nil
}

// fakeAuditRepo implements repository.AuditRepository over fakeStore
type fakeAuditRepo struct {
	store *fakeStore

	createErr error
}

func (r *fakeAuditRepo) CreateBatch(ctx context.Context, entries []models.AuditEntry) error {
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	for _, entry := range entries {
		entry.ID = r.store.nextID
		r.store.nextID++
		r.store.audits = append(r.store.audits, entry)
	}
	return nil
}

func (r *fakeAuditRepo) HistoryFor(ctx context.Context, tableName string, recordID uint) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	for _, e := range r.store.audits {
		if e.TableName == tableName && e.RecordID == recordID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].ChangedAt.Equal(entries[j].ChangedAt) {
			return entries[i].ChangedAt.After(entries[j].ChangedAt)
		}
		return entries[i].ID > entries[j].ID
	})
	return entries, nil
}

func (r *fakeAuditRepo) RecentActivity(ctx context.Context, since time.Time, tableName string) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	for _, e := range r.store.audits {
		if e.ChangedAt.Before(since) {
			continue
		}
		if tableName != "" && e.TableName != tableName {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ChangedAt.After(entries[j].ChangedAt)
	})
	return entries, nil
}

func (r *fakeAuditRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	for _, e := range r.store.audits {
		if !e.ChangedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// fakePatientRepo implements repository.PatientRepository over fakeStore
type fakePatientRepo struct {
	store *fakeStore
}

func (r *fakePatientRepo) FindByID(ctx context.Context, id uint) (*models.Patient, error) {
	for i := range r.store.patients {
		if r.store.patients[i].ID == id && r.store.patients[i].DiscardedAt == nil {
			p := r.store.patients[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePatientRepo) FindByMedicalRecNo(ctx context.Context, recNo string) (*models.Patient, error) {
	for i := range r.store.patients {
		if r.store.patients[i].MedicalRecNo == recNo && r.store.patients[i].DiscardedAt == nil {
			p := r.store.patients[i]
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePatientRepo) Create(ctx context.Context, patient *models.Patient) error {
	patient.ID = r.store.nextID
	r.store.nextID++
	r.store.patients = append(r.store.patients, *patient)
	return nil
}

func (r *fakePatientRepo) Update(ctx context.Context, patient *models.Patient) error {
	for i := range r.store.patients {
		if r.store.patients[i].ID == patient.ID {
			r.store.patients[i] = *patient
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakePatientRepo) SoftDelete(ctx context.Context, id uint) error {
	now := time.Now()
	for i := range r.store.patients {
		if r.store.patients[i].ID == id {
			r.store.patients[i].DiscardedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakePatientRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Patient, int64, error) {
	var patients []models.Patient
	for _, p := range r.store.patients {
		if p.DiscardedAt == nil {
			patients = append(patients, p)
		}
	}
	return patients, int64(len(patients)), nil
}

func (r *fakePatientRepo) Exists(ctx context.Context, id uint) (bool, error) {
	_, err := r.FindByID(ctx, id)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// fakeStaffRepo implements repository.StaffRepository over a fixed map
type fakeStaffRepo struct {
	members map[uint]models.Staff
}

func (r *fakeStaffRepo) FindByID(ctx context.Context, id uint) (*models.Staff, error) {
	if member, ok := r.members[id]; ok && member.DiscardedAt == nil {
		return &member, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStaffRepo) FindByEmail(ctx context.Context, email string) (*models.Staff, error) {
	for _, member := range r.members {
		if strings.EqualFold(member.Email, email) && member.DiscardedAt == nil {
			m := member
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStaffRepo) Create(ctx context.Context, staff *models.Staff) error {
	staff.ID = uint(len(r.members) + 1)
	r.members[staff.ID] = *staff
	return nil
}

func (r *fakeStaffRepo) Update(ctx context.Context, staff *models.Staff) error {
	if _, ok := r.members[staff.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.members[staff.ID] = *staff
	return nil
}

func (r *fakeStaffRepo) SoftDelete(ctx context.Context, id uint) error {
	member, ok := r.members[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	member.DiscardedAt = &now
	r.members[id] = member
	return nil
}

func (r *fakeStaffRepo) List(ctx context.Context, query *repository.ListQuery) ([]models.Staff, int64, error) {
	var members []models.Staff
	for _, member := range r.members {
		if member.DiscardedAt == nil {
			members = append(members, member)
		}
	}
	return members, int64(len(members)), nil
}

func (r *fakeStaffRepo) ActiveExists(ctx context.Context, id uint) (bool, error) {
	member, ok := r.members[id]
	return ok && member.DiscardedAt == nil && member.Status == models.StatusActive, nil
}

// fakeDepartmentRepo implements repository.DepartmentRepository over a fixed map
type fakeDepartmentRepo struct {
	departments map[uint]models.Department
}

func (r *fakeDepartmentRepo) FindByID(ctx context.Context, id uint) (*models.Department, error) {
	if department, ok := r.departments[id]; ok {
		return &department, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDepartmentRepo) FindByCode(ctx context.Context, code string) (*models.Department, error) {
	for _, department := range r.departments {
		if department.Code == code {
			d := department
			return &d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeDepartmentRepo) Create(ctx context.Context, department *models.Department) error {
	department.ID = uint(len(r.departments) + 1)
	r.departments[department.ID] = *department
	return nil
}

func (r *fakeDepartmentRepo) Update(ctx context.Context, department *models.Department) error {
	if _, ok := r.departments[department.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.departments[department.ID] = *department
	return nil
}

func (r *fakeDepartmentRepo) FindAll(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department
	for _, department := range r.departments {
		departments = append(departments, department)
	}
	return departments, nil
}

func (r *fakeDepartmentRepo) ActiveExists(ctx context.Context, id uint) (bool, error) {
	department, ok := r.departments[id]
	return ok && department.Active, nil
}

// fakeDirectory implements EntityDirectory with fixed ID sets
type fakeDirectory struct {
	patients    map[uint]bool
	staff       map[uint]bool
	departments map[uint]bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		patients:    make(map[uint]bool),
		staff:       make(map[uint]bool),
		departments: make(map[uint]bool),
	}
}

func (d *fakeDirectory) PatientExists(ctx context.Context, id uint) (bool, error) {
	return d.patients[id], nil
}

func (d *fakeDirectory) StaffExists(ctx context.Context, id uint) (bool, error) {
	return d.staff[id], nil
}

func (d *fakeDirectory) DepartmentActive(ctx context.Context, id uint) (bool, error) {
	return d.departments[id], nil
}

func entityKey(a models.Assignment) string {
	return a.EntityType + "/" + strconv.FormatUint(uint64(a.EntityID), 10)
}
