package services

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/repositories"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/filestorage"
)

// --- users, tokens, roles ---

type fakeUsers struct {
	byID     map[uuid.UUID]*models.User
	students *fakeStudents
	roles    *fakeRoles
}

func newFakeUsers(students *fakeStudents, roles *fakeRoles) *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]*models.User{}, students: students, roles: roles}
}

func (f *fakeUsers) CreateWithStudent(_ context.Context, user *models.User, student *models.Student, roleName string) error {
	user.ID = uuid.New()
	user.IsActive = true
	user.CreatedAt = time.Now()
	f.byID[user.ID] = user
	student.UserID = user.ID
	f.students.put(student)
	f.roles.assign(user.ID, roleName)
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError("user not found")
}

func (f *fakeUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	now := time.Now()
	f.byID[id].LastLoginAt = &now
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.byID[id].PasswordHash = hash
	return nil
}

func (f *fakeUsers) UpdateEmail(_ context.Context, id uuid.UUID, email string) error {
	f.byID[id].Email = email
	if s, ok := f.students.byUser[id]; ok {
		s.Email = email
	}
	return nil
}

type fakeTokens struct {
	tokens map[string]*models.Token
	// revokedElsewhere marks a token revoked between GetToken and RevokeToken
	revokedElsewhere bool
}

func newFakeTokens() *fakeTokens { return &fakeTokens{tokens: map[string]*models.Token{}} }

func (f *fakeTokens) CreateToken(_ context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	f.tokens[token] = &models.Token{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeTokens) GetToken(_ context.Context, token string) (*models.Token, error) {
	t, ok := f.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenInvalid
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) RevokeToken(_ context.Context, token string) error {
	t, ok := f.tokens[token]
	if !ok || t.Revoked || f.revokedElsewhere {
		return apperrors.ErrTokenRevoked
	}
	t.Revoked = true
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

type fakeRoles struct {
	names map[uuid.UUID][]string
}

func newFakeRoles() *fakeRoles { return &fakeRoles{names: map[uuid.UUID][]string{}} }

func (f *fakeRoles) assign(userID uuid.UUID, role string) {
	f.names[userID] = append(f.names[userID], role)
}

func (f *fakeRoles) RoleNames(_ context.Context, userID uuid.UUID) ([]string, error) {
	return f.names[userID], nil
}

// --- students ---

type fakeStudents struct {
	byID      map[uuid.UUID]*models.Student
	byUser    map[uuid.UUID]*models.Student
	overviews []*models.StudentOverview
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{byID: map[uuid.UUID]*models.Student{}, byUser: map[uuid.UUID]*models.Student{}}
}

func (f *fakeStudents) put(s *models.Student) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.IsActive = true
	f.byID[s.ID] = s
	f.byUser[s.UserID] = s
}

func (f *fakeStudents) GetByID(_ context.Context, id uuid.UUID) (*models.Student, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("student not found")
	}
	return s, nil
}

func (f *fakeStudents) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Student, error) {
	s, ok := f.byUser[userID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("student not found")
	}
	return s, nil
}

func (f *fakeStudents) EnsureForUser(ctx context.Context, userID uuid.UUID, email string) (*models.Student, error) {
	if _, ok := f.byUser[userID]; !ok {
		f.put(&models.Student{UserID: userID, Email: email})
	}
	return f.GetByUserID(ctx, userID)
}

func (f *fakeStudents) UpsertProfile(_ context.Context, s *models.Student) error {
	if existing, ok := f.byUser[s.UserID]; ok {
		s.ID = existing.ID
	}
	f.put(s)
	return nil
}

func (f *fakeStudents) ListOverviews(context.Context) ([]*models.StudentOverview, error) {
	return append([]*models.StudentOverview(nil), f.overviews...), nil
}

// --- applications ---

type fakeApplications struct {
	apps         map[uuid.UUID]*models.Application
	statuses     map[string]uuid.UUID
	statusNames  map[uuid.UUID]string
	programLevel map[uuid.UUID]uuid.UUID
	termNames    map[uuid.UUID]string
}

func newFakeApplications() *fakeApplications {
	f := &fakeApplications{
		apps:         map[uuid.UUID]*models.Application{},
		statuses:     map[string]uuid.UUID{},
		statusNames:  map[uuid.UUID]string{},
		programLevel: map[uuid.UUID]uuid.UUID{},
		termNames:    map[uuid.UUID]string{},
	}
	for _, code := range []string{models.StatusDraft, models.StatusSubmitted, models.StatusUnderReview, models.StatusApproved} {
		id := uuid.New()
		f.statuses[code] = id
		f.statusNames[id] = code
	}
	return f
}

func (f *fakeApplications) GetByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("application not found")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeApplications) FindByKey(ctx context.Context, key models.ApplicationKey) (*models.Application, error) {
	for _, a := range f.apps {
		if a.StudentID == key.StudentID && a.TermID == key.TermID && a.AcademicYearID == key.AcademicYearID {
			return f.GetByID(ctx, a.ID)
		}
	}
	return nil, apperrors.NewResourceNotFoundError("application not found")
}

func (f *fakeApplications) Create(_ context.Context, a *models.Application) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	cp := *a
	f.apps[a.ID] = &cp
	return nil
}

func (f *fakeApplications) UpdateEducation(_ context.Context, id uuid.UUID, programID, levelID uuid.UUID) error {
	a := f.apps[id]
	a.DegreeProgramID, a.AcademicLevelID = &programID, &levelID
	return nil
}

func (f *fakeApplications) MarkSubmitted(_ context.Context, id uuid.UUID, statusID *uuid.UUID, at time.Time) error {
	a := f.apps[id]
	if a.TermCondition {
		return apperrors.ErrAlreadySubmitted
	}
	a.TermCondition = true
	a.SubmittedAt = &at
	if statusID != nil {
		a.StatusID = statusID
	}
	return nil
}

func (f *fakeApplications) UpdateReview(_ context.Context, id uuid.UUID, u repositories.ReviewUpdate) error {
	a, ok := f.apps[id]
	if !ok {
		return apperrors.NewResourceNotFoundError("application not found")
	}
	if u.StatusID != nil {
		a.StatusID = u.StatusID
	}
	if u.Notes != nil {
		a.Notes = u.Notes
	}
	if u.ScholarshipID != nil {
		a.ScholarshipID = u.ScholarshipID
	}
	return nil
}

func (f *fakeApplications) summary(a *models.Application) *models.ApplicationSummary {
	s := &models.ApplicationSummary{Application: *a}
	if a.StatusID != nil {
		name := f.statusNames[*a.StatusID]
		s.StatusCode, s.StatusName = &name, &name
	}
	if name, ok := f.termNames[a.TermID]; ok {
		s.TermName = &name
	}
	return s
}

func (f *fakeApplications) ListSummariesByStudent(_ context.Context, studentID uuid.UUID) ([]*models.ApplicationSummary, error) {
	var out []*models.ApplicationSummary
	for _, a := range f.apps {
		if a.StudentID == studentID {
			out = append(out, f.summary(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeApplications) GetSummary(_ context.Context, id uuid.UUID) (*models.ApplicationSummary, error) {
	a, ok := f.apps[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("application not found")
	}
	return f.summary(a), nil
}

func (f *fakeApplications) StatusIDByCode(_ context.Context, code string) (*uuid.UUID, error) {
	id, ok := f.statuses[code]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

func (f *fakeApplications) ProgramLevel(_ context.Context, programID uuid.UUID) (*uuid.UUID, error) {
	level, ok := f.programLevel[programID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("degree program not found")
	}
	return &level, nil
}

// --- documents ---

type fakeDocuments struct {
	docs     map[uuid.UUID]*models.Document
	batchErr error
}

func newFakeDocuments() *fakeDocuments { return &fakeDocuments{docs: map[uuid.UUID]*models.Document{}} }

func (f *fakeDocuments) CreateBatch(_ context.Context, docs []*models.Document) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	for i, d := range docs {
		d.ID = uuid.New()
		d.CreatedAt = time.Now().Add(time.Duration(i) * time.Millisecond)
		f.docs[d.ID] = d
	}
	return nil
}

func (f *fakeDocuments) matching(key models.ApplicationKey) []*models.Document {
	var out []*models.Document
	for _, d := range f.docs {
		if d.StudentID == key.StudentID && d.TermID == key.TermID && d.AcademicYearID == key.AcademicYearID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (f *fakeDocuments) ListByKey(_ context.Context, key models.ApplicationKey) ([]*models.Document, error) {
	return f.matching(key), nil
}

func (f *fakeDocuments) GetByID(_ context.Context, id uuid.UUID) (*models.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("document not found")
	}
	return d, nil
}

func (f *fakeDocuments) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.docs[id]; !ok {
		return apperrors.NewResourceNotFoundError("document not found")
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeDocuments) CountByType(_ context.Context, key models.ApplicationKey, docType models.DocumentType) (int, error) {
	n := 0
	for _, d := range f.matching(key) {
		if d.DocumentType == docType {
			n++
		}
	}
	return n, nil
}

// --- storage ---

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newMemStorage() *memStorage { return &memStorage{objects: map[string][]byte{}} }

func (m *memStorage) Save(_ context.Context, path string, r io.Reader, _ int64, _ string) error {
	if m.failOn != "" && bytes.Contains([]byte(path), []byte(m.failOn)) {
		return io.ErrUnexpectedEOF
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = b
	return nil
}

func (m *memStorage) Open(_ context.Context, path string) (*filestorage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[path]
	if !ok {
		return nil, filestorage.ErrNotFound
	}
	return &filestorage.Object{Body: io.NopCloser(bytes.NewReader(b)), Size: int64(len(b))}, nil
}

func (m *memStorage) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, path)
	return nil
}

func (m *memStorage) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	return "https://files.test/" + path + "?ttl=" + ttl.String(), nil
}

// --- notifier ---

type recordingNotifier struct {
	welcomed  []string
	submitted []*models.ApplicationSummary
	changed   []*models.ApplicationSummary
}

func (n *recordingNotifier) Welcome(_ context.Context, to, _ string) {
	n.welcomed = append(n.welcomed, to)
}

func (n *recordingNotifier) SubmissionReceived(_ context.Context, _ *models.Student, app *models.ApplicationSummary) {
	n.submitted = append(n.submitted, app)
}

func (n *recordingNotifier) StatusChanged(_ context.Context, _ *models.Student, app *models.ApplicationSummary) {
	n.changed = append(n.changed, app)
}

// --- file uploads ---

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
)

func memFile(name string, content []byte) FileUpload {
	return FileUpload{
		Filename: name,
		Size:     int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}
