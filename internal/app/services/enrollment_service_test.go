package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/studentdir/internal/app/models"
	"github.com/yigit/studentdir/internal/app/services"
	"github.com/yigit/studentdir/internal/pkg/apperrors"
	"github.com/yigit/studentdir/internal/pkg/auth"
	"github.com/yigit/studentdir/internal/pkg/cache"
)

type fakeCache struct {
	mu       sync.Mutex
	profiles map[string]models.StudentProfile
	getErr   error
	setErr   error
	gets     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{profiles: make(map[string]models.StudentProfile)}
}

func (c *fakeCache) Get(_ context.Context, matricNumber string) (*models.StudentProfile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	p, ok := c.profiles[matricNumber]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &p, nil
}

func (c *fakeCache) Set(_ context.Context, profile models.StudentProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.setErr != nil {
		return c.setErr
	}
	if profile.MatricNumber != nil {
		c.profiles[*profile.MatricNumber] = profile
	}
	return nil
}

// scriptedAllocator fails with the queued errors before delegating
type scriptedAllocator struct {
	failures []error
	calls    int
	next     services.Allocator
}

func (a *scriptedAllocator) Allocate(ctx context.Context, username string) (*models.Student, error) {
	a.calls++
	if len(a.failures) > 0 {
		err := a.failures[0]
		a.failures = a.failures[1:]
		return nil, err
	}
	return a.next.Allocate(ctx, username)
}

type brokenHasher struct{}

func (brokenHasher) Hash(string) (string, error) {
	return "", apperrors.NewHashingError("hash password", bcrypt.ErrPasswordTooLong)
}

func (brokenHasher) Verify(string, string) (bool, error) {
	return false, apperrors.NewHashingError("verify password", bcrypt.ErrHashTooShort)
}

func newTestService(store *memoryStore, opts ...services.EnrollmentOption) services.EnrollmentService {
	allocator := services.NewMatriculationAllocator(store, "MAT", 5, zerolog.Nop())
	return services.NewEnrollmentService(store, auth.NewPasswordHasher(bcrypt.MinCost), allocator, zerolog.Nop(), opts...)
}

func TestEnrollment_AliceJourney(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := newTestService(store)

	registered, err := svc.Register(ctx, "alice", "pw1", "Alice A")
	require.NoError(t, err)
	assert.Equal(t, models.StudentProfile{Username: "alice", Name: "Alice A"}, *registered)

	stored, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)

	_, err = svc.Register(ctx, "alice", "other", "Alice B")
	assert.ErrorIs(t, err, apperrors.ErrDuplicateUsername)

	assigned, err := svc.AssignMatriculation(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, assigned.MatricNumber)
	assert.Equal(t, "MAT00001", *assigned.MatricNumber)

	_, err = svc.AssignMatriculation(ctx, "alice")
	assert.ErrorIs(t, err, apperrors.ErrAssignmentConflict)

	loggedIn, err := svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", loggedIn.Username)
	assert.Equal(t, "Alice A", loggedIn.Name)
	require.NotNil(t, loggedIn.MatricNumber)
	assert.Equal(t, "MAT00001", *loggedIn.MatricNumber)

	byMatric, err := svc.GetByMatricNumber(ctx, "MAT00001")
	require.NoError(t, err)
	assert.Equal(t, "alice", byMatric.Username)
}

func TestEnrollment_RegisterUnhashablePassword(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'x'
	}

	_, err := svc.Register(context.Background(), "bob", string(long), "Bob B")
	assert.ErrorIs(t, err, apperrors.ErrHashing)
	assert.Equal(t, apperrors.KindHashing, apperrors.KindOf(err))

	_, err = store.FindByUsername(context.Background(), "bob")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEnrollment_LoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore())

	_, err := svc.Register(ctx, "alice", "pw1", "Alice A")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "alice", "wrong")
	_, unknownUser := svc.Login(ctx, "nobody", "pw1")

	assert.ErrorIs(t, wrongPassword, apperrors.ErrUnauthorized)
	assert.ErrorIs(t, unknownUser, apperrors.ErrUnauthorized)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestEnrollment_LoginIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore())

	_, err := svc.Register(ctx, "alice", "pw1", "Alice A")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "Alice", "pw1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestEnrollment_LoginWithCorruptDigest(t *testing.T) {
	store := newMemoryStore()
	store.seed("alice", "Alice A", nil)
	svc := newTestService(store)

	_, err := svc.Login(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestEnrollment_LoginWithBrokenHasher(t *testing.T) {
	store := newMemoryStore()
	store.seed("alice", "Alice A", nil)
	allocator := services.NewMatriculationAllocator(store, "MAT", 5, zerolog.Nop())
	svc := services.NewEnrollmentService(store, brokenHasher{}, allocator, zerolog.Nop())

	_, err := svc.Login(context.Background(), "ghost", "pw1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Login(context.Background(), "alice", "pw1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestEnrollment_AssignUnknownStudent(t *testing.T) {
	svc := newTestService(newMemoryStore())

	_, err := svc.AssignMatriculation(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrAssignmentConflict)
}

func TestEnrollment_AssignDoesNotRetryByDefault(t *testing.T) {
	store := newMemoryStore()
	store.seed("alice", "Alice A", nil)
	allocator := &scriptedAllocator{
		failures: []error{apperrors.ErrAssignmentConflict},
		next:     services.NewMatriculationAllocator(store, "MAT", 5, zerolog.Nop()),
	}
	svc := services.NewEnrollmentService(store, auth.NewPasswordHasher(bcrypt.MinCost), allocator, zerolog.Nop())

	_, err := svc.AssignMatriculation(context.Background(), "alice")
	assert.ErrorIs(t, err, apperrors.ErrAssignmentConflict)
	assert.Equal(t, 1, allocator.calls)
}

func TestEnrollment_AssignRetriesConflicts(t *testing.T) {
	store := newMemoryStore()
	store.seed("alice", "Alice A", nil)
	allocator := &scriptedAllocator{
		failures: []error{apperrors.ErrAssignmentConflict, apperrors.ErrAssignmentConflict},
		next:     services.NewMatriculationAllocator(store, "MAT", 5, zerolog.Nop()),
	}
	svc := services.NewEnrollmentService(store, auth.NewPasswordHasher(bcrypt.MinCost), allocator, zerolog.Nop(),
		services.WithMaxAssignAttempts(3))

	profile, err := svc.AssignMatriculation(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "MAT00001", *profile.MatricNumber)
	assert.Equal(t, 3, allocator.calls)
}

func TestEnrollment_AssignDoesNotRetryStorageErrors(t *testing.T) {
	store := newMemoryStore()
	store.seed("alice", "Alice A", nil)
	allocator := &scriptedAllocator{
		failures: []error{apperrors.NewStorageError("assign matric number", errors.New("connection reset"))},
		next:     services.NewMatriculationAllocator(store, "MAT", 5, zerolog.Nop()),
	}
	svc := services.NewEnrollmentService(store, auth.NewPasswordHasher(bcrypt.MinCost), allocator, zerolog.Nop(),
		services.WithMaxAssignAttempts(5))

	_, err := svc.AssignMatriculation(context.Background(), "alice")
	assert.ErrorIs(t, err, apperrors.ErrStorage)
	assert.Equal(t, 1, allocator.calls)
}

func TestEnrollment_ListStudents(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryStore())

	empty, err := svc.ListStudents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = svc.Register(ctx, "alice", "pw1", "Alice A")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bob", "pw2", "Bob B")
	require.NoError(t, err)
	_, err = svc.AssignMatriculation(ctx, "bob")
	require.NoError(t, err)

	all, err := svc.ListStudents(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.StudentProfile{
		{Username: "alice", Name: "Alice A"},
		{Username: "bob", Name: "Bob B", MatricNumber: strPtr("MAT00001")},
	}, all)
}

func TestEnrollment_GetByMatricNumberNotFound(t *testing.T) {
	svc := newTestService(newMemoryStore())

	_, err := svc.GetByMatricNumber(context.Background(), "MAT99999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEnrollment_ProfileCache(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	pc := newFakeCache()
	svc := newTestService(store, services.WithProfileCache(pc))

	_, err := svc.Register(ctx, "alice", "pw1", "Alice A")
	require.NoError(t, err)
	_, err = svc.AssignMatriculation(ctx, "alice")
	require.NoError(t, err)

	// populated by the assignment
	cached, ok := pc.profiles["MAT00001"]
	require.True(t, ok)
	assert.Equal(t, "alice", cached.Username)

	// served from cache even once the store forgets the row
	store.mu.Lock()
	delete(store.byMatric, "MAT00001")
	store.mu.Unlock()

	profile, err := svc.GetByMatricNumber(ctx, "MAT00001")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
}

func TestEnrollment_ProfileCacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.seed("alice", "Alice A", strPtr("MAT00001"))
	pc := newFakeCache()
	pc.getErr = errors.New("redis: connection refused")
	pc.setErr = errors.New("redis: connection refused")
	svc := newTestService(store, services.WithProfileCache(pc))

	profile, err := svc.GetByMatricNumber(ctx, "MAT00001")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, 1, pc.gets)
}
