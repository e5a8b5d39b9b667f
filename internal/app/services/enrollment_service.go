package services

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/yigit/studentdir/internal/app/models"
	"github.com/yigit/studentdir/internal/pkg/apperrors"
	"github.com/yigit/studentdir/internal/pkg/cache"
	"github.com/yigit/studentdir/internal/pkg/metrics"
)

// timingPassword is hashed once and verified against when a login names an
// unknown user, so both failure paths pay for one bcrypt comparison.
const timingPassword = "studentdir-timing-equalizer"

// enrollmentService implements EnrollmentService
type enrollmentService struct {
	store       StudentStore
	hasher      CredentialHasher
	allocator   Allocator
	cache       ProfileCache
	maxAttempts int
	logger      zerolog.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// EnrollmentOption configures the enrollment service
type EnrollmentOption func(*enrollmentService)

// WithProfileCache puts a cache in front of lookups by matric number
func WithProfileCache(pc ProfileCache) EnrollmentOption {
	return func(s *enrollmentService) {
		if pc != nil {
			s.cache = pc
		}
	}
}

// WithMaxAssignAttempts bounds how many times AssignMatriculation invokes the
// allocator when it reports an assignment conflict. 1 means no retry.
func WithMaxAssignAttempts(n int) EnrollmentOption {
	return func(s *enrollmentService) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewEnrollmentService creates the enrollment service
func NewEnrollmentService(store StudentStore, hasher CredentialHasher, allocator Allocator, logger zerolog.Logger, opts ...EnrollmentOption) EnrollmentService {
	s := &enrollmentService{
		store:       store,
		hasher:      hasher,
		allocator:   allocator,
		cache:       cache.NoopProfileCache{},
		maxAttempts: 1,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register hashes the password and creates an unmatriculated student
func (s *enrollmentService) Register(ctx context.Context, username, password, name string) (*models.StudentProfile, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to hash password")
		metrics.RegistrationsTotal.WithLabelValues(apperrors.KindOf(err).String()).Inc()
		return nil, err
	}

	student, err := s.store.Create(ctx, username, digest, name)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(apperrors.KindOf(err).String()).Inc()
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.logger.Info().Str("username", username).Msg("Student registered")

	profile := student.Profile()
	return &profile, nil
}

// Login checks the password of username. Unknown usernames, wrong passwords and
// unreadable stored digests all fail with the same ErrUnauthorized.
func (s *enrollmentService) Login(ctx context.Context, username, password string) (*models.StudentProfile, error) {
	student, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.equalizeTiming(password)
			metrics.LoginsTotal.WithLabelValues(apperrors.KindUnauthorized.String()).Inc()
			return nil, apperrors.ErrUnauthorized
		}
		metrics.LoginsTotal.WithLabelValues(apperrors.KindOf(err).String()).Inc()
		return nil, err
	}

	ok, err := s.hasher.Verify(password, student.PasswordHash)
	if err != nil {
		s.logger.Warn().Err(err).Str("username", username).Msg("Stored password digest could not be verified")
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues(apperrors.KindUnauthorized.String()).Inc()
		return nil, apperrors.ErrUnauthorized
	}

	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	profile := student.Profile()
	return &profile, nil
}

// AssignMatriculation allocates the next matriculation number to username
func (s *enrollmentService) AssignMatriculation(ctx context.Context, username string) (*models.StudentProfile, error) {
	var (
		student *models.Student
		err     error
	)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		student, err = s.allocator.Allocate(ctx, username)
		if err == nil || !errors.Is(err, apperrors.ErrAssignmentConflict) {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			break
		}
		if attempt < s.maxAttempts {
			s.logger.Debug().Str("username", username).Int("attempt", attempt).Msg("Retrying matric allocation after conflict")
		}
	}
	if err != nil {
		return nil, err
	}

	profile := student.Profile()
	if cacheErr := s.cache.Set(ctx, profile); cacheErr != nil {
		s.logger.Warn().Err(cacheErr).Str("username", username).Msg("Failed to cache profile")
	}
	return &profile, nil
}

// ListStudents returns the public profile of every student
func (s *enrollmentService) ListStudents(ctx context.Context) ([]models.StudentProfile, error) {
	students, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return models.Profiles(students), nil
}

// GetByMatricNumber looks a student up by matric number, through the profile cache
func (s *enrollmentService) GetByMatricNumber(ctx context.Context, matricNumber string) (*models.StudentProfile, error) {
	cached, err := s.cache.Get(ctx, matricNumber)
	switch {
	case err == nil:
		metrics.ProfileCacheLookupsTotal.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.ProfileCacheLookupsTotal.WithLabelValues("miss").Inc()
	default:
		metrics.ProfileCacheLookupsTotal.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("matricNumber", matricNumber).Msg("Profile cache lookup failed")
	}

	student, err := s.store.FindByMatricNumber(ctx, matricNumber)
	if err != nil {
		return nil, err
	}

	profile := student.Profile()
	if err := s.cache.Set(ctx, profile); err != nil {
		s.logger.Warn().Err(err).Str("matricNumber", matricNumber).Msg("Failed to cache profile")
	}
	return &profile, nil
}

func (s *enrollmentService) equalizeTiming(password string) {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash(timingPassword)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to prepare timing digest")
			return
		}
		s.dummyDigest = digest
	})
	if s.dummyDigest != "" {
		_, _ = s.hasher.Verify(password, s.dummyDigest)
	}
}
