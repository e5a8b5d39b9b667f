// Package services holds the enrollment core: credential handling, matriculation
// number allocation and the operations exposed to the transport layer.
package services

import (
	"context"

	"github.com/yigit/studentdir/internal/app/models"
)

// StudentStore is the persistence the enrollment core relies on.
// Implementations must enforce username uniqueness on insert and apply
// AssignMatric as a single conditional update.
type StudentStore interface {
	MatricStore
	Create(ctx context.Context, username, passwordHash, name string) (*models.Student, error)
	FindByUsername(ctx context.Context, username string) (*models.Student, error)
	FindByMatricNumber(ctx context.Context, matricNumber string) (*models.Student, error)
	ListAll(ctx context.Context) ([]models.Student, error)
}

// MatricStore is the part of the store used by the allocator
type MatricStore interface {
	CountMatriculated(ctx context.Context) (int64, error)
	AssignMatric(ctx context.Context, username, matricNumber string) (*models.Student, error)
}

// CredentialHasher hashes and verifies passwords
type CredentialHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) (bool, error)
}

// ProfileCache caches matriculated profiles by matric number
type ProfileCache interface {
	Get(ctx context.Context, matricNumber string) (*models.StudentProfile, error)
	Set(ctx context.Context, profile models.StudentProfile) error
}

// Allocator assigns the next matriculation number to a student
type Allocator interface {
	Allocate(ctx context.Context, username string) (*models.Student, error)
}

// EnrollmentService is the set of operations offered to the transport layer
type EnrollmentService interface {
	Register(ctx context.Context, username, password, name string) (*models.StudentProfile, error)
	Login(ctx context.Context, username, password string) (*models.StudentProfile, error)
	AssignMatriculation(ctx context.Context, username string) (*models.StudentProfile, error)
	ListStudents(ctx context.Context) ([]models.StudentProfile, error)
	GetByMatricNumber(ctx context.Context, matricNumber string) (*models.StudentProfile, error)
}
