package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yigit/studentdir/internal/app/models"
	"github.com/yigit/studentdir/internal/pkg/apperrors"
	"github.com/yigit/studentdir/internal/pkg/dberrors"
	"github.com/yigit/studentdir/internal/pkg/logger"
)

// Constraint names from migrations/sql/001_create_students.sql
const (
	usernameConstraint     = "students_username_key"
	matricNumberConstraint = "students_matric_number_key"
)

var studentColumns = []string{"id", "username", "password", "name", "matric_number", "created_at"}

// Querier is the subset of pgxpool.Pool (and pgx.Tx) the repository needs
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db Querier
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db Querier) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new unmatriculated student.
// Username uniqueness is enforced by the students_username_key constraint, not by a prior lookup.
func (r *StudentRepository) Create(ctx context.Context, username, passwordHash, name string) (*models.Student, error) {
	sql, args, err := r.sb.Insert("students").
		Columns("id", "username", "password", "name").
		Values(uuid.New(), username, passwordHash, name).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, apperrors.NewStorageError("build create student query", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, usernameConstraint) {
			logger.Warn().Str("username", username).Msg("Attempted to create student with duplicate username")
			return nil, apperrors.ErrDuplicateUsername
		}
		logger.Error().Err(err).Str("username", username).Msg("Error executing create student query")
		return nil, apperrors.NewStorageError("create student", err)
	}

	return student, nil
}

// FindByUsername retrieves a student by exact username
func (r *StudentRepository) FindByUsername(ctx context.Context, username string) (*models.Student, error) {
	return r.findOne(ctx, squirrel.Eq{"username": username})
}

// FindByMatricNumber retrieves a student by exact matriculation number
func (r *StudentRepository) FindByMatricNumber(ctx context.Context, matricNumber string) (*models.Student, error) {
	return r.findOne(ctx, squirrel.Eq{"matric_number": matricNumber})
}

func (r *StudentRepository) findOne(ctx context.Context, where squirrel.Eq) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, apperrors.NewStorageError("build find student query", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		logger.Error().Err(err).Interface("where", where).Msg("Error scanning student row")
		return nil, apperrors.NewStorageError("find student", err)
	}

	return student, nil
}

// ListAll returns every student. No ordering is guaranteed.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").ToSql()
	if err != nil {
		return nil, apperrors.NewStorageError("build list students query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list students query")
		return nil, apperrors.NewStorageError("list students", err)
	}

	students, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.Student])
	if err != nil {
		logger.Error().Err(err).Msg("Error collecting student rows")
		return nil, apperrors.NewStorageError("list students", err)
	}

	return students, nil
}

// CountMatriculated returns how many students currently hold a matriculation number
func (r *StudentRepository) CountMatriculated(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("students").
		Where(squirrel.NotEq{"matric_number": nil}).
		ToSql()
	if err != nil {
		return 0, apperrors.NewStorageError("build count matriculated query", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		logger.Error().Err(err).Msg("Error counting matriculated students")
		return 0, apperrors.NewStorageError("count matriculated students", err)
	}

	return count, nil
}

// AssignMatric sets the matriculation number of username if, and only if, it has none yet.
// The check and the write are one conditional UPDATE. A missing student, an already
// matriculated student and a matric number taken by a concurrent assignment all
// report ErrAssignmentConflict.
func (r *StudentRepository) AssignMatric(ctx context.Context, username, matricNumber string) (*models.Student, error) {
	sql, args, err := r.sb.Update("students").
		Set("matric_number", matricNumber).
		Where(squirrel.Eq{"username": username, "matric_number": nil}).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, apperrors.NewStorageError("build assign matric query", err)
	}

	student, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			logger.Warn().Str("username", username).Msg("Matric assignment precondition failed")
			return nil, apperrors.ErrAssignmentConflict
		case dberrors.IsDuplicateConstraintError(err, matricNumberConstraint):
			logger.Warn().Str("username", username).Str("matricNumber", matricNumber).Msg("Matric number already taken by a concurrent assignment")
			return nil, apperrors.ErrAssignmentConflict
		default:
			logger.Error().Err(err).Str("username", username).Msg("Error executing assign matric query")
			return nil, apperrors.NewStorageError("assign matric number", err)
		}
	}

	return student, nil
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	var s models.Student
	if err := row.Scan(&s.ID, &s.Username, &s.PasswordHash, &s.Name, &s.MatricNumber, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func joinColumns() string {
	return strings.Join(studentColumns, ", ")
}
