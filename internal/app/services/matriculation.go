package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/studentdir/internal/app/models"
	"github.com/yigit/studentdir/internal/pkg/apperrors"
	"github.com/yigit/studentdir/internal/pkg/metrics"
)

// Default matriculation token format: "MAT" followed by five digits
const (
	DefaultMatricPrefix = "MAT"
	DefaultMatricWidth  = 5
)

// FormatMatricNumber renders a sequence number as a fixed-width token, e.g. (MAT, 5, 4) => "MAT00004"
func FormatMatricNumber(prefix string, width int, seq int64) string {
	return fmt.Sprintf("%s%0*d", prefix, width, seq)
}

// MatriculationAllocator proposes the next matriculation number and applies it to one student.
// It never retries: when the conditional update fails (student missing, already
// matriculated, or the proposed number lost a race) the allocation fails with
// ErrAssignmentConflict and the caller decides whether to try again.
type MatriculationAllocator struct {
	store  MatricStore
	prefix string
	width  int
	logger zerolog.Logger
}

// NewMatriculationAllocator creates an allocator. Empty prefix or non-positive width use the defaults.
func NewMatriculationAllocator(store MatricStore, prefix string, width int, logger zerolog.Logger) *MatriculationAllocator {
	if prefix == "" {
		prefix = DefaultMatricPrefix
	}
	if width < 1 {
		width = DefaultMatricWidth
	}
	return &MatriculationAllocator{
		store:  store,
		prefix: prefix,
		width:  width,
		logger: logger,
	}
}

// Allocate assigns count(matriculated)+1 to username
func (a *MatriculationAllocator) Allocate(ctx context.Context, username string) (*models.Student, error) {
	count, err := a.store.CountMatriculated(ctx)
	if err != nil {
		metrics.MatricAssignmentsTotal.WithLabelValues(apperrors.KindOf(err).String()).Inc()
		return nil, err
	}

	matricNumber := FormatMatricNumber(a.prefix, a.width, count+1)

	student, err := a.store.AssignMatric(ctx, username, matricNumber)
	if err != nil {
		kind := apperrors.KindOf(err)
		metrics.MatricAssignmentsTotal.WithLabelValues(kind.String()).Inc()
		a.logger.Debug().Str("username", username).Str("matricNumber", matricNumber).Str("kind", kind.String()).Msg("Matric allocation failed")
		return nil, err
	}

	metrics.MatricAssignmentsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	a.logger.Info().Str("username", username).Str("matricNumber", matricNumber).Msg("Matric number assigned")
	return student, nil
}
