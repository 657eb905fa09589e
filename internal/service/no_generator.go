package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"

	"github.com/segyhp/installment-service/internal/repository"
	customError "github.com/segyhp/installment-service/pkg/errors"
	"github.com/segyhp/installment-service/pkg/logger"
	"github.com/segyhp/installment-service/pkg/utils"
)

const DefaultNoMaxAttempts = 10

// randomSource draws a uniform integer in [0, n).
type randomSource func(n int64) (int64, error)

func cryptoRandom(n int64) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0, err
	}
	return v.Int64(), nil
}

// PlanNoGenerator allocates installment numbers: a second-resolution
// timestamp followed by a random six-digit suffix, probed against storage.
type PlanNoGenerator struct {
	repo        repository.InstallmentRepository
	logger      *logger.Logger
	now         func() time.Time
	random      randomSource
	maxAttempts int
}

func NewPlanNoGenerator(repo repository.InstallmentRepository, log *logger.Logger, loc *time.Location, maxAttempts int) *PlanNoGenerator {
	if loc == nil {
		loc = time.Local
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultNoMaxAttempts
	}
	if log == nil {
		log = logger.Nop()
	}

	return &PlanNoGenerator{
		repo:        repo,
		logger:      log,
		now:         func() time.Time { return time.Now().In(loc) },
		random:      cryptoRandom,
		maxAttempts: maxAttempts,
	}
}

// FindAvailableNo returns an installment no not yet present in storage.
// After maxAttempts collisions it returns ErrPlanNoUnavailable; storage
// errors are returned unchanged.
func (g *PlanNoGenerator) FindAvailableNo(ctx context.Context) (string, error) {
	prefix := utils.FormatNoPrefix(g.now())

	for i := 0; i < g.maxAttempts; i++ {
		suffix, err := g.random(utils.NoSuffixSpace)
		if err != nil {
			return "", err
		}

		no := prefix + utils.FormatNoSuffix(suffix)
		exists, err := g.repo.ExistsByNo(ctx, no)
		if err != nil {
			return "", err
		}
		if !exists {
			return no, nil
		}
	}

	g.logger.Warn(ctx, "find installment no failed")

	return "", customError.ErrPlanNoUnavailable
}
