package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/helpdesk-inc/helpdesk/internal/shared/biztime"
	"github.com/helpdesk-inc/helpdesk/internal/shared/id"
)

const (
	NumberPrefix       = "TS"
	numberSuffixLength = 4
	// MaxNumberAttempts bounds how many draws are made before giving up.
	MaxNumberAttempts = 5
)

type NumberGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// NumberExistsFunc reports whether a ticket number is already taken.
type NumberExistsFunc func(ctx context.Context, number string) (bool, error)

// RandomNumberGenerator draws TS-YYYYMMDD-XXXX numbers with a random base36 suffix and
// skips numbers the exists check reports as taken.
type RandomNumberGenerator struct {
	exists NumberExistsFunc
	now    func() time.Time
}

func NewRandomNumberGenerator(exists NumberExistsFunc) *RandomNumberGenerator {
	return &RandomNumberGenerator{
		exists: exists,
		now:    biztime.NowUTC,
	}
}

func (g *RandomNumberGenerator) Generate(ctx context.Context) (string, error) {
	date := biztime.DateStamp(g.now())
	for attempt := 0; attempt < MaxNumberAttempts; attempt++ {
		suffix, err := id.Generate(id.Base36Upper, numberSuffixLength)
		if err != nil {
			return "", err
		}
		number := fmt.Sprintf("%s-%s-%s", NumberPrefix, date, suffix)

		if g.exists == nil {
			return number, nil
		}
		taken, err := g.exists(ctx, number)
		if err != nil {
			return "", fmt.Errorf("failed to check ticket number: %w", err)
		}
		if !taken {
			return number, nil
		}
	}
	return "", ErrNumberExhausted
}
