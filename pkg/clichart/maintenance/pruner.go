package maintenance

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cognicore/clichart/pkg/clichart/store"
)

// Pruner removes old charts from a chart store.
type Pruner struct {
	Store store.Store
	// Keep is the number of newest charts always retained. Zero keeps none
	// on that basis.
	Keep int
	// MaxAge deletes charts created longer ago than this. Zero disables it.
	MaxAge time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	Log *log.Entry
}

// Result summarizes a pruning run.
type Result struct {
	Examined int
	Deleted  int
	Errors   int
}

// Prune deletes every chart that is outside the newest Keep, or older than
// MaxAge when that is set. Charts within the newest Keep are never deleted.
func (p *Pruner) Prune(ctx context.Context) (Result, error) {
	var res Result
	if p.Store == nil || (p.Keep <= 0 && p.MaxAge <= 0) || p.Keep < 0 || p.MaxAge < 0 {
		return res, errors.New("pruner: invalid configuration")
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	logger := p.Log
	if logger == nil {
		logger = log.NewEntry(log.StandardLogger())
	}

	summaries, err := p.Store.ListCharts(ctx)
	if err != nil {
		return res, err
	}

	cutoff := now().Add(-p.MaxAge)
	for i, s := range summaries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Examined++
		if p.Keep > 0 && i < p.Keep {
			continue
		}
		if p.MaxAge > 0 && !s.CreatedAt.Before(cutoff) {
			continue
		}

		deleted, err := p.Store.DeleteChart(ctx, s.ID)
		if err != nil {
			logger.WithError(err).WithField("chart", s.ID).Warn("failed to delete chart")
			res.Errors++
			continue
		}
		if deleted {
			logger.WithFields(log.Fields{"chart": s.ID, "created": s.CreatedAt}).Debug("chart deleted")
			res.Deleted++
		}
	}
	return res, nil
}
