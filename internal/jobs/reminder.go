package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/simp-lee/pension/internal/config"
	"github.com/simp-lee/pension/internal/domain"
	"github.com/simp-lee/pension/internal/metrics"
	"github.com/simp-lee/pension/internal/notify"
)

const (
	defaultBatchSize   = 100
	defaultConcurrency = 4
)

// ContributionReminder notifies every active member that a contribution is
// due. Members are read one page at a time.
type ContributionReminder struct {
	members     domain.MemberRepository
	notifier    notify.Notifier
	batchSize   int
	concurrency int
	log         *slog.Logger
	metrics     *metrics.Metrics
}

// NewContributionReminder creates the reminder job. Zero batch size or
// concurrency in cfg fall back to defaults.
func NewContributionReminder(members domain.MemberRepository, n notify.Notifier, cfg config.ContributionReminderConfig, log *slog.Logger, m *metrics.Metrics) *ContributionReminder {
	r := &ContributionReminder{
		members:     members,
		notifier:    n,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
		log:         log,
		metrics:     m,
	}
	if r.batchSize <= 0 {
		r.batchSize = defaultBatchSize
	}
	if r.concurrency <= 0 {
		r.concurrency = defaultConcurrency
	}
	return r
}

// Name implements Job.
func (r *ContributionReminder) Name() string { return "contribution_reminder" }

// Run implements Job. Individual delivery failures are counted and reported
// once all members were tried; a canceled context stops the run.
func (r *ContributionReminder) Run(ctx context.Context) error {
	var sent, failed atomic.Int64

	for pageIndex := 1; ; pageIndex++ {
		page, err := r.members.List(ctx, domain.PageRequest{
			PageIndex: pageIndex,
			PageSize:  r.batchSize,
			Sort:      "member_id:asc",
			Filter:    map[string]string{"status": string(domain.StatusActive)},
		})
		if err != nil {
			return fmt.Errorf("list members page %d: %w", pageIndex, err)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)
		for _, m := range page.Items {
			g.Go(func() error {
				err := r.notifier.Notify(gctx, reminderFor(m))
				r.metrics.ReminderSent(err)
				if err != nil {
					if ctxErr := gctx.Err(); ctxErr != nil {
						return ctxErr
					}
					failed.Add(1)
					r.log.WarnContext(ctx, "reminder not delivered", "member_id", m.MemberID, "error", err)
					return nil
				}
				sent.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		if !page.HasNextPage() {
			break
		}
	}

	r.log.InfoContext(ctx, "contribution reminders processed", "sent", sent.Load(), "failed", failed.Load())
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d reminders failed", n, n+sent.Load())
	}
	return nil
}

func reminderFor(m domain.Member) notify.Message {
	return notify.Message{
		MemberID: m.MemberID,
		To:       m.Email,
		Subject:  "Your pension contribution is due",
		Body:     fmt.Sprintf("Dear %s, this is a reminder that your monthly pension contribution is due.", m.FirstName),
	}
}
