package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gamewatch/notifier/internal/creator"
	"github.com/gamewatch/notifier/internal/domain"
	"github.com/gamewatch/notifier/internal/mail"
	"github.com/gamewatch/notifier/internal/ratelimiter"
	"github.com/gamewatch/notifier/internal/report"
	"github.com/gamewatch/notifier/internal/repository"
)

// Timeouts bounds the service's two external suspension points so a hung
// collaborator can only stall its own job, never the whole pool.
type Timeouts struct {
	Lookup time.Duration
	Mail   time.Duration
}

// NotificationService runs every creator over one snapshot pair, persists
// the results idempotently, and dispatches mail best-effort. Only lookup,
// snapshot decode and persistence failures propagate to the caller; creator
// and delivery failures are terminal at their own boundary.
type NotificationService struct {
	creators      []creator.Creator
	sources       repository.SourceRepository
	notifications repository.NotificationRepository
	sender        mail.Sender
	limiter       *ratelimiter.MailLimiter
	reporter      report.Reporter
	templates     mail.Templates
	timeouts      Timeouts
	logger        *zap.Logger
	now           func() time.Time
}

func NewNotificationService(
	creators []creator.Creator,
	sources repository.SourceRepository,
	notifications repository.NotificationRepository,
	sender mail.Sender,
	limiter *ratelimiter.MailLimiter,
	reporter report.Reporter,
	templates mail.Templates,
	timeouts Timeouts,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		creators:      creators,
		sources:       sources,
		notifications: notifications,
		sender:        sender,
		limiter:       limiter,
		reporter:      reporter,
		templates:     templates,
		timeouts:      timeouts,
		logger:        logger,
		now:           time.Now,
	}
}

// SetClock overrides the time source; tests use a fixed instant.
func (s *NotificationService) SetClock(now func() time.Time) { s.now = now }

type hit struct {
	creatorType domain.NotificationType
	payload     any
}

// CreateNotifications is the one operation of this service: given a job's
// snapshot pair, detect, persist and dispatch. The returned slice holds only
// newly persisted notifications; an empty slice is the common outcome.
func (s *NotificationService) CreateNotifications(ctx context.Context, job *domain.Job) ([]*domain.Notification, error) {
	log := s.logger.With(zap.String("source_id", job.SourceID))

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeouts.Lookup)
	defer cancel()
	owner, err := s.sources.GetWithOwner(lookupCtx, job.SourceID)
	if err != nil {
		return nil, fmt.Errorf("resolve source %s: %w", job.SourceID, err)
	}

	current, err := domain.DecodeGameData(owner.Source.Type, job.ResolvedData)
	if err != nil {
		return nil, fmt.Errorf("resolved snapshot: %w", err)
	}
	var previous domain.GameData
	if job.HasExistingData() {
		previous, err = domain.DecodeGameData(owner.Source.Type, job.ExistingData)
		if err != nil {
			return nil, fmt.Errorf("existing snapshot: %w", err)
		}
	}

	now := s.now().UTC()
	pair := creator.Pair{
		SourceType: owner.Source.Type,
		Previous:   previous,
		Current:    current,
		Now:        now,
	}

	hits := s.detect(pair, log)

	created := make([]*domain.Notification, 0, len(hits))
	for _, h := range hits {
		raw, err := domain.EncodePayload(h.payload)
		if err != nil {
			log.Error("unencodable creator payload",
				zap.String("creator", string(h.creatorType)), zap.Error(err))
			s.reporter.Capture(err, map[string]string{
				"sourceId": job.SourceID, "creator": string(h.creatorType),
			})
			continue
		}

		exists, err := s.notifications.ExistsEquivalent(ctx, job.SourceID, h.creatorType, raw)
		if err != nil {
			return created, fmt.Errorf("probe equivalent notification: %w", err)
		}
		if exists {
			log.Debug("equivalent notification already stored, skipping",
				zap.String("type", string(h.creatorType)))
			continue
		}

		n := &domain.Notification{
			ID:        uuid.New().String(),
			Type:      h.creatorType,
			SourceID:  job.SourceID,
			GameID:    owner.Game.ID,
			Payload:   raw,
			CreatedAt: now,
		}
		if err := s.notifications.Create(ctx, n); err != nil {
			return created, fmt.Errorf("persist notification: %w", err)
		}
		created = append(created, n)
		log.Info("notification created", zap.String("type", string(h.creatorType)))
	}

	if len(created) > 0 {
		if owner.User.WantsEmail() {
			for _, n := range created {
				s.dispatchMail(ctx, n, owner, log)
			}
		} else {
			log.Debug("user has email notifications disabled")
		}
	}

	return created, nil
}

// detect runs every creator over the pair. A failing creator is logged and
// reported individually and never prevents the remaining creators from
// running. Afterwards the one precedence rule applies: a release going from
// future to past is a release event, not merely a date change.
func (s *NotificationService) detect(pair creator.Pair, log *zap.Logger) []hit {
	var hits []hit
	released := false

	for _, c := range s.creators {
		payload, err := c.Detect(pair)
		if err != nil {
			log.Error("creator failed",
				zap.String("creator", string(c.Type())), zap.Error(err))
			s.reporter.Capture(err, map[string]string{
				"sourceId": pair.Current.Common().ID, "creator": string(c.Type()),
			})
			continue
		}
		if payload == nil {
			continue
		}
		if c.Type() == domain.NotificationGameReleased {
			released = true
		}
		hits = append(hits, hit{creatorType: c.Type(), payload: payload})
	}

	if !released {
		return hits
	}
	filtered := hits[:0]
	for _, h := range hits {
		if h.creatorType == domain.NotificationReleaseDateChanged {
			continue
		}
		filtered = append(filtered, h)
	}
	return filtered
}

// dispatchMail sends one notification email. Delivery is best-effort: the
// persisted record is authoritative, so every failure here is logged and
// reported but never propagated.
func (s *NotificationService) dispatchMail(ctx context.Context, n *domain.Notification, owner *repository.SourceWithOwner, log *zap.Logger) {
	m, err := mail.Build(n, owner.Game, owner.Source.Type, s.templates)
	if err != nil {
		log.Error("build notification mail", zap.Error(err))
		s.reporter.Capture(err, map[string]string{"sourceId": n.SourceID})
		return
	}

	if err := s.limiter.Wait(ctx); err != nil {
		log.Warn("mail dispatch abandoned while rate limited", zap.Error(err))
		return
	}

	mailCtx, cancel := context.WithTimeout(ctx, s.timeouts.Mail)
	defer cancel()
	if err := s.sender.Send(mailCtx, owner.User.Email, m); err != nil {
		log.Warn("mail delivery failed",
			zap.String("notification_id", n.ID),
			zap.String("type", string(n.Type)),
			zap.Error(err),
		)
		s.reporter.Capture(err, map[string]string{
			"sourceId": n.SourceID, "notificationId": n.ID,
		})
		return
	}

	log.Info("notification mail sent",
		zap.String("notification_id", n.ID),
		zap.String("type", string(n.Type)),
	)
}
