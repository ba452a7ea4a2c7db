package chat

import (
	"context"
	"errors"
	"fmt"

	"futureself/internal/models"
	"futureself/internal/prompt"
	"futureself/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Store is the slice of the storage service the pipeline reads and appends to.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	GetCalibration(ctx context.Context, userID string) (*models.CalibrationRecord, error)
	GetPlan(ctx context.Context, userID, planID string) (*models.Plan, error)
	RecentTurns(ctx context.Context, thread models.Thread, limit int) ([]models.Turn, error)
	AppendTurn(ctx context.Context, thread models.Thread, turn *models.Turn) error
}

// Snapshot is the user state gathered for one turn. Any fragment may be
// absent.
type Snapshot struct {
	Profile     models.Option[models.UserProfile]
	Calibration models.Option[models.CalibrationRecord]
	Plan        models.Option[models.Plan]
	History     []models.Turn
}

// Aggregate fetches the fragments for userID concurrently. Read failures are
// logged and degrade to absent fragments; Aggregate itself never fails.
func (s *Service) Aggregate(ctx context.Context, userID string, c models.ChatContext) Snapshot {
	var (
		snap Snapshot
		g    errgroup.Group
	)
	log := s.logger.With("user_id", userID, "context", c.Kind())

	g.Go(func() error {
		p, err := s.store.GetProfile(ctx, userID)
		if err != nil {
			logAbsent(log, "profile", err)
			return nil
		}
		snap.Profile = models.Some(*p)
		return nil
	})

	g.Go(func() error {
		cal, err := s.store.GetCalibration(ctx, userID)
		if err != nil {
			logAbsent(log, "calibration", err)
			return nil
		}
		snap.Calibration = models.Some(*cal)
		return nil
	})

	if pc, ok := c.(models.PlanContext); ok {
		g.Go(func() error {
			plan, err := s.store.GetPlan(ctx, userID, pc.PlanID)
			if err != nil {
				logAbsent(log, "plan", err)
				return nil
			}
			if plan.UserID != userID {
				log.Warnw("Plan owner mismatch, treating plan as absent", "plan_id", pc.PlanID)
				return nil
			}
			plan.ClampCurrentStep()
			snap.Plan = models.Some(*plan)
			return nil
		})
	}

	g.Go(func() error {
		turns, err := s.store.RecentTurns(ctx, models.ThreadFor(userID, c), s.fetchLimit)
		if err != nil {
			logAbsent(log, "history", err)
			return nil
		}
		snap.History = turns
		return nil
	})

	_ = g.Wait()
	return snap
}

func logAbsent(log *logger.Logger, fragment string, err error) {
	if errors.Is(err, models.ErrNotFound) {
		return
	}
	log.Warnw("Failed to read state fragment, continuing without it", "fragment", fragment, "error", err)
}

// BuildScope picks the prompt template for c from the snapshot. A plan
// context whose plan could not be resolved is an invalid request.
func BuildScope(c models.ChatContext, snap Snapshot) (prompt.Scope, error) {
	switch ctx := c.(type) {
	case models.GeneralContext:
		return prompt.GeneralScope{
			Profile:     snap.Profile,
			Calibration: snap.Calibration,
		}, nil
	case models.PlanContext:
		plan, ok := snap.Plan.Get()
		if !ok {
			return nil, models.InvalidRequest("plan %s not found", ctx.PlanID)
		}
		return prompt.PlanScope{
			Profile:     snap.Profile,
			Calibration: snap.Calibration,
			Plan:        plan,
			Context:     prompt.FormatContext(plan.ContextData),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported chat context %T", c)
	}
}
