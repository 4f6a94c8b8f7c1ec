package worker

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/personality-engine/internal/services/events"
	"github.com/jwebster45206/personality-engine/pkg/health"
	"github.com/jwebster45206/personality-engine/pkg/narrative"
	"github.com/jwebster45206/personality-engine/pkg/personality"
	queuePkg "github.com/jwebster45206/personality-engine/pkg/queue"
)

// Processor applies queued requests to one character and publishes the results
type Processor struct {
	characterID uuid.UUID
	engine      *personality.Engine
	vitals      *health.Vitals
	runner      *narrative.Runner
	broadcaster *events.Broadcaster
	logger      *slog.Logger

	// vars mirrors the state as dialogue variables (ps_*, hs_*).
	vars map[string]string
}

// NewProcessor wires a processor. vitals may be nil, in which case health
// requests fail and dialogue events assume a healthy body.
func NewProcessor(characterID uuid.UUID, engine *personality.Engine, vitals *health.Vitals, broadcaster *events.Broadcaster, logger *slog.Logger) *Processor {
	var body narrative.Body
	if vitals != nil {
		body = vitals
	}
	return &Processor{
		characterID: characterID,
		engine:      engine,
		vitals:      vitals,
		runner:      narrative.NewRunner(engine, body, logger),
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Process applies one request
func (p *Processor) Process(ctx context.Context, req *queuePkg.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	wasAlive := p.engine.IsAlive()
	deathPublished := false

	switch req.Type {
	case queuePkg.RequestTypeEvent:
		out := p.engine.RaiseEvent(ctx, *req.Event)
		deathPublished = out.Died
		p.publishOutcome(ctx, req.RequestID, out)

	case queuePkg.RequestTypeHealth:
		if p.vitals == nil {
			return fmt.Errorf("no vitals model for health request %s", req.RequestID)
		}
		s := p.vitals.Apply(ctx, *req.Health)
		p.publishHealth(ctx, req.RequestID, s)

	case queuePkg.RequestTypeCommand:
		res, err := p.runner.Execute(ctx, req.Command)
		if err != nil {
			return fmt.Errorf("failed to execute command: %w", err)
		}
		if res.Outcome != nil {
			deathPublished = res.Outcome.Died
			p.publishOutcome(ctx, req.RequestID, *res.Outcome)
		}
		if res.Health != nil {
			p.publishHealth(ctx, req.RequestID, *res.Health)
		}
	}

	if wasAlive && !p.engine.IsAlive() && !deathPublished {
		if err := p.broadcaster.PublishDeath(ctx, p.characterID, req.RequestID, "health"); err != nil {
			p.logger.Error("Failed to publish death event", "error", err)
		}
	}

	p.storeSnapshot(ctx)
	return nil
}

// Decay runs one decay tick and publishes the decayed state
func (p *Processor) Decay(ctx context.Context, elapsed time.Duration) {
	if !p.engine.IsAlive() {
		return
	}
	p.engine.DecayTick(elapsed)

	s := p.engine.Snapshot()
	if err := p.broadcaster.PublishDecay(ctx, p.characterID, s); err != nil {
		p.logger.Error("Failed to publish decay event", "error", err)
	}
	p.storeSnapshot(ctx)
}

// Snapshot returns the character's current state
func (p *Processor) Snapshot() personality.Snapshot {
	return p.engine.Snapshot()
}

// Vars returns a copy of the dialogue variables last written
func (p *Processor) Vars() map[string]string {
	return maps.Clone(p.vars)
}

func (p *Processor) publishOutcome(ctx context.Context, requestID string, out personality.Outcome) {
	// Publishing failures never fail the request; the state change already happened.
	if err := p.broadcaster.PublishOutcome(ctx, p.characterID, requestID, out); err != nil {
		p.logger.Error("Failed to publish outcome", "error", err, "request_id", requestID)
	}
}

func (p *Processor) publishHealth(ctx context.Context, requestID string, s health.Snapshot) {
	if err := p.broadcaster.PublishHealth(ctx, p.characterID, requestID, s); err != nil {
		p.logger.Error("Failed to publish health", "error", err, "request_id", requestID)
	}
}

func (p *Processor) storeSnapshot(ctx context.Context) {
	s := p.engine.Snapshot()
	if err := p.broadcaster.StoreSnapshot(ctx, p.characterID, s); err != nil {
		p.logger.Error("Failed to store snapshot", "error", err)
	}

	p.vars = narrative.SyncPersonality(p.vars, s)
	if p.vitals != nil {
		p.vars = narrative.SyncHealth(p.vars, p.vitals.Snapshot())
	}
	if err := p.broadcaster.StoreVars(ctx, p.characterID, p.vars); err != nil {
		p.logger.Error("Failed to store vars", "error", err)
	}
}
