package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/touchlinesl2mqtt/internal/adapter/store"
	"github.com/berfenger/touchlinesl2mqtt/internal/config"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/service"
	"github.com/berfenger/touchlinesl2mqtt/internal/util/actorutil"
	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

var ErrModuleMismatch = errors.New("snapshot module id does not match its topic")

// CoordinatorActor is the only writer of the coordinator registry.
type CoordinatorActor struct {
	behavior    actor.Behavior
	stash       *actorutil.Stash
	scheduler   *scheduler.TimerScheduler
	config      *config.Config
	encoding    touchlinesl.Encoding
	registry    *service.CoordinatorRegistry
	store       *store.SnapshotStore
	eventStream *eventstream.EventStream
	now         func() time.Time
	logger      *zap.Logger
}

type decodeResult struct {
	moduleId string
	snapshot *touchlinesl.Snapshot
	err      error
	replyTo  *actor.PID
}

type staleCheckTick struct {
}

func NewCoordinatorActor(config *config.Config, registry *service.CoordinatorRegistry, store *store.SnapshotStore,
	eventStream *eventstream.EventStream, logger *zap.Logger) *CoordinatorActor {
	encoding, err := touchlinesl.ParseEncoding(config.Snapshot.Encoding)
	if err != nil {
		encoding = touchlinesl.EncodingJSON
	}
	act := &CoordinatorActor{
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		config:      config,
		encoding:    encoding,
		registry:    registry,
		store:       store,
		eventStream: eventStream,
		now:         time.Now,
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_COORDINATOR, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *CoordinatorActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *CoordinatorActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("coordinator@starting started")

		state.restore()

		if state.config.Snapshot.CheckIntervalMillis > 0 {
			state.scheduler = scheduler.NewTimerScheduler(ctx)
			state.scheduler.RequestOnce(state.checkInterval(), ctx.Self(), staleCheckTick{})
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("coordinator@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *CoordinatorActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("coordinator@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_COORDINATOR,
			Healthy: true,
			State:   "idle",
		})
	case domain.UpdateSnapshotRequest:
		state.logger.Debug("coordinator@default UpdateSnapshotRequest", zap.String("module", msg.ModuleId))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		moduleId := msg.ModuleId
		payload := msg.Payload

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, func() (*touchlinesl.Snapshot, error) {
			return touchlinesl.Decode(state.encoding, payload)
		}), func(s *touchlinesl.Snapshot) *decodeResult {
			return &decodeResult{moduleId: moduleId, snapshot: s, replyTo: sender}
		}).Recover(func(err error) decodeResult {
			return decodeResult{moduleId: moduleId, err: err, replyTo: sender}
		}).WithTimeout(2 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDecode)
	case domain.GetModuleSnapshotRequest:
		state.logger.Debug("coordinator@default GetModuleSnapshotRequest", zap.String("module", msg.ModuleId))
		resp := domain.GetModuleSnapshotResponse{}
		if c := state.registry.Get(msg.ModuleId); c != nil {
			resp.Snapshot = c.Data()
			resp.Available = c.LastUpdateSuccess()
		} else {
			resp.ResponseError = fmt.Errorf("unknown module %q", msg.ModuleId)
		}
		actorutil.ForRequest(msg).Respond(ctx, resp)
	case staleCheckTick:
		state.checkStale()
		state.scheduler.RequestOnce(state.checkInterval(), ctx.Self(), staleCheckTick{})
	default:
		state.logger.Debug("coordinator@default unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *CoordinatorActor) WaitingDecode(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case decodeResult:
		resp := state.apply(msg)
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, resp)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashOldest(ctx)
	default:
		state.logger.Debug("coordinator@decoding stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *CoordinatorActor) apply(result decodeResult) domain.UpdateSnapshotResponse {
	resp := domain.UpdateSnapshotResponse{ModuleId: result.moduleId}
	if result.err == nil && result.snapshot == nil {
		result.err = errors.New("empty snapshot")
	}
	if result.err == nil && result.snapshot.Module.ID != result.moduleId {
		result.err = fmt.Errorf("%w: %q != %q", ErrModuleMismatch, result.snapshot.Module.ID, result.moduleId)
	}
	if result.err != nil {
		// the cached data is left untouched, staleness will flag the module
		state.logger.Warn("coordinator@decoding invalid snapshot", zap.String("module", result.moduleId), zap.Error(result.err))
		resp.ResponseError = result.err
		return resp
	}

	coordinator, created := state.registry.GetOrCreate(result.moduleId)
	changed := coordinator.Update(result.snapshot, state.now())
	resp.ZonesChanged = changed || created
	state.logger.Debug("coordinator@decoding updated", zap.String("module", result.moduleId),
		zap.Int("zones", len(result.snapshot.Zones)), zap.Bool("zones_changed", resp.ZonesChanged))

	state.persist()
	state.eventStream.Publish(domain.CoordinatorUpdatedEvent{
		ModuleId:     result.moduleId,
		ZonesChanged: resp.ZonesChanged,
		Available:    true,
	})
	return resp
}

func (state *CoordinatorActor) checkStale() {
	staleAfter := time.Duration(state.config.Snapshot.StaleAfterMillis) * time.Millisecond
	if staleAfter <= 0 {
		return
	}
	now := state.now()
	for _, c := range state.registry.Coordinators() {
		if !c.LastUpdateSuccess() || now.Sub(c.LastUpdated()) < staleAfter {
			continue
		}
		if c.MarkFailed() {
			state.logger.Warn("coordinator@default module is stale", zap.String("module", c.ModuleId()),
				zap.Time("last_updated", c.LastUpdated()))
			state.eventStream.Publish(domain.CoordinatorUpdatedEvent{
				ModuleId:  c.ModuleId(),
				Available: false,
			})
		}
	}
}

func (state *CoordinatorActor) restore() {
	if state.store == nil {
		return
	}
	snapshots, err := state.store.Load()
	if err != nil {
		state.logger.Error("coordinator@starting could not restore snapshots", zap.String("file", state.store.Path()), zap.Error(err))
		return
	}
	restored := 0
	for _, snapshot := range snapshots {
		coordinator, _ := state.registry.GetOrCreate(snapshot.Module.ID)
		// after a restart the registry still holds live data
		if coordinator.Data() != nil {
			continue
		}
		coordinator.Restore(snapshot)
		restored++
	}
	state.logger.Info("coordinator@starting restored snapshots", zap.Int("modules", restored))
}

func (state *CoordinatorActor) persist() {
	if state.store == nil {
		return
	}
	if err := state.store.Save(state.registry.Snapshots()); err != nil {
		state.logger.Error("coordinator@decoding could not persist snapshots", zap.Error(err))
	}
}

func (state *CoordinatorActor) checkInterval() time.Duration {
	return time.Duration(state.config.Snapshot.CheckIntervalMillis) * time.Millisecond
}
