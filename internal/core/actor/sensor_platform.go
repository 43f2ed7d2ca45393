package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/touchlinesl2mqtt/internal/config"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/events"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/port"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/sensor"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/service"
	. "github.com/berfenger/touchlinesl2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// SensorPlatformActor sets up the sensor entities of the config entry and keeps their
// MQTT state in sync with the coordinators.
type SensorPlatformActor struct {
	ActorWithStates
	scheduler        *scheduler.TimerScheduler
	stash            *Stash
	config           *config.Config
	mqttActor        *actor.PID
	coordinatorActor *actor.PID
	coordinators     *service.CoordinatorRegistry
	entities         *service.EntityRegistry
	eventStream      *eventstream.EventStream
	subscription     *eventstream.Subscription
	modules          map[string]bool

	logger *zap.Logger
}

type setupDelayTick struct {
}

func NewSensorPlatformActor(config *config.Config, mqttActor *actor.PID, coordinatorActor *actor.PID,
	coordinators *service.CoordinatorRegistry, entities *service.EntityRegistry,
	eventStream *eventstream.EventStream, logger *zap.Logger) *SensorPlatformActor {
	act := &SensorPlatformActor{
		config:           config,
		mqttActor:        mqttActor,
		coordinatorActor: coordinatorActor,
		coordinators:     coordinators,
		entities:         entities,
		eventStream:      eventStream,
		stash:            &Stash{},
		logger:           ActorLogger(domain.ACTOR_ID_SENSOR_PLATFORM, logger),
		ActorWithStates: ActorWithStates{
			Behavior: actor.NewBehavior(),
		},
	}
	act.Become(SPStartingState{
		actor: act,
	})
	return act
}

func (state *SensorPlatformActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

// Starting state

type SPStartingState struct {
	ActorState
	actor *SensorPlatformActor
}

func (state SPStartingState) Name() string {
	return "starting"
}

func (state SPStartingState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.actor.logger.Debug("sensor_platform@starting started")

		state.actor.scheduler = scheduler.NewTimerScheduler(ctx)
		state.actor.subscribe(ctx)

		// Check MQTT and coordinator actor healthy
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.actor.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.actor.coordinatorActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_COORDINATOR,
				Healthy: false,
			}
		})
		state.actor.Become(&SPWaitingHealthyState{
			actor: state.actor,
		})
	case *actor.Restarting:
		state.actor.unsubscribe()
	default:
		state.actor.logger.Debug("sensor_platform@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

// Waiting healthy state

type SPWaitingHealthyState struct {
	ActorState
	actor            *SensorPlatformActor
	received         int
	mqttHealthy      bool
	coordinatorReady bool
}

func (state *SPWaitingHealthyState) Name() string {
	return "healthcheck"
}

func (state *SPWaitingHealthyState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.actor.logger.Debug("sensor_platform@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.received++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_MQTT:
				state.mqttHealthy = true
			case domain.ACTOR_ID_COORDINATOR:
				state.coordinatorReady = true
			}
		}
		if state.received < 2 {
			return
		}
		if !state.mqttHealthy || !state.coordinatorReady {
			panic(errors.New("MQTT Actor or Coordinator Actor are not healthy"))
		}
		state.actor.Become(SPWaitingDataState{
			actor: state.actor,
		}.OnEnter(ctx))
	case *actor.Stopping:
		state.actor.unsubscribe()
	case *actor.Restarting:
		state.actor.unsubscribe()
	default:
		state.actor.logger.Debug("sensor_platform@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

// Waiting data state: setup runs on the first coordinator update or after the setup delay

type SPWaitingDataState struct {
	ActorState
	actor *SensorPlatformActor
}

func (state SPWaitingDataState) Name() string {
	return "waitingData"
}

func (state SPWaitingDataState) OnEnter(ctx actor.Context) SPWaitingDataState {
	delay := time.Duration(state.actor.config.Platform.SetupDelayMillis) * time.Millisecond
	state.actor.scheduler.RequestOnce(delay, ctx.Self(), setupDelayTick{})
	return state
}

func (state SPWaitingDataState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.CoordinatorUpdatedEvent:
		state.actor.logger.Debug("sensor_platform@waitingData CoordinatorUpdatedEvent", zap.String("module", msg.ModuleId))
		state.ready(ctx)
	case setupDelayTick:
		state.actor.logger.Debug("sensor_platform@waitingData setup delay elapsed")
		state.ready(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SENSOR_PLATFORM,
			Healthy: true,
			State:   state.Name(),
		})
	case *actor.Stopping:
		state.actor.unsubscribe()
	case *actor.Restarting:
		state.actor.unsubscribe()
	default:
		state.actor.logger.Debug("sensor_platform@waitingData stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

func (state SPWaitingDataState) ready(ctx actor.Context) {
	state.actor.setup(ctx)
	state.actor.Become(SPReadyState{
		actor: state.actor,
	})
	state.actor.stash.UnstashAll(ctx)
}

// Ready state

type SPReadyState struct {
	ActorState
	actor *SensorPlatformActor
}

func (state SPReadyState) Name() string {
	return "ready"
}

func (state SPReadyState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.actor.logger.Debug("sensor_platform@ready ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SENSOR_PLATFORM,
			Healthy: true,
			State:   state.Name(),
		})
	case domain.CoordinatorUpdatedEvent:
		state.actor.logger.Debug("sensor_platform@ready CoordinatorUpdatedEvent", zap.String("module", msg.ModuleId),
			zap.Bool("zones_changed", msg.ZonesChanged), zap.Bool("available", msg.Available))
		if msg.ZonesChanged || !state.actor.modules[msg.ModuleId] {
			state.actor.setup(ctx)
			return
		}
		state.actor.publishModuleState(ctx, msg.ModuleId)
		state.actor.publishStates(ctx, state.actor.entities.ByModule(msg.ModuleId))
	case domain.HomeAssistantStatus:
		state.actor.logger.Debug("sensor_platform@ready HomeAssistantStatus", zap.Bool("online", msg.Online))
		if msg.Online {
			state.actor.publishDiscovery(ctx, state.actor.entities.Entities())
			state.actor.publishBridgeState(ctx)
			state.actor.publishModuleStates(ctx)
			state.actor.publishStates(ctx, state.actor.entities.Entities())
		}
	case domain.ReloadEntryRequest:
		state.actor.logger.Debug("sensor_platform@ready ReloadEntryRequest")
		n := state.actor.setup(ctx)
		ForRequest(msg).Respond(ctx, domain.ReloadEntryResponse{
			Entities: n,
		})
	case setupDelayTick:
	case *actor.Stopping:
		state.actor.unsubscribe()
	case *actor.Restarting:
		state.actor.unsubscribe()
	default:
		state.actor.logger.Debug("sensor_platform@ready recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// setup registers the entities of the entry and announces them. It returns the number of entities.
func (state *SensorPlatformActor) setup(ctx actor.Context) int {
	count := 0
	entry := state.coordinators.ConfigEntry(state.config.Platform.EntryId)
	state.modules = make(map[string]bool, len(entry.RuntimeData))
	for _, c := range entry.RuntimeData {
		if data := c.Data(); data != nil {
			state.modules[data.Module.ID] = true
		}
	}
	sensor.AsyncSetupEntry(entry, func(entities []port.SensorEntity) {
		state.logger.Info("sensor_platform setup entry", zap.String("entry", entry.EntryId),
			zap.Int("modules", len(entry.RuntimeData)), zap.Int("entities", len(entities)))
		state.entities.Replace(entities)
		state.publishDiscovery(ctx, entities)
		state.publishModuleStates(ctx)
		state.publishStates(ctx, entities)
		count = len(entities)
	})
	return count
}

func (state *SensorPlatformActor) publishDiscovery(ctx actor.Context, entities []port.SensorEntity) {
	if !state.config.MQTT.HADiscoveryEnable {
		return
	}
	bridgeDevice := events.BridgeDevice(state.config.MQTT.BaseTopic)
	sensors := events.BridgeSensors(bridgeDevice)
	// module devices first, zone devices point to them
	for _, c := range state.coordinators.Coordinators() {
		data := c.Data()
		if data == nil {
			continue
		}
		moduleDevice := events.ModuleDevice(data.Module, bridgeDevice)
		sensors = append(sensors, events.ModuleSensors(moduleDevice, c.ModuleId())...)
	}
	sensors = append(sensors, events.EntitiesToGenericSensors(entities)...)
	ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
		Sensors: sensors,
	})
}

func (state *SensorPlatformActor) publishBridgeState(ctx actor.Context) {
	ctx.Send(state.mqttActor, domain.PublishSensorUpdateRequest{
		Event: domain.BridgeStateUpdateEvent{
			SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: domain.SENSOR_ID_BRIDGE_STATE},
			Value:                  true,
		},
	})
}

func (state *SensorPlatformActor) publishModuleStates(ctx actor.Context) {
	for _, c := range state.coordinators.Coordinators() {
		if c.Data() != nil {
			state.publishModuleState(ctx, c.ModuleId())
		}
	}
}

func (state *SensorPlatformActor) publishModuleState(ctx actor.Context, moduleId string) {
	c := state.coordinators.Get(moduleId)
	if c == nil || c.Data() == nil {
		return
	}
	ctx.Send(state.mqttActor, domain.PublishSensorUpdateRequest{
		Event: events.ModuleStateUpdateEvent(moduleId, c.LastUpdateSuccess()),
	})
}

func (state *SensorPlatformActor) publishStates(ctx actor.Context, entities []port.SensorEntity) {
	for _, ev := range events.EntitiesToUpdateEvents(entities) {
		ctx.Send(state.mqttActor, domain.PublishSensorUpdateRequest{
			Event: ev,
		})
	}
}

func (state *SensorPlatformActor) subscribe(ctx actor.Context) {
	system := ctx.ActorSystem()
	self := ctx.Self()
	state.subscription = state.eventStream.Subscribe(func(evt any) {
		if e, ok := evt.(domain.CoordinatorUpdatedEvent); ok {
			system.Root.Send(self, e)
		}
	})
}

func (state *SensorPlatformActor) unsubscribe() {
	if state.subscription != nil {
		state.eventStream.Unsubscribe(state.subscription)
		state.subscription = nil
	}
}
