package actor

import (
	"errors"
	"fmt"
	"log"
	"time"

	adactor "github.com/berfenger/touchlinesl2mqtt/internal/adapter/actor"
	"github.com/berfenger/touchlinesl2mqtt/internal/config"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/service"
	. "github.com/berfenger/touchlinesl2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type MQTTActorProvider func() *adactor.MQTTActor

type CoordinatorActorProvider func(*service.CoordinatorRegistry, *eventstream.EventStream) *adactor.CoordinatorActor

type MasterOfPuppetsActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck       healthCheckResult
	eventStream              *eventstream.EventStream
	coordinators             *service.CoordinatorRegistry
	entities                 *service.EntityRegistry
	coordinatorActor         *actor.PID
	mqttActor                *actor.PID
	sensorPlatformActor      *actor.PID
	coordinatorActorProvider CoordinatorActorProvider
	mqttActorProvider        MQTTActorProvider
	logger                   *zap.Logger
}

type healthCheckResult struct {
	coordinatorActorHealthy    bool
	mqttActorHealthy           bool
	sensorPlatformActorHealthy bool
	checksReceived             int
	respondTo                  *actor.PID
}

func NewMasterOfPuppetsActor(config config.Config, coordinators *service.CoordinatorRegistry, entities *service.EntityRegistry,
	coordinatorActorProvider CoordinatorActorProvider, mqttActorProvider MQTTActorProvider, logger *zap.Logger) *MasterOfPuppetsActor {
	act := &MasterOfPuppetsActor{
		config:                   config,
		behavior:                 actor.NewBehavior(),
		stash:                    &Stash{},
		logger:                   ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:              &eventstream.EventStream{},
		coordinators:             coordinators,
		entities:                 entities,
		coordinatorActorProvider: coordinatorActorProvider,
		mqttActorProvider:        mqttActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterOfPuppetsActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterOfPuppetsActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset()

		// start Coordinator child
		coordinatorActorPID, err := state.startCoordinatorActor(ctx)
		if err != nil {
			panic(err)
		}
		state.coordinatorActor = coordinatorActorPID

		// start MQTT child
		mqttActorPID, err := state.startMQTTActor(ctx)
		if err != nil {
			panic(err)
		}
		state.mqttActor = mqttActorPID

		// start SensorPlatform child
		sensorPlatformActorPID, err := state.startSensorPlatformActor(ctx)
		if err != nil {
			panic(err)
		}
		state.sensorPlatformActor = sensorPlatformActorPID

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		// Coordinator Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.coordinatorActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_COORDINATOR,
				Healthy: false,
			}
		})
		// MQTT Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		// SensorPlatform Actor Request
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.sensorPlatformActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_SENSOR_PLATFORM,
				Healthy: false,
			}
		})

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.SnapshotReceived:
		// redirect snapshot to the coordinator
		state.logger.Debug("master@default SnapshotReceived", zap.String("module", msg.ModuleId))
		ctx.Send(state.coordinatorActor, domain.UpdateSnapshotRequest{
			ModuleId: msg.ModuleId,
			Payload:  msg.Payload,
		})
	case domain.HomeAssistantStatus:
		state.logger.Debug("master@default HomeAssistantStatus", zap.Bool("online", msg.Online))
		ctx.Send(state.sensorPlatformActor, msg)
	case domain.ReloadEntryRequest:
		ctx.Forward(state.sensorPlatformActor)
	case domain.GetModuleSnapshotRequest:
		ctx.Forward(state.coordinatorActor)
	case *actor.Terminated:
		// if some actor fails on boot, terminate
		if msg.Who.Id == fmt.Sprintf("%s/%s", ctx.Self().Id, domain.ACTOR_ID_COORDINATOR) {
			state.logger.Error("master@default coordinator error")
			panic(errors.New("coordinator terminated"))
		}
	default:
		state.logger.Debug("master@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		ctx.SetReceiveTimeout(0)
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_COORDINATOR:
				state.currentHealthCheck.coordinatorActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.currentHealthCheck.mqttActorHealthy = true
			case domain.ACTOR_ID_SENSOR_PLATFORM:
				state.currentHealthCheck.sensorPlatformActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {
			ctx.SetReceiveTimeout(0)
			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) startCoordinatorActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(3, 10*time.Second, decider)

	coordinatorProps := actor.PropsFromProducer(func() actor.Actor {
		return state.coordinatorActorProvider(state.coordinators, state.eventStream)
	}, actor.WithSupervisor(supervisor))
	coordinatorActorPID, err := ctx.SpawnNamed(coordinatorProps, domain.ACTOR_ID_COORDINATOR)
	if err != nil {
		return nil, err
	}

	return coordinatorActorPID, nil
}

func (state *MasterOfPuppetsActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider()
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *MasterOfPuppetsActor) startSensorPlatformActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	platformProps := actor.PropsFromProducer(func() actor.Actor {
		return NewSensorPlatformActor(&state.config, state.mqttActor, state.coordinatorActor,
			state.coordinators, state.entities, state.eventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	platformPID, err := ctx.SpawnNamed(platformProps, domain.ACTOR_ID_SENSOR_PLATFORM)
	if err != nil {
		return nil, err
	}

	return platformPID, nil
}

func (state *healthCheckResult) reset() {
	state.coordinatorActorHealthy = false
	state.mqttActorHealthy = false
	state.sensorPlatformActorHealthy = false
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == 3
}

func (state *healthCheckResult) allHealthy() bool {
	return state.coordinatorActorHealthy && state.mqttActorHealthy && state.sensorPlatformActorHealthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
