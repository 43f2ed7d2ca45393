package actor

import (
	"testing"
	"time"

	adactor "github.com/berfenger/touchlinesl2mqtt/internal/adapter/actor"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/domain"
	"github.com/berfenger/touchlinesl2mqtt/internal/core/service"
	"github.com/berfenger/touchlinesl2mqtt/internal/util"
	"github.com/berfenger/touchlinesl2mqtt/internal/util/actorutil"
	"github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// waitFor reads published requests from sink until match returns true.
func waitFor[T any](t *testing.T, sink <-chan any, timeout time.Duration, match func(T) bool) T {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-sink:
			if m, ok := msg.(T); ok && match(m) {
				return m
			}
		case <-deadline:
			var zero T
			t.Fatalf("no %T received", zero)
			return zero
		}
	}
}

// assertDevicesResolve checks that every via_device of a discovery request points to an announced device.
func assertDevicesResolve(t *testing.T, req domain.PublishDiscoveryRequest) {
	t.Helper()
	announced := make(map[string]bool)
	for _, s := range req.Sensors {
		if s.Device.Name != "" {
			announced[s.Device.Id] = true
		}
	}
	for _, s := range req.Sensors {
		if s.Device.ViaDevice != "" {
			assert.True(t, announced[s.Device.ViaDevice], "via_device %s of %s is announced", s.Device.ViaDevice, s.UniqueId)
		}
	}
}

func countSensorUpdates(sink <-chan any, timeout time.Duration) (values int, availability int, modules int) {
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-sink:
			req, ok := msg.(domain.PublishSensorUpdateRequest)
			if !ok {
				continue
			}
			switch req.Event.(type) {
			case domain.AvailabilityUpdateEvent:
				availability++
			case domain.BinarySensorUpdateEvent:
				modules++
			case domain.BridgeStateUpdateEvent:
			default:
				values++
			}
		case <-deadline:
			return
		}
	}
}

func TestSensorPlatformActor(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	coordinators := service.NewCoordinatorRegistry()
	c, _ := coordinators.GetOrCreate(touchlinesl.TestModuleID)
	c.Update(touchlinesl.CreateTestSnapshot(), time.Now())
	entities := service.NewEntityRegistry()
	es := &eventstream.EventStream{}

	sink := make(chan any, 100)
	mqttPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewTestMQTTActorWithSink(&cfg, sink, logger)
	}))
	coordinatorPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewCoordinatorActor(&cfg, coordinators, nil, es, logger)
	}))
	pid := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewSensorPlatformActor(&cfg, mqttPID, coordinatorPID, coordinators, entities, es, logger)
	}))
	defer as.Shutdown()

	// setup runs after the setup delay
	discovery := waitFor(t, sink, 3*time.Second, func(m domain.PublishDiscoveryRequest) bool { return true })
	require.Len(t, discovery.Sensors, 4, "bridge sensor, module sensor and one battery per zone")
	assert.Equal(domain.SENSOR_ID_BRIDGE_STATE, discovery.Sensors[0].Id)
	assert.Equal("module-1234-connectivity", discovery.Sensors[1].UniqueId)
	assert.Equal("Ground floor", discovery.Sensors[1].Device.Name)
	assert.Equal("1.2.3", discovery.Sensors[1].Device.Version)
	assert.Equal("module-1234-zone-1-battery_percent", discovery.Sensors[2].UniqueId)
	assert.Equal("Living room", discovery.Sensors[2].Device.Name)
	assert.Equal(domain.ModuleDeviceId(touchlinesl.TestModuleID), discovery.Sensors[2].Device.ViaDevice)
	assert.Equal("Kitchen", discovery.Sensors[3].Device.Name)
	assertDevicesResolve(t, discovery)
	assert.Equal(2, entities.Len())

	values, availability, modules := countSensorUpdates(sink, 300*time.Millisecond)
	assert.Equal(2, values)
	assert.Equal(2, availability)
	assert.Equal(1, modules)

	// a plain coordinator update publishes states only
	es.Publish(domain.CoordinatorUpdatedEvent{ModuleId: touchlinesl.TestModuleID, Available: true})
	values, availability, modules = countSensorUpdates(sink, 300*time.Millisecond)
	assert.Equal(2, values)
	assert.Equal(2, availability)
	assert.Equal(1, modules)

	// Home Assistant coming online republishes discovery
	context.Send(pid, domain.HomeAssistantStatus{Online: true})
	discovery = waitFor(t, sink, time.Second, func(m domain.PublishDiscoveryRequest) bool { return true })
	assert.Len(discovery.Sensors, 4)
	assertDevicesResolve(t, discovery)

	// a new zone reloads the entry
	snap := touchlinesl.CreateTestSnapshot()
	snap.Zones[3] = &touchlinesl.Zone{ID: 3, Name: "Bedroom", BatteryLevel: touchlinesl.IntPtr(40)}
	changed := c.Update(snap, time.Now())
	require.True(t, changed)
	es.Publish(domain.CoordinatorUpdatedEvent{ModuleId: touchlinesl.TestModuleID, ZonesChanged: true, Available: true})
	discovery = waitFor(t, sink, time.Second, func(m domain.PublishDiscoveryRequest) bool { return len(m.Sensors) == 5 })
	assert.Equal("module-1234-zone-3-battery_percent", discovery.Sensors[4].UniqueId)
	assertDevicesResolve(t, discovery)
	assert.Equal(3, entities.Len())

	res, err := context.RequestFuture(pid, domain.ReloadEntryRequest{}, time.Second).Result()
	require.NoError(t, err)
	assert.Equal(3, res.(domain.ReloadEntryResponse).Entities)

	res, err = context.RequestFuture(pid, domain.ActorHealthRequest{}, time.Second).Result()
	require.NoError(t, err)
	health := res.(domain.ActorHealthResponse)
	assert.True(health.Healthy)
	assert.Equal("ready", health.State)

	context.Stop(pid)
}

func TestSensorPlatformActorSetupOnFirstUpdate(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	cfg.Platform.SetupDelayMillis = 60000
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root
	defer as.Shutdown()

	coordinators := service.NewCoordinatorRegistry()
	entities := service.NewEntityRegistry()
	es := &eventstream.EventStream{}

	sink := make(chan any, 100)
	mqttPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewTestMQTTActorWithSink(&cfg, sink, logger)
	}))
	coordinatorPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewCoordinatorActor(&cfg, coordinators, nil, es, logger)
	}))
	context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewSensorPlatformActor(&cfg, mqttPID, coordinatorPID, coordinators, entities, es, logger)
	}))

	// give the platform time to pass its health checks
	time.Sleep(300 * time.Millisecond)
	assert.Equal(0, entities.Len())

	payload, err := touchlinesl.Encode(touchlinesl.EncodingJSON, touchlinesl.CreateTestSnapshot())
	require.NoError(t, err)
	_, err = context.RequestFuture(coordinatorPID, domain.UpdateSnapshotRequest{
		ModuleId: touchlinesl.TestModuleID,
		Payload:  payload,
	}, 2*time.Second).Result()
	require.NoError(t, err)

	discovery := waitFor(t, sink, 2*time.Second, func(m domain.PublishDiscoveryRequest) bool { return true })
	assert.Len(discovery.Sensors, 4)
	assertDevicesResolve(t, discovery)
	assert.Equal(2, entities.Len())
}
