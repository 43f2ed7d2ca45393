package domain

import "github.com/berfenger/touchlinesl2mqtt/pkg/touchlinesl"

const (
	ACTOR_ID_MASTER          = "master"
	ACTOR_ID_COORDINATOR     = "coordinator"
	ACTOR_ID_MQTT            = "mqtt"
	ACTOR_ID_SENSOR_PLATFORM = "sensor_platform"
)

// SnapshotReceived is a raw snapshot payload read from the module feed topic.
type SnapshotReceived struct {
	ModuleId string
	Payload  []byte
}

// HomeAssistantStatus is the birth/last will payload of Home Assistant.
type HomeAssistantStatus struct {
	Online bool
}

type UpdateSnapshotRequest struct {
	ActorRequestMixIn
	ModuleId string
	Payload  []byte
}

type UpdateSnapshotResponse struct {
	ActorResponseMixIn
	ModuleId     string
	ZonesChanged bool
}

type GetModuleSnapshotRequest struct {
	ActorRequestMixIn
	ModuleId string
}

type GetModuleSnapshotResponse struct {
	ActorResponseMixIn
	Snapshot  *touchlinesl.Snapshot
	Available bool
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors []GenericSensor
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

type ReloadEntryRequest struct {
	ActorRequestMixIn
}

type ReloadEntryResponse struct {
	ActorResponseMixIn
	Entities int
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
