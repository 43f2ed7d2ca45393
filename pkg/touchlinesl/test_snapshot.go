package touchlinesl

const (
	TestModuleID = "1234"
)

// CreateTestSnapshot returns a module with a zone reporting 87% battery and a zone without battery data.
func CreateTestSnapshot() *Snapshot {
	return NewSnapshot(Module{
		ID:      TestModuleID,
		Name:    "Ground floor",
		Version: "1.2.3",
	}, Zone{
		ID:           1,
		Name:         "Living room",
		BatteryLevel: IntPtr(87),
	}, Zone{
		ID:   2,
		Name: "Kitchen",
	})
}
