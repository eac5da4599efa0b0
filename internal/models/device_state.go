package models

import "time"

// DeviceState is the simulated device's persisted current reading.
// ID is zero until the first save.
type DeviceState struct {
	ID int64
	Snapshot
	UpdatedAt time.Time
}
