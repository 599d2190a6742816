package telemetry

import "time"

// Models lists every table the recorder migrates.
var Models = []any{
	&Run{},
	&VehicleSample{},
}

// Run is one simulation session.
type Run struct {
	ID        uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	StartedAt time.Time `json:"startedAt"`
	Level     string    `json:"level" gorm:"size:255"`
	Steps     int64     `json:"steps"` // fixed steps taken, set on close
}

func (*Run) TableName() string {
	return "runs"
}

// VehicleSample is a vehicle's state after one session update.
type VehicleSample struct {
	ID      uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	RunID   uint    `json:"runId" gorm:"index:idx_vehiclesample_run_id"`
	Step    int64   `json:"step" gorm:"index:idx_vehiclesample_step"`
	SimTime float64 `json:"simTime"` // seconds since the session started
	Vehicle string  `json:"vehicle" gorm:"size:64;index:idx_vehiclesample_vehicle"`

	X     float32 `json:"x"`
	Y     float32 `json:"y"`
	Z     float32 `json:"z"`
	Speed float32 `json:"speed"` // m/s
	Fuel  float32 `json:"fuel"`

	Throttle float32 `json:"throttle"`
	Brake    float32 `json:"brake"`
	Steer    float32 `json:"steer"`

	WheelsInContact int     `json:"wheelsInContact"`
	MeanCompression float32 `json:"meanCompression"`
	MeanTraction    float32 `json:"meanTraction"`
	Driver          uint32  `json:"driver"` // player ID, 0 when empty
}

func (*VehicleSample) TableName() string {
	return "vehicle_samples"
}
