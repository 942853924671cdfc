package model

// VehicleCategory classifies a vehicle for speed limits and challan amounts.
type VehicleCategory int

const (
	Light VehicleCategory = iota
	Heavy
	Emergency
)

func (c VehicleCategory) String() string {
	switch c {
	case Light:
		return "light"
	case Heavy:
		return "heavy"
	case Emergency:
		return "emergency"
	}
	return "unknown"
}

// SpeedLimit returns the enforced top speed for the category. Emergency
// vehicles are exempt from enforcement; their limit reflects the speed they
// are spawned with, not a value the monitor acts on.
func (c VehicleCategory) SpeedLimit() float64 {
	switch c {
	case Heavy:
		return 40
	case Emergency:
		return 90
	default:
		return 60
	}
}

// Exempt reports whether the category is excluded from speed enforcement.
func (c VehicleCategory) Exempt() bool { return c == Emergency }

// Vehicle is a participant in the simulation. Instances live in the lane
// queues or the active roster; both collections are guarded by the
// coordinator, so a Vehicle carries no lock of its own.
type Vehicle struct {
	Plate        string
	Category     VehicleCategory
	Lane         string
	MaxSpeed     float64
	CurrentSpeed float64
	Reported     bool
	OutOfOrder   bool
	Towed        bool
}
