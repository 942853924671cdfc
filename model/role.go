package model

// Role identifies a logical contender for shared resources. The set is
// closed: every concurrently running worker in the system acts as exactly one
// of these when it talks to the coordinator.
type Role int

const (
	TrafficLightController Role = iota
	VehicleSpawner
	SpeedMonitor
	FaultInjector
	Portal
	ChallanIssuer
	PaymentSimulator

	// NumRoles sizes per-role ledger vectors.
	NumRoles
)

func (r Role) String() string {
	switch r {
	case TrafficLightController:
		return "trafficLightController"
	case VehicleSpawner:
		return "vehicleSpawner"
	case SpeedMonitor:
		return "speedMonitor"
	case FaultInjector:
		return "faultInjector"
	case Portal:
		return "portal"
	case ChallanIssuer:
		return "challanIssuer"
	case PaymentSimulator:
		return "paymentSimulator"
	}
	return "unknown"
}

// ResourceKind is a category of reusable, exclusive-access unit. Each kind
// guards one shared collection.
type ResourceKind int

const (
	// LaneAccess guards the per-direction lane queues.
	LaneAccess ResourceKind = iota
	// ActiveRosterAccess guards the active-vehicle roster.
	ActiveRosterAccess

	// NumResourceKinds sizes per-kind ledger vectors.
	NumResourceKinds
)

func (k ResourceKind) String() string {
	switch k {
	case LaneAccess:
		return "laneAccess"
	case ActiveRosterAccess:
		return "activeRosterAccess"
	}
	return "unknown"
}
