package model

// ViolationReport is published by the speed monitor when a vehicle exceeds
// its category limit.
type ViolationReport struct {
	VehicleID     string          `json:"vehicleID"`
	Category      VehicleCategory `json:"category"`
	MeasuredSpeed float64         `json:"measuredSpeed"`
}

// PaymentReport is published by the payment simulator once a challan has been
// settled (or a settlement attempt failed).
type PaymentReport struct {
	VehicleID string `json:"vehicleID"`
	Paid      bool   `json:"paid"`
}

// ChallanStatus notifies downstream consumers of a challan transition:
// Paid=false on issuance, Paid=true on settlement.
type ChallanStatus struct {
	VehicleID string `json:"vehicleID"`
	Paid      bool   `json:"paid"`
}
