package challan

import (
	"time"

	"github.com/kainat5008/Traffic-System-OS/model"
)

// State of a vehicle's billing record.
type State int

const (
	// NoChallan means no record exists for the vehicle.
	NoChallan State = iota
	// Issued means an unpaid challan is open against the vehicle.
	Issued
	// Paid means the vehicle's latest challan has been settled. The record
	// is retained for audit.
	Paid
)

func (s State) String() string {
	switch s {
	case Issued:
		return "issued"
	case Paid:
		return "paid"
	}
	return "noChallan"
}

// Record is the billing record issued against a vehicle for a detected
// violation. At most one record exists per vehicle at a time.
type Record struct {
	ID        string                `json:"id"`
	VehicleID string                `json:"vehicleID"`
	Category  model.VehicleCategory `json:"category"`
	Amount    float64               `json:"amount"`
	IssuedAt  time.Time             `json:"issuedAt"`
	DueAt     time.Time             `json:"dueAt"`
	Paid      bool                  `json:"paid"`
	PaidAt    time.Time             `json:"paidAt,omitempty"`
}

// State derives the record's position in the NoChallan→Issued→Paid machine.
func (r *Record) State() State {
	if r == nil {
		return NoChallan
	}
	if r.Paid {
		return Paid
	}
	return Issued
}

// Base fine per category; the service charge is applied on top.
const (
	lightBaseAmount = 5000
	heavyBaseAmount = 7000
)

// amountFor computes the challan amount for a vehicle category, including
// the service charge. Emergency vehicles are exempt and yield zero.
func amountFor(category model.VehicleCategory, serviceChargeRate float64) float64 {
	var base float64
	switch category {
	case model.Light:
		base = lightBaseAmount
	case model.Heavy:
		base = heavyBaseAmount
	default:
		return 0
	}
	return base + base*serviceChargeRate
}
