package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusInProgress OrderStatus = "in_progress"
	StatusDone       OrderStatus = "done"
	StatusCancelled  OrderStatus = "cancelled"
)

var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	StatusNew:        {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusDone, StatusCancelled},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusDone, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether an order in status s may move to next.
// done and cancelled are terminal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PreviousStatuses returns every status that may transition into next.
func PreviousStatuses(next OrderStatus) []OrderStatus {
	var previous []OrderStatus
	for _, from := range []OrderStatus{StatusNew, StatusInProgress, StatusDone, StatusCancelled} {
		if from.CanTransitionTo(next) {
			previous = append(previous, from)
		}
	}
	return previous
}

// OrderConfiguration is the frozen selection and pricing captured at submission.
// Zero ids for colour and prints mean nothing was chosen.
type OrderConfiguration struct {
	CategoryID         int64           `json:"category_id"`
	FitID              int64           `json:"fit_id"`
	MaterialID         int64           `json:"material_id"`
	ColorID            int64           `json:"color_id,omitempty"`
	PrintFrontID       int64           `json:"print_front_id,omitempty"`
	PrintBackID        int64           `json:"print_back_id,omitempty"`
	CustomizationIDs   []int64         `json:"customization_ids"`
	Quantity           int             `json:"quantity"`
	UnitPrice          int64           `json:"unit_price"`
	CustomizationPrice int64           `json:"customization_price"`
	Multiplier         decimal.Decimal `json:"multiplier"`
}

type Order struct {
	ID              uuid.UUID          `json:"id"`
	CustomerName    string             `json:"customer_name"`
	CustomerContact string             `json:"customer_contact"`
	CustomerComment string             `json:"customer_comment,omitempty"`
	Configuration   OrderConfiguration `json:"configuration"`
	Quantity        int                `json:"quantity"`
	CalculatedPrice int64              `json:"calculated_price"`
	Status          OrderStatus        `json:"status"`
	CreatedAt       time.Time          `json:"created_at"`
}
