package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"balancebooks/internal/core"

	"github.com/shopspring/decimal"
)

// EventType doubles as the routing key on the direct exchange.
type EventType string

const (
	EventMonthClosed EventType = "month.closed"
	EventBillDue     EventType = "bill.due"
)

// EventTypes lists every routing key the ledger queue is bound to.
var EventTypes = []EventType{EventMonthClosed, EventBillDue}

// Event is the envelope of every ledger message. Version is the store
// version the event was produced from.
type Event struct {
	Type      EventType       `json:"type"`
	Version   int64           `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// MonthClosedPayload is published after a month close is committed.
type MonthClosedPayload struct {
	Period           string          `json:"period"`
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	EndingBalance    decimal.Decimal `json:"endingBalance"`
	UnpaidMoved      int             `json:"unpaidMoved"`
	RecurringCreated int             `json:"recurringCreated"`
}

// BillDuePayload is published by the reminder job for each upcoming bill.
type BillDuePayload struct {
	BillID    string          `json:"billId"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	DueDate   string          `json:"dueDate"`
	DaysUntil int             `json:"daysUntil"`
	AutoPay   bool            `json:"autoPay"`
}

func newEvent(t EventType, version int64, payload any) (*Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return &Event{
		Type:      t,
		Version:   version,
		Timestamp: time.Now(),
		Payload:   body,
	}, nil
}

// NewMonthClosedEvent wraps a month close report.
func NewMonthClosedEvent(r core.MonthCloseReport, version int64) (*Event, error) {
	return newEvent(EventMonthClosed, version, MonthClosedPayload{
		Period:           r.Period.Key(),
		Year:             r.Period.Year,
		Month:            r.Period.Month,
		EndingBalance:    r.EndingBalance,
		UnpaidMoved:      r.UnpaidMoved,
		RecurringCreated: r.RecurringCreated,
	})
}

// NewBillDueEvent wraps a reminder for bill due on due.
func NewBillDueEvent(bill core.RecurringBill, due core.Date, daysUntil int, version int64) (*Event, error) {
	return newEvent(EventBillDue, version, BillDuePayload{
		BillID:    bill.ID,
		Name:      bill.Name,
		Amount:    bill.Amount,
		Category:  string(bill.Category),
		DueDate:   due.String(),
		DaysUntil: daysUntil,
		AutoPay:   bill.AutoPay,
	})
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON parses an envelope and rejects unknown event types.
func EventFromJSON(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Type {
	case EventMonthClosed, EventBillDue:
		return &ev, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", ev.Type)
	}
}

// ClosedPeriod returns the period carried by a month.closed payload.
func (p MonthClosedPayload) ClosedPeriod() (core.Period, error) {
	return core.ParsePeriodKey(p.Period)
}
