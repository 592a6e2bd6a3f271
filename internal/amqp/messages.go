package amqp

import (
	"encoding/json"
	"time"
)

// BillReminderMessage notifies the reminder worker that a bill is due.
// It carries the bill id plus enough snapshot data to render the reminder
// without a storage round trip.
type BillReminderMessage struct {
	BillID      string    `json:"billId"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	DueDate     string    `json:"dueDate"`
	DaysUntil   int       `json:"daysUntil"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewBillReminderMessage(billID, description, amount, dueDate string, daysUntil int) *BillReminderMessage {
	return &BillReminderMessage{
		BillID:      billID,
		Description: description,
		Amount:      amount,
		DueDate:     dueDate,
		DaysUntil:   daysUntil,
		Timestamp:   time.Now(),
	}
}

func (m *BillReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BillReminderMessageFromJSON(data []byte) (*BillReminderMessage, error) {
	var msg BillReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
