// models.go
package model

import "time"

// Estados de una orden. Avanzan siempre hacia adelante:
// pending → receipt_received → confirmed, con cancelled alcanzable
// desde pending o receipt_received.
const (
	StatusPending         = "pending"
	StatusReceiptReceived = "receipt_received"
	StatusConfirmed       = "confirmed"
	StatusCancelled       = "cancelled"
)

type Order struct {
	Code          string         `bson:"code" json:"orderCode"`
	CustomerName  string         `bson:"customer_name" json:"customerName"`
	CustomerEmail string         `bson:"customer_email" json:"customerEmail"`
	Amount        float64        `bson:"amount" json:"amount"`
	Language      string         `bson:"language" json:"language"`
	Product       string         `bson:"product" json:"product,omitempty"`
	Status        string         `bson:"status" json:"status"`
	ReceiptFile   string         `bson:"receipt_file,omitempty" json:"receiptFile,omitempty"`
	History       []StatusRecord `bson:"history" json:"history"`
	CreatedAt     time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time      `bson:"updated_at" json:"updatedAt"`
}

type StatusRecord struct {
	Status    string    `bson:"status" json:"status"`
	Reason    string    `bson:"reason" json:"reason"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

var validStatuses = map[string]bool{
	StatusPending:         true,
	StatusReceiptReceived: true,
	StatusConfirmed:       true,
	StatusCancelled:       true,
}

func IsValidStatus(s string) bool {
	return validStatuses[s]
}

// Transiciones permitidas
var transitions = map[string][]string{
	StatusPending:         {StatusReceiptReceived, StatusCancelled},
	StatusReceiptReceived: {StatusConfirmed, StatusCancelled},
}

// Estados finales
var finalStatuses = map[string]bool{
	StatusConfirmed: true,
	StatusCancelled: true,
}

func IsFinalStatus(s string) bool {
	return finalStatuses[s]
}

func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Company es un cliente registrado del sistema de facturación.
// La API key es opaca: solo se compara, nunca se interpreta.
type Company struct {
	Name               string    `bson:"name" json:"name"`
	Email              string    `bson:"email" json:"email"`
	Phone              string    `bson:"phone" json:"phone,omitempty"`
	APIKey             string    `bson:"api_key" json:"apiKey"`
	SubscriptionStatus string    `bson:"subscription_status" json:"subscriptionStatus"`
	TrialExpiresAt     time.Time `bson:"trial_expires_at" json:"trialExpiresAt"`
	CreatedAt          time.Time `bson:"created_at" json:"createdAt"`
}
