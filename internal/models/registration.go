package models

import (
	"fmt"
	"time"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch st := PaymentStatus(s); st {
	case PaymentPending, PaymentCompleted, PaymentApproved, PaymentRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

type Registration struct {
	ID               string
	EventID          string
	UserID           string
	UserName         string
	RegistrationDate time.Time
	PaymentStatus    PaymentStatus
}
