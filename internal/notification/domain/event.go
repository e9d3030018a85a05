package domain

import (
	"time"

	authdomain "repairhub-backend/internal/auth/domain"
)

// EventKind tags an inbound marketplace event.
type EventKind string

const (
	KindChatMessage   EventKind = "chat_message"
	KindBookingStatus EventKind = "booking_status"
	KindPaymentStatus EventKind = "payment_status"
	KindCommissionDue EventKind = "commission_due"
)

// Event is one variant of the inbound event union.
type Event interface {
	EventKind() EventKind
}

type ChatMessageEvent struct {
	ConversationID string          `json:"conversationId" binding:"required"`
	RecipientID    string          `json:"recipientId" binding:"required"`
	RecipientType  authdomain.Role `json:"recipientType" binding:"required,oneof=customer provider admin"`
	SenderID       string          `json:"senderId" binding:"required"`
	SenderName     string          `json:"senderName" binding:"max=120"`
	Text           string          `json:"text" binding:"required"`
}

func (ChatMessageEvent) EventKind() EventKind { return KindChatMessage }

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingAccepted   BookingStatus = "accepted"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

type BookingStatusEvent struct {
	BookingID     string          `json:"bookingId" binding:"required"`
	RecipientID   string          `json:"recipientId" binding:"required"`
	RecipientType authdomain.Role `json:"recipientType" binding:"required,oneof=customer provider admin"`
	Status        BookingStatus   `json:"status" binding:"required,oneof=pending accepted in_progress completed cancelled"`
}

func (BookingStatusEvent) EventKind() EventKind { return KindBookingStatus }

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentRazorpay PaymentMethod = "razorpay"
	PaymentCOD      PaymentMethod = "cod"
)

type PaymentStatusEvent struct {
	PaymentID     string          `json:"paymentId" binding:"required"`
	BookingID     string          `json:"bookingId"`
	RecipientID   string          `json:"recipientId" binding:"required"`
	RecipientType authdomain.Role `json:"recipientType" binding:"required,oneof=customer provider admin"`
	Status        PaymentStatus   `json:"status" binding:"required,oneof=pending completed failed refunded"`
	Amount        float64         `json:"amount" binding:"gt=0"`
	Method        PaymentMethod   `json:"method" binding:"required,oneof=razorpay cod"`
}

func (PaymentStatusEvent) EventKind() EventKind { return KindPaymentStatus }

type CommissionDueEvent struct {
	CommissionID string    `json:"commissionId" binding:"required"`
	ProviderID   string    `json:"providerId" binding:"required"`
	Amount       float64   `json:"amount" binding:"gt=0"`
	DueDate      time.Time `json:"dueDate" binding:"required"`
}

func (CommissionDueEvent) EventKind() EventKind { return KindCommissionDue }
