package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	authdomain "repairhub-backend/internal/auth/domain"
	"repairhub-backend/internal/notification/domain"
	"repairhub-backend/pkg/apperr"

	"github.com/gin-gonic/gin/binding"
)

const previewLength = 100

// DecodeEvent parses and validates a tagged event such as {"kind":"booking_status", ...}.
func DecodeEvent(raw []byte) (domain.Event, error) {
	var head struct {
		Kind domain.EventKind `json:"kind"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrValidation, "event is not valid JSON")
	}

	var ev domain.Event
	switch head.Kind {
	case domain.KindChatMessage:
		ev = &domain.ChatMessageEvent{}
	case domain.KindBookingStatus:
		ev = &domain.BookingStatusEvent{}
	case domain.KindPaymentStatus:
		ev = &domain.PaymentStatusEvent{}
	case domain.KindCommissionDue:
		ev = &domain.CommissionDueEvent{}
	case "":
		return nil, apperr.WithMessage(apperr.ErrValidation, "event kind is required")
	default:
		return nil, apperr.WithMessage(apperr.ErrValidation, fmt.Sprintf("unknown event kind %q", head.Kind))
	}

	if err := json.Unmarshal(raw, ev); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrValidation, "malformed "+string(head.Kind)+" event")
	}
	if err := binding.Validator.ValidateStruct(ev); err != nil {
		return nil, apperr.Wrap(err, apperr.ErrValidation, err.Error())
	}
	if c, ok := ev.(*domain.CommissionDueEvent); ok && c.DueDate.IsZero() {
		return nil, apperr.WithMessage(apperr.ErrValidation, "dueDate is required")
	}
	return ev, nil
}

// HandleEvent turns a validated marketplace event into a notification.
func (u *notificationUsecase) HandleEvent(ctx context.Context, ev domain.Event) (*CreateResult, error) {
	switch e := ev.(type) {
	case *domain.ChatMessageEvent:
		return u.CreateNotification(ctx, chatNotification(e), CreateOptions{SkipIfActiveChat: true})
	case *domain.BookingStatusEvent:
		return u.CreateNotification(ctx, bookingNotification(e), CreateOptions{})
	case *domain.PaymentStatusEvent:
		return u.CreateNotification(ctx, paymentNotification(e), CreateOptions{})
	case *domain.CommissionDueEvent:
		return u.CreateNotification(ctx, commissionNotification(e), CreateOptions{})
	}
	return nil, apperr.WithMessage(apperr.ErrValidation, fmt.Sprintf("unsupported event %T", ev))
}

// Preview shortens chat text to at most previewLength runes.
func Preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength-1]) + "…"
}

func chatNotification(e *domain.ChatMessageEvent) *domain.Notification {
	sender := strings.TrimSpace(e.SenderName)
	if sender == "" {
		sender = "someone"
	}
	preview := Preview(e.Text)
	return &domain.Notification{
		Type:           string(domain.KindChatMessage),
		Category:       domain.CategoryChat,
		Priority:       domain.PriorityNormal,
		Title:          "New message from " + sender,
		Message:        preview,
		UserID:         e.RecipientID,
		UserType:       e.RecipientType,
		RelatedID:      e.ConversationID,
		RelatedType:    "conversation",
		SenderID:       e.SenderID,
		SenderName:     e.SenderName,
		MessagePreview: preview,
	}
}

var bookingTitles = map[domain.BookingStatus]string{
	domain.BookingPending:    "New booking request",
	domain.BookingAccepted:   "Booking accepted",
	domain.BookingInProgress: "Repair in progress",
	domain.BookingCompleted:  "Repair completed",
	domain.BookingCancelled:  "Booking cancelled",
}

func bookingNotification(e *domain.BookingStatusEvent) *domain.Notification {
	priority := domain.PriorityNormal
	if e.Status == domain.BookingCancelled {
		priority = domain.PriorityHigh
	}
	return &domain.Notification{
		Type:        "booking_" + string(e.Status),
		Category:    domain.CategoryBusiness,
		Priority:    priority,
		Title:       bookingTitles[e.Status],
		Message:     fmt.Sprintf("Booking #%s is now %s.", e.BookingID, strings.ReplaceAll(string(e.Status), "_", " ")),
		UserID:      e.RecipientID,
		UserType:    e.RecipientType,
		RelatedID:   e.BookingID,
		RelatedType: "booking",
	}
}

var paymentTitles = map[domain.PaymentStatus]string{
	domain.PaymentPending:   "Payment pending",
	domain.PaymentCompleted: "Payment received",
	domain.PaymentFailed:    "Payment failed",
	domain.PaymentRefunded:  "Payment refunded",
}

func paymentNotification(e *domain.PaymentStatusEvent) *domain.Notification {
	method := "Razorpay"
	if e.Method == domain.PaymentCOD {
		method = "cash on delivery"
	}
	message := fmt.Sprintf("₹%.2f via %s", e.Amount, method)
	if e.BookingID != "" {
		message += " for booking #" + e.BookingID
	}
	priority := domain.PriorityNormal
	if e.Status == domain.PaymentFailed {
		priority = domain.PriorityHigh
	}
	return &domain.Notification{
		Type:        "payment_" + string(e.Status),
		Category:    domain.CategoryBusiness,
		Priority:    priority,
		Title:       paymentTitles[e.Status],
		Message:     message + ".",
		UserID:      e.RecipientID,
		UserType:    e.RecipientType,
		RelatedID:   e.PaymentID,
		RelatedType: "payment",
	}
}

func commissionNotification(e *domain.CommissionDueEvent) *domain.Notification {
	return &domain.Notification{
		Type:        string(domain.KindCommissionDue),
		Category:    domain.CategoryBusiness,
		Priority:    domain.PriorityHigh,
		Title:       "Commission payment due",
		Message:     fmt.Sprintf("A commission of ₹%.2f is due by %s.", e.Amount, e.DueDate.Format("2 Jan 2006")),
		UserID:      e.ProviderID,
		UserType:    authdomain.RoleProvider,
		RelatedID:   e.CommissionID,
		RelatedType: "commission",
	}
}
