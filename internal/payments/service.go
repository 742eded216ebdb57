package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/bookings"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/config"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"
)

var ErrNotPayable = errors.New("booking is not awaiting payment")

// PaymentInitiation is everything the UI needs to post the customer to
// the hosted gateway page.
type PaymentInitiation struct {
	EncRequest     string `json:"enc_request"`
	AccessCode     string `json:"access_code"`
	TransactionURL string `json:"transaction_url"`
	OrderID        string `json:"order_id"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
}

// CallbackOutcome reports what the callback did with the booking
type CallbackOutcome struct {
	OrderID     string `json:"order_id"`
	OrderStatus string `json:"order_status"`
	BookingMove string `json:"booking_move"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type Service interface {
	InitiatePayment(ctx context.Context, bookingID, userID string) (*PaymentInitiation, error)
	HandleCallback(ctx context.Context, encResp string) (*CallbackOutcome, error)
}

type service struct {
	codec    *Codec
	cfg      config.CCAvenueConfig
	bookings bookings.Service
	log      *logger.Logger
}

func NewService(cfg config.CCAvenueConfig, bookingService bookings.Service, log *logger.Logger) (Service, error) {
	codec, err := NewCodec(cfg.WorkingKey)
	if err != nil {
		return nil, err
	}
	return &service{
		codec:    codec,
		cfg:      cfg,
		bookings: bookingService,
		log:      log,
	}, nil
}

// InitiatePayment builds and encrypts the outbound gateway request for
// a pending booking owned by the calling user.
func (s *service) InitiatePayment(ctx context.Context, bookingID, userID string) (*PaymentInitiation, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("booking %s does not belong to caller", bookingID)
	}
	// A failed payment may be retried while the seat hold lasts
	retryable := booking.Status == bookings.StatusPaymentFailed && !booking.HoldExpired(time.Now())
	if !booking.IsPending() && !retryable {
		return nil, fmt.Errorf("%w: status %s", ErrNotPayable, booking.Status)
	}

	amount := strconv.FormatFloat(booking.TotalAmount, 'f', 2, 64)
	params := map[string]string{
		"merchant_id":     s.cfg.MerchantID,
		"order_id":        booking.ID,
		"amount":          amount,
		"currency":        s.cfg.Currency,
		"redirect_url":    s.cfg.RedirectURL,
		"cancel_url":      s.cfg.CancelURL,
		"language":        "EN",
		"billing_name":    booking.CustomerName,
		"billing_email":   booking.CustomerEmail,
		"billing_tel":     booking.CustomerPhone,
		"merchant_param1": string(booking.Type),
		"merchant_param2": booking.PartitionKey,
	}

	encRequest, err := s.codec.Encrypt(EncodeParams(params))
	if err != nil {
		return nil, err
	}

	return &PaymentInitiation{
		EncRequest:     encRequest,
		AccessCode:     s.cfg.AccessCode,
		TransactionURL: s.cfg.TransactionURL,
		OrderID:        booking.ID,
		Amount:         amount,
		Currency:       s.cfg.Currency,
	}, nil
}

// HandleCallback decrypts the gateway verdict and moves the booking.
// Success confirms; everything else fails the reservation. Decrypt and
// parse failures are terminal for the request, never retried.
func (s *service) HandleCallback(ctx context.Context, encResp string) (*CallbackOutcome, error) {
	plain, err := s.codec.Decrypt(encResp)
	if err != nil {
		return nil, err
	}

	result, err := callbackFromParams(ParseParams(plain))
	if err != nil {
		return nil, err
	}

	payment := bookings.PaymentResult{
		TrackingID:    result.TrackingID,
		BankRefNo:     result.BankRefNo,
		PaymentMode:   result.PaymentMode,
		StatusMessage: result.StatusMessage,
	}

	outcome := &CallbackOutcome{
		OrderID:     result.OrderID,
		OrderStatus: result.OrderStatus,
		RedirectURL: s.cfg.RedirectURL,
	}

	if result.Settled() {
		if err := s.bookings.ConfirmReservation(ctx, result.OrderID, payment); err != nil {
			return nil, fmt.Errorf("confirm %s: %w", result.OrderID, err)
		}
		outcome.BookingMove = string(bookings.StatusConfirmed)
		return outcome, nil
	}

	if err := s.bookings.FailReservation(ctx, result.OrderID, payment); err != nil {
		return nil, fmt.Errorf("fail %s: %w", result.OrderID, err)
	}
	outcome.BookingMove = string(bookings.StatusPaymentFailed)
	return outcome, nil
}
