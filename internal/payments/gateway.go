package payments

import (
	"fmt"
	"sort"
	"strings"
)

// Gateway order status values as CCAvenue spells them
const (
	OrderStatusSuccess  = "Success"
	OrderStatusFailure  = "Failure"
	OrderStatusAborted  = "Aborted"
	OrderStatusInvalid  = "Invalid"
	OrderStatusAwaiting = "Awaited"
)

// EncodeParams renders gateway parameters in the flat k=v& wire format
// CCAvenue expects inside the encrypted request. Keys are emitted in
// sorted order so the same map always encrypts to the same ciphertext.
func EncodeParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
		sb.WriteByte('&')
	}
	return sb.String()
}

// ParseParams reads the decrypted callback body. The gateway does not
// URL-escape values, so a bare split is the correct parse; pairs with
// no '=' are skipped.
func ParseParams(body string) map[string]string {
	params := make(map[string]string)
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		idx := strings.IndexByte(pair, '=')
		if idx < 0 {
			continue
		}
		params[pair[:idx]] = pair[idx+1:]
	}
	return params
}

// CallbackResult is the decoded gateway verdict for one order
type CallbackResult struct {
	OrderID       string
	TrackingID    string
	BankRefNo     string
	OrderStatus   string
	PaymentMode   string
	StatusMessage string
	Amount        string
	Currency      string
}

func callbackFromParams(params map[string]string) (*CallbackResult, error) {
	res := &CallbackResult{
		OrderID:       params["order_id"],
		TrackingID:    params["tracking_id"],
		BankRefNo:     params["bank_ref_no"],
		OrderStatus:   params["order_status"],
		PaymentMode:   params["payment_mode"],
		StatusMessage: params["status_message"],
		Amount:        params["amount"],
		Currency:      params["currency"],
	}
	if res.OrderID == "" {
		return nil, fmt.Errorf("callback missing order_id")
	}
	if res.OrderStatus == "" {
		return nil, fmt.Errorf("callback missing order_status")
	}
	return res, nil
}

// Settled reports whether the gateway accepted the payment
func (r *CallbackResult) Settled() bool {
	return r.OrderStatus == OrderStatusSuccess
}
