package mpesa

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/labstack/echo"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dukapos/pesapos"
	"github.com/dukapos/pesapos/provider"
)

const (
	// UPDATE_PAYMENT_SUBJECT NATS subject for payment status updates
	// produced by the gateway callback.
	UPDATE_PAYMENT_SUBJECT = "mpesa_payment_updated"
)

// MessageUpdatePayment published to NATS after the callback is recorded.
type MessageUpdatePayment struct {
	CheckoutRequestID string
	OrderKey          string
	Status            provider.PaymentStatus
	ReceiptNumber     string
	ResultDesc        string
}

type stkCallbackBody struct {
	Body struct {
		StkCallback stkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type stkCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []stkCallbackItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

type stkCallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

// callbackResult terminal outcome extracted from the stkCallback payload.
type callbackResult struct {
	CheckoutRequestID string
	MerchantRequestID string
	Status            provider.PaymentStatus
	ReceiptNumber     string
	TransactionDate   string
	PhoneNumber       string
	ResultDesc        string
}

func parseCallback(body []byte) (*callbackResult, error) {
	var cb stkCallbackBody
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, errors.Wrap(err, "failed unmarshal stk callback")
	}
	sc := cb.Body.StkCallback
	if sc.CheckoutRequestID == "" {
		return nil, errors.New("stk callback without CheckoutRequestID")
	}
	res := &callbackResult{
		CheckoutRequestID: sc.CheckoutRequestID,
		MerchantRequestID: sc.MerchantRequestID,
		ResultDesc:        sc.ResultDesc,
	}
	if sc.ResultCode != 0 {
		res.Status = provider.FAILED_P
		return res, nil
	}
	res.Status = provider.COMPLETED_P
	for _, item := range sc.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			if s, ok := item.Value.(string); ok {
				res.ReceiptNumber = s
			}
		case "TransactionDate":
			res.TransactionDate = stringify(item.Value)
		case "PhoneNumber":
			res.PhoneNumber = stringify(item.Value)
		}
	}
	return res, nil
}

func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// WebhookHandler records the terminal payment status reported by the
// gateway. The store row is created here when the push was initiated by
// another process.
func (p *Provider) WebhookHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := ioutil.ReadAll(c.Request().Body)
		if err != nil {
			callbacksTotal.WithLabelValues("bad_request").Inc()
			return c.JSON(http.StatusBadRequest, map[string]string{"status": "error", "message": "failed read body"})
		}
		res, err := parseCallback(body)
		if err != nil {
			p.l.Warn("webhook: bad callback payload",
				zap.String("body", string(body)),
				zap.Error(err),
			)
			callbacksTotal.WithLabelValues("bad_request").Inc()
			return c.JSON(http.StatusBadRequest, map[string]string{"status": "error", "message": "invalid payload"})
		}

		var receipt, desc *string
		if res.ReceiptNumber != "" {
			receipt = &res.ReceiptNumber
		}
		if res.ResultDesc != "" {
			desc = &res.ResultDesc
		}

		orderKey := ""
		pay, err := p.s.GetByCheckoutRequestID(res.CheckoutRequestID)
		switch err {
		case nil:
			orderKey = pay.OrderKey
			if err := p.s.SetResult(res.CheckoutRequestID, res.Status, receipt, desc); err != nil {
				p.l.Error("webhook: failed save payment",
					zap.String("checkout_request_id", res.CheckoutRequestID),
					zap.Error(err),
				)
				callbacksTotal.WithLabelValues("store_error").Inc()
				return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error", "message": "processing failed"})
			}
		case pesapos.ErrPaymentNotFound:
			checkoutRequestID := res.CheckoutRequestID
			np := &provider.Payment{
				CheckoutRequestID: &checkoutRequestID,
				PhoneNumber:       res.PhoneNumber,
				PaymentType:       provider.FULL_PT,
				Status:            res.Status,
				ReceiptNumber:     receipt,
				ResultDesc:        desc,
			}
			if res.MerchantRequestID != "" {
				merchantRequestID := res.MerchantRequestID
				np.MerchantRequestID = &merchantRequestID
			}
			if err := p.s.Create(np); err != nil {
				p.l.Error("webhook: failed create payment",
					zap.String("checkout_request_id", res.CheckoutRequestID),
					zap.Error(err),
				)
				callbacksTotal.WithLabelValues("store_error").Inc()
				return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error", "message": "processing failed"})
			}
		default:
			p.l.Error("webhook: failed find payment",
				zap.String("checkout_request_id", res.CheckoutRequestID),
				zap.Error(err),
			)
			callbacksTotal.WithLabelValues("store_error").Inc()
			return c.JSON(http.StatusInternalServerError, map[string]string{"status": "error", "message": "processing failed"})
		}
		callbacksTotal.WithLabelValues(string(res.Status)).Inc()

		if p.nc != nil {
			err := p.nc.Publish(UPDATE_PAYMENT_SUBJECT, &MessageUpdatePayment{
				CheckoutRequestID: res.CheckoutRequestID,
				OrderKey:          orderKey,
				Status:            res.Status,
				ReceiptNumber:     res.ReceiptNumber,
				ResultDesc:        res.ResultDesc,
			})
			if err != nil {
				p.l.Warn("webhook: failed publish payment update",
					zap.String("checkout_request_id", res.CheckoutRequestID),
					zap.Error(err),
				)
			}
		}

		p.l.Info("Processed stk callback.",
			zap.String("checkout_request_id", res.CheckoutRequestID),
			zap.String("status", string(res.Status)),
		)
		return c.JSON(http.StatusOK, map[string]string{"status": "success"})
	}
}
