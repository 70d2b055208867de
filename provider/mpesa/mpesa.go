package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.uber.org/zap"
	"gopkg.in/reform.v1"

	"github.com/dukapos/pesapos"
	"github.com/dukapos/pesapos/provider"
)

const (
	// tokenExpiryBuffer refresh the OAuth token this long before the
	// expiry reported by the gateway.
	tokenExpiryBuffer = 5 * time.Minute

	transactionType = "CustomerPayBillOnline"
)

type Config struct {
	EntrypointURL  string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string

	// AccountRef значение account_ref для строк оплаты mpesa.
	AccountRef string
}

func NewProvider(db *reform.DB, cfg Config, nc *nats.EncodedConn) *Provider {
	return &Provider{
		cfg: cfg,
		db:  db,
		nc:  nc,
		s:   &provider.Store{DB: db},
		hc:  &http.Client{Timeout: 30 * time.Second},
		l:   zap.L().Named("mpesa_provider"),
	}
}

type Provider struct {
	cfg Config
	db  *reform.DB
	nc  *nats.EncodedConn
	s   *provider.Store
	hc  *http.Client
	l   *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
	ErrorMsg    string `json:"errorMessage"`
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	ErrorMessage        string `json:"errorMessage"`
}

// accessToken returns a cached OAuth token, requesting a new one from the
// gateway when the cached one is within the expiry buffer.
func (p *Provider) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token != "" && time.Now().Before(p.tokenExpiry) {
		return p.token, nil
	}

	req, err := http.NewRequest(http.MethodGet, p.cfg.EntrypointURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", errors.Wrap(err, "failed build mpesa auth request")
	}
	req = req.WithContext(ctx)
	req.SetBasicAuth(p.cfg.ConsumerKey, p.cfg.ConsumerSecret)
	req.Header.Set("Accept", "application/json")

	res, err := p.hc.Do(req)
	if err != nil {
		p.l.Warn("auth: get url", zap.Error(err))
		return "", errors.Wrap(err, "failed http get mpesa auth url")
	}
	defer res.Body.Close()
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		p.l.Warn("auth: read body", zap.Error(err))
		return "", errors.Wrap(err, "failed read body response from mpesa")
	}

	var ar authResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		p.l.Warn(
			"auth: bad unmarshal response from mpesa",
			zap.String("body", string(body)),
			zap.Error(err),
		)
		return "", errors.Wrap(err, "failed unmarshal response from mpesa")
	}
	if res.StatusCode != http.StatusOK || ar.AccessToken == "" {
		if ar.ErrorMsg != "" {
			return "", errors.New(ar.ErrorMsg)
		}
		return "", errors.Errorf("mpesa auth failed with http %d", res.StatusCode)
	}

	expiresIn := 3600 * time.Second
	if d, err := time.ParseDuration(ar.ExpiresIn + "s"); err == nil {
		expiresIn = d
	}
	p.token = ar.AccessToken
	p.tokenExpiry = time.Now().Add(expiresIn - tokenExpiryBuffer)
	return p.token, nil
}

// PushPayment sends an STK push for the given phone and amount. A
// ResponseCode other than "0" or a transport failure yields GatewayError.
// The status store is not touched, the side channel fills it in later.
func (p *Provider) PushPayment(ctx context.Context, phoneNumber string, amount int64, orderKey string) (*provider.Payment, error) {
	ctx, span := trace.StartSpan(ctx, "mpesa.PushPayment")
	defer span.End()

	if amount <= 0 {
		return nil, pesapos.ErrZeroAmount
	}
	phoneNumber, err := NormalizePhone(phoneNumber)
	if err != nil {
		return nil, err
	}

	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, &provider.GatewayError{Description: "Failed to authenticate with M-Pesa: " + err.Error()}
	}

	timestamp := time.Now().Format("20060102150405")
	preq := stkPushRequest{
		BusinessShortCode: p.cfg.ShortCode,
		Password:          stkPassword(p.cfg.ShortCode, p.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            amount,
		PartyA:            phoneNumber,
		PartyB:            p.cfg.ShortCode,
		PhoneNumber:       phoneNumber,
		CallBackURL:       p.cfg.CallbackURL,
		AccountReference:  orderKey,
		TransactionDesc:   "Payment for order " + orderKey,
	}
	b, err := json.Marshal(&preq)
	if err != nil {
		return nil, errors.Wrap(err, "failed marshal stk push request")
	}

	req, err := http.NewRequest(http.MethodPost, p.cfg.EntrypointURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "failed build stk push request")
	}
	req = req.WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.hc.Do(req)
	if err != nil {
		p.l.Warn("stkpush: post url", zap.Error(err))
		pushesTotal.WithLabelValues("unreachable").Inc()
		return nil, &provider.GatewayError{Description: "Failed to reach M-Pesa: " + err.Error()}
	}
	defer res.Body.Close()
	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		p.l.Warn("stkpush: read body", zap.Error(err))
		return nil, errors.Wrap(err, "failed read body response from mpesa")
	}

	var pres stkPushResponse
	if err := json.Unmarshal(body, &pres); err != nil {
		p.l.Warn(
			"stkpush: bad unmarshal response from mpesa",
			zap.String("body", string(body)),
			zap.Error(err),
		)
		pushesTotal.WithLabelValues("rejected").Inc()
		return nil, &provider.GatewayError{Description: "Unexpected response from M-Pesa"}
	}
	if pres.ResponseCode != "0" || pres.CheckoutRequestID == "" {
		desc := pres.ResponseDescription
		if desc == "" {
			desc = pres.ErrorMessage
		}
		p.l.Warn(
			"stkpush: rejected",
			zap.String("response_code", pres.ResponseCode),
			zap.String("description", desc),
		)
		pushesTotal.WithLabelValues("rejected").Inc()
		return nil, &provider.GatewayError{Code: pres.ResponseCode, Description: desc}
	}
	pushesTotal.WithLabelValues("accepted").Inc()

	checkoutRequestID := pres.CheckoutRequestID
	merchantRequestID := pres.MerchantRequestID
	return &provider.Payment{
		OrderKey:          orderKey,
		CheckoutRequestID: &checkoutRequestID,
		MerchantRequestID: &merchantRequestID,
		PhoneNumber:       phoneNumber,
		Amount:            amount,
		Status:            provider.PENDING_P,
	}, nil
}

// Status answers one status-store query for the push request.
func (p *Provider) Status(checkoutRequestID string) (*provider.StatusSnapshot, error) {
	pay, err := p.s.GetByCheckoutRequestID(checkoutRequestID)
	if err != nil {
		return nil, err
	}
	return pay.Snapshot(), nil
}

// CancelPayment marks the stored record of an abandoned push canceled
// so a late callback for it is distinguishable from the replacing push.
// A record the side channel never wrote is not an error.
func (p *Provider) CancelPayment(checkoutRequestID string) error {
	err := p.s.Cancel(checkoutRequestID)
	if err == pesapos.ErrPaymentNotFound {
		return nil
	}
	return err
}

// AccountRef the account payment lines reference for mpesa money.
func (p *Provider) AccountRef() string {
	return p.cfg.AccountRef
}

// NormalizePhone converts local Kenyan formats to the 254 MSISDN form.
//
// Common errors:
// - ErrInvalidPhone - not a Kenyan number
func NormalizePhone(phoneNumber string) (string, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	switch {
	case strings.HasPrefix(phoneNumber, "0"):
		phoneNumber = "254" + phoneNumber[1:]
	case strings.HasPrefix(phoneNumber, "+254"):
		phoneNumber = phoneNumber[1:]
	case strings.HasPrefix(phoneNumber, "254"):
	default:
		return "", pesapos.ErrInvalidPhone
	}
	if len(phoneNumber) != 12 {
		return "", pesapos.ErrInvalidPhone
	}
	for _, r := range phoneNumber {
		if r < '0' || r > '9' {
			return "", pesapos.ErrInvalidPhone
		}
	}
	return phoneNumber, nil
}

func stkPassword(shortCode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
}
