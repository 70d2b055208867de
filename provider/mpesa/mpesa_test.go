package mpesa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukapos/pesapos"
	"github.com/dukapos/pesapos/provider"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"LocalFormat", "0712345678", "254712345678", nil},
		{"PlusPrefix", "+254712345678", "254712345678", nil},
		{"International", "254712345678", "254712345678", nil},
		{"Whitespace", "  0712345678 ", "254712345678", nil},
		{"TooShort", "07123", "", pesapos.ErrInvalidPhone},
		{"TooLong", "2547123456789", "", pesapos.ErrInvalidPhone},
		{"NotKenyan", "255712345678", "", pesapos.ErrInvalidPhone},
		{"Letters", "07123abc78", "", pesapos.ErrInvalidPhone},
		{"Empty", "", "", pesapos.ErrInvalidPhone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.in)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStkPassword(t *testing.T) {
	// base64("174379" + "key" + "20240101120000")
	assert.Equal(t, "MTc0Mzc5a2V5MjAyNDAxMDExMjAwMDA=", stkPassword("174379", "key", "20240101120000"))
}

type gatewayStub struct {
	authCalls int
	pushCalls int
	lastPush  stkPushRequest

	authStatus int
	authBody   interface{}
	pushBody   interface{}
}

func newGateway(t *testing.T, gw *gatewayStub) *httptest.Server {
	if gw.authStatus == 0 {
		gw.authStatus = http.StatusOK
	}
	if gw.authBody == nil {
		gw.authBody = map[string]string{"access_token": "test-token", "expires_in": "3599"}
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			gw.authCalls++
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			require.Equal(t, "ck", user)
			require.Equal(t, "cs", pass)
			w.WriteHeader(gw.authStatus)
			_ = json.NewEncoder(w).Encode(gw.authBody)
		case "/mpesa/stkpush/v1/processrequest":
			gw.pushCalls++
			require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gw.lastPush))
			_ = json.NewEncoder(w).Encode(gw.pushBody)
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	}))
}

func testConfig(url string) Config {
	return Config{
		EntrypointURL:  url,
		ConsumerKey:    "ck",
		ConsumerSecret: "cs",
		ShortCode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://pos.example.com/mpesa/callback",
		AccountRef:     "mpesa.main",
	}
}

func TestPushPayment(t *testing.T) {
	gw := &gatewayStub{pushBody: map[string]string{
		"MerchantRequestID":   "mr-1",
		"CheckoutRequestID":   "ws_CO_123",
		"ResponseCode":        "0",
		"ResponseDescription": "Success. Request accepted for processing",
	}}
	srv := newGateway(t, gw)
	defer srv.Close()

	p := NewProvider(nil, testConfig(srv.URL), nil)
	pay, err := p.PushPayment(context.Background(), "0712345678", 950, "order-key-1")
	require.NoError(t, err)
	require.NotNil(t, pay.CheckoutRequestID)
	assert.Equal(t, "ws_CO_123", *pay.CheckoutRequestID)
	assert.Equal(t, "order-key-1", pay.OrderKey)
	assert.Equal(t, int64(950), pay.Amount)
	assert.Equal(t, "254712345678", pay.PhoneNumber)
	assert.Equal(t, provider.PENDING_P, pay.Status)

	assert.Equal(t, "254712345678", gw.lastPush.PartyA)
	assert.Equal(t, "254712345678", gw.lastPush.PhoneNumber)
	assert.Equal(t, "174379", gw.lastPush.BusinessShortCode)
	assert.Equal(t, "174379", gw.lastPush.PartyB)
	assert.Equal(t, int64(950), gw.lastPush.Amount)
	assert.Equal(t, "order-key-1", gw.lastPush.AccountReference)
	assert.Equal(t, "https://pos.example.com/mpesa/callback", gw.lastPush.CallBackURL)
	assert.Equal(t, transactionType, gw.lastPush.TransactionType)
}

func TestPushPayment_TokenCached(t *testing.T) {
	gw := &gatewayStub{pushBody: map[string]string{
		"CheckoutRequestID": "ws_CO_124",
		"ResponseCode":      "0",
	}}
	srv := newGateway(t, gw)
	defer srv.Close()

	p := NewProvider(nil, testConfig(srv.URL), nil)
	_, err := p.PushPayment(context.Background(), "0712345678", 100, "k1")
	require.NoError(t, err)
	_, err = p.PushPayment(context.Background(), "0712345678", 100, "k2")
	require.NoError(t, err)
	assert.Equal(t, 1, gw.authCalls)
	assert.Equal(t, 2, gw.pushCalls)
}

func TestPushPayment_Rejected(t *testing.T) {
	gw := &gatewayStub{pushBody: map[string]string{
		"ResponseCode":        "1",
		"ResponseDescription": "Invalid Access Token",
	}}
	srv := newGateway(t, gw)
	defer srv.Close()

	p := NewProvider(nil, testConfig(srv.URL), nil)
	pay, err := p.PushPayment(context.Background(), "0712345678", 100, "k1")
	require.Nil(t, pay)
	gerr, ok := err.(*provider.GatewayError)
	require.True(t, ok, "expected GatewayError, got %T", err)
	assert.Equal(t, "1", gerr.Code)
	assert.Equal(t, "Invalid Access Token", gerr.Description)
}

func TestPushPayment_AuthFailed(t *testing.T) {
	gw := &gatewayStub{
		authStatus: http.StatusUnauthorized,
		authBody:   map[string]string{"errorMessage": "Invalid Authentication passed"},
	}
	srv := newGateway(t, gw)
	defer srv.Close()

	p := NewProvider(nil, testConfig(srv.URL), nil)
	pay, err := p.PushPayment(context.Background(), "0712345678", 100, "k1")
	require.Nil(t, pay)
	gerr, ok := err.(*provider.GatewayError)
	require.True(t, ok, "expected GatewayError, got %T", err)
	assert.Contains(t, gerr.Description, "Invalid Authentication passed")
	assert.Equal(t, 0, gw.pushCalls)
}

func TestPushPayment_BadInput(t *testing.T) {
	p := NewProvider(nil, testConfig("http://gateway.invalid"), nil)

	_, err := p.PushPayment(context.Background(), "0712345678", 0, "k1")
	assert.Equal(t, pesapos.ErrZeroAmount, err)

	_, err = p.PushPayment(context.Background(), "0712345678", -5, "k1")
	assert.Equal(t, pesapos.ErrZeroAmount, err)

	_, err = p.PushPayment(context.Background(), "12345", 100, "k1")
	assert.Equal(t, pesapos.ErrInvalidPhone, err)
}
