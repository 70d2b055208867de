package mpesa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukapos/pesapos/provider"
)

func TestParseCallback_Success(t *testing.T) {
	body := []byte(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_191220191020363925",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 950.00},
						{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
						{"Name": "TransactionDate", "Value": 20191219102115},
						{"Name": "PhoneNumber", "Value": 254708374149}
					]
				}
			}
		}
	}`)
	res, err := parseCallback(body)
	require.NoError(t, err)
	assert.Equal(t, "ws_CO_191220191020363925", res.CheckoutRequestID)
	assert.Equal(t, "29115-34620561-1", res.MerchantRequestID)
	assert.Equal(t, provider.COMPLETED_P, res.Status)
	assert.Equal(t, "NLJ7RT61SV", res.ReceiptNumber)
	assert.Equal(t, "254708374149", res.PhoneNumber)
	assert.Equal(t, "The service request is processed successfully.", res.ResultDesc)
}

func TestParseCallback_Canceled(t *testing.T) {
	body := []byte(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-2",
				"CheckoutRequestID": "ws_CO_191220191020363926",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user."
			}
		}
	}`)
	res, err := parseCallback(body)
	require.NoError(t, err)
	assert.Equal(t, provider.FAILED_P, res.Status)
	assert.Empty(t, res.ReceiptNumber)
	assert.Equal(t, "Request cancelled by user.", res.ResultDesc)
}

func TestParseCallback_Invalid(t *testing.T) {
	_, err := parseCallback([]byte(`not json`))
	require.Error(t, err)

	_, err = parseCallback([]byte(`{"Body":{"stkCallback":{}}}`))
	require.Error(t, err)
}
