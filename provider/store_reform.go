package provider

// generated with gopkg.in/reform.v1

import (
	"fmt"
	"strings"

	"gopkg.in/reform.v1"
	"gopkg.in/reform.v1/parse"
)

type paymentTableType struct {
	s parse.StructInfo
	z []interface{}
}

// Schema returns a schema name in SQL database ("").
func (v *paymentTableType) Schema() string {
	return v.s.SQLSchema
}

// Name returns a view or table name in SQL database ("mpesa_payments").
func (v *paymentTableType) Name() string {
	return v.s.SQLName
}

// Columns returns a new slice of column names for that view or table in SQL database.
func (v *paymentTableType) Columns() []string {
	return []string{"payment_id", "order_key", "checkout_request_id", "merchant_request_id", "phone_number", "amount", "payment_type", "status", "receipt_number", "result_desc", "updated_at", "created_at"}
}

// NewStruct makes a new struct for that view or table.
func (v *paymentTableType) NewStruct() reform.Struct {
	return new(Payment)
}

// NewRecord makes a new record for that table.
func (v *paymentTableType) NewRecord() reform.Record {
	return new(Payment)
}

// PKColumnIndex returns an index of primary key column for that table in SQL database.
func (v *paymentTableType) PKColumnIndex() uint {
	return uint(v.s.PKFieldIndex)
}

// PaymentTable represents mpesa_payments view or table in SQL database.
var PaymentTable = &paymentTableType{
	s: parse.StructInfo{Type: "Payment", SQLSchema: "", SQLName: "mpesa_payments", Fields: []parse.FieldInfo{{Name: "PaymentID", Type: "int64", Column: "payment_id"}, {Name: "OrderKey", Type: "string", Column: "order_key"}, {Name: "CheckoutRequestID", Type: "*string", Column: "checkout_request_id"}, {Name: "MerchantRequestID", Type: "*string", Column: "merchant_request_id"}, {Name: "PhoneNumber", Type: "string", Column: "phone_number"}, {Name: "Amount", Type: "int64", Column: "amount"}, {Name: "PaymentType", Type: "PaymentType", Column: "payment_type"}, {Name: "Status", Type: "PaymentStatus", Column: "status"}, {Name: "ReceiptNumber", Type: "*string", Column: "receipt_number"}, {Name: "ResultDesc", Type: "*string", Column: "result_desc"}, {Name: "UpdatedAt", Type: "time.Time", Column: "updated_at"}, {Name: "CreatedAt", Type: "time.Time", Column: "created_at"}}, PKFieldIndex: 0},
	z: new(Payment).Values(),
}

// String returns a string representation of this struct or record.
func (s Payment) String() string {
	res := make([]string, 12)
	res[0] = "PaymentID: " + reform.Inspect(s.PaymentID, true)
	res[1] = "OrderKey: " + reform.Inspect(s.OrderKey, true)
	res[2] = "CheckoutRequestID: " + reform.Inspect(s.CheckoutRequestID, true)
	res[3] = "MerchantRequestID: " + reform.Inspect(s.MerchantRequestID, true)
	res[4] = "PhoneNumber: " + reform.Inspect(s.PhoneNumber, true)
	res[5] = "Amount: " + reform.Inspect(s.Amount, true)
	res[6] = "PaymentType: " + reform.Inspect(s.PaymentType, true)
	res[7] = "Status: " + reform.Inspect(s.Status, true)
	res[8] = "ReceiptNumber: " + reform.Inspect(s.ReceiptNumber, true)
	res[9] = "ResultDesc: " + reform.Inspect(s.ResultDesc, true)
	res[10] = "UpdatedAt: " + reform.Inspect(s.UpdatedAt, true)
	res[11] = "CreatedAt: " + reform.Inspect(s.CreatedAt, true)
	return strings.Join(res, ", ")
}

// Values returns a slice of struct or record field values.
// Returned interface{} values are never untyped nils.
func (s *Payment) Values() []interface{} {
	return []interface{}{
		s.PaymentID,
		s.OrderKey,
		s.CheckoutRequestID,
		s.MerchantRequestID,
		s.PhoneNumber,
		s.Amount,
		s.PaymentType,
		s.Status,
		s.ReceiptNumber,
		s.ResultDesc,
		s.UpdatedAt,
		s.CreatedAt,
	}
}

// Pointers returns a slice of pointers to struct or record fields.
// Returned interface{} values are never untyped nils.
func (s *Payment) Pointers() []interface{} {
	return []interface{}{
		&s.PaymentID,
		&s.OrderKey,
		&s.CheckoutRequestID,
		&s.MerchantRequestID,
		&s.PhoneNumber,
		&s.Amount,
		&s.PaymentType,
		&s.Status,
		&s.ReceiptNumber,
		&s.ResultDesc,
		&s.UpdatedAt,
		&s.CreatedAt,
	}
}

// View returns View object for that struct.
func (s *Payment) View() reform.View {
	return PaymentTable
}

// Table returns Table object for that record.
func (s *Payment) Table() reform.Table {
	return PaymentTable
}

// PKValue returns a value of primary key for that record.
// Returned interface{} value is never untyped nil.
func (s *Payment) PKValue() interface{} {
	return s.PaymentID
}

// PKPointer returns a pointer to primary key field for that record.
// Returned interface{} value is never untyped nil.
func (s *Payment) PKPointer() interface{} {
	return &s.PaymentID
}

// HasPK returns true if record has non-zero primary key set, false otherwise.
func (s *Payment) HasPK() bool {
	return s.PaymentID != PaymentTable.z[PaymentTable.s.PKFieldIndex]
}

// SetPK sets record primary key.
func (s *Payment) SetPK(pk interface{}) {
	if i64, ok := pk.(int64); ok {
		s.PaymentID = int64(i64)
	} else {
		s.PaymentID = pk.(int64)
	}
}

// check interfaces
var (
	_ reform.View   = PaymentTable
	_ reform.Struct = new(Payment)
	_ reform.Table  = PaymentTable
	_ reform.Record = new(Payment)
	_ fmt.Stringer  = new(Payment)
)

func init() {
	parse.AssertUpToDate(&PaymentTable.s, new(Payment))
}
