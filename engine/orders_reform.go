package engine

// generated with gopkg.in/reform.v1

import (
	"fmt"
	"strings"

	"gopkg.in/reform.v1"
	"gopkg.in/reform.v1/parse"
)

type orderTableType struct {
	s parse.StructInfo
	z []interface{}
}

// Schema returns a schema name in SQL database ("").
func (v *orderTableType) Schema() string {
	return v.s.SQLSchema
}

// Name returns a view or table name in SQL database ("pos_orders").
func (v *orderTableType) Name() string {
	return v.s.SQLName
}

// Columns returns a new slice of column names for that view or table in SQL database.
func (v *orderTableType) Columns() []string {
	return []string{"order_id", "key", "total_amount", "paid_amount", "status", "updated_at", "created_at"}
}

// NewStruct makes a new struct for that view or table.
func (v *orderTableType) NewStruct() reform.Struct {
	return new(Order)
}

// NewRecord makes a new record for that table.
func (v *orderTableType) NewRecord() reform.Record {
	return new(Order)
}

// PKColumnIndex returns an index of primary key column for that table in SQL database.
func (v *orderTableType) PKColumnIndex() uint {
	return uint(v.s.PKFieldIndex)
}

// OrderTable represents pos_orders view or table in SQL database.
var OrderTable = &orderTableType{
	s: parse.StructInfo{Type: "Order", SQLSchema: "", SQLName: "pos_orders", Fields: []parse.FieldInfo{{Name: "OrderID", Type: "int64", Column: "order_id"}, {Name: "Key", Type: "string", Column: "key"}, {Name: "TotalAmount", Type: "int64", Column: "total_amount"}, {Name: "PaidAmount", Type: "int64", Column: "paid_amount"}, {Name: "Status", Type: "OrderStatus", Column: "status"}, {Name: "UpdatedAt", Type: "time.Time", Column: "updated_at"}, {Name: "CreatedAt", Type: "time.Time", Column: "created_at"}}, PKFieldIndex: 0},
	z: new(Order).Values(),
}

// String returns a string representation of this struct or record.
func (s Order) String() string {
	res := make([]string, 7)
	res[0] = "OrderID: " + reform.Inspect(s.OrderID, true)
	res[1] = "Key: " + reform.Inspect(s.Key, true)
	res[2] = "TotalAmount: " + reform.Inspect(s.TotalAmount, true)
	res[3] = "PaidAmount: " + reform.Inspect(s.PaidAmount, true)
	res[4] = "Status: " + reform.Inspect(s.Status, true)
	res[5] = "UpdatedAt: " + reform.Inspect(s.UpdatedAt, true)
	res[6] = "CreatedAt: " + reform.Inspect(s.CreatedAt, true)
	return strings.Join(res, ", ")
}

// Values returns a slice of struct or record field values.
// Returned interface{} values are never untyped nils.
func (s *Order) Values() []interface{} {
	return []interface{}{
		s.OrderID,
		s.Key,
		s.TotalAmount,
		s.PaidAmount,
		s.Status,
		s.UpdatedAt,
		s.CreatedAt,
	}
}

// Pointers returns a slice of pointers to struct or record fields.
// Returned interface{} values are never untyped nils.
func (s *Order) Pointers() []interface{} {
	return []interface{}{
		&s.OrderID,
		&s.Key,
		&s.TotalAmount,
		&s.PaidAmount,
		&s.Status,
		&s.UpdatedAt,
		&s.CreatedAt,
	}
}

// View returns View object for that struct.
func (s *Order) View() reform.View {
	return OrderTable
}

// Table returns Table object for that record.
func (s *Order) Table() reform.Table {
	return OrderTable
}

// PKValue returns a value of primary key for that record.
// Returned interface{} value is never untyped nil.
func (s *Order) PKValue() interface{} {
	return s.OrderID
}

// PKPointer returns a pointer to primary key field for that record.
// Returned interface{} value is never untyped nil.
func (s *Order) PKPointer() interface{} {
	return &s.OrderID
}

// HasPK returns true if record has non-zero primary key set, false otherwise.
func (s *Order) HasPK() bool {
	return s.OrderID != OrderTable.z[OrderTable.s.PKFieldIndex]
}

// SetPK sets record primary key.
func (s *Order) SetPK(pk interface{}) {
	if i64, ok := pk.(int64); ok {
		s.OrderID = int64(i64)
	} else {
		s.OrderID = pk.(int64)
	}
}

// check interfaces
var (
	_ reform.View   = OrderTable
	_ reform.Struct = new(Order)
	_ reform.Table  = OrderTable
	_ reform.Record = new(Order)
	_ fmt.Stringer  = new(Order)
)

type paymentLineTableType struct {
	s parse.StructInfo
	z []interface{}
}

// Schema returns a schema name in SQL database ("").
func (v *paymentLineTableType) Schema() string {
	return v.s.SQLSchema
}

// Name returns a view or table name in SQL database ("pos_order_payments").
func (v *paymentLineTableType) Name() string {
	return v.s.SQLName
}

// Columns returns a new slice of column names for that view or table in SQL database.
func (v *paymentLineTableType) Columns() []string {
	return []string{"line_id", "order_id", "mode", "amount", "base_amount", "account_ref", "position", "updated_at", "created_at"}
}

// NewStruct makes a new struct for that view or table.
func (v *paymentLineTableType) NewStruct() reform.Struct {
	return new(PaymentLine)
}

// NewRecord makes a new record for that table.
func (v *paymentLineTableType) NewRecord() reform.Record {
	return new(PaymentLine)
}

// PKColumnIndex returns an index of primary key column for that table in SQL database.
func (v *paymentLineTableType) PKColumnIndex() uint {
	return uint(v.s.PKFieldIndex)
}

// PaymentLineTable represents pos_order_payments view or table in SQL database.
var PaymentLineTable = &paymentLineTableType{
	s: parse.StructInfo{Type: "PaymentLine", SQLSchema: "", SQLName: "pos_order_payments", Fields: []parse.FieldInfo{{Name: "LineID", Type: "int64", Column: "line_id"}, {Name: "OrderID", Type: "int64", Column: "order_id"}, {Name: "Mode", Type: "PaymentMode", Column: "mode"}, {Name: "Amount", Type: "int64", Column: "amount"}, {Name: "BaseAmount", Type: "int64", Column: "base_amount"}, {Name: "AccountRef", Type: "*string", Column: "account_ref"}, {Name: "Position", Type: "int32", Column: "position"}, {Name: "UpdatedAt", Type: "time.Time", Column: "updated_at"}, {Name: "CreatedAt", Type: "time.Time", Column: "created_at"}}, PKFieldIndex: 0},
	z: new(PaymentLine).Values(),
}

// String returns a string representation of this struct or record.
func (s PaymentLine) String() string {
	res := make([]string, 9)
	res[0] = "LineID: " + reform.Inspect(s.LineID, true)
	res[1] = "OrderID: " + reform.Inspect(s.OrderID, true)
	res[2] = "Mode: " + reform.Inspect(s.Mode, true)
	res[3] = "Amount: " + reform.Inspect(s.Amount, true)
	res[4] = "BaseAmount: " + reform.Inspect(s.BaseAmount, true)
	res[5] = "AccountRef: " + reform.Inspect(s.AccountRef, true)
	res[6] = "Position: " + reform.Inspect(s.Position, true)
	res[7] = "UpdatedAt: " + reform.Inspect(s.UpdatedAt, true)
	res[8] = "CreatedAt: " + reform.Inspect(s.CreatedAt, true)
	return strings.Join(res, ", ")
}

// Values returns a slice of struct or record field values.
// Returned interface{} values are never untyped nils.
func (s *PaymentLine) Values() []interface{} {
	return []interface{}{
		s.LineID,
		s.OrderID,
		s.Mode,
		s.Amount,
		s.BaseAmount,
		s.AccountRef,
		s.Position,
		s.UpdatedAt,
		s.CreatedAt,
	}
}

// Pointers returns a slice of pointers to struct or record fields.
// Returned interface{} values are never untyped nils.
func (s *PaymentLine) Pointers() []interface{} {
	return []interface{}{
		&s.LineID,
		&s.OrderID,
		&s.Mode,
		&s.Amount,
		&s.BaseAmount,
		&s.AccountRef,
		&s.Position,
		&s.UpdatedAt,
		&s.CreatedAt,
	}
}

// View returns View object for that struct.
func (s *PaymentLine) View() reform.View {
	return PaymentLineTable
}

// Table returns Table object for that record.
func (s *PaymentLine) Table() reform.Table {
	return PaymentLineTable
}

// PKValue returns a value of primary key for that record.
// Returned interface{} value is never untyped nil.
func (s *PaymentLine) PKValue() interface{} {
	return s.LineID
}

// PKPointer returns a pointer to primary key field for that record.
// Returned interface{} value is never untyped nil.
func (s *PaymentLine) PKPointer() interface{} {
	return &s.LineID
}

// HasPK returns true if record has non-zero primary key set, false otherwise.
func (s *PaymentLine) HasPK() bool {
	return s.LineID != PaymentLineTable.z[PaymentLineTable.s.PKFieldIndex]
}

// SetPK sets record primary key.
func (s *PaymentLine) SetPK(pk interface{}) {
	if i64, ok := pk.(int64); ok {
		s.LineID = int64(i64)
	} else {
		s.LineID = pk.(int64)
	}
}

// check interfaces
var (
	_ reform.View   = PaymentLineTable
	_ reform.Struct = new(PaymentLine)
	_ reform.Table  = PaymentLineTable
	_ reform.Record = new(PaymentLine)
	_ fmt.Stringer  = new(PaymentLine)
)

func init() {
	parse.AssertUpToDate(&OrderTable.s, new(Order))
	parse.AssertUpToDate(&PaymentLineTable.s, new(PaymentLine))
}
