package models

import "time"

// Bank is a payment destination account managed by admins.
// Banks referenced by historical orders are deactivated, never deleted.
type Bank struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Code          string    `db:"code" json:"code"`
	AccountNumber string    `db:"account_number" json:"account_number"`
	AccountHolder string    `db:"account_holder" json:"account_holder"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// AppSettingsID is the fixed primary key of the singleton settings row.
const AppSettingsID = 1

// AppSettings is the singleton application configuration row.
type AppSettings struct {
	ID             int64     `db:"id" json:"id"`
	SingleBankMode bool      `db:"single_bank_mode" json:"single_bank_mode"`
	DefaultBankID  *int64    `db:"default_bank_id" json:"default_bank_id,omitempty"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Store is an event store that sells bundles and requires a separate
// physical pickup at the venue.
type Store struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProductBundle is a purchasable package tied to one store.
// Customers may only see bundles where both IsActive and ShowToCustomer
// are true; admins see all.
type ProductBundle struct {
	ID             int64     `db:"id" json:"id"`
	StoreID        int64     `db:"store_id" json:"store_id"`
	Name           string    `db:"name" json:"name"`
	Description    string    `db:"description" json:"description"`
	Price          int64     `db:"price" json:"price"`
	CostPrice      int64     `db:"cost_price" json:"-"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	ShowToCustomer bool      `db:"show_to_customer" json:"show_to_customer"`
	IsFeatured     bool      `db:"is_featured" json:"is_featured"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Order is a customer pre-order aggregating bundles from one or more stores.
// All monetary fields are in the smallest currency unit (IDR, no subunit).
type Order struct {
	ID             int64     `db:"id" json:"id"`
	OrderNumber    string    `db:"order_number" json:"order_number"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Subtotal       int64     `db:"subtotal" json:"subtotal"`
	ServiceFee     int64     `db:"service_fee" json:"service_fee"`
	TotalAmount    int64     `db:"total_amount" json:"total_amount"`
	OrderStatus    string    `db:"order_status" json:"order_status"`
	PaymentStatus  string    `db:"payment_status" json:"payment_status"`
	BankID         int64     `db:"bank_id" json:"bank_id"`
	IdempotencyKey string    `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem is one bundle line within an order.
type OrderItem struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"order_id"`
	BundleID  int64 `db:"bundle_id" json:"bundle_id"`
	StoreID   int64 `db:"store_id" json:"store_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
	UnitPrice int64 `db:"unit_price" json:"unit_price"`
}

// Notification is an in-app admin notification produced by the
// notification worker from order events.
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	Type      string    `db:"type" json:"type"`
	OrderID   int64     `db:"order_id" json:"order_id"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
