package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"perdami-store/internal/models"
)

// fakeBankStore is an in-memory BankStore for resolver tests.
type fakeBankStore struct {
	banks        []models.Bank
	settings     *models.AppSettings
	settingsErr  error
	banksErr     error
	nextBankID   int64
	settingsRows int
}

func (f *fakeBankStore) FindActiveBanks(ctx context.Context) ([]models.Bank, error) {
	if f.banksErr != nil {
		return nil, f.banksErr
	}
	var active []models.Bank
	for _, b := range f.banks {
		if b.IsActive {
			active = append(active, b)
		}
	}
	// caller relies on created_at ascending; fixtures are stored in order
	return active, nil
}

func (f *fakeBankStore) GetAppSettings(ctx context.Context) (*models.AppSettings, error) {
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	return f.settings, nil
}

func (f *fakeBankStore) GetBankByID(ctx context.Context, id int64) (*models.Bank, error) {
	for i := range f.banks {
		if f.banks[i].ID == id {
			return &f.banks[i], nil
		}
	}
	return nil, fmt.Errorf("bank not found: %d", id)
}

func (f *fakeBankStore) CreateBank(ctx context.Context, bank *models.Bank) error {
	f.nextBankID++
	bank.ID = f.nextBankID
	bank.CreatedAt = time.Now()
	f.banks = append(f.banks, *bank)
	return nil
}

func (f *fakeBankStore) UpdateBank(ctx context.Context, bank *models.Bank) error {
	for i := range f.banks {
		if f.banks[i].ID == bank.ID {
			f.banks[i] = *bank
			return nil
		}
	}
	return fmt.Errorf("bank not found: %d", bank.ID)
}

func (f *fakeBankStore) DeactivateBank(ctx context.Context, id int64) error {
	for i := range f.banks {
		if f.banks[i].ID == id {
			f.banks[i].IsActive = false
			return nil
		}
	}
	return fmt.Errorf("bank not found: %d", id)
}

func (f *fakeBankStore) UpsertAppSettings(ctx context.Context, singleBankMode bool, defaultBankID *int64) (*models.AppSettings, error) {
	f.settings = &models.AppSettings{
		ID:             models.AppSettingsID,
		SingleBankMode: singleBankMode,
		DefaultBankID:  defaultBankID,
		UpdatedAt:      time.Now(),
	}
	f.settingsRows = 1
	return f.settings, nil
}

// fakeOrderStore is an in-memory OrderStore/PaymentStore.
type fakeOrderStore struct {
	bundles     map[int64]models.ProductBundle
	orders      map[int64]*models.Order
	items       map[int64][]models.OrderItem
	nextOrderID int64
	createErr   error
	createCalls int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		bundles: make(map[int64]models.ProductBundle),
		orders:  make(map[int64]*models.Order),
		items:   make(map[int64][]models.OrderItem),
	}
}

func (f *fakeOrderStore) GetBundlesByIDs(ctx context.Context, ids []int64) ([]models.ProductBundle, error) {
	var found []models.ProductBundle
	seen := make(map[int64]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if b, ok := f.bundles[id]; ok {
			found = append(found, b)
		}
	}
	return found, nil
}

func (f *fakeOrderStore) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.IdempotencyKey == key {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderStore) CreateOrderTx(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	f.nextOrderID++
	order.ID = f.nextOrderID
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	for i := range items {
		items[i].OrderID = order.ID
		items[i].ID = int64(i + 1)
	}
	f.orders[order.ID] = order
	f.items[order.ID] = items
	return nil
}

func (f *fakeOrderStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order not found: %d", id)
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrderStore) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderStore) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var result []models.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (f *fakeOrderStore) UpdateOrderStatus(ctx context.Context, orderID int64, status string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return errors.New("order not found")
	}
	o.OrderStatus = status
	return nil
}

func (f *fakeOrderStore) UpdatePaymentStatus(ctx context.Context, orderID int64, status string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return errors.New("order not found")
	}
	o.PaymentStatus = status
	return nil
}

// fakeResolver is a canned BankResolver that counts calls.
type fakeResolver struct {
	availability *BankAvailability
	err          error
	calls        int
}

func (f *fakeResolver) GetAvailableBanks(ctx context.Context) (*BankAvailability, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.availability, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	created        []*models.OrderCreatedEvent
	statusChanged  []*models.OrderStatusChangedEvent
	paymentChanged []*models.PaymentStatusChangedEvent
	cancelled      []*models.OrderCancelledEvent
}

func (f *fakePublisher) PublishOrderCreated(ctx context.Context, e *models.OrderCreatedEvent) error {
	f.created = append(f.created, e)
	return nil
}

func (f *fakePublisher) PublishOrderStatusChanged(ctx context.Context, e *models.OrderStatusChangedEvent) error {
	f.statusChanged = append(f.statusChanged, e)
	return nil
}

func (f *fakePublisher) PublishPaymentStatusChanged(ctx context.Context, e *models.PaymentStatusChangedEvent) error {
	f.paymentChanged = append(f.paymentChanged, e)
	return nil
}

func (f *fakePublisher) PublishOrderCancelled(ctx context.Context, e *models.OrderCancelledEvent) error {
	f.cancelled = append(f.cancelled, e)
	return nil
}

// fakeCatalogCache is an in-memory CatalogCache.
type fakeCatalogCache struct {
	catalog []models.ProductBundle
	readErr error
	sets    int
	drops   int
}

func (f *fakeCatalogCache) GetCachedCatalog(ctx context.Context) ([]models.ProductBundle, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.catalog, nil
}

func (f *fakeCatalogCache) SetCachedCatalog(ctx context.Context, bundles []models.ProductBundle) error {
	f.catalog = bundles
	f.sets++
	return nil
}

func (f *fakeCatalogCache) InvalidateCatalog(ctx context.Context) error {
	f.catalog = nil
	f.drops++
	return nil
}
