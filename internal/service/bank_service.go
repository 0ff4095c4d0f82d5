package service

import (
	"context"
	"fmt"

	"perdami-store/internal/models"
	"perdami-store/internal/util"

	"go.uber.org/zap"
)

// BankStore is the persistence surface the bank service needs.
// *store.Store satisfies it.
type BankStore interface {
	FindActiveBanks(ctx context.Context) ([]models.Bank, error)
	GetAppSettings(ctx context.Context) (*models.AppSettings, error)
	GetBankByID(ctx context.Context, id int64) (*models.Bank, error)
	CreateBank(ctx context.Context, bank *models.Bank) error
	UpdateBank(ctx context.Context, bank *models.Bank) error
	DeactivateBank(ctx context.Context, id int64) error
	UpsertAppSettings(ctx context.Context, singleBankMode bool, defaultBankID *int64) (*models.AppSettings, error)
}

// BankAvailability is the resolved set of valid payment destinations for
// a checkout attempt.
type BankAvailability struct {
	Banks          []models.Bank `json:"banks"`
	SingleBankMode bool          `json:"single_bank_mode"`
}

// BankService resolves which bank accounts may receive payment and owns
// the admin bank/settings operations.
type BankService struct {
	store  BankStore
	logger *zap.Logger
}

// NewBankService creates a new bank service
func NewBankService(store BankStore) *BankService {
	return &BankService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// GetAvailableBanks resolves the payment destinations for the current
// request. Settings are read fresh on every call; there is no in-process
// cache, so concurrent requests never observe stale mode flips.
//
// A missing settings row means single bank mode is off and all active
// banks are shown. That fail-open default is a business rule: checkout
// must not be blocked by missing configuration.
func (bs *BankService) GetAvailableBanks(ctx context.Context) (*BankAvailability, error) {
	ctx, span := util.StartSpan(ctx, "BankService.GetAvailableBanks")
	defer span.End()

	settings, err := bs.store.GetAppSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading settings: %v", ErrBankResolutionFailed, err)
	}

	banks, err := bs.store.FindActiveBanks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading banks: %v", ErrBankResolutionFailed, err)
	}

	singleBankMode := settings != nil && settings.SingleBankMode

	if len(banks) == 0 {
		util.BankResolutionsEmptyTotal.Inc()
		bs.logger.Warn("No active bank available for checkout",
			zap.Bool("single_bank_mode", singleBankMode))
		return nil, ErrNoBankAvailable
	}

	if !singleBankMode {
		util.BankResolutionsTotal.WithLabelValues("all").Inc()
		return &BankAvailability{Banks: banks, SingleBankMode: false}, nil
	}

	util.BankResolutionsTotal.WithLabelValues("single").Inc()

	if settings.DefaultBankID != nil {
		for _, bank := range banks {
			if bank.ID == *settings.DefaultBankID {
				return &BankAvailability{Banks: []models.Bank{bank}, SingleBankMode: true}, nil
			}
		}
		bs.logger.Warn("Default bank is not active, falling back to earliest bank",
			zap.Int64("default_bank_id", *settings.DefaultBankID))
	}

	// FindActiveBanks orders by created_at ascending, so the first entry
	// is the earliest-created active bank.
	return &BankAvailability{Banks: banks[:1], SingleBankMode: true}, nil
}

// CreateBank registers a new payment destination
func (bs *BankService) CreateBank(ctx context.Context, bank *models.Bank) error {
	if err := bs.store.CreateBank(ctx, bank); err != nil {
		return fmt.Errorf("failed to create bank: %w", err)
	}
	bs.logger.Info("Bank created",
		zap.Int64("bank_id", bank.ID),
		zap.String("code", bank.Code))
	return nil
}

// UpdateBank updates an existing bank
func (bs *BankService) UpdateBank(ctx context.Context, bank *models.Bank) error {
	if err := bs.store.UpdateBank(ctx, bank); err != nil {
		return fmt.Errorf("failed to update bank: %w", err)
	}
	return nil
}

// DeactivateBank soft-deactivates a bank so historical orders keep their
// reference.
func (bs *BankService) DeactivateBank(ctx context.Context, id int64) error {
	if err := bs.store.DeactivateBank(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate bank: %w", err)
	}
	bs.logger.Info("Bank deactivated", zap.Int64("bank_id", id))
	return nil
}

// UpdateSettings writes the singleton settings row. When single bank mode
// is enabled with an explicit default, the default must reference an
// active bank.
func (bs *BankService) UpdateSettings(ctx context.Context, singleBankMode bool, defaultBankID *int64) (*models.AppSettings, error) {
	if singleBankMode && defaultBankID != nil {
		bank, err := bs.store.GetBankByID(ctx, *defaultBankID)
		if err != nil {
			return nil, fmt.Errorf("failed to load default bank: %w", err)
		}
		if !bank.IsActive {
			return nil, ErrInactiveDefaultBank
		}
	}

	settings, err := bs.store.UpsertAppSettings(ctx, singleBankMode, defaultBankID)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	bs.logger.Info("App settings updated",
		zap.Bool("single_bank_mode", singleBankMode))
	return settings, nil
}
