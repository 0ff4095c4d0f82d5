package store

import (
	"context"
	"database/sql"
	"fmt"

	"perdami-store/internal/models"
)

// FindActiveBanks retrieves all active banks ordered by creation time
// ascending. The resolver depends on this ordering for the
// earliest-created fallback.
func (s *Store) FindActiveBanks(ctx context.Context) ([]models.Bank, error) {
	var banks []models.Bank
	err := s.db.SelectContext(ctx, &banks,
		"SELECT * FROM banks WHERE is_active = true ORDER BY created_at ASC")
	return banks, err
}

// GetBankByID retrieves a bank by ID
func (s *Store) GetBankByID(ctx context.Context, id int64) (*models.Bank, error) {
	var bank models.Bank
	err := s.db.GetContext(ctx, &bank, "SELECT * FROM banks WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bank not found: %d", id)
	}
	if err != nil {
		return nil, err
	}
	return &bank, nil
}

// CreateBank creates a new bank account record
func (s *Store) CreateBank(ctx context.Context, bank *models.Bank) error {
	query := `
		INSERT INTO banks (name, code, account_number, account_holder, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	return s.db.GetContext(ctx, bank, query,
		bank.Name, bank.Code, bank.AccountNumber, bank.AccountHolder, bank.IsActive)
}

// UpdateBank updates an existing bank's display fields
func (s *Store) UpdateBank(ctx context.Context, bank *models.Bank) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE banks
		 SET name = $1, code = $2, account_number = $3, account_holder = $4,
		     is_active = $5, updated_at = NOW()
		 WHERE id = $6`,
		bank.Name, bank.Code, bank.AccountNumber, bank.AccountHolder,
		bank.IsActive, bank.ID)
	return err
}

// DeactivateBank soft-deactivates a bank. Banks referenced by orders are
// never deleted.
func (s *Store) DeactivateBank(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE banks SET is_active = false, updated_at = NOW() WHERE id = $1", id)
	return err
}

// GetAppSettings retrieves the singleton settings row. Returns (nil, nil)
// when the row is absent so the resolver can apply its fail-open default.
func (s *Store) GetAppSettings(ctx context.Context) (*models.AppSettings, error) {
	var settings models.AppSettings
	err := s.db.GetContext(ctx, &settings,
		"SELECT * FROM app_settings WHERE id = $1", models.AppSettingsID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpsertAppSettings writes the singleton settings row
func (s *Store) UpsertAppSettings(ctx context.Context, singleBankMode bool, defaultBankID *int64) (*models.AppSettings, error) {
	var settings models.AppSettings
	query := `
		INSERT INTO app_settings (id, single_bank_mode, default_bank_id, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET single_bank_mode = EXCLUDED.single_bank_mode,
		    default_bank_id = EXCLUDED.default_bank_id,
		    updated_at = NOW()
		RETURNING *`

	err := s.db.GetContext(ctx, &settings, query,
		models.AppSettingsID, singleBankMode, defaultBankID)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
