package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"bacheliers/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegistrationRepository stores registrations in MySQL through gorm.
type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Get(ctx context.Context, identity string) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.WithContext(ctx).Where("identity = ?", identity).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (r *RegistrationRepository) FindByCorrelation(ctx context.Context, correlationID string) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.WithContext(ctx).Where("correlation_id = ?", correlationID).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (r *RegistrationRepository) Merge(ctx context.Context, identity string, fields models.Fields) error {
	now := time.Now()
	row := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		row[k] = v
	}
	row[models.FieldIdentity] = identity
	row[models.FieldUpdatedAt] = now
	cols := make([]string, 0, len(row))
	for k := range row {
		if k != models.FieldIdentity {
			cols = append(cols, k)
		}
	}
	sort.Strings(cols)
	row[models.FieldCreatedAt] = now
	return r.db.WithContext(ctx).Model(&models.Registration{}).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: models.FieldIdentity}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(row).Error
}

func (r *RegistrationRepository) Update(ctx context.Context, identity string, fields models.Fields) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg models.Registration
		if err := tx.Select("id").Where("identity = ?", identity).First(&reg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Model(&reg).Updates(stamped(fields)).Error
	})
}

func (r *RegistrationRepository) Transact(ctx context.Context, identity string, fn func(reg *models.Registration) (models.Fields, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reg models.Registration
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("identity = ?", identity).First(&reg).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		fields, err := fn(&reg)
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		return tx.Model(&reg).Updates(stamped(fields)).Error
	})
}

// stamped copies fields into the plain map type gorm expects and sets updated_at.
func stamped(fields models.Fields) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[models.FieldUpdatedAt] = time.Now()
	return out
}

type PaymentEventRepository struct {
	db *gorm.DB
}

func NewPaymentEventRepository(db *gorm.DB) *PaymentEventRepository {
	return &PaymentEventRepository{db: db}
}

func (r *PaymentEventRepository) Record(ctx context.Context, e *models.PaymentEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}
