package cancellation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrRecordNotFound = errors.New("cancellation record not found")

type Repository interface {
	Create(ctx context.Context, record *CancellationRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*CancellationRecord, error)
	GetByBookingID(ctx context.Context, bookingID string) (*CancellationRecord, error)
	UpdateRefundStatus(ctx context.Context, id uuid.UUID, from, to RefundStatus) (bool, error)
	List(ctx context.Context, refundStatus RefundStatus, limit, offset int) ([]CancellationRecord, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, record *CancellationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*CancellationRecord, error) {
	var record CancellationRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID string) (*CancellationRecord, error) {
	var record CancellationRecord
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateRefundStatus moves the refund sub-state with a guard on the
// current value, so replayed requests cannot rewind a refund.
func (r *repository) UpdateRefundStatus(ctx context.Context, id uuid.UUID, from, to RefundStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&CancellationRecord{}).
		Where("id = ? AND refund_status = ?", id, from).
		Updates(map[string]interface{}{
			"refund_status": to,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) List(ctx context.Context, refundStatus RefundStatus, limit, offset int) ([]CancellationRecord, int64, error) {
	var records []CancellationRecord
	var total int64

	base := r.db.WithContext(ctx).Model(&CancellationRecord{})
	if refundStatus != "" {
		base = base.Where("refund_status = ?", refundStatus)
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
