package bookings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrBookingNotFound = errors.New("booking not found")

type Repository interface {
	Create(ctx context.Context, booking *Booking) error
	CreateInTx(tx *gorm.DB, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)

	// UpdateStatus is a compare-and-set: the row moves to the new status
	// only if its current status is one of from. Returns false when the
	// guard did not match.
	UpdateStatus(ctx context.Context, id string, from []Status, to Status, updates map[string]interface{}) (bool, error)
	UpdateStatusInTx(tx *gorm.DB, id string, from []Status, to Status, updates map[string]interface{}) (bool, error)

	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]Booking, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Booking, int64, error)
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]Booking, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) CreateInTx(tx *gorm.DB, booking *Booking) error {
	return tx.Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func statusUpdate(tx *gorm.DB, id string, from []Status, to Status, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	updates["updated_at"] = time.Now().UTC()

	res := tx.Model(&Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id string, from []Status, to Status, updates map[string]interface{}) (bool, error) {
	return statusUpdate(r.db.WithContext(ctx), id, from, to, updates)
}

func (r *repository) UpdateStatusInTx(tx *gorm.DB, id string, from []Status, to Status, updates map[string]interface{}) (bool, error) {
	return statusUpdate(tx, id, from, to, updates)
}

func (r *repository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	q := r.db.WithContext(ctx).
		Where("status = ? AND expiry_time IS NOT NULL AND expiry_time < ?", StatusPendingPayment, now).
		Order("expiry_time ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Booking, int64, error) {
	var bookings []Booking
	var total int64

	base := r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Order("created_at DESC").Limit(limit).Offset(offset).Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *repository) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]Booking, int64, error) {
	var bookings []Booking
	var total int64

	base := r.db.WithContext(ctx).Model(&Booking{})
	if status != "" {
		base = base.Where("status = ?", status)
	}
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Order("created_at DESC").Limit(limit).Offset(offset).Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}
