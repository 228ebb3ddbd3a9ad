package participant

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/avensora/avensora-api/pkg/apperr"
)

// Repository defines the interface for participant data operations.
// Implementations translate not-found to apperr.ErrNotFound and
// unique-constraint violations to apperr.ErrConflict so callers never match
// on storage-layer errors.
type Repository interface {
	Create(p *Participant) error
	GetByID(id uint) (*Participant, error)
	GetByEmail(email string) (*Participant, error)
	GetByPhone(phone string) (*Participant, error)
	GetByCode(code string) (*Participant, error)
	GetByVerifyToken(token string) (*Participant, error)
	Update(p *Participant) error
	CodeExists(code string) (bool, error)

	// Referral bookkeeping
	IncrementReferralCount(code string) error
	SetReferralCount(code string, count int) error
	CountReferred(code string) (int64, error)
	ListReferred(code string) ([]Participant, error)
}

type participantRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(p *Participant) error {
	if err := r.db.Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *participantRepository) getBy(query string, args ...interface{}) (*Participant, error) {
	var p Participant
	if err := r.db.Where(query, args...).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *participantRepository) GetByID(id uint) (*Participant, error) {
	return r.getBy("id = ?", id)
}

func (r *participantRepository) GetByEmail(email string) (*Participant, error) {
	return r.getBy("email = ?", email)
}

func (r *participantRepository) GetByPhone(phone string) (*Participant, error) {
	return r.getBy("phone = ?", phone)
}

func (r *participantRepository) GetByCode(code string) (*Participant, error) {
	return r.getBy("code = ?", code)
}

func (r *participantRepository) GetByVerifyToken(token string) (*Participant, error) {
	return r.getBy("verify_token = ?", token)
}

func (r *participantRepository) Update(p *Participant) error {
	return r.db.Save(p).Error
}

func (r *participantRepository) CodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&Participant{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *participantRepository) IncrementReferralCount(code string) error {
	result := r.db.Model(&Participant{}).
		Where("code = ?", code).
		UpdateColumn("referral_count", gorm.Expr("referral_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to increment referral count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *participantRepository) SetReferralCount(code string, count int) error {
	result := r.db.Model(&Participant{}).
		Where("code = ?", code).
		UpdateColumn("referral_count", count)
	if result.Error != nil {
		return fmt.Errorf("failed to set referral count: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *participantRepository) CountReferred(code string) (int64, error) {
	var count int64
	err := r.db.Model(&Participant{}).Where("referred_by = ?", code).Count(&count).Error
	return count, err
}

func (r *participantRepository) ListReferred(code string) ([]Participant, error) {
	var participants []Participant
	if err := r.db.Where("referred_by = ?", code).Order("created_at asc").Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}
