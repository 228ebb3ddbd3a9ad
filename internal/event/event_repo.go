package event

import (
	"errors"

	"gorm.io/gorm"

	"github.com/avensora/avensora-api/pkg/apperr"
)

// Repository defines the interface for event data operations.
type Repository interface {
	Create(e *Event) error
	GetByID(id uint) (*Event, error)
	List() ([]Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(e *Event) error {
	if err := r.db.Create(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(id uint) (*Event, error) {
	var e Event
	if err := r.db.First(&e, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *eventRepository) List() ([]Event, error) {
	var events []Event
	if err := r.db.Order("created_at asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
