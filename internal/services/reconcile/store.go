package reconcile

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"promocart/internal/models"
)

var ErrOfferNotFound = errors.New("offer not found")

// Store is the persistence the service needs.
type Store interface {
	ActiveOffers(ctx context.Context) ([]models.Offer, error)
	GetOffer(ctx context.Context, id string) (*models.Offer, error)
	SetOfferAvailability(ctx context.Context, id string, available bool) error
	ClaimedOfferIDs(ctx context.Context, customerID string) (map[string]bool, error)
	SaveClaim(ctx context.Context, claim *models.Claim) error
	SaveRun(ctx context.Context, run *models.ReconciliationRun) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ActiveOffers returns gift offers before missing-item offers, oldest first.
func (s *GormStore) ActiveOffers(ctx context.Context) ([]models.Offer, error) {
	var list []models.Offer
	err := s.db.WithContext(ctx).
		Where("active = ?", true).
		Order("kind ASC").
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (s *GormStore) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	if err := s.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return &offer, nil
}

func (s *GormStore) SetOfferAvailability(ctx context.Context, id string, available bool) error {
	res := s.db.WithContext(ctx).Model(&models.Offer{}).Where("id = ?", id).Update("is_available", available)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOfferNotFound
	}
	return nil
}

func (s *GormStore) ClaimedOfferIDs(ctx context.Context, customerID string) (map[string]bool, error) {
	claimed := map[string]bool{}
	if customerID == "" {
		return claimed, nil
	}

	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Claim{}).
		Where("customer_id = ?", customerID).
		Pluck("offer_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		claimed[id] = true
	}
	return claimed, nil
}

// SaveClaim is a no-op when the customer already claimed the offer.
func (s *GormStore) SaveClaim(ctx context.Context, claim *models.Claim) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(claim).Error
}

func (s *GormStore) SaveRun(ctx context.Context, run *models.ReconciliationRun) error {
	return s.db.WithContext(ctx).Create(run).Error
}
