package services

import (
	"context"
	"time"

	"github.com/danielkmetz/ActivityPal-sub004/internal/database"
	"github.com/danielkmetz/ActivityPal-sub004/internal/models"
)

type PromoService struct {
	db *database.DB
}

func NewPromoService(db *database.DB) *PromoService {
	return &PromoService{db: db}
}

// LookupByPlace 해당 장소의 현재 유효한 프로모션/이벤트 조회
func (s *PromoService) LookupByPlace(ctx context.Context, placeID string) ([]models.Promotion, []models.Event, error) {
	now := time.Now()

	var promos []models.Promotion
	err := s.db.WithContext(ctx).
		Where("place_id = ? AND starts_at <= ? AND ends_at > ?", placeID, now, now).
		Order("discount_pct DESC, starts_at ASC").
		Limit(10).
		Find(&promos).Error
	if err != nil {
		return nil, nil, err
	}

	var events []models.Event
	err = s.db.WithContext(ctx).
		Where("place_id = ? AND ends_at > ?", placeID, now).
		Order("starts_at ASC").
		Limit(10).
		Find(&events).Error
	if err != nil {
		return nil, nil, err
	}

	return promos, events, nil
}
