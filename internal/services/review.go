package services

import (
	"context"

	"github.com/danielkmetz/ActivityPal-sub004/internal/database"
	"github.com/danielkmetz/ActivityPal-sub004/internal/models"
)

type ReviewService struct {
	db *database.DB
}

func NewReviewService(db *database.DB) *ReviewService {
	return &ReviewService{db: db}
}

// RecentTexts 최신 리뷰 본문 샘플 조회 (cuisine 추론용)
func (s *ReviewService) RecentTexts(ctx context.Context, placeID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 3
	}

	var reviews []models.VenueReview
	err := s.db.WithContext(ctx).
		Select("body").
		Where("place_id = ?", placeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if r.Body != "" {
			texts = append(texts, r.Body)
		}
	}
	return texts, nil
}
