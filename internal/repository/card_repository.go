package repository

import (
	"context"

	"github.com/vytor/mnemoflash/internal/models"
)

// CardRepository handles card data access. Anchors and bindings are stored
// as child rows and loaded with the card.
type CardRepository interface {
	Insert(ctx context.Context, card models.Card) (int64, error)
	Get(ctx context.Context, profileID, id int64) (*models.Card, error)
	List(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	Count(ctx context.Context, filter models.CardFilter) (int, error)
}
