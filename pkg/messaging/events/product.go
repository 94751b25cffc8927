package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/shopadmin/pkg/messaging"
)

// ProductAction names the kind of change a ProductChangedEvent reports.
type ProductAction string

const (
	ProductCreated ProductAction = "created"
	ProductUpdated ProductAction = "updated"
	ProductDeleted ProductAction = "deleted"
)

// ProductSnapshot is the record as it was persisted by the change.
type ProductSnapshot struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// ProductChangedEvent is published after every successful catalog mutation.
// Product is nil for deletions.
type ProductChangedEvent struct {
	Action     ProductAction    `json:"action"`
	ProductID  int64            `json:"product_id"`
	Product    *ProductSnapshot `json:"product,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

func (e ProductChangedEvent) Subject() string {
	return messaging.ProductsSubjectPrefix + string(e.Action)
}

func (e ProductChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
