// Package product holds the product record as the admin screen sees it.
package product

// Product is a catalog record. An ID of 0 marks a draft that was never saved.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

// Draft returns the blank record used to seed the create dialog.
func Draft() Product {
	return Product{}
}

func (p Product) IsDraft() bool {
	return p.ID == 0
}

// Find returns the record with the given id.
func Find(products []Product, id int64) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
