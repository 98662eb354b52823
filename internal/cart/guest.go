package cart

import (
	"go-shop-client/internal/model"
	"go-shop-client/internal/store"
)

// guestSnapshot projects the guest store into the common snapshot shape.
func guestSnapshot(guest *store.GuestCartStore) (model.CartSnapshot, error) {
	guestLines, err := guest.GetAll()
	if err != nil {
		return model.CartSnapshot{}, err
	}

	lines := make([]model.CartLine, 0, len(guestLines))
	for _, line := range guestLines {
		lines = append(lines, line.CartLine())
	}

	return model.BuildSnapshot(lines), nil
}

// guestLineFromProduct captures the product snapshot a guest line needs,
// since the guest store cannot look a product up independently.
func guestLineFromProduct(p model.Product) model.GuestLine {
	return model.GuestLine{
		ProductID:      p.ID,
		Name:           p.Name,
		UnitPrice:      p.Price,
		Image:          p.Image(),
		Category:       p.Category,
		StockAvailable: p.StockQuantity,
	}
}
