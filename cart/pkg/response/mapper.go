package response

import (
	"github.com/yudistira/storecart/cart/internal/model"
)

func NewCart(cart model.Cart, removedCount int) Cart {
	lines := make([]CartLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, newCartLine(line))
	}
	res := Cart{
		ID:           cart.ID,
		StoreID:      cart.StoreID,
		GuestID:      cart.Owner.GuestID,
		Lines:        lines,
		RemovedCount: removedCount,
		CreatedAt:    cart.CreatedAt,
		UpdatedAt:    cart.UpdatedAt,
	}
	if !cart.Owner.IsGuest() {
		userId := cart.Owner.UserID
		res.UserID = &userId
	}
	return res
}

func newCartLine(line model.CartLine) CartLine {
	specs := make([]SelectedSpecification, 0, len(line.Specifications))
	for _, s := range line.Specifications {
		specs = append(specs, SelectedSpecification{
			SpecificationID: s.SpecificationID,
			ValueID:         s.ValueID,
			TitleAr:         s.TitleAr,
			TitleEn:         s.TitleEn,
			ValueAr:         s.ValueAr,
			ValueEn:         s.ValueEn,
		})
	}
	return CartLine{
		ProductID:      line.ProductID,
		Variant:        line.Variant,
		Quantity:       line.Quantity,
		PriceAtAdd:     line.PriceAtAdd,
		Specifications: specs,
		Colors:         line.Colors,
		AddedAt:        line.AddedAt,
	}
}
