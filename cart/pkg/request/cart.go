package request

import (
	"github.com/google/uuid"
)

// SelectedSpecification is a raw client selection. Clients have
// historically filled value, valueId, valueAr and valueEn interchangeably;
// the service normalizes the submission once at ingress.
type SelectedSpecification struct {
	SpecificationID string `validate:"required" json:"specificationId"`
	ValueID         string `json:"valueId"`
	Value           string `json:"value"`
	TitleAr         string `json:"titleAr"`
	TitleEn         string `json:"titleEn"`
	ValueAr         string `json:"valueAr"`
	ValueEn         string `json:"valueEn"`
}

type AddItem struct {
	ProductID      uuid.UUID               `validate:"required"       json:"productId"`
	Quantity       int32                   `validate:"required,gte=1" json:"quantity"`
	Variant        string                  `json:"variant"`
	Specifications []SelectedSpecification `validate:"dive"           json:"selectedSpecifications"`
	Colors         []string                `json:"selectedColors"`
}

// UpdateItem overwrites the first line of the target product. Quantity zero
// deletes the line. Nil specification/color collections keep the stored
// selection, nil variant keeps the stored variant.
type UpdateItem struct {
	Quantity       int32                   `validate:"gte=0" json:"quantity"`
	Variant        *string                 `json:"variant"`
	Specifications []SelectedSpecification `validate:"dive"  json:"selectedSpecifications"`
	Colors         []string                `json:"selectedColors"`
}

type MergeGuestCart struct {
	GuestID string `json:"guestId"`
}
