package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSameConfiguration(t *testing.T) {
	productId := uuid.New()
	otherProductId := uuid.New()

	base := CartLine{
		ProductID: productId,
		Variant:   "xl",
		Specifications: []SelectedSpecification{
			{SpecificationID: "size", ValueID: "size-xl"},
			{SpecificationID: "fabric", ValueID: "fabric-cotton"},
		},
		Colors: []string{"red", "blue"},
	}

	tests := []struct {
		name     string
		a        CartLine
		b        CartLine
		expected bool
	}{
		{
			name:     "given identical lines should match",
			a:        base,
			b:        base,
			expected: true,
		},
		{
			name: "given differing quantity and price should still match",
			a:    base,
			b: func() CartLine {
				line := base
				line.Quantity = 7
				return line
			}(),
			expected: true,
		},
		{
			name: "given different product should not match",
			a:    base,
			b: func() CartLine {
				line := base
				line.ProductID = otherProductId
				return line
			}(),
			expected: false,
		},
		{
			name: "given different variant should not match",
			a:    base,
			b: func() CartLine {
				line := base
				line.Variant = "l"
				return line
			}(),
			expected: false,
		},
		{
			name: "given both empty variants should match",
			a: func() CartLine {
				line := base
				line.Variant = ""
				return line
			}(),
			b: func() CartLine {
				line := base
				line.Variant = ""
				return line
			}(),
			expected: true,
		},
		{
			name: "given same specifications in different order should not match",
			a:    base,
			b: func() CartLine {
				line := base
				line.Specifications = []SelectedSpecification{
					{SpecificationID: "fabric", ValueID: "fabric-cotton"},
					{SpecificationID: "size", ValueID: "size-xl"},
				}
				return line
			}(),
			expected: false,
		},
		{
			name: "given extra specification should not match",
			a:    base,
			b: func() CartLine {
				line := base
				line.Specifications = append(
					append([]SelectedSpecification{}, base.Specifications...),
					SelectedSpecification{SpecificationID: "sleeve", ValueID: "sleeve-long"},
				)
				return line
			}(),
			expected: false,
		},
		{
			name: "given same colors in different order should not match",
			a:    base,
			b: func() CartLine {
				line := base
				line.Colors = []string{"blue", "red"}
				return line
			}(),
			expected: false,
		},
		{
			name: "given missing color should not match",
			a:    base,
			b: func() CartLine {
				line := base
				line.Colors = []string{"red"}
				return line
			}(),
			expected: false,
		},
		{
			name:     "given two bare lines for same product should match",
			a:        CartLine{ProductID: productId},
			b:        CartLine{ProductID: productId},
			expected: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, SameConfiguration(test.a, test.b))
			assert.Equal(t, test.expected, SameConfiguration(test.b, test.a))
		})
	}
}

func TestFindConfiguration(t *testing.T) {
	productId := uuid.New()
	first := CartLine{ProductID: productId, Variant: "a"}
	second := CartLine{ProductID: productId, Variant: "b"}
	cart := Cart{Lines: []CartLine{first, second}}

	assert.Equal(t, 0, cart.FindConfiguration(first))
	assert.Equal(t, 1, cart.FindConfiguration(second))
	assert.Equal(t, -1, cart.FindConfiguration(CartLine{ProductID: uuid.New()}))

	// FindLine is keyed by product only, several configurations of one
	// product resolve to the first line.
	assert.Equal(t, 0, cart.FindLine(productId))
}
