package domain

import (
	"errors"
	"math"
	"testing"
)

func TestTotal(t *testing.T) {
	t.Run("empty cart totals zero", func(t *testing.T) {
		got, err := Total([]CartItem{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})

	t.Run("sums unit price times quantity", func(t *testing.T) {
		items := []CartItem{
			{ProductID: "laptop", UnitPrice: 1200, Quantity: 3},
			{ProductID: "mouse", UnitPrice: 25, Quantity: 2},
		}
		got, err := Total(items)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 3650 {
			t.Errorf("expected 3650, got %d", got)
		}
	})

	t.Run("order items", func(t *testing.T) {
		items := []OrderItem{
			{ProductID: "laptop", UnitPrice: 1200, Quantity: 2},
			{ProductID: "mouse", UnitPrice: 25, Quantity: 1},
		}
		got, err := Total(items)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 2425 {
			t.Errorf("expected 2425, got %d", got)
		}
	})

	t.Run("largest quantity at a large price still fits", func(t *testing.T) {
		items := []OrderItem{{ProductID: "laptop", UnitPrice: 1_000_000_000, Quantity: MaxQuantity}}
		got, err := Total(items)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := int64(1_000_000_000) * MaxQuantity; got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	})

	overflows := []struct {
		name  string
		items []OrderItem
	}{
		{
			name:  "line amount overflows",
			items: []OrderItem{{ProductID: "laptop", UnitPrice: 1e12, Quantity: 1e7}},
		},
		{
			name: "running total overflows",
			items: []OrderItem{
				{ProductID: "a", UnitPrice: math.MaxInt64 / 2, Quantity: 1},
				{ProductID: "b", UnitPrice: math.MaxInt64 / 2, Quantity: 1},
				{ProductID: "c", UnitPrice: 2, Quantity: 1},
			},
		},
	}
	for _, tt := range overflows {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Total(tt.items)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got total %d err %v", got, err)
			}
		})
	}
}

func TestCart_Item(t *testing.T) {
	cart := &Cart{Items: []CartItem{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 2}}}

	item := cart.Item("b")
	if item == nil {
		t.Fatal("expected item b")
	}
	item.Quantity = 5
	if cart.Items[1].Quantity != 5 {
		t.Error("expected Item to return a pointer into the cart")
	}

	if cart.Item("missing") != nil {
		t.Error("expected nil for missing product")
	}
}

func TestProductPatch_Apply(t *testing.T) {
	name := "Gaming Laptop"
	price := int64(1500)
	product := &Product{Name: "Laptop", Description: "fast", Price: 1200, Stock: 50, Category: "Electronics"}

	ProductPatch{Name: &name, Price: &price}.Apply(product)

	if product.Name != "Gaming Laptop" {
		t.Errorf("expected name to change, got %s", product.Name)
	}
	if product.Price != 1500 {
		t.Errorf("expected price 1500, got %d", product.Price)
	}
	if product.Stock != 50 || product.Description != "fast" || product.Category != "Electronics" {
		t.Errorf("expected untouched fields to stay, got %+v", product)
	}
}
