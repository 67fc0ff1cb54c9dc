package order

import "time"

// SampleOrders returns the demo order history shown to new storefront users.
// Amounts are consistent with the checkout rules: delivery is free above
// 5000 and costs 500 otherwise.
func SampleOrders() []Order {
	const img = "https://images.unsplash.com/"
	at := func(s string) time.Time {
		t, err := time.Parse("2006-01-02T15:04", s)
		if err != nil {
			panic(err)
		}
		return t
	}
	day := func(s string) *time.Time {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			panic(err)
		}
		return &t
	}

	cereal := Item{ProductID: "prod-7", Name: "Breakfast Cereal Box", Quantity: 2, Price: 2400, Image: img + "photo-1599599810769-bcde5a160d32?w=300"}

	return []Order{
		{
			ID:        "ORD-2024-001234",
			CreatedAt: at("2024-11-10T14:30"),
			Status:    StatusDelivered,
			Items: []Item{
				{ProductID: "prod-1", Name: "Fresh Organic Tomatoes", Quantity: 3, Price: 850, Image: img + "photo-1546094096-0df4bcaaa337?w=300"},
				{ProductID: "prod-2", Name: "Premium Rice (5kg)", Quantity: 2, Price: 3500, Image: img + "photo-1586201375761-83865001e31c?w=300"},
			},
			DeliveryAddress:    "123 Main Street, Victoria Island, Lagos",
			PaymentMethodLabel: "Card ending in 4242",
			Subtotal:           9550,
			Total:              9550,
			Tracking:           "TRK-891234567",
			DeliveryDate:       day("2024-11-12"),
		},
		{
			ID:        "ORD-2024-001235",
			CreatedAt: at("2024-11-12T09:15"),
			Status:    StatusInTransit,
			Items: []Item{
				{ProductID: "prod-3", Name: "Fresh Milk (1L)", Quantity: 4, Price: 1200, Image: img + "photo-1563636619-e9143da7973b?w=300"},
				{ProductID: "prod-4", Name: "Whole Wheat Bread", Quantity: 2, Price: 650, Image: img + "photo-1509440159596-0249088772ff?w=300"},
			},
			DeliveryAddress:    "456 Park Avenue, Lekki Phase 1, Lagos",
			PaymentMethodLabel: "Card ending in 8888",
			Subtotal:           6100,
			Total:              6100,
			Tracking:           "TRK-891234568",
			EstimatedDelivery:  day("2024-11-14"),
		},
		{
			ID:        "ORD-2024-001236",
			CreatedAt: at("2024-11-13T16:45"),
			Status:    StatusProcessing,
			Items: []Item{
				{ProductID: "prod-5", Name: "Organic Chicken (1kg)", Quantity: 2, Price: 4500, Image: img + "photo-1607623814075-e51df1bdc82f?w=300"},
				{ProductID: "prod-6", Name: "Fresh Vegetables Bundle", Quantity: 1, Price: 3300, Image: img + "photo-1540420773420-3366772f4999?w=300"},
			},
			DeliveryAddress:    "789 Queens Drive, Ikeja GRA, Lagos",
			PaymentMethodLabel: "Cash on Delivery",
			Subtotal:           12300,
			Total:              12300,
			Tracking:           "TRK-891234569",
			EstimatedDelivery:  day("2024-11-15"),
		},
		{
			ID:                 "ORD-2024-001237",
			CreatedAt:          at("2024-10-28T11:20"),
			Status:             StatusReturned,
			Items:              []Item{cereal},
			DeliveryAddress:    "321 Riverside, Ikoyi, Lagos",
			PaymentMethodLabel: "Card ending in 5555",
			Subtotal:           4800,
			DeliveryFee:        500,
			Total:              5300,
			Tracking:           "TRK-891234570",
			ReturnRequested:    true,
			ReturnReason:       "Product damaged",
			ReturnDate:         day("2024-11-01"),
			ReturnItems:        []Item{cereal},
			RefundAmount:       4800,
			RefundStatus:       RefundProcessed,
		},
	}
}
