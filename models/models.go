package models

// All lists every table, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Product{},
		&ProductImage{},
		&ProductVariant{},
		&Cart{},
		&CartItem{},
		&Voucher{},
		&Order{},
		&OrderItem{},
		&OrderAddress{},
		&Payment{},
		&PaymentTransaction{},
	}
}
