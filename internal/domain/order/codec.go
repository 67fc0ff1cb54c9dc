package order

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/swift-grocers/internal/jsonx"
)

// Encode serializes orders as a JSON array.
func Encode(orders []*Order) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, o := range orders {
		encodeOrder(&e, o)
	}
	e.ArrEnd()
	return e.Bytes()
}

func encodeOrder(e *jx.Encoder, o *Order) {
	e.ObjStart()
	jsonx.Field(e, "id", o.ID)
	jsonx.TimeField(e, "createdAt", o.CreatedAt)
	jsonx.Field(e, "status", string(o.Status))
	e.FieldStart("items")
	encodeItems(e, o.Items)
	jsonx.Field(e, "deliveryAddress", o.DeliveryAddress)
	jsonx.Field(e, "paymentMethod", o.PaymentMethodLabel)
	jsonx.IntField(e, "subtotal", o.Subtotal)
	jsonx.IntField(e, "discount", o.Discount)
	jsonx.IntField(e, "deliveryFee", o.DeliveryFee)
	jsonx.IntField(e, "total", o.Total)
	jsonx.FieldOmitEmpty(e, "couponCode", o.CouponCode)
	jsonx.FieldOmitEmpty(e, "tracking", o.Tracking)
	jsonx.OptTimeField(e, "estimatedDelivery", o.EstimatedDelivery)
	jsonx.OptTimeField(e, "deliveryDate", o.DeliveryDate)

	if o.ReturnRequested {
		e.FieldStart("returnRequested")
		e.Bool(true)
		jsonx.Field(e, "returnReason", o.ReturnReason)
		jsonx.OptTimeField(e, "returnDate", o.ReturnDate)
		e.FieldStart("returnItems")
		encodeItems(e, o.ReturnItems)
		jsonx.IntField(e, "refundAmount", o.RefundAmount)
		jsonx.Field(e, "refundStatus", string(o.RefundStatus))
	}
	e.ObjEnd()
}

func encodeItems(e *jx.Encoder, items []Item) {
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		jsonx.FieldOmitEmpty(e, "productId", it.ProductID)
		jsonx.Field(e, "name", it.Name)
		jsonx.IntField(e, "quantity", int64(it.Quantity))
		jsonx.IntField(e, "price", it.Price)
		jsonx.FieldOmitEmpty(e, "image", it.Image)
		e.ObjEnd()
	}
	e.ArrEnd()
}

// Decode parses an order list. Empty input and null decode as no orders.
//
// Documents written by the web storefront are accepted too: "date" stands in
// for "createdAt", dates may lack a time of day, and a refund or return date
// without returnRequested still marks the order as returned.
func Decode(data []byte) ([]*Order, error) {
	if jsonx.Empty(data) {
		return nil, nil
	}

	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		return nil, nil
	}

	var orders []*Order
	if err := d.Arr(func(d *jx.Decoder) error {
		o := new(Order)
		if err := decodeOrder(d, o); err != nil {
			return err
		}
		if o.RefundStatus != RefundNone || o.ReturnDate != nil {
			o.ReturnRequested = true
		}
		orders = append(orders, o)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}
	return orders, nil
}

func decodeOrder(d *jx.Decoder, o *Order) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			o.ID, err = jsonx.Str(d)
		case "createdAt", "date":
			o.CreatedAt, err = jsonx.Time(d)
		case "status":
			var s string
			if s, err = jsonx.Str(d); err == nil {
				o.Status, err = ParseStatus(s)
			}
		case "items":
			o.Items, err = decodeItems(d)
		case "deliveryAddress":
			o.DeliveryAddress, err = jsonx.Str(d)
		case "paymentMethod":
			o.PaymentMethodLabel, err = jsonx.Str(d)
		case "subtotal":
			o.Subtotal, err = jsonx.Int64(d)
		case "discount":
			o.Discount, err = jsonx.Int64(d)
		case "deliveryFee":
			o.DeliveryFee, err = jsonx.Int64(d)
		case "total":
			o.Total, err = jsonx.Int64(d)
		case "couponCode":
			o.CouponCode, err = jsonx.Str(d)
		case "tracking":
			o.Tracking, err = jsonx.Str(d)
		case "estimatedDelivery":
			o.EstimatedDelivery, err = jsonx.OptTime(d)
		case "deliveryDate":
			o.DeliveryDate, err = jsonx.OptTime(d)
		case "returnRequested":
			o.ReturnRequested, err = jsonx.Bool(d)
		case "returnReason":
			o.ReturnReason, err = jsonx.Str(d)
		case "returnDate":
			o.ReturnDate, err = jsonx.OptTime(d)
		case "returnItems":
			o.ReturnItems, err = decodeItems(d)
		case "refundAmount":
			o.RefundAmount, err = jsonx.Int64(d)
		case "refundStatus":
			var s string
			if s, err = jsonx.Str(d); err == nil {
				o.RefundStatus, err = ParseRefundStatus(s)
			}
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
}

func decodeItems(d *jx.Decoder) ([]Item, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}

	var items []Item
	err := d.Arr(func(d *jx.Decoder) error {
		var it Item
		if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
			var err error
			switch string(key) {
			case "productId", "id":
				it.ProductID, err = decodeID(d)
			case "name":
				it.Name, err = jsonx.Str(d)
			case "quantity":
				it.Quantity, err = jsonx.Int(d)
			case "price":
				it.Price, err = jsonx.Int64(d)
			case "image":
				it.Image, err = jsonx.Str(d)
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	return items, err
}

func decodeID(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Number {
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return string(n), nil
	}
	return jsonx.Str(d)
}
