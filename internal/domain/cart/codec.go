package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/swift-grocers/internal/jsonx"
)

// Encode serializes line items as a JSON array using the storefront's field
// names.
func Encode(items []LineItem) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		jsonx.Field(&e, "id", it.ID)
		jsonx.Field(&e, "name", it.Name)
		jsonx.IntField(&e, "price", it.Price)
		jsonx.Field(&e, "image", it.Image)
		jsonx.Field(&e, "category", it.Category)
		jsonx.IntField(&e, "quantity", int64(it.Quantity))
		if !it.AddedAt.IsZero() {
			jsonx.TimeField(&e, "addedAt", it.AddedAt)
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// Decode parses a document written by Encode. Empty input and null decode as
// an empty collection; the result always satisfies the cart invariants.
func Decode(data []byte) ([]LineItem, error) {
	if jsonx.Empty(data) {
		return nil, nil
	}

	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		return nil, nil
	}

	var items []LineItem
	if err := d.Arr(func(d *jx.Decoder) error {
		var it LineItem
		if err := decodeLineItem(d, &it); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}

	return normalize(items), nil
}

func decodeLineItem(d *jx.Decoder, it *LineItem) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			it.ID, err = decodeID(d)
		case "name":
			it.Name, err = jsonx.Str(d)
		case "price":
			it.Price, err = jsonx.Int64(d)
		case "image":
			it.Image, err = jsonx.Str(d)
		case "category":
			it.Category, err = jsonx.Str(d)
		case "quantity":
			it.Quantity, err = jsonx.Int(d)
		case "addedAt":
			it.AddedAt, err = jsonx.Time(d)
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
}

// decodeID accepts both string and numeric product IDs.
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
