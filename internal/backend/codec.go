package backend

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/merchpoint/poscart/internal/domain/catalog"
	"github.com/merchpoint/poscart/internal/domain/order"
)

// decodeCatalog parses the GET /api/products body:
//
//	{"products": [...], "extras": [...], "sauces": [...], "paymentMethods": [...]}
//
// Unknown fields are skipped. Monetary values arrive as JSON numbers (or
// numeric strings) and are parsed into decimals without a float round-trip.
func decodeCatalog(body []byte) (*catalog.Snapshot, error) {
	snap := &catalog.Snapshot{}
	d := jx.DecodeBytes(body)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				p, err := decodeProduct(d)
				if err != nil {
					return err
				}
				snap.Products = append(snap.Products, p)
				return nil
			})
		case "extras":
			return d.Arr(func(d *jx.Decoder) error {
				var e catalog.Extra
				err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "id":
						e.ID, err = d.Int64()
					case "name":
						e.Name, err = d.Str()
					case "price":
						e.Price, err = decodeDecimal(d)
					default:
						err = d.Skip()
					}
					return err
				})
				if err != nil {
					return err
				}
				snap.Extras = append(snap.Extras, e)
				return nil
			})
		case "sauces":
			return d.Arr(func(d *jx.Decoder) error {
				var s catalog.Sauce
				err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "id":
						s.ID, err = d.Int64()
					case "name":
						s.Name, err = d.Str()
					case "image":
						s.Image, err = decodeOptStr(d)
					default:
						err = d.Skip()
					}
					return err
				})
				if err != nil {
					return err
				}
				snap.Sauces = append(snap.Sauces, s)
				return nil
			})
		case "paymentMethods":
			return d.Arr(func(d *jx.Decoder) error {
				var pm catalog.PaymentMethod
				err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "id":
						pm.ID, err = d.Int64()
					case "name":
						pm.Name, err = d.Str()
					default:
						err = d.Skip()
					}
					return err
				})
				if err != nil {
					return err
				}
				snap.PaymentMethods = append(snap.PaymentMethods, pm)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func decodeProduct(d *jx.Decoder) (catalog.Product, error) {
	var p catalog.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int64()
		case "name":
			p.Name, err = d.Str()
		case "price":
			p.BasePrice, err = decodeDecimal(d)
		case "idCategory":
			p.CategoryID, err = d.Int64()
		case "image":
			p.Image, err = decodeOptStr(d)
		case "variants":
			err = d.Arr(func(d *jx.Decoder) error {
				var v catalog.Variant
				err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "id":
						v.ID, err = d.Int64()
					case "name":
						v.Label, err = d.Str()
					case "price":
						v.Price, err = decodeDecimal(d)
					default:
						err = d.Skip()
					}
					return err
				})
				if err != nil {
					return err
				}
				p.Variants = append(p.Variants, v)
				return nil
			})
		case "flavors":
			err = d.Arr(func(d *jx.Decoder) error {
				var f catalog.Flavor
				err := d.Obj(func(d *jx.Decoder, key string) error {
					var err error
					switch key {
					case "id":
						f.ID, err = d.Int64()
					case "name":
						f.Label, err = d.Str()
					default:
						err = d.Skip()
					}
					return err
				})
				if err != nil {
					return err
				}
				p.Flavors = append(p.Flavors, f)
				return nil
			})
		default:
			err = d.Skip()
		}
		return err
	})
	return p, err
}

// decodeDecimal accepts a JSON number or a numeric string.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	case jx.Null:
		return decimal.Zero, d.Null()
	default:
		return decimal.Zero, errors.New("expected number")
	}
}

// decodeOptStr accepts a string or null.
func decodeOptStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// encodeOrder renders doc as the POST /api/orders body:
//
//	{"idPaymentMethod": ..., "clientName": ..., "comment": ..., "items": [...]}
//
// Variant and flavor ids are emitted as 0 when the product has none.
func encodeOrder(doc order.Document) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("idPaymentMethod", func(e *jx.Encoder) { e.Int64(doc.PaymentMethodID) })
		e.Field("clientName", func(e *jx.Encoder) { e.Str(doc.ClientName) })
		e.Field("comment", func(e *jx.Encoder) { e.Str(doc.Comment) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, line := range doc.Lines {
					encodeLine(e, line)
				}
			})
		})
	})
	return e.Bytes()
}

func encodeLine(e *jx.Encoder, line order.LineDTO) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("idProduct", func(e *jx.Encoder) { e.Int64(line.ProductID) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(line.Quantity) })
		e.Field("idVariant", func(e *jx.Encoder) { e.Int64(line.VariantID) })
		e.Field("idFlavor", func(e *jx.Encoder) { e.Int64(line.FlavorID) })
		e.Field("extras", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, x := range line.Extras {
					e.Obj(func(e *jx.Encoder) {
						e.Field("idExtra", func(e *jx.Encoder) { e.Int64(x.ExtraID) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(x.Quantity) })
					})
				}
			})
		})
		e.Field("sauces", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, id := range line.SauceIDs {
					e.Obj(func(e *jx.Encoder) {
						e.Field("idSauce", func(e *jx.Encoder) { e.Int64(id) })
					})
				}
			})
		})
		e.Field("comment", func(e *jx.Encoder) { e.Str(line.Comment) })
	})
}

// decodeOrderID scans the POST /api/orders response for the idOrder field.
// found is false when the body is a valid JSON object without one.
func decodeOrderID(body []byte) (id int64, found bool, err error) {
	d := jx.DecodeBytes(body)
	err = d.Obj(func(d *jx.Decoder, key string) error {
		if key != "idOrder" {
			return d.Skip()
		}
		v, err := d.Int64()
		if err != nil {
			return err
		}
		id, found = v, true
		return nil
	})
	return id, found, err
}
