package admin

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/orders-admin/internal/listedit"
	"github.com/ariefcatur/orders-admin/internal/orders"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && !d.IsNegative()
	})
	_ = v.RegisterValidation("pricemax", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		return err == nil && orders.ValidPrice(d)
	})
	_ = v.RegisterValidation("count", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n >= 0
	})
	_ = v.RegisterValidation("qty", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n >= 1
	})
	_ = v.RegisterValidation("qtymax", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
		return err == nil && n <= orders.MaxQuantity
	})
	return v
}

// check runs the field rules of a draft and returns messages keyed by form
// field name (items[0].quantity).
func check(draft any) listedit.FieldErrors {
	err := validate.Struct(draft)
	if err == nil {
		return nil
	}
	out := listedit.FieldErrors{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["_"] = "Form data is invalid."
		return out
	}
	for _, fe := range ve {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		out[key] = messageFor(fe.Field(), fe.Tag())
	}
	return out
}

func messageFor(field, tag string) string {
	switch {
	case field == "product_id":
		return "Select a product"
	case field == "quantity" && tag == "required":
		return "Enter quantity"
	}
	switch tag {
	case "required":
		return "This field is required"
	case "price":
		return "Enter a price of 0 or more"
	case "pricemax":
		return "Enter a price of at most " + orders.MaxPrice.StringFixed(2)
	case "count":
		return "Enter a whole number of 0 or more"
	case "qty":
		return "Quantity must be at least 1"
	case "qtymax":
		return "Quantity must be at most " + strconv.Itoa(orders.MaxQuantity)
	case "oneof":
		return "Select a valid value"
	default:
		return "Invalid value"
	}
}
