package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors aggregates every violated rule of a payload.
type Errors struct {
	Messages []string
}

func (e *Errors) Error() string {
	return "validation errors: " + strings.Join(e.Messages, "; ")
}

type SignupInput struct {
	Name     string `json:"name"     validate:"required,min=3,max=30"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ProductFields is the raw, still untyped product payload.
type ProductFields struct {
	Name        string
	Price       string
	Description string
	Stock       string
	Category    string
}

type ProductInput struct {
	Name        string  `json:"name"        validate:"required,max=150"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price"       validate:"min=0"`
	Stock       int     `json:"stock"       validate:"min=0"`
	Category    string  `json:"category"    validate:"required"`
}

var messages = map[string]string{
	"name.required":         "User name is required.",
	"name.min":              "User name must be at least 3 characters.",
	"name.max":              "User name must not exceed 30 characters.",
	"email.required":        "Email is required.",
	"email.email":           "Please provide a valid email address.",
	"password.required":     "Password is required.",
	"password.min":          "Password must be at least 8 characters long.",
	"product.name.required": "Product name is required.",
	"product.name.max":      "Product name must not exceed 150 characters.",
	"description.required":  "Product description is required.",
	"price.min":             "Price must be a non-negative value.",
	"stock.min":             "Stock must be a non-negative value.",
	"category.required":     "Category is required.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func ValidateSignup(in SignupInput) error {
	return collect(validate.Struct(in), "")
}

func ValidateLogin(in LoginInput) error {
	return collect(validate.Struct(in), "")
}

// ParseProduct converts the raw fields and validates the result. Price is
// rounded to two decimals.
func ParseProduct(f ProductFields) (*ProductInput, error) {
	var msgs []string

	in := &ProductInput{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Category:    strings.TrimSpace(f.Category),
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		msgs = append(msgs, "Price must be a valid number.")
	} else {
		in.Price = math.Round(price*100) / 100
	}

	stock, err := strconv.Atoi(strings.TrimSpace(f.Stock))
	if err != nil {
		msgs = append(msgs, "Stock must be a valid number.")
	} else {
		in.Stock = stock
	}

	if err := collect(validate.Struct(in), "product."); err != nil {
		var verr *Errors
		if errors.As(err, &verr) {
			msgs = append(msgs, verr.Messages...)
		} else {
			return nil, err
		}
	}

	if len(msgs) > 0 {
		return nil, &Errors{Messages: msgs}
	}
	return in, nil
}

func collect(err error, prefix string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &Errors{Messages: make([]string, 0, len(verrs))}
	for _, fe := range verrs {
		out.Messages = append(out.Messages, message(prefix, fe))
	}
	return out
}

func message(prefix string, fe validator.FieldError) string {
	key := fe.Field() + "." + fe.Tag()
	if prefix != "" {
		if m, ok := messages[prefix+key]; ok {
			return m
		}
	}
	if m, ok := messages[key]; ok {
		return m
	}
	return fmt.Sprintf("%s failed on the %q rule.", fe.Field(), fe.Tag())
}
