package payments

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decimal literal as it may appear in JSON or in a numeric string. The
// exponent is capped so a hostile literal cannot blow up big.Rat.
var amountPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d{1,2})?$`)

// ParseRequest extracts and checks the payment fields from a raw request body.
// The body may be a JSON object or a JSON string holding one; anything that
// cannot be parsed is treated as an empty object.
func ParseRequest(body []byte) (PaymentRequest, error) {
	fields := decodeBody(body)

	paise, err := amountField(fields["amount"])
	if err != nil {
		return PaymentRequest{}, &ValidationError{Err: err}
	}

	req := PaymentRequest{
		AmountPaise: paise,
		Name:        textField(fields["name"]),
		Phone:       textField(fields["phone"]),
		Email:       textField(fields["email"]),
		City:        textField(fields["city"]),
		Pincode:     textField(fields["pincode"]),
	}

	if err := validate.Struct(req); err != nil {
		return PaymentRequest{}, &ValidationError{Err: fieldError(err)}
	}
	return req, nil
}

// fieldError shortens validator output to a message the storefront can show.
func fieldError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	if fe.Tag() == "max" {
		return fmt.Errorf("%s too long", field)
	}
	return fmt.Errorf("%s is invalid", field)
}

func decodeBody(body []byte) map[string]any {
	v, err := decodeJSON(body)
	if err != nil {
		return map[string]any{}
	}
	if s, ok := v.(string); ok {
		if v, err = decodeJSON([]byte(s)); err != nil {
			return map[string]any{}
		}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// the body must hold exactly one value
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}

func amountField(v any) (int64, error) {
	var literal string
	switch t := v.(type) {
	case nil:
		return 0, ErrMissingAmount
	case bool:
		if !t {
			return 0, ErrMissingAmount
		}
		return 0, errors.New("amount must be a number")
	case json.Number:
		literal = t.String()
	case string:
		literal = strings.TrimSpace(t)
		if literal == "" {
			return 0, ErrMissingAmount
		}
	default:
		return 0, errors.New("amount must be a number")
	}
	return ToPaise(literal)
}

// ToPaise converts a decimal amount in rupees to paise. The literal is
// multiplied by 100 exactly and rounded half away from zero, so 10.005
// becomes 1001 and 199.5 becomes 19950.
func ToPaise(literal string) (int64, error) {
	if !amountPattern.MatchString(literal) {
		return 0, fmt.Errorf("amount %q is not a number", literal)
	}
	r, ok := new(big.Rat).SetString(literal)
	if !ok {
		return 0, fmt.Errorf("amount %q is not a number", literal)
	}
	switch r.Sign() {
	case 0:
		return 0, ErrMissingAmount
	case -1:
		return 0, fmt.Errorf("amount %q must be positive", literal)
	}

	r.Mul(r, big.NewRat(100, 1))
	r.Add(r, big.NewRat(1, 2))
	paise := new(big.Int).Quo(r.Num(), r.Denom())

	if !paise.IsInt64() {
		return 0, fmt.Errorf("amount %q is too large", literal)
	}
	if paise.Sign() == 0 {
		return 0, fmt.Errorf("amount %q is less than one paisa", literal)
	}
	return paise.Int64(), nil
}

func textField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
