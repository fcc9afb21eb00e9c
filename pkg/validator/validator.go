package validator

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
	ValidateField(field string, value interface{}, rules ...string) error
}

// FieldError is a single failed rule, named by the field's json tag.
type FieldError struct {
	Field string
	Rule  string
	Param string
}

func (e FieldError) Error() string {
	switch e.Rule {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field, e.Param)
	case "public_ip":
		return fmt.Sprintf("%s must be a routable IP address", e.Field)
	default:
		return fmt.Sprintf("%s failed %s validation", e.Field, e.Rule)
	}
}

// Errors collects every failed field of one Validate call.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

type validate struct {
	v *validator.Validate
}

// New returns a Validator backed by go-playground/validator with the
// dashboard's custom rules registered.
func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// registration only fails on an empty tag
	_ = v.RegisterValidation("public_ip", isPublicIP)
	return &validate{v: v}
}

func (v *validate) Validate(obj interface{}) error {
	return translate(v.v.Struct(obj), "")
}

func (v *validate) ValidateField(field string, value interface{}, rules ...string) error {
	return translate(v.v.Var(value, strings.Join(rules, ",")), field)
}

// Engine exposes the underlying validator so gin's binding can share
// the same custom rules.
func Engine(v Validator) *validator.Validate {
	if vv, ok := v.(*validate); ok {
		return vv.v
	}
	return nil
}

// RegisterRules installs the dashboard's custom rules on an external
// validator such as gin's default binding engine.
func RegisterRules(v *validator.Validate) error {
	return v.RegisterValidation("public_ip", isPublicIP)
}

func translate(err error, field string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if field != "" {
			name = field
		}
		out = append(out, FieldError{Field: name, Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

func isPublicIP(fl validator.FieldLevel) bool {
	ip := net.ParseIP(fl.Field().String())
	if ip == nil {
		return false
	}
	return !(ip.IsLoopback() || ip.IsUnspecified() || ip.IsMulticast() || ip.IsLinkLocalUnicast())
}
