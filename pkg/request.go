package pkg

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const DefaultSourcePath = "logo.png"

type Request struct {
	SourcePath string          `json:"source_path" validate:"required"`
	OutputDir  string          `json:"output_dir"`
	Filter     string          `json:"filter"`
	Workers    int             `json:"workers" validate:"gte=0"` // 0 and 1 run sequentially
	Sizes      SizeTable       `json:"sizes" validate:"required,min=1,unique=Label,dive"`
	Publish    *PublishOptions `json:"publish,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (req *Request) Validate() error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Request.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required field", field)
	case "min":
		return fmt.Sprintf("at least %s size required", fe.Param())
	case "unique":
		return fmt.Sprintf("%s must have unique %s values", field, strings.ToLower(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s %q is not a density bucket, use one of: %s", field, fe.Value(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
