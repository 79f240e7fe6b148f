package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"connectrpc.com/connect"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"github.com/at-ishikawa/revisit/internal/repetition"
)

const (
	errorDomain            = "revisit"
	reasonAlreadyScheduled = "ALREADY_SCHEDULED"
)

// toConnectError maps scheduler errors to Connect codes. Errors that are
// already Connect errors pass through unchanged.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, repetition.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, repetition.ErrAlreadyExists):
		alreadyErr := connect.NewError(connect.CodeAlreadyExists, err)
		if detail, detailErr := connect.NewErrorDetail(&errdetails.ErrorInfo{
			Reason: reasonAlreadyScheduled,
			Domain: errorDomain,
		}); detailErr == nil {
			alreadyErr.AddDetail(detail)
		}
		return alreadyErr
	case errors.Is(err, repetition.ErrUnauthorized):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, repetition.ErrInvalidArgument):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newRequestValidator() (*requestValidator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: validate, translator: trans}, nil
}

// validateRequest returns an invalid argument error with a BadRequest detail
// listing every violated field.
func (v *requestValidator) validateRequest(msg any) *connect.Error {
	err := v.validate.Struct(msg)
	if err == nil {
		return nil
	}

	connectErr := connect.NewError(connect.CodeInvalidArgument, err)
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		messages := make([]string, 0, len(validationErrs))
		fieldViolations := make([]*errdetails.BadRequest_FieldViolation, 0, len(validationErrs))
		for _, fe := range validationErrs {
			description := fe.Translate(v.translator)
			messages = append(messages, description)
			fieldViolations = append(fieldViolations, &errdetails.BadRequest_FieldViolation{
				Field:       fieldPath(fe.Namespace()),
				Description: description,
			})
		}
		connectErr = connect.NewError(connect.CodeInvalidArgument, errors.New(strings.Join(messages, ", ")))
		if detail, detailErr := connect.NewErrorDetail(&errdetails.BadRequest{
			FieldViolations: fieldViolations,
		}); detailErr == nil {
			connectErr.AddDetail(detail)
		}
	}
	return connectErr
}

// fieldPath drops the message type name from a validator namespace.
func fieldPath(namespace string) string {
	if _, path, ok := strings.Cut(namespace, "."); ok {
		return path
	}
	return namespace
}
