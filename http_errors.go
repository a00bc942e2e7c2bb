package blog

import (
	stderrors "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

const internalErrorMessage = "Internal Server Error"

// ErrorHandler renders errors as {"detail": message}. Rich errors keep their
// HTTP code, anything internal or unknown becomes a generic 500.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return func(c *fiber.Ctx, err error) error {
		var verr *ValidationError
		if stderrors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"detail": verr.Error(),
				"errors": verr.Fields,
			})
		}

		status, message := HTTPStatus(err)

		if status == fiber.StatusUnauthorized {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}

		return c.Status(status).JSON(fiber.Map{"detail": message})
	}
}

// HTTPStatus maps err to a status code and a client safe message
func HTTPStatus(err error) (int, string) {
	if err == nil {
		return fiber.StatusOK, ""
	}

	var fe *fiber.Error
	if stderrors.As(err, &fe) {
		return fe.Code, fe.Message
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) || richErr == nil {
		return fiber.StatusInternalServerError, internalErrorMessage
	}

	if richErr.Category == errors.CategoryInternal {
		return fiber.StatusInternalServerError, internalErrorMessage
	}

	code := richErr.Code
	if code == 0 {
		switch richErr.Category {
		case errors.CategoryNotFound:
			code = fiber.StatusNotFound
		case errors.CategoryAuth:
			code = fiber.StatusUnauthorized
		case errors.CategoryBadInput, errors.CategoryValidation:
			code = fiber.StatusBadRequest
		case errors.CategoryConflict:
			code = fiber.StatusConflict
		default:
			code = fiber.StatusInternalServerError
		}
	}

	if code >= fiber.StatusInternalServerError {
		return code, internalErrorMessage
	}

	return code, richErr.Message
}

// ValidationError carries per field payload errors, rendered with status 422
type ValidationError struct {
	Fields validation.Errors
}

func (e *ValidationError) Error() string {
	return "Validation failed"
}

// NewValidationError wraps ozzo validation errors. Any other error is returned as is.
func NewValidationError(err error) error {
	var verrs validation.Errors
	if stderrors.As(err, &verrs) {
		return &ValidationError{Fields: verrs}
	}
	return err
}

// ErrMalformedBody is returned when the request body cannot be decoded
var ErrMalformedBody = fiber.NewError(fiber.StatusUnprocessableEntity, "Malformed request body")

// ErrInvalidID is returned when a path id is not an integer
var ErrInvalidID = fiber.NewError(fiber.StatusUnprocessableEntity, "Invalid id")
