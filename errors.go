package tally

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("tally: not found")
	ErrAlreadyExists = errors.New("tally: already exists")
	ErrInvalidInput  = errors.New("tally: invalid input")

	// Lookup errors. Each wraps ErrNotFound.
	ErrProductNotFound        = notFound("product")
	ErrCustomerNotFound       = notFound("customer")
	ErrSupplierNotFound       = notFound("supplier")
	ErrSaleNotFound           = notFound("sale")
	ErrPurchaseNotFound       = notFound("purchase")
	ErrInvoiceNotFound        = notFound("invoice")
	ErrCourseNotFound         = notFound("course")
	ErrBatchNotFound          = notFound("batch")
	ErrStudentNotFound        = notFound("student")
	ErrAdmissionNotFound      = notFound("admission")
	ErrEnrollmentNotFound     = notFound("enrollment")
	ErrPaymentNotFound        = notFound("course payment")
	ErrVoucherNotFound        = notFound("payment voucher")
	ErrTicketNotFound         = notFound("service ticket")
	ErrTechnicianNotFound     = notFound("technician")
	ErrServiceInvoiceNotFound = notFound("service invoice")
	ErrSessionNotFound        = notFound("attendance session")

	// Inventory errors
	ErrInsufficientStock = errors.New("tally: insufficient stock")
	ErrAlreadyReceived   = errors.New("tally: purchase already received")

	// Course errors
	ErrDuplicateActiveEnrollment = errors.New("tally: student already has an active enrollment in this course")
	ErrBatchFull                 = errors.New("tally: batch is full")
	ErrEnrollmentHasPayments     = errors.New("tally: enrollment has recorded payments")
	ErrDuplicateVoucherNumber    = errors.New("tally: voucher number already used")
	ErrOverpayment               = errors.New("tally: payment exceeds remaining amount")

	// Backup errors
	ErrInvalidImportFormat = errors.New("tally: invalid import format")

	// Store errors
	ErrStoreClosed     = errors.New("tally: store is closed")
	ErrMigrationFailed = errors.New("tally: migration failed")
)

func notFound(what string) error {
	return fmt.Errorf("tally: %s not found: %w", what, ErrNotFound)
}

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("tally: validation failed for %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "tally: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("tally: %d errors occurred: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the wrapped errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if the error reports a clash with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrDuplicateActiveEnrollment) ||
		errors.Is(err, ErrDuplicateVoucherNumber) ||
		errors.Is(err, ErrEnrollmentHasPayments) ||
		errors.Is(err, ErrAlreadyReceived) ||
		errors.Is(err, ErrBatchFull) ||
		errors.Is(err, ErrInsufficientStock)
}

// IsInvalid returns true if the error reports bad caller input.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidImportFormat) ||
		errors.Is(err, ErrOverpayment)
}

// validationErrors converts validator output into a MultiError of
// ValidationError values. Other errors are returned unchanged.
func validationErrors(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var multi MultiError
	for _, fe := range verrs {
		multi.Add(ValidationError{
			Field:   fe.Namespace(),
			Message: describeTag(fe),
		})
	}
	return multi
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "email":
		return "must be a valid email address"
	case "dive":
		return "contains an invalid element"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
