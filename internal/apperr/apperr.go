package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is an expected, caller-recoverable outcome of a store or engine operation.
type Code string

const (
	WorkshopDoesNotExist     Code = "WORKSHOP_DOES_NOT_EXIST"
	NotActive                Code = "NOT_ACTIVE"
	NoPlaces                 Code = "NO_PLACES"
	TimeIsOver               Code = "TIME_IS_OVER"
	NotRegistrable           Code = "NOT_REGISTRABLE"
	AlreadyCheckedIn         Code = "ALREADY_CHECKED_IN"
	OverlappingWorkshops     Code = "OVERLAPPING_WORKSHOPS"
	CheckInDoesNotExist      Code = "CHECK_IN_DOES_NOT_EXIST"
	InvalidCapacityForUpdate Code = "INVALID_CAPACITY_FOR_UPDATE"
	ValidationError          Code = "ValidationError"
	Conflict                 Code = "CONFLICT"
)

// Status is the result of an operation that completed.
type Status string

const (
	Success Status = "SUCCESS"
	Created Status = "CREATED"
	Updated Status = "UPDATED"
	Deleted Status = "DELETED"
)

type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error carrying the same code, so sentinels work with errors.Is
// even when the message differs.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Validation(format string, args ...any) *Error {
	return &Error{Code: ValidationError, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrWorkshopDoesNotExist     = New(WorkshopDoesNotExist, "workshop does not exist")
	ErrNotActive                = New(NotActive, "workshop is not active")
	ErrNoPlaces                 = New(NoPlaces, "no places left")
	ErrTimeIsOver               = New(TimeIsOver, "workshop has already started")
	ErrNotRegistrable           = New(NotRegistrable, "workshop is not open for check-in")
	ErrAlreadyCheckedIn         = New(AlreadyCheckedIn, "already checked in")
	ErrOverlappingWorkshops     = New(OverlappingWorkshops, "overlaps with another checked-in workshop")
	ErrCheckInDoesNotExist      = New(CheckInDoesNotExist, "check-in does not exist")
	ErrInvalidCapacityForUpdate = New(InvalidCapacityForUpdate, "capacity is below the number of checked-in users")
	ErrConflict                 = New(Conflict, "concurrent update, retry the request")
)

// CodeOf reports the outcome code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// IsOutcome reports whether err is an expected outcome rather than an infrastructure failure.
func IsOutcome(err error) bool {
	_, ok := CodeOf(err)
	return ok
}

// HTTPStatus maps an outcome code to the response status used by the handlers.
func HTTPStatus(code Code) int {
	switch code {
	case WorkshopDoesNotExist, CheckInDoesNotExist:
		return http.StatusNotFound
	case NoPlaces, AlreadyCheckedIn, OverlappingWorkshops, InvalidCapacityForUpdate, Conflict:
		return http.StatusConflict
	case NotActive, TimeIsOver, NotRegistrable:
		return http.StatusUnprocessableEntity
	case ValidationError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
