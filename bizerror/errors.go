package bizerror

import (
	"errors"
	"net/http"
)

var ErrUnauthenticated = errors.New("unauthenticated")
var ErrForbidden = errors.New("forbidden")
var ErrInvalidPassword = errors.New("invalid password")

// ErrEmptyRejectReason is returned when a rejection is attempted without a
// non-blank reason. The reason becomes the builder's rework instruction, so
// it is enforced inside the operation, not only at the UI.
var ErrEmptyRejectReason = errors.New("reject reason is required")

// ErrInvalidStatus is returned when a transition finds the work order in a
// status its WHERE-clause guard does not accept.
var ErrInvalidStatus = errors.New("work order status does not allow this transition")

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
