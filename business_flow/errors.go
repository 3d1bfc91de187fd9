// Package businessflow contains the participation, tester admission and adoption workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Error kinds. Every business error wraps exactly one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate")
	ErrCapacity     = errors.New("capacity exceeded")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

var (
	// Identity
	ErrUserRequired       = newKindError(ErrUnauthorized, "authenticated user is required")
	ErrAdvertiserRequired = newKindError(ErrUnauthorized, "authenticated advertiser is required")
	ErrNotAdOwner         = newKindError(ErrUnauthorized, "ad belongs to another advertiser")

	// Input
	ErrInvalidContent       = newKindError(ErrValidation, "content is required")
	ErrContentTooLong       = newKindError(ErrValidation, "content is too long")
	ErrInvalidParent        = newKindError(ErrValidation, "parent comment does not belong to this ad")
	ErrInvalidMediaURL      = newKindError(ErrValidation, "media url is required")
	ErrInvalidUGCType       = newKindError(ErrValidation, "ugc type must be image or video")
	ErrNoAnswers            = newKindError(ErrValidation, "at least one answer is required")
	ErrInvalidAnswer        = newKindError(ErrValidation, "answer must reference a question and carry text or options")
	ErrInvalidQuestion      = newKindError(ErrValidation, "question does not belong to this survey")
	ErrInvalidSourceType    = newKindError(ErrValidation, "source type must be comment or ugc")
	ErrTooManyMediaURLs     = newKindError(ErrValidation, "too many media urls")
	ErrUnsupportedMediaType = newKindError(ErrValidation, "unsupported media file type")
	ErrInvalidCursor        = newKindError(ErrValidation, "invalid cursor")
	ErrInvalidStatus        = newKindError(ErrValidation, "unknown status")

	// Lookup
	ErrAdNotFound               = newKindError(ErrNotFound, "ad not found")
	ErrParticipationUnavailable = newKindError(ErrNotFound, "participation is not available for this ad")
	ErrSurveyNotFound           = newKindError(ErrNotFound, "no active survey for this ad")
	ErrNoOpenCampaign           = newKindError(ErrNotFound, "no open tester campaign for this ad")
	ErrCampaignNotFound         = newKindError(ErrNotFound, "tester campaign not found")
	ErrApplicantNotFound        = newKindError(ErrNotFound, "applicant not found")
	ErrNoSelectedApplication    = newKindError(ErrNotFound, "no selected application")
	ErrCommentNotFound          = newKindError(ErrNotFound, "comment not found")
	ErrUGCNotFound              = newKindError(ErrNotFound, "ugc not found")

	// State
	ErrAlreadyApplied          = newKindError(ErrDuplicate, "already applied to this campaign")
	ErrCampaignFull            = newKindError(ErrCapacity, "tester campaign is full")
	ErrAlreadyAdopted          = newKindError(ErrConflict, "already adopted")
	ErrInvalidStatusTransition = newKindError(ErrConflict, "status does not allow this transition")
	ErrApplicantNotPending     = newKindError(ErrConflict, "applicant is not pending")
	ErrSourceNotAdopted        = newKindError(ErrConflict, "source is not adopted")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

func IsCapacity(err error) bool {
	return errors.Is(err, ErrCapacity)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsNotAdOwner(err error) bool {
	return errors.Is(err, ErrNotAdOwner)
}

// ErrorCode returns the business code carried by err, empty when there is none
func ErrorCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
