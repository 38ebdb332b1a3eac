package services

import (
	"errors"
	"fmt"
)

// ErrorKind identifies which member of the client's error taxonomy a [TidalError] belongs to.
type ErrorKind int

const (
	KindAccessToken       ErrorKind = iota + 1 // no access token at construction
	KindOptions                                // no user id at construction
	KindMissingParameters                      // a required call argument is absent or empty
	KindTooManyTracks                          // more than [MaxTracksPerAdd] track ids in one call
	KindRequest                                // the remote service or transport failed
)

func (k ErrorKind) String() string {
	switch k {
	case KindAccessToken:
		return "AccessTokenError"
	case KindOptions:
		return "OptionsError"
	case KindMissingParameters:
		return "MissingParametersError"
	case KindTooManyTracks:
		return "TooManyTracksError"
	case KindRequest:
		return "TidalRequestError"
	default:
		return "UnknownError"
	}
}

// Sentinel errors for errors.Is() checks, one per [ErrorKind].
var (
	ErrAccessToken       = errors.New("access token error")
	ErrOptions           = errors.New("options error")
	ErrMissingParameters = errors.New("missing parameters")
	ErrTooManyTracks     = errors.New("too many tracks")
	ErrTidalRequest      = errors.New("tidal request failed")
)

// TidalError is returned by every operation of [TidalService].
//
// Status and SubStatus are only populated for [KindRequest]. Err holds the underlying transport
// failure when no HTTP response was received.
type TidalError struct {
	Kind      ErrorKind
	Message   string
	Status    int
	SubStatus string
	Err       error
}

func (e *TidalError) Error() string {
	if e.Kind != KindRequest {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	switch {
	case e.Status == 0:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.SubStatus != "":
		return fmt.Sprintf("%s: status %d (substatus %s): %s", e.Kind, e.Status, e.SubStatus, e.Message)
	default:
		return fmt.Sprintf("%s: status %d: %s", e.Kind, e.Status, e.Message)
	}
}

// Unwrap returns the underlying transport error, if any.
func (e *TidalError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind. A *TidalError target matches only when
// [TidalError.Equal] holds, so use the sentinels to test for a kind.
func (e *TidalError) Is(target error) bool {
	if t, ok := target.(*TidalError); ok {
		return e.Equal(t)
	}
	return target == e.Kind.sentinel()
}

// Equal reports whether both errors have the same kind and fields.
func (e *TidalError) Equal(other *TidalError) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Kind == other.Kind &&
		e.Message == other.Message &&
		e.Status == other.Status &&
		e.SubStatus == other.SubStatus &&
		errors.Is(e.Err, other.Err)
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindAccessToken:
		return ErrAccessToken
	case KindOptions:
		return ErrOptions
	case KindMissingParameters:
		return ErrMissingParameters
	case KindTooManyTracks:
		return ErrTooManyTracks
	case KindRequest:
		return ErrTidalRequest
	default:
		return nil
	}
}

func NewAccessTokenError(message string) *TidalError {
	return &TidalError{Kind: KindAccessToken, Message: message}
}

func NewOptionsError(message string) *TidalError {
	return &TidalError{Kind: KindOptions, Message: message}
}

func NewMissingParametersError(message string) *TidalError {
	return &TidalError{Kind: KindMissingParameters, Message: message}
}

func NewTooManyTracksError(message string) *TidalError {
	return &TidalError{Kind: KindTooManyTracks, Message: message}
}

// NewRequestError builds a TidalRequestError from a failed HTTP response.
func NewRequestError(message string, status int, subStatus string) *TidalError {
	return &TidalError{Kind: KindRequest, Message: message, Status: status, SubStatus: subStatus}
}

// KindOf returns the [ErrorKind] of err, or 0 when err is not a [TidalError].
func KindOf(err error) ErrorKind {
	var te *TidalError
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}
