package pkg

import (
	"encoding/json"
	"errors"
)

// Well-known response codes. Every other code is caller-defined; the domain
// package defines the codes used for business errors.
const (
	CodeSuccess          = "00"
	CodeValidationFailed = "01"
)

// DefaultSuccessDescription is used when a success result is built without
// an explicit description.
const DefaultSuccessDescription = "success"

// ErrInvalidState is returned by DataResult.Data on a failure result.
var ErrInvalidState = errors.New("pkg: result carries no data")

// Result is the outcome of an operation without a payload.
// The zero Result is not valid; use NewSuccessResult or NewErrorResult.
type Result struct {
	code        string
	description string
}

// NewSuccessResult returns a success result. An empty description is replaced
// by DefaultSuccessDescription; the code is always CodeSuccess.
func NewSuccessResult(description string) Result {
	if description == "" {
		description = DefaultSuccessDescription
	}
	return Result{code: CodeSuccess, description: description}
}

// NewErrorResult returns a failure result. It panics if code or description
// is empty or if code is CodeSuccess.
func NewErrorResult(code, description string) Result {
	mustErrorArgs(code, description)
	return Result{code: code, description: description}
}

// IsSuccess reports whether the result carries CodeSuccess.
func (r Result) IsSuccess() bool { return r.code == CodeSuccess }

// Code returns the response code.
func (r Result) Code() string { return r.code }

// Description returns the human-readable description.
func (r Result) Description() string { return r.description }

type resultJSON struct {
	ResponseCode        string `json:"responseCode"`
	ResponseDescription string `json:"responseDescription"`
}

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{ResponseCode: r.code, ResponseDescription: r.description})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.code = raw.ResponseCode
	r.description = raw.ResponseDescription
	return nil
}

// DataResult is either a success carrying a payload of type T or a failure
// carrying only a code and description.
type DataResult[T any] struct {
	Result
	data T
}

// NewSuccessDataResult returns a success result carrying data.
func NewSuccessDataResult[T any](data T, description string) DataResult[T] {
	return DataResult[T]{Result: NewSuccessResult(description), data: data}
}

// NewErrorDataResult returns a failure result. Failures never carry a payload.
// It panics under the same conditions as NewErrorResult.
func NewErrorDataResult[T any](code, description string) DataResult[T] {
	return DataResult[T]{Result: NewErrorResult(code, description)}
}

// Data returns the payload of a success result. On a failure it returns the
// zero T and ErrInvalidState.
func (r DataResult[T]) Data() (T, error) {
	if !r.IsSuccess() {
		var zero T
		return zero, ErrInvalidState
	}
	return r.data, nil
}

type dataResultJSON[T any] struct {
	ResponseCode        string `json:"responseCode"`
	ResponseDescription string `json:"responseDescription"`
	Data                *T     `json:"data"`
}

// MarshalJSON implements json.Marshaler. Failures encode data as null.
func (r DataResult[T]) MarshalJSON() ([]byte, error) {
	out := dataResultJSON[T]{ResponseCode: r.code, ResponseDescription: r.description}
	if r.IsSuccess() {
		out.Data = &r.data
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Data is dropped for failures.
func (r *DataResult[T]) UnmarshalJSON(data []byte) error {
	var raw dataResultJSON[T]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.code = raw.ResponseCode
	r.description = raw.ResponseDescription
	var zero T
	r.data = zero
	if r.IsSuccess() && raw.Data != nil {
		r.data = *raw.Data
	}
	return nil
}

func mustErrorArgs(code, description string) {
	if code == "" {
		panic("pkg: error result requires a code")
	}
	if code == CodeSuccess {
		panic("pkg: error result cannot use the success code")
	}
	if description == "" {
		panic("pkg: error result requires a description")
	}
}
