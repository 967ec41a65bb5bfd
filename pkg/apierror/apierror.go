// Package apierror defines the status-coded error values rendered as JSON:API
// error objects.
//
// Every HTTP status from 400 to 599 that has a registered reason phrase is a
// Kind. Kinds are built once at package initialisation and never mutated;
// lookups are safe from concurrent invocations.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode"
)

// Kind describes one error status.
type Kind struct {
	Status int
	Title  string
	// Name is the CamelCase form of Title, e.g. "UnprocessableEntity".
	Name string
}

// New returns an error of this kind carrying message.
func (k Kind) New(message string) *Error {
	return &Error{Status: k.Status, Message: message}
}

// Newf returns an error of this kind with a formatted message.
func (k Kind) Newf(format string, args ...any) *Error {
	return k.New(fmt.Sprintf(format, args...))
}

var kinds = buildKinds()

func buildKinds() map[int]Kind {
	result := make(map[int]Kind)
	for status := 400; status <= 599; status++ {
		title := http.StatusText(status)
		if title == "" {
			continue
		}
		result[status] = Kind{Status: status, Title: title, Name: kindName(title)}
	}
	return result
}

func kindName(title string) string {
	var b strings.Builder
	for _, word := range strings.Fields(title) {
		letters := strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII || !unicode.IsLetter(r) {
				return -1
			}
			return unicode.ToLower(r)
		}, word)
		if letters == "" {
			continue
		}
		b.WriteString(strings.ToUpper(letters[:1]))
		b.WriteString(letters[1:])
	}
	return b.String()
}

// Lookup returns the kind registered for status.
func Lookup(status int) (Kind, bool) {
	k, ok := kinds[status]
	return k, ok
}

// KindOf returns the kind for status. Unregistered statuses yield a Kind with
// an empty title.
func KindOf(status int) Kind {
	if k, ok := kinds[status]; ok {
		return k
	}
	return Kind{Status: status}
}

// Kinds returns every registered kind ordered by status.
func Kinds() []Kind {
	result := make([]Kind, 0, len(kinds))
	for _, k := range kinds {
		result = append(result, k)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Status < result[j].Status })
	return result
}

// Error is a status-coded failure with JSON:API error object metadata.
type Error struct {
	Status    int
	Message   string
	Pointer   string
	Parameter string
	Code      string
	ID        string
	Meta      map[string]any

	detail string
	cause  error
}

// New returns an error with the given status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Newf returns an error with the given status and a formatted message.
func Newf(status int, format string, args ...any) *Error {
	return New(status, fmt.Sprintf(format, args...))
}

// Wrap returns an error with the given status whose message is err's message.
// The original error stays reachable through errors.Unwrap.
func Wrap(status int, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Status: status, Message: err.Error(), cause: err}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if title := e.Title(); title != "" {
		return title
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// StatusCode returns the HTTP status code.
func (e *Error) StatusCode() int { return e.Status }

// Title returns the reason phrase of the error's status.
func (e *Error) Title() string {
	return KindOf(e.Status).Title
}

// Detail returns the explicit detail if one was set, otherwise the message.
// A message equal to the kind's title or name carries no information and
// yields an empty detail.
func (e *Error) Detail() string {
	if e.detail != "" {
		return e.detail
	}
	kind := KindOf(e.Status)
	if e.Message == kind.Title || e.Message == kind.Name {
		return ""
	}
	return e.Message
}

func (e *Error) WithDetail(detail string) *Error {
	e.detail = detail
	return e
}

func (e *Error) WithPointer(pointer string) *Error {
	e.Pointer = pointer
	return e
}

func (e *Error) WithParameter(parameter string) *Error {
	e.Parameter = parameter
	return e
}

func (e *Error) WithCode(code string) *Error {
	e.Code = code
	return e
}

func (e *Error) WithID(id string) *Error {
	e.ID = id
	return e
}

func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// IsClientError reports whether the status is in the 4xx range.
func (e *Error) IsClientError() bool {
	return e.Status >= 400 && e.Status <= 499
}

// As returns the *Error in err's chain.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf extracts the HTTP status code from err. Errors that carry no status
// yield http.StatusInternalServerError.
func StatusOf(err error) int {
	if apiErr, ok := As(err); ok && apiErr.Status != 0 {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
