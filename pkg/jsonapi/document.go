// Package jsonapi renders domain objects, errors and validation failures as
// JSON:API documents.
package jsonapi

import (
	"strconv"

	"lambda-jsonapi/internal/jsoncodec"
	"lambda-jsonapi/pkg/apierror"
)

// MediaType is the JSON:API content type.
const MediaType = "application/vnd.api+json"

type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type Resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id,omitempty"`
	Attributes    map[string]any          `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
	Links         map[string]string       `json:"links,omitempty"`
	Meta          map[string]any          `json:"meta,omitempty"`
}

// Relationship is a rendered relationship. Data is a *ResourceIdentifier, a
// []ResourceIdentifier, or nil for an empty to-one relationship.
type Relationship struct {
	Data  any               `json:"data"`
	Links map[string]string `json:"links,omitempty"`
	Meta  map[string]any    `json:"meta,omitempty"`
}

type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

type ErrorObject struct {
	ID     string         `json:"id,omitempty"`
	Status string         `json:"status,omitempty"`
	Code   string         `json:"code,omitempty"`
	Title  string         `json:"title,omitempty"`
	Detail string         `json:"detail,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
	Source *ErrorSource   `json:"source,omitempty"`
}

// NewErrorObject maps an API error onto a JSON:API error object. Source is
// omitted when the error has neither pointer nor parameter.
func NewErrorObject(err *apierror.Error) ErrorObject {
	obj := ErrorObject{
		ID:     err.ID,
		Status: strconv.Itoa(err.Status),
		Code:   err.Code,
		Title:  err.Title(),
		Detail: err.Detail(),
		Meta:   err.Meta,
	}
	if err.Pointer != "" || err.Parameter != "" {
		obj.Source = &ErrorSource{Pointer: err.Pointer, Parameter: err.Parameter}
	}
	return obj
}

// Document is a top-level JSON:API document. A document with Errors set is an
// error document and never carries data.
type Document struct {
	// Data is a *Resource, a []Resource, or nil for an empty document.
	Data     any
	Included []Resource
	Errors   []ErrorObject
	Meta     map[string]any
}

type successDocument struct {
	Data     any            `json:"data"`
	Included []Resource     `json:"included,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

type errorDocument struct {
	Errors []ErrorObject  `json:"errors"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// IsError reports whether d is an error document.
func (d *Document) IsError() bool {
	return d.Errors != nil
}

func (d *Document) MarshalJSON() ([]byte, error) {
	if d.IsError() {
		return jsoncodec.Marshal(errorDocument{Errors: d.Errors, Meta: d.Meta})
	}
	data := d.Data
	if data == nil {
		data = struct{}{}
	}
	return jsoncodec.Marshal(successDocument{Data: data, Included: d.Included, Meta: d.Meta})
}

// String returns the encoded document.
func (d *Document) String() string {
	out, err := d.MarshalJSON()
	if err != nil {
		return `{"errors":[{"status":"500","title":"Internal Server Error"}]}`
	}
	return string(out)
}

// ErrorDocument builds an error document from API errors.
func ErrorDocument(errs ...*apierror.Error) *Document {
	objects := make([]ErrorObject, 0, len(errs))
	for _, err := range errs {
		objects = append(objects, NewErrorObject(err))
	}
	return &Document{Errors: objects}
}
