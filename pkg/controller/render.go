package controller

import (
	"fmt"
	"net/http"

	"lambda-jsonapi/pkg/jsonapi"
)

// RenderOption adjusts a single Render call.
type RenderOption func(*jsonapi.Options)

// Status sets the response status.
func Status(status int) RenderOption {
	return func(o *jsonapi.Options) { o.Status = status }
}

// Fields restricts rendered attributes and relationships per resource type.
func Fields(fields map[string][]string) RenderOption {
	return func(o *jsonapi.Options) { o.Fields = fields }
}

// Include sets the relationship paths to include.
func Include(paths ...string) RenderOption {
	return func(o *jsonapi.Options) { o.Include = paths }
}

// Serializers overrides serializer inference by type name.
func Serializers(classes map[string]jsonapi.Serializer) RenderOption {
	return func(o *jsonapi.Options) { o.Classes = classes }
}

// Meta sets the document meta object.
func Meta(meta map[string]any) RenderOption {
	return func(o *jsonapi.Options) { o.Meta = meta }
}

// ContentRenderer turns rendered content into the response body. One is chosen
// per controller.
type ContentRenderer interface {
	Render(c *Context, content any, opts jsonapi.Options) error
	RedirectBody(url string, status int, message string) any
	ContentType(body any) string
}

// Content types set by PlainRenderer.
const (
	TextContentType = "text/plain; charset=utf-8"
	JSONContentType = "application/json"
)

// PlainRenderer passes content through as the response body. Strings go out
// as plain text, anything else as JSON.
type PlainRenderer struct{}

func (p PlainRenderer) Render(c *Context, content any, opts jsonapi.Options) error {
	c.Response().SetHeader("content-type", p.ContentType(content))
	c.Response().SetStatus(statusOr(opts.Status, http.StatusOK))
	c.Response().SetBody(content)
	return nil
}

func (PlainRenderer) ContentType(body any) string {
	if _, ok := body.(string); ok {
		return TextContentType
	}
	return JSONContentType
}

func (PlainRenderer) RedirectBody(url string, status int, message string) any {
	if message != "" {
		return message
	}
	return "You are being redirected to: " + url
}

// JSONAPIRenderer renders content as JSON:API documents. The request's
// fields and include parameters apply unless the render call overrides them.
type JSONAPIRenderer struct {
	Renderer *jsonapi.Renderer
}

func (r JSONAPIRenderer) Render(c *Context, content any, opts jsonapi.Options) error {
	params, err := c.JSONAPIParams()
	if err != nil {
		return err
	}
	result := r.Renderer.Render(content, params.Merge(opts))

	body, err := result.Document.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	c.Response().SetHeader("content-type", r.ContentType(body))
	c.Response().SetStatus(result.Status)
	c.Response().SetBody(string(body))
	return nil
}

func (JSONAPIRenderer) ContentType(any) string { return jsonapi.MediaType }

func (JSONAPIRenderer) RedirectBody(url string, status int, message string) any {
	if status == http.StatusNotModified {
		return nil
	}
	return `{"data":{}}`
}

func statusOr(status, fallback int) int {
	if status != 0 {
		return status
	}
	return fallback
}
