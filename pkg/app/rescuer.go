package app

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"lambda-jsonapi/pkg/apierror"
	"lambda-jsonapi/pkg/controller"
	"lambda-jsonapi/pkg/jsonapi"
	"lambda-jsonapi/pkg/lambda"
)

const genericErrorDetail = "An internal error occurred."

// Rescuer turns errors and panics from the rest of the stack into JSON:API
// error documents, so a call always leaves with a response. Framework errors
// are rendered as they are; anything else becomes a 500 whose detail is only
// exposed when exposeDetails is set. Server errors are logged with a stack
// trace.
func Rescuer(logger *logrus.Logger, exposeDetails bool) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *Call) (err error) {
			defer func() {
				if r := recover(); r != nil {
					panicErr := &PanicError{Value: r, Stack: debug.Stack()}
					rescue(logger, call, panicErr, exposeDetails)
					err = nil
				}
			}()

			if err := next(ctx, call); err != nil {
				rescue(logger, call, err, exposeDetails)
			}
			return nil
		}
	}
}

func rescue(logger *logrus.Logger, call *Call, err error, exposeDetails bool) {
	rendered, known := apierror.As(err)
	if !known || rendered.Status == 0 {
		detail := genericErrorDetail
		if exposeDetails {
			detail = err.Error()
		}
		rendered = apierror.New(http.StatusInternalServerError, "").WithDetail(detail)
	}

	response := lambda.NewResponse()
	if rendered.Status >= 500 {
		errorID := uuid.NewString()
		response.SetHeader("x-error-id", errorID)
		logServerError(logger, call, err, errorID)
	}

	response.SetHeader("content-type", jsonapi.MediaType)
	response.SetStatus(rendered.Status)
	response.SetBody(jsonapi.ErrorDocument(rendered).String())
	call.Response = response
}

func logServerError(logger *logrus.Logger, call *Call, err error, errorID string) {
	var stack []byte
	var actionErr *controller.ActionError
	panicErr, isPanic := err.(*PanicError)
	switch {
	case isPanic:
		stack = panicErr.Stack
	case errors.As(err, &actionErr):
		stack = actionErr.Stack
	default:
		stack = debug.Stack()
	}

	fields := logrus.Fields{
		"error_id": errorID,
		"method":   call.Request.Method(),
		"url":      call.Request.Path(),
		"stack":    string(stack),
	}
	if call.Matched {
		fields["controller"] = call.Route.Controller
		fields["action"] = call.Route.Action
	}
	if isPanic {
		fields["panic"] = true
	}
	logger.WithFields(fields).Error(err.Error())
}
