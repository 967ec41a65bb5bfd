package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"lambda-jsonapi/pkg/apierror"
)

// Notifier forwards server errors to an alerting service.
type Notifier interface {
	Notify(ctx context.Context, err error, fields map[string]any)
}

// LogNotifier reports errors as error-level log entries.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) Notify(_ context.Context, err error, fields map[string]any) {
	n.Logger.WithFields(logrus.Fields(fields)).WithError(err).Error("Alert")
}

// PanicError is a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Alerting forwards errors with a 5xx status, and panics, to n. Errors are
// returned and panics re-raised so the rescuer still renders them; it belongs
// inside the rescuer.
func Alerting(n Notifier) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *Call) (err error) {
			defer func() {
				if r := recover(); r != nil {
					n.Notify(ctx, &PanicError{Value: r}, alertFields(call))
					panic(r)
				}
			}()

			err = next(ctx, call)
			if err != nil && apierror.StatusOf(err) >= 500 {
				n.Notify(ctx, err, alertFields(call))
			}
			return err
		}
	}
}

func alertFields(call *Call) map[string]any {
	fields := map[string]any{
		"method": call.Request.Method(),
		"url":    call.Request.Path(),
	}
	if call.Matched {
		fields["controller"] = call.Route.Controller
		fields["action"] = call.Route.Action
	}
	if params, err := call.Request.QueryParameters(); err == nil && len(params) > 0 {
		fields["parameters"] = params
	}
	return fields
}
