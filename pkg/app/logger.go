package app

import (
	"context"
	"math"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"

	"lambda-jsonapi/pkg/controller"
)

// RequestLogger logs one entry per call once the rest of the stack returned,
// at a level chosen by the final status.
func RequestLogger(logger *logrus.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, call *Call) error {
			start := time.Now()
			err := next(ctx, call)
			duration := time.Since(start)

			body, encodeErr := call.Response.WireBody()
			status := call.Response.WireStatus(body)
			length := 0
			if body != nil {
				length = len(*body)
			}

			params, paramsErr := controller.NewParameters(call.Request)
			if paramsErr != nil {
				params = controller.Parameters{}
			}

			fields := logrus.Fields{
				"url":      call.Request.Path(),
				"method":   call.Request.Method(),
				"params":   params,
				"status":   status,
				"length":   length,
				"duration": math.Floor(float64(duration.Nanoseconds())/1e3) / 1e3,
			}
			if call.Matched {
				fields["controller"] = call.Route.Controller
				fields["action"] = call.Route.Action
			}
			if lc, ok := lambdacontext.FromContext(ctx); ok {
				fields["request_id"] = lc.AwsRequestID
			}
			if encodeErr != nil {
				fields["encode_error"] = encodeErr.Error()
			}

			entry := logger.WithFields(fields)
			switch {
			case status >= 500:
				entry.Error("Server error")
			case status >= 400:
				entry.Warn("Client error")
			case status >= 300:
				entry.Info("Redirect")
			default:
				entry.Info("Request completed")
			}
			return err
		}
	}
}
