package middleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ehr/gateway/internal/platform/fhir"
)

// RequestTimeout bounds each request with a context deadline. A handler that
// is still running when the deadline passes gets a 504 OperationOutcome
// written in its place. A non-positive timeout disables the middleware.
//
// The handler runs on its own echo context and a guarded writer, so a handler
// that outlives the deadline never touches the pooled context or the
// connection after the 504 has been sent.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if timeout <= 0 {
			return next
		}
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{w: c.Response().Writer, h: c.Response().Header().Clone()}
			hc := c.Echo().NewContext(c.Request().WithContext(ctx), tw)
			hc.SetPath(c.Path())
			hc.SetParamNames(c.ParamNames()...)
			hc.SetParamValues(c.ParamValues()...)

			done := make(chan error, 1)
			go func() {
				done <- next(hc)
			}()

			select {
			case err := <-done:
				tw.sync(c.Response(), hc.Response())
				return err
			case <-ctx.Done():
				if !tw.expire() {
					// The handler already started its response; let it finish.
					err := <-done
					tw.sync(c.Response(), hc.Response())
					return err
				}
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return gatewayTimeout(c)
				}
				return ctx.Err()
			}
		}
	}
}

func gatewayTimeout(c echo.Context) error {
	if c.Response().Committed {
		return nil
	}
	return c.JSON(http.StatusGatewayTimeout, fhir.NewOperationOutcome(
		fhir.IssueSeverityError, fhir.IssueTypeTimeout,
		"request processing exceeded the allowed time limit",
	))
}

// timeoutWriter buffers headers and forwards writes until the request
// expires. Writes after expiry are dropped.
type timeoutWriter struct {
	w http.ResponseWriter
	h http.Header

	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.h
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	tw.writeHeaderLocked(http.StatusOK)
	return tw.w.Write(b)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	dst := tw.w.Header()
	for k, v := range tw.h {
		dst[k] = v
	}
	tw.w.WriteHeader(code)
}

// expire marks the writer as timed out. It reports false when the handler
// has already sent its header.
func (tw *timeoutWriter) expire() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.wroteHeader {
		return false
	}
	tw.timedOut = true
	return true
}

// sync carries the handler's response state back to the outer context so
// echo's error handler sees what was already written.
func (tw *timeoutWriter) sync(outer, inner *echo.Response) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if inner.Committed {
		outer.Committed = true
		outer.Status = inner.Status
		outer.Size = inner.Size
		return
	}
	dst := outer.Header()
	for k, v := range tw.h {
		dst[k] = v
	}
}
