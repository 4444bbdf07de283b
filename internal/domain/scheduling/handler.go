package scheduling

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/ehr/gateway/internal/platform/codec"
	"github.com/ehr/gateway/internal/platform/fhir"
)

type Handler struct {
	engine   *Engine
	validate *validator.Validate
	now      func() time.Time
}

func NewHandler(engine *Engine) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return &Handler{engine: engine, validate: v, now: time.Now}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/transform", h.Transform)
	g.POST("/validate", h.Validate)
	g.GET("/health", h.Health)
	g.GET("/formats", h.Formats)
}

// TransformRequest is the body of POST /transform. Message is a JSON string
// for HL7 input and a JSON object for FHIR input.
type TransformRequest struct {
	Message      codec.RawMessage `json:"message" validate:"required"`
	SourceFormat string           `json:"source_format" validate:"required"`
	TargetFormat string           `json:"target_format" validate:"required"`
}

// ValidateRequest is the body of POST /validate.
type ValidateRequest struct {
	Message codec.RawMessage `json:"message" validate:"required"`
	Format  string           `json:"format" validate:"required"`
}

// TransformResponse is returned by POST /transform and printed by the CLI.
type TransformResponse struct {
	Status   string           `json:"status"`
	Data     *fhir.Bundle     `json:"data"`
	Metadata ResponseMetadata `json:"metadata"`
}

type ResponseMetadata struct {
	Metadata
	// Timestamp is when the gateway processed the request, in UTC.
	Timestamp string `json:"timestamp"`
}

// NewTransformResponse wraps a Result with the processing time.
func NewTransformResponse(res *Result, processedAt time.Time) *TransformResponse {
	return &TransformResponse{
		Status: "success",
		Data:   res.Bundle,
		Metadata: ResponseMetadata{
			Metadata:  res.Metadata,
			Timestamp: processedAt.UTC().Format(time.RFC3339Nano),
		},
	}
}

func (h *Handler) Transform(c echo.Context) error {
	var req TransformRequest
	if err := h.bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.InvalidOutcome(err.Error()))
	}

	raw, isText := decodeText(req.Message)
	if req.SourceFormat == FormatHL7 && !isText {
		return c.JSON(http.StatusBadRequest, fhir.InvalidOutcome("HL7 message must be a string"))
	}

	res, err := h.engine.Transform(raw, req.SourceFormat, req.TargetFormat)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, NewTransformResponse(res, h.now()))
}

func (h *Handler) Validate(c echo.Context) error {
	var req ValidateRequest
	if err := h.bind(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.InvalidOutcome(err.Error()))
	}

	var message interface{}
	switch req.Format {
	case FormatHL7:
		raw, isText := decodeText(req.Message)
		if !isText {
			return c.JSON(http.StatusBadRequest, fhir.InvalidOutcome("HL7 message must be a string"))
		}
		msg, err := h.engine.Parse(raw)
		if err != nil {
			return errorResponse(c, err)
		}
		message = msg
	case FormatFHIR:
		var resource map[string]interface{}
		if err := codec.Unmarshal(req.Message, &resource); err != nil || resource == nil {
			return c.JSON(http.StatusBadRequest, fhir.InvalidOutcome("FHIR message must be a JSON object"))
		}
		message = resource
	}

	if err := h.engine.Validate(message, req.Format); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"version":   h.engine.Version(),
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) Formats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"formats":    h.engine.SupportedFormats(),
		"directions": h.engine.SupportedDirections(),
	})
}

func (h *Handler) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			if msg, ok := he.Message.(string); ok {
				return errors.New(msg)
			}
		}
		return err
	}
	if err := h.validate.Struct(req); err != nil {
		return errors.New(formatValidationErrors(err))
	}
	return nil
}

// StatusFor maps an engine error to an HTTP status and OperationOutcome.
func StatusFor(err error) (int, *fhir.OperationOutcome) {
	switch {
	case errors.Is(err, ErrMissingRequiredField):
		return http.StatusBadRequest, fhir.RequiredFieldOutcome(err.Error())
	case errors.Is(err, ErrUnsupportedDirection), errors.Is(err, ErrUnsupportedFormat):
		return http.StatusNotImplemented, fhir.NotSupportedOutcome(err.Error())
	default:
		return http.StatusInternalServerError, fhir.InternalErrorOutcome(err.Error())
	}
}

func errorResponse(c echo.Context, err error) error {
	status, outcome := StatusFor(err)
	return c.JSON(status, outcome)
}

// decodeText returns the message as text when it is a JSON string. Any other
// JSON value is returned verbatim with isText false.
func decodeText(msg codec.RawMessage) (text string, isText bool) {
	var s string
	if err := codec.Unmarshal(msg, &s); err == nil {
		return s, true
	}
	return string(msg), false
}

func formatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, ", ")
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
