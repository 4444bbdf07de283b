package hl7v2

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Handler provides an HTTP endpoint that exposes the tokenizer, mainly for
// interface analysts checking how a feed is split.
type Handler struct{}

// NewHandler creates a new HL7v2 handler.
func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes registers HL7v2 endpoints on the provided route group.
//
//	POST /api/v1/hl7v2/tokenize - Split raw HL7v2 text into segments and fields
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/hl7v2/tokenize", h.TokenizeMessage)
}

// segmentJSON is the JSON representation of a tokenized segment.
type segmentJSON struct {
	Kind   string      `json:"kind"`
	Fields []fieldJSON `json:"fields"`
}

// fieldJSON is the JSON representation of a raw field.
type fieldJSON struct {
	Value      string   `json:"value"`
	Components []string `json:"components,omitempty"`
}

// TokenizeMessage handles POST /api/v1/hl7v2/tokenize.
// It reads raw HL7v2 from the request body and returns the segment split.
func (h *Handler) TokenizeMessage(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "failed to read request body",
		})
	}

	segs := Tokenize(string(body))
	if len(segs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "request body contains no segments",
		})
	}
	if segs[0].Kind != "MSH" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "first segment must be MSH, got " + segs[0].Kind,
		})
	}

	segments := make([]segmentJSON, len(segs))
	for i, seg := range segs {
		// Skip the kind tag; field n of the response is field n of the segment.
		fields := make([]fieldJSON, 0, len(seg.Fields)-1)
		for j := 1; j < len(seg.Fields); j++ {
			f := fieldJSON{Value: seg.Fields[j]}
			if strings.Contains(f.Value, ComponentSeparator) && !(seg.Kind == "MSH" && j == 1) {
				f.Components = seg.Components(j)
			}
			fields = append(fields, f)
		}
		segments[i] = segmentJSON{Kind: seg.Kind, Fields: fields}
	}

	hdr := ReadHeader(segs[0])
	return c.JSON(http.StatusOK, map[string]interface{}{
		"type":      hdr.Type,
		"controlId": hdr.ControlID,
		"version":   hdr.Version,
		"timestamp": hdr.Timestamp,
		"segments":  segments,
	})
}
