package sidecar

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/remkit/remkit/internal/metadata"
)

// pdfContent is the default .content body for a pdf upload: last-used
// stroke tool settings plus the page zoom mode.
type pdfContent struct {
	ExtraMetadata pdfExtraMetadata `json:"extraMetadata"`
	ZoomMode      string           `json:"zoomMode"`
}

type pdfExtraMetadata struct {
	LastPen               string `json:"LastPen"`
	LastPenColor          string `json:"LastPenColor"`
	LastPenThicknessScale string `json:"LastPenThicknessScale"`
	LastEraserTool        string `json:"LastEraserTool"`
}

// epubContent is the default .content body for an epub upload: the text
// layout settings the device's reader starts from.
type epubContent struct {
	CoverPageNumber int    `json:"coverPageNumber"`
	FontName        string `json:"fontName"`
	LineHeight      int    `json:"lineHeight"`
	Margins         int    `json:"margins"`
	Orientation     string `json:"orientation"`
	TextAlignment   string `json:"textAlignment"`
	TextScale       int    `json:"textScale"`
}

// ContentDefaults returns the .content file body for a record. Folders get
// an empty mapping; documents get the fixed per-type viewer defaults and
// nothing else.
func ContentDefaults(rec *metadata.Record, fileType string) ([]byte, error) {
	if rec.IsFolder() {
		return []byte("{}"), nil
	}

	switch fileType {
	case "pdf":
		return json.MarshalIndent(pdfContent{
			ExtraMetadata: pdfExtraMetadata{
				LastPen:               "Finelinerv2",
				LastPenColor:          "Black",
				LastPenThicknessScale: "2",
				LastEraserTool:        "Eraser",
			},
			ZoomMode: "bestFit",
		}, "", "    ")
	case "epub":
		return json.MarshalIndent(epubContent{
			CoverPageNumber: 0,
			FontName:        "",
			LineHeight:      -1,
			Margins:         100,
			Orientation:     "portrait",
			TextAlignment:   "justify",
			TextScale:       1,
		}, "", "    ")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, fileType)
	}
}
