package sink

import (
	"context"
	"encoding/json"
	"io"

	"github.com/matzehuels/labelsheet/pkg/document"
	"github.com/matzehuels/labelsheet/pkg/render"
)

// JSON writes the page description as indented JSON.
type JSON struct{}

// Format implements render.Renderer.
func (JSON) Format() string { return render.FormatJSON }

// ContentType implements render.Renderer.
func (JSON) ContentType() string { return "application/json" }

// Render implements render.Renderer.
func (JSON) Render(ctx context.Context, p *document.Page, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

var _ render.Renderer = JSON{}
