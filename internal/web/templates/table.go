package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/proker/internal/core"
	"github.com/JonMunkholm/proker/internal/csvparse"
)

// Table renders the sheet as a plain grid. Short rows are padded to the
// header width.
func Table(data core.SheetData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if data.IsEmpty() {
			return emptySheet().Render(ctx, w)
		}

		width := len(data.Headers)
		for _, row := range data.DataRows {
			width = max(width, len(row))
		}

		h := newHTML(ctx, w)
		h.raw(`<div class="table-wrap"><table class="sheet"><thead><tr><th>#</th>`)
		writeCells(h, "th", data.Headers, width)
		h.raw(`</tr></thead><tbody>`)
		for i, row := range data.DataRows {
			h.raw(`<tr><td class="number">`)
			h.int(i + 1)
			h.raw(`</td>`)
			writeCells(h, "td", row, width)
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></div>`)
		return h.err
	})
}

func writeCells(h *html, tag string, row csvparse.Row, width int) {
	for i := 0; i < width; i++ {
		h.raw("<" + tag + ">")
		if i < len(row) {
			h.text(row[i])
		}
		h.raw("</" + tag + ">")
	}
}
