package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/proker/internal/core"
	"github.com/JonMunkholm/proker/internal/textfmt"
)

// Cards renders one card per program of the sheet.
func Cards(data core.SheetData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if data.IsEmpty() {
			return emptySheet().Render(ctx, w)
		}
		programs := core.ExtractPrograms(data)
		if len(programs) == 0 {
			return noPrograms().Render(ctx, w)
		}

		h := newHTML(ctx, w)
		h.raw(`<div class="cards">`)
		for _, p := range programs {
			h.render(Card(p))
		}
		h.raw(`</div>`)
		return h.err
	})
}

// Card renders a single program.
func Card(p core.Program) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		h.raw(`<article class="card" id="program-`)
		h.int(p.Number)
		h.raw(`"><div class="card-header"><h2><span class="number">#`)
		h.int(p.Number)
		h.raw(`</span><span class="title">`)
		h.text(p.Title)
		h.raw(`</span></h2>`)
		if p.HasCluster() {
			h.raw(`<p class="cluster">Kluster: `)
			h.text(p.Cluster)
			h.raw(`</p>`)
		}
		h.raw(`</div><div class="card-body">`)

		h.raw(`<div class="grid two">`)
		h.render(section("purpose", p.Purpose))
		h.render(section("target", p.Target))
		h.raw(`</div>`)

		h.raw(`<div class="detail">`)
		h.render(section("detail", p.Detail))
		h.raw(`</div>`)

		h.raw(`<div class="grid three">`)
		h.render(section("outcome", p.Outcome))
		h.render(section("output", p.Output))
		h.render(section("urgency", p.Urgency))
		h.raw(`</div>`)

		h.raw(`<div class="grid two extra">`)
		h.render(section("tools", p.Tools))
		h.raw(`<section class="field sdgs"><h4>SDGs</h4>`)
		h.render(SDGBadges(p.SDGs))
		h.raw(`</section></div>`)

		h.raw(`</div></article>`)
		return h.err
	})
}

func section(key, value string) templ.Component {
	spec, _ := core.FieldByKey(key)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		h.raw(`<section class="field `)
		h.text(key)
		h.raw(`"><h4>`)
		h.text(spec.Label)
		h.raw(`</h4>`)
		h.render(FormattedText(value))
		h.raw(`</section>`)
		return h.err
	})
}

// FormattedText renders structured text by its marker grammar: numbered
// items, indented lettered sub-items, bullets and paragraphs.
func FormattedText(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		blocks := textfmt.Blocks(text)
		if len(blocks) == 0 {
			h.raw(`<span class="text">`)
			h.text(text)
			h.raw(`</span>`)
			return h.err
		}

		h.raw(`<div class="text">`)
		for _, b := range blocks {
			if b.Kind == textfmt.KindParagraph {
				h.raw(`<p class="paragraph">`)
				h.text(b.Content)
				h.raw(`</p>`)
				continue
			}
			h.raw(`<div class="item `)
			h.text(string(b.Kind))
			h.raw(`"><span class="marker">`)
			h.text(b.Marker)
			h.raw(`</span><span class="content">`)
			h.text(b.Content)
			h.raw(`</span></div>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// SDGBadges renders goal images for the numbers found in text. Text with no
// goal number is shown as is.
func SDGBadges(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		if text == "" || text == textfmt.Empty {
			h.raw(`<span class="muted">-</span>`)
			return h.err
		}

		goals := core.SDGNumbers(text)
		if len(goals) == 0 {
			h.raw(`<span class="muted">`)
			h.text(text)
			h.raw(`</span>`)
			return h.err
		}

		h.raw(`<div class="badges">`)
		for _, n := range goals {
			label := "SDG " + strconv.Itoa(n)
			h.raw(`<img class="badge"`)
			h.attr("src", core.SDGImagePath(n))
			h.attr("alt", label)
			h.attr("title", label)
			h.raw(` width="64" height="64">`)
		}
		h.raw(`</div>`)
		return h.err
	})
}
