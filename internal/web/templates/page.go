package templates

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/proker/internal/core"
)

// Views of the selected sheet.
const (
	ViewCards = "cards"
	ViewTable = "table"
)

// NormalizeView maps unknown view names to cards.
func NormalizeView(v string) string {
	if v == ViewTable {
		return ViewTable
	}
	return ViewCards
}

// Page renders the full program viewer for state.
//
// While the first refresh is running the page shows the loading indicator
// and reloads itself. A failed refresh shows the error alert above whatever
// data the previous refresh left.
func Page(state core.ViewState, view string) templ.Component {
	view = NormalizeView(view)

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		h.raw(`<!DOCTYPE html><html lang="id"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if state.Loading {
			h.raw(`<meta http-equiv="refresh" content="3">`)
		}
		h.raw(`<title>Program Kerja KKN</title>`)
		h.raw(`<link rel="stylesheet" href="/static/app.css"></head><body><main class="page">`)

		current, ok := state.Current()

		h.raw(`<header class="hero"><h1>Program Kerja KKN</h1><p class="subtitle">Desa Cikum - KKN Universitas</p>`)
		if ok {
			h.raw(`<p class="total">Total Program: `)
			h.int(len(current.DataRows))
			h.raw(`</p>`)
		}
		h.raw(`</header>`)

		switch {
		case state.Loading:
			h.render(Loading())
		case state.Err != nil:
			msg := core.MapError(state.Err)
			h.render(ErrorAlert(msg.Message, msg.Action, msg.Code))
		}

		if ok {
			h.render(Tabs(state.Sheets, state.ActiveTab, view))
			if current.Stale {
				h.raw(`<p class="stale">Data dari salinan tersimpan `)
				h.text(current.FetchedAt.Format("2006-01-02 15:04"))
				h.raw(`</p>`)
			}
			if view == ViewTable {
				h.render(Table(current))
			} else {
				h.render(Cards(current))
			}
			h.render(Footer(current))
		}

		h.raw(`</main></body></html>`)
		return h.err
	})
}

// TabURL is the page link for a tab and view.
func TabURL(tab int, view string) string {
	q := url.Values{}
	q.Set("tab", strconv.Itoa(tab))
	if view == ViewTable {
		q.Set("view", ViewTable)
	}
	return "/proker?" + q.Encode()
}

// Tabs renders the sheet tab bar and the cards/table switch.
func Tabs(sheets []core.SheetData, active int, view string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		h.raw(`<nav class="tabs">`)
		for i, s := range sheets {
			h.raw(`<a`)
			h.href(TabURL(i, view))
			if i == active {
				h.raw(` class="tab active" aria-current="page"`)
			} else {
				h.raw(` class="tab"`)
			}
			h.raw(`>`)
			h.text(s.Name)
			h.raw(`</a>`)
		}
		h.raw(`<span class="views">`)
		for _, v := range []struct{ name, label string }{{ViewCards, "Kartu"}, {ViewTable, "Tabel"}} {
			h.raw(`<a`)
			h.href(TabURL(active, v.name))
			if v.name == view {
				h.raw(` class="view active"`)
			} else {
				h.raw(` class="view"`)
			}
			h.raw(`>`)
			h.text(v.label)
			h.raw(`</a>`)
		}
		h.raw(`</span></nav>`)
		return h.err
	})
}

// Footer shows the program count and the sheet name.
func Footer(data core.SheetData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		h.raw(`<footer class="stats"><div><p class="label">Total Program Kerja</p><p class="count">`)
		h.int(len(data.DataRows))
		h.raw(`</p></div><p class="sheet">`)
		h.text(data.Name)
		h.raw(`</p></footer>`)
		return h.err
	})
}

// Loading is shown until the first refresh finishes.
func Loading() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="loading"><div class="spinner"></div><p>Memuat data...</p></div>`)
		return err
	})
}

// ErrorAlert renders the failed-load alert.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		h.raw(`<div class="alert" role="alert"><h3>Error memuat data</h3><p>`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p class="action">`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<p class="code">`)
			h.text(code)
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// EmptyState renders a centered notice.
func EmptyState(title, detail string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := newHTML(ctx, w)
		h.raw(`<div class="empty"><h3>`)
		h.text(title)
		h.raw(`</h3><p>`)
		h.text(detail)
		h.raw(`</p></div>`)
		return h.err
	})
}

func emptySheet() templ.Component {
	return EmptyState("Tidak Ada Data", "Sheet ini masih kosong. Silakan tambahkan data terlebih dahulu.")
}

func noPrograms() templ.Component {
	return EmptyState("Tidak Ada Data Program Kerja", "Pastikan kolom header di sheet sesuai dengan format yang diharapkan.")
}
