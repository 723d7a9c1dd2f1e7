// Package templates holds the HTML components of the chat UI.
//
// Components are built with templ.ComponentFunc so they compose with any
// other templ component and render through the same Render interface.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// htmxSrc is the HTMX build loaded by the chat page.
const htmxSrc = "https://unpkg.com/htmx.org@2.0.3"

// Exchange is one user message and the validator's reply.
type Exchange struct {
	Message string
	Report  string
}

// ChatPageData is everything the chat page shows.
type ChatPageData struct {
	HSNRecords int
	SACRecords int
	LastUpdate *time.Time
	Exchanges  []Exchange
}

// Layout wraps body in the HTML document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>%s</title><script src="%s"></script>`+
			`<style>body{font-family:sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem}`+
			`.report{white-space:pre-wrap;background:#f5f5f5;padding:.75rem;border-radius:.25rem}`+
			`.user{font-weight:bold}.alert{border:1px solid #c00;color:#900;padding:.75rem}</style>`+
			`</head><body>`, templ.EscapeString(title), htmxSrc); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// ChatPage renders the full chat page.
func ChatPage(data ChatPageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<h1>🧾 HSN / SAC Code Validator</h1>`)
		fmt.Fprintf(&b, `<p class="meta">Loaded %d HSN and %d SAC codes.</p>`, data.HSNRecords, data.SACRecords)
		if data.LastUpdate != nil {
			fmt.Fprintf(&b, `<p class="meta">📅 Data last updated on: %s</p>`,
				templ.EscapeString(data.LastUpdate.Format("2006-01-02 15:04:05")))
		}
		b.WriteString(`<div id="conversation">`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}

		for _, ex := range data.Exchanges {
			if err := ChatExchange(ex).Render(ctx, w); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</div>`+
			`<form method="post" action="/chat" hx-post="/chat" hx-target="#conversation" hx-swap="beforeend" hx-on::after-request="this.reset()">`+
			`<input type="text" name="message" maxlength="4096" autocomplete="off" `+
			`placeholder="Enter HSN or SAC code(s) (comma separated), or type 'help'" required>`+
			`<button type="submit">Check</button></form>`)
		return err
	})
	return Layout("HSN Code Validator", body)
}

// ChatExchange renders one message and its report.
func ChatExchange(ex Exchange) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="exchange"><p class="user">%s</p><div class="report">%s</div></div>`,
			templ.EscapeString(ex.Message), templ.EscapeString(ex.Report))
		return err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="alert" role="alert"><strong>%s</strong> <span>%s</span> <small>(Code: %s)</small></div>`,
			templ.EscapeString(message), templ.EscapeString(action), templ.EscapeString(code))
		return err
	})
}
