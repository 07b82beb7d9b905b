package handler

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// htmlPage builds small chrome pages (lists, forms) that do not go through
// the document template pipeline. Document previews and exports never use it.
type htmlPage struct {
	sb strings.Builder
}

func newHTMLPage(title string) *htmlPage {
	p := &htmlPage{}
	fmt.Fprintf(&p.sb, `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; width: 100%%; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; }
textarea { width: 100%%; font-family: monospace; }
.error { color: #b00020; }
</style>
</head><body>
<h1>%s</h1>
`, html.EscapeString(title), html.EscapeString(title))
	return p
}

func (p *htmlPage) esc(s string) string { return html.EscapeString(s) }

func (p *htmlPage) raw(s string) { p.sb.WriteString(s) }

func (p *htmlPage) openList()  { p.sb.WriteString("<ul>\n") }
func (p *htmlPage) closeList() { p.sb.WriteString("</ul>\n") }

func (p *htmlPage) listItem(inner string) {
	fmt.Fprintf(&p.sb, "<li>%s</li>\n", inner)
}

func (p *htmlPage) writeTo(w io.Writer) {
	p.sb.WriteString("</body></html>\n")
	_, _ = io.WriteString(w, p.sb.String())
}

// loginPage renders the sign-in form. csrfToken comes from the request
// context set by csrfMiddleware.
func loginPage(title, usernameLabel, passwordLabel, submitLabel, errMsg, action, csrfToken string) string {
	p := newHTMLPage(title)
	if errMsg != "" {
		p.raw(fmt.Sprintf(`<p class="error">%s</p>`+"\n", p.esc(errMsg)))
	}
	p.raw(fmt.Sprintf(`<form method="post" action="%s">
<input type="hidden" name="csrf_token" value="%s">
<p><label>%s <input type="text" name="username" required></label></p>
<p><label>%s <input type="password" name="password" required></label></p>
<p><button type="submit">%s</button></p>
</form>
`, p.esc(action), p.esc(csrfToken), p.esc(usernameLabel), p.esc(passwordLabel), p.esc(submitLabel)))
	p.sb.WriteString("</body></html>\n")
	return p.sb.String()
}
