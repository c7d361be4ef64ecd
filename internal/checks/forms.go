package checks

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/PentesterFlow/LocalScan/internal/check"
)

// Forms fetches HTML routes and inspects their forms for missing CSRF
// tokens on state-changing submissions.
type Forms struct {
	// maxPages bounds how many routes are fetched for form analysis.
	maxPages int
}

// NewForms creates the form analysis check.
func NewForms() *Forms { return &Forms{maxPages: 25} }

// ID implements check.Check.
func (*Forms) ID() string { return "forms" }

// Name implements check.Check.
func (*Forms) Name() string { return "Form CSRF protection" }

// Description implements check.Check.
func (*Forms) Description() string {
	return "Parses forms on discovered pages and flags state-changing forms without a CSRF token."
}

// Run implements check.Check.
func (c *Forms) Run(ctx context.Context, sc *check.Context) ([]check.Finding, error) {
	var findings []check.Finding

	pages := sc.HTMLRoutes()
	if len(pages) > c.maxPages {
		pages = pages[:c.maxPages]
	}

	for _, route := range pages {
		resp, err := sc.FrontendClient.Request(ctx, http.MethodGet, route.Path, nil, nil)
		if err != nil || !resp.IsHTML() {
			continue
		}

		for _, form := range parseForms(resp.Body) {
			if form.method == http.MethodGet && form.passwords > 0 {
				f := check.NewFinding(c.ID(), "Password submitted via GET", route.Path, check.RiskMedium)
				f.Category = "forms"
				f.Description = fmt.Sprintf("The form submitting to %q on %s sends a password field with method GET, placing the credential in the URL.", form.action, route.Path)
				f.Assumption = "URLs end up in server logs, browser history, and Referer headers."
				f.Reproduction = fmt.Sprintf("Submit the form on %s%s and observe the password in the query string.", sc.Config.BaseURL, route.Path)
				f.Fix = "Change the form method to POST."
				findings = append(findings, f)
				continue
			}

			if form.method != http.MethodPost {
				continue
			}
			if form.hasCSRFToken() {
				continue
			}

			f := check.NewFinding(c.ID(), "POST form without CSRF token", route.Path, check.RiskMedium)
			f.Category = "csrf"
			f.Description = fmt.Sprintf("The form posting to %q on %s carries no hidden anti-CSRF token field.", form.action, route.Path)
			f.Assumption = "The application relies on cookie-based sessions, making the form forgeable cross-site."
			f.Reproduction = fmt.Sprintf("View source of %s%s and inspect the form posting to %q.", sc.Config.BaseURL, route.Path, form.action)
			f.Fix = "Embed a per-session CSRF token in the form and verify it server-side, or use SameSite=Strict session cookies."
			findings = append(findings, f)
		}
	}

	return findings, nil
}

type htmlForm struct {
	action    string
	method    string
	inputs    []string // input names
	passwords int      // count of type=password inputs
}

// csrfTokenNames are input names commonly used for anti-CSRF tokens.
var csrfTokenNames = []string{"csrf", "xsrf", "_token", "authenticity_token", "__requestverificationtoken", "anti-forgery"}

func (f htmlForm) hasCSRFToken() bool {
	for _, input := range f.inputs {
		lower := strings.ToLower(input)
		for _, token := range csrfTokenNames {
			if strings.Contains(lower, token) {
				return true
			}
		}
	}
	return false
}

// parseForms extracts forms and their input names from an HTML document.
func parseForms(body []byte) []htmlForm {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var forms []htmlForm

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "form" {
			form := htmlForm{method: http.MethodGet}
			for _, attr := range n.Attr {
				switch attr.Key {
				case "action":
					form.action = attr.Val
				case "method":
					form.method = strings.ToUpper(attr.Val)
				}
			}
			form.inputs, form.passwords = collectInputs(n)
			forms = append(forms, form)
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	walk(doc)
	return forms
}

func collectInputs(formNode *html.Node) (names []string, passwords int) {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "input", "textarea", "select":
				for _, attr := range n.Attr {
					switch attr.Key {
					case "name":
						if attr.Val != "" {
							names = append(names, attr.Val)
						}
					case "type":
						if strings.EqualFold(attr.Val, "password") {
							passwords++
						}
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}

	walk(formNode)
	return names, passwords
}
