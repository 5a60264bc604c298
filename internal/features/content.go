package features

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// PageSnapshot carries the raw HTML of a visited page, as captured by the
// caller (content script, crawler, or a saved file in CLI use).
type PageSnapshot struct {
	HTML string
}

// ContentFeatures holds the structural counts derived from a page snapshot.
type ContentFeatures struct {
	Forms          int     `json:"forms"`
	Inputs         int     `json:"inputs"`
	PasswordInputs int     `json:"password_inputs"`
	HiddenInputs   int     `json:"hidden_inputs"`
	Links          int     `json:"links"`
	ExternalLinks  int     `json:"external_links"`
	ExternalRatio  float64 `json:"external_ratio"`
	Iframes        int     `json:"iframes"`
	Scripts        int     `json:"scripts"`

	// BodyText is the visible text of the page, truncated to maxBodyText.
	BodyText string `json:"-"`
}

// attachContent parses the snapshot (if any) and fills f.Content.
// A snapshot that fails to parse is treated as absent rather than fatal:
// html.Parse is lenient and only errors on reader failure, which cannot
// happen with a strings.Reader, but the guard keeps the contract explicit.
func attachContent(f *URLFeatures, snap *PageSnapshot) {
	if snap == nil || strings.TrimSpace(snap.HTML) == "" {
		return
	}

	root, err := html.Parse(strings.NewReader(snap.HTML))
	if err != nil {
		return
	}

	cf := &ContentFeatures{}
	var text strings.Builder
	walkNode(root, f.Host, cf, &text)

	cf.BodyText = strings.Join(strings.Fields(text.String()), " ")
	if len(cf.BodyText) > maxBodyText {
		cf.BodyText = cf.BodyText[:maxBodyText]
	}
	if cf.Links > 0 {
		cf.ExternalRatio = float64(cf.ExternalLinks) / float64(cf.Links)
	}

	f.Content = cf
}

func walkNode(n *html.Node, pageHost string, cf *ContentFeatures, text *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "form":
			cf.Forms++
		case "input":
			cf.Inputs++
			switch strings.ToLower(attrValue(n, "type")) {
			case "password":
				cf.PasswordInputs++
			case "hidden":
				cf.HiddenInputs++
			}
		case "a":
			if href := attrValue(n, "href"); href != "" {
				cf.Links++
				if isExternalLink(href, pageHost) {
					cf.ExternalLinks++
				}
			}
		case "iframe":
			cf.Iframes++
		case "script":
			cf.Scripts++
			// Script bodies are not visible text.
			return
		case "style", "noscript":
			return
		}
	case html.TextNode:
		if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
			text.WriteString(trimmed)
			text.WriteByte(' ')
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkNode(c, pageHost, cf, text)
	}
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}

// isExternalLink reports whether href points at a different host than the
// page itself. Relative links and unparsable hrefs count as internal.
func isExternalLink(href, pageHost string) bool {
	parsed, err := url.Parse(href)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	return !strings.EqualFold(parsed.Hostname(), pageHost)
}
