package textx

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const blockSelectors = "br,p,div,li,ul,ol,tr,td,th,h1,h2,h3,h4,h5,h6,section,article,header,footer"

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed.
// Input without markup is only cleaned.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return CleanText(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CleanText(s)
	}
	doc.Find("script,style,noscript").Remove()
	// keep words from adjacent blocks apart
	doc.Find(blockSelectors).Each(func(_ int, sel *goquery.Selection) {
		sel.AfterNodes(&html.Node{Type: html.TextNode, Data: " "})
	})
	return CleanText(doc.Text())
}
