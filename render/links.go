package render

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"meshbrowse/contentid"
)

const cttAnchors = `a[href^="ctt://"]`

// Link is a ctt:// anchor found in an HTML payload. ID is empty when the
// href does not carry a valid identifier.
type Link struct {
	Href string
	Text string
	ID   contentid.ID
}

// Links returns the ctt:// anchors of doc in document order.
func Links(doc string) ([]Link, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	var links []Link
	d.Find(cttAnchors).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		l := Link{Href: href, Text: strings.Join(strings.Fields(a.Text()), " ")}
		if id, err := contentid.Parse(href); err == nil {
			l.ID = id
		}
		links = append(links, l)
	})
	return links, nil
}

// RewriteLinks points every ctt:// anchor of doc at openPath so a click
// inside the sandboxed frame is routed back through navigation. Documents
// without such anchors are returned unchanged.
func RewriteLinks(doc, openPath string) (string, error) {
	d, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	anchors := d.Find(cttAnchors)
	if anchors.Length() == 0 {
		return doc, nil
	}
	anchors.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		a.SetAttr("href", openPath+"?url="+url.QueryEscape(href))
		a.SetAttr("target", "_top")
		a.SetAttr("title", "CTT Mesh: "+href)
		a.AddClass("ctt-link")
	})
	out, err := d.Html()
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return out, nil
}
