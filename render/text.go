package render

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"meshbrowse/daemon"
	"meshbrowse/store"
)

// Text renders p for a terminal of the given width. HTML is reduced to its
// readable text followed by a numbered list of ctt:// links; images and
// binary payloads are summarised.
func Text(p store.Payload, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	size := daemon.FormatBytes(uint64(len(p.Content)))

	switch Classify(p.MimeType) {
	case KindHTML:
		var b strings.Builder
		b.WriteString(htmlText(p.Content, width))
		if links, err := Links(p.Content); err == nil && len(links) > 0 {
			b.WriteString("\nLinks:\n")
			for i, l := range links {
				label := l.Text
				if label == "" {
					label = l.Href
				}
				fmt.Fprintf(&b, "  [%d] %s\n      %s\n", i+1, label, l.Href)
			}
		}
		return b.String()
	case KindText:
		return strings.Join(WrapText(p.Content, width), "\n") + "\n"
	case KindImage:
		return fmt.Sprintf("[image %s, %s]\n", p.MimeType, size)
	default:
		return fmt.Sprintf("[binary content %s, %s; save it with `meshbrowse get`]\n", p.MimeType, size)
	}
}

// Title returns the <title> of an HTML document, or "".
func Title(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return ""
	}
	var find func(*html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			return strings.Join(strings.Fields(textOf(n)), " ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if t := find(c); t != "" {
				return t
			}
		}
		return ""
	}
	return find(root)
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

type block struct {
	text string
	pre  bool
	gap  bool // blank line after
}

type textWalker struct {
	blocks []block
	cur    strings.Builder
	pre    int
}

func (w *textWalker) flush(gap bool) {
	t := w.cur.String()
	w.cur.Reset()
	if w.pre == 0 {
		t = strings.Join(strings.Fields(t), " ")
	}
	if strings.TrimSpace(t) == "" {
		if gap && len(w.blocks) > 0 {
			w.blocks[len(w.blocks)-1].gap = true
		}
		return
	}
	w.blocks = append(w.blocks, block{text: t, pre: w.pre > 0, gap: gap})
}

func (w *textWalker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.cur.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Noscript, atom.Template:
		return
	case atom.Br:
		w.flush(false)
		return
	case atom.Hr:
		w.flush(false)
		w.blocks = append(w.blocks, block{text: "----", gap: true})
		return
	case atom.Img:
		for _, a := range n.Attr {
			if a.Key == "alt" && a.Val != "" {
				w.cur.WriteString("[" + a.Val + "]")
			}
		}
		return
	}

	isBlock, gap := blockElement(n.DataAtom)
	if !isBlock {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		return
	}

	w.flush(false)
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		w.cur.WriteString(strings.Repeat("#", int(n.Data[1]-'0')) + " ")
	case atom.Li:
		w.cur.WriteString("* ")
	case atom.Pre:
		w.pre++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	w.flush(gap)
	if n.DataAtom == atom.Pre {
		w.pre--
	}
}

func blockElement(a atom.Atom) (isBlock, gap bool) {
	switch a {
	case atom.P, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Pre, atom.Blockquote, atom.Table, atom.Ul, atom.Ol:
		return true, true
	case atom.Div, atom.Li, atom.Tr, atom.Section, atom.Article, atom.Header,
		atom.Footer, atom.Main, atom.Nav, atom.Dt, atom.Dd, atom.Figcaption:
		return true, false
	}
	return false, false
}

func htmlText(doc string, width int) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return strings.Join(WrapText(doc, width), "\n") + "\n"
	}
	w := &textWalker{}
	w.walk(root)
	w.flush(false)

	var b strings.Builder
	for _, blk := range w.blocks {
		if blk.pre {
			b.WriteString(strings.TrimRight(blk.text, "\n"))
			b.WriteByte('\n')
		} else {
			for _, line := range WrapText(blk.text, width) {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
		if blk.gap {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
