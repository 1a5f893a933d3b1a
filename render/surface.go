package render

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"net/http"
	"strings"

	"meshbrowse/contentid"
	"meshbrowse/store"
)

// SandboxPolicy is the Content-Security-Policy every surface is served
// with. Scripts never run; downloads and top-level navigation need a click.
const SandboxPolicy = "sandbox allow-downloads allow-popups allow-top-navigation-by-user-activation"

// FrameContentType is the Content-Type of every surface body.
const FrameContentType = "text/html; charset=utf-8"

// Surface is a rendered payload ready to be served inside the viewer frame.
type Surface struct {
	Kind     Kind
	ID       contentid.ID
	MimeType string
	Body     []byte

	// Download and Filename are set for binary payloads only.
	Download []byte
	Filename string
}

// Options tune Render.
type Options struct {
	// OpenPath, when set, is the entry that ctt:// anchors inside HTML
	// payloads are rewritten to (e.g. "/open").
	OpenPath string
	// DownloadHref is the link target offered on binary surfaces.
	DownloadHref string
}

// Filename returns the download name for id: content_<first 8 chars>.
func Filename(id contentid.ID) string {
	return "content_" + id.Short()
}

// Render produces the surface for p. Unsupported types never fail; they
// fall back to the download page.
func Render(id contentid.ID, p store.Payload, o Options) Surface {
	s := Surface{Kind: Classify(p.MimeType), ID: id, MimeType: p.MimeType}

	switch s.Kind {
	case KindHTML:
		body := p.Content
		if o.OpenPath != "" {
			if rewritten, err := RewriteLinks(body, o.OpenPath); err == nil {
				body = rewritten
			}
		}
		s.Body = []byte(body)
	case KindText:
		s.Body = execute(textPage, struct{ Content string }{p.Content})
	case KindImage:
		src := "data:" + p.MimeType + ";base64," + imageData(p.MimeType, p.Content)
		s.Body = execute(imagePage, struct{ Src template.URL }{template.URL(src)})
	case KindBinary:
		s.Filename = Filename(id)
		s.Download = []byte(p.Content)
		s.Body = execute(downloadPage, struct {
			MimeType string
			Size     int
			Filename string
			Href     string
		}{p.MimeType, len(p.Content), s.Filename, o.DownloadHref})
	}
	return s
}

// imageData base64-encodes image content as delivered. Content is passed
// through unchanged only when it is base64 whose decoded bytes sniff as an
// image.
func imageData(mime, content string) string {
	if content != "" {
		if raw, err := base64.StdEncoding.DecodeString(content); err == nil && looksLikeImage(mime, raw) {
			return content
		}
	}
	return base64.StdEncoding.EncodeToString([]byte(content))
}

func looksLikeImage(mime string, raw []byte) bool {
	if strings.HasPrefix(http.DetectContentType(raw), "image/") {
		return true
	}
	// svg sniffs as text or xml
	return strings.Contains(strings.ToLower(mime), "svg") && bytes.Contains(raw, []byte("<svg"))
}

func execute(t *template.Template, data any) []byte {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		// templates are fixed; an error here is a programming mistake
		panic(err)
	}
	return buf.Bytes()
}

var textPage = template.Must(template.New("text").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: monospace; padding: 20px; background: #1a1a1a; color: #e0e0e0; white-space: pre-wrap; word-wrap: break-word; }
</style>
</head>
<body>{{.Content}}</body>
</html>
`))

var imagePage = template.Must(template.New("image").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { margin: 0; display: flex; align-items: center; justify-content: center; min-height: 100vh; background: #1a1a1a; }
img { max-width: 100%; max-height: 100vh; object-fit: contain; }
</style>
</head>
<body><img src="{{.Src}}" alt=""></body>
</html>
`))

var downloadPage = template.Must(template.New("download").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: sans-serif; padding: 40px; background: #1a1a1a; color: #e0e0e0; text-align: center; }
h1 { color: #00ff88; }
.download-btn { display: inline-block; margin-top: 20px; padding: 12px 24px; background: #00ff88; color: #000; text-decoration: none; border-radius: 4px; font-weight: bold; }
</style>
</head>
<body>
<h1>Content Retrieved</h1>
<p>MIME Type: {{.MimeType}}</p>
<p>Size: {{.Size}} bytes</p>
<p>This content type cannot be displayed in the browser.</p>
{{if .Href}}<a class="download-btn" href="{{.Href}}" download="{{.Filename}}">Download Content</a>{{end}}
</body>
</html>
`))
