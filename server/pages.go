package server

import "html/template"

var pages = template.Must(template.New("pages").Parse(`
{{define "head"}}<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.}} - CTT Mesh Browser</title>
<style>
body { font-family: sans-serif; margin: 0; background: #0f0f0f; color: #e0e0e0; }
header { display: flex; gap: 12px; align-items: center; padding: 10px 16px; background: #1a1a1a; border-bottom: 1px solid #333; }
header form { display: inline; margin: 0; }
button { background: #222; color: #e0e0e0; border: 1px solid #444; border-radius: 4px; padding: 4px 10px; cursor: pointer; }
button:disabled { opacity: 0.4; cursor: default; }
main { padding: 20px; }
.hash { font-family: monospace; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; max-width: 60%; }
.badge { padding: 2px 8px; border: 1px solid; border-radius: 10px; font-size: 0.85em; }
.badge.cache { color: #00ff88; border-color: #00ff88; background: rgba(0, 255, 136, 0.2); }
.badge.peer { color: #0088ff; border-color: #0088ff; background: rgba(0, 136, 255, 0.2); }
.online { color: #00ff88; }
.offline { color: #ff4444; }
.error { color: #ff4444; }
iframe { border: 0; width: 100%; height: calc(100vh - 52px); background: #1a1a1a; }
input[type=text] { width: 60%; padding: 6px; font-family: monospace; background: #1a1a1a; color: #e0e0e0; border: 1px solid #444; }
li.current { font-weight: bold; }
fieldset { border: 0; margin: 0; padding: 0; }
a { color: #00ff88; }
</style>
{{end}}

{{define "controls"}}
<form method="post" action="/nav/back"><button {{if not .CanBack}}disabled{{end}}>&larr;</button></form>
<form method="post" action="/nav/forward"><button {{if not .CanForward}}disabled{{end}}>&rarr;</button></form>
<form method="post" action="/nav/refresh"><button {{if not .Current}}disabled{{end}}>&#x27f3;</button></form>
<form method="post" action="/nav/home"><button>Home</button></form>
{{end}}

{{define "home"}}{{template "head" "Home"}}
{{if not .Status.Connected}}<meta http-equiv="refresh" content="5">{{end}}
</head>
<body>
<header>{{template "controls" .View}}<strong>CTT Mesh Browser</strong></header>
<main>
<p>
{{if .Status.Connected}}<span class="online">&#9679; Connected</span>{{else}}<span class="offline">&#9679; Disconnected</span>{{end}}
&middot; Nodes: {{.Status.NodeCount}} &middot; Cache: {{.CacheSize}}
</p>
<form method="get" action="/open">
<fieldset {{if not .Status.Connected}}disabled{{end}}>
<input type="text" name="url" placeholder="ctt://&lt;64-character hash&gt;" autofocus>
<button type="submit">Go</button>
</fieldset>
</form>
{{if not .Status.Connected}}<p class="error">Start ctt_mesh_daemon first</p>{{end}}
{{with .View.LastError}}<p class="error">{{.}}</p>{{end}}
{{if .History}}
<h3>History</h3>
<ol>
{{range .History}}<li{{if .Current}} class="current"{{end}}><a class="hash" href="/view?hash={{.ID}}">ctt://{{.ID}}</a></li>
{{end}}
</ol>
{{end}}
</main>
</body>
</html>
{{end}}

{{define "viewer"}}{{template "head" "Viewer"}}
</head>
<body>
<header>
{{template "controls" .View}}
{{with .ID}}<span class="hash" title="ctt://{{.}}">ctt://{{.}}</span>{{end}}
{{if .Token}}{{if .Cached}}<span class="badge cache">&#128230; {{.Badge}}</span>{{else}}<span class="badge peer">&#127760; {{.Badge}}</span>{{end}}{{end}}
</header>
{{if .Error}}<main><p class="error">Error: {{.Error}}</p></main>
{{else}}<iframe id="content-frame" src="/surface/{{.Token}}" sandbox="{{.Sandbox}}"></iframe>
{{end}}
</body>
</html>
{{end}}

{{define "error"}}{{template "head" "Error"}}
</head>
<body>
<main>
<h1 class="error">Navigation failed</h1>
<p>{{.Message}}</p>
<p><a href="/">Back to home</a></p>
</main>
</body>
</html>
{{end}}
`))
