package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"meshbrowse/contentid"
	"meshbrowse/daemon"
	"meshbrowse/dispatch"
	"meshbrowse/logger"
	"meshbrowse/navigation"
	"meshbrowse/render"
)

const maxCommandBytes = 1 << 20

func (s *Server) health(c *gin.Context) {
	st := s.status.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"daemonConnected": st.Connected,
	})
}

type historyEntry struct {
	ID      contentid.ID
	Current bool
}

func (s *Server) home(c *gin.Context) {
	sess := sessionOf(c)
	st := s.status.Snapshot()
	if !st.Connected {
		// the page reloads itself while offline; look again rather than
		// wait for the next poll
		if live := s.status.Status(c.Request.Context()); live.Connected || st.LastCheck.IsZero() {
			st = live
		}
	}
	v := sess.nav.View()

	entries := make([]historyEntry, len(v.History))
	for i, id := range v.History {
		entries[len(v.History)-1-i] = historyEntry{ID: id, Current: i == v.Index}
	}
	c.HTML(http.StatusOK, "home", gin.H{
		"Status":    st,
		"CacheSize": daemon.FormatBytes(st.CacheSize),
		"View":      v,
		"History":   entries,
	})
}

// open is the interception entry for ctt:// navigations. The address form
// also submits bare hashes here.
func (s *Server) open(c *gin.Context) {
	sess := sessionOf(c)
	raw := c.Query("url")
	ev := navigation.Event{URL: raw, TopLevel: c.GetHeader("Sec-Fetch-Dest") != "iframe"}

	out, handled := sess.nav.Intercept(c.Request.Context(), ev)
	if !handled {
		if !ev.TopLevel {
			c.Status(http.StatusNoContent)
			return
		}
		out = sess.nav.Navigate(c.Request.Context(), raw)
	}
	c.Redirect(http.StatusFound, out.Redirect())
}

func (s *Server) nav(c *gin.Context) {
	sess := sessionOf(c)
	ctx := c.Request.Context()

	var out navigation.Outcome
	switch c.Param("action") {
	case "back":
		out = sess.nav.Back(ctx)
	case "forward":
		out = sess.nav.Forward(ctx)
	case "refresh":
		out = sess.nav.Refresh(ctx)
	case "home":
		out = sess.nav.Home()
	default:
		c.Status(http.StatusNotFound)
		return
	}
	c.Redirect(http.StatusSeeOther, out.Redirect())
}

func (s *Server) view(c *gin.Context) {
	sess := sessionOf(c)
	data := gin.H{"View": sess.nav.View()}

	raw := c.Query("hash")
	if raw == "" {
		data["Error"] = "No content hash provided"
		c.HTML(http.StatusBadRequest, "viewer", data)
		return
	}
	id, err := contentid.Parse(raw)
	if err != nil {
		data["Error"] = err.Error()
		c.HTML(http.StatusBadRequest, "viewer", data)
		return
	}
	data["ID"] = id

	p, ok, err := sess.content.Get(c.Request.Context(), id)
	if err != nil {
		s.log.Error("Failed to read session content", logger.String("hash", id.String()), logger.Error(err))
		data["Error"] = "Failed to read content from session"
		c.HTML(http.StatusInternalServerError, "viewer", data)
		return
	}
	if !ok {
		data["Error"] = "Content not found in session"
		c.HTML(http.StatusNotFound, "viewer", data)
		return
	}

	opts := render.Options{}
	if s.rewriteLinks {
		opts.OpenPath = "/open"
	}
	token := s.surfaces.Publish(sess.id, func(token string) render.Surface {
		o := opts
		o.DownloadHref = "/surface/" + token + "/download"
		return render.Render(id, p, o)
	})

	data["Token"] = token
	data["Cached"] = p.Source == daemon.SourceCache
	data["Badge"] = render.SourceLabel(p.Source)
	data["MimeType"] = p.MimeType
	data["Sandbox"] = sandboxAttr
	c.HTML(http.StatusOK, "viewer", data)
}

// sandboxAttr mirrors render.SandboxPolicy as an iframe attribute.
const sandboxAttr = "allow-downloads allow-popups allow-top-navigation-by-user-activation"

func (s *Server) surface(c *gin.Context) {
	sf, ok := s.surfaces.Open(c.Param("token"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	h := c.Writer.Header()
	h.Set("Content-Security-Policy", render.SandboxPolicy)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "no-store")
	c.Data(http.StatusOK, render.FrameContentType, sf.Body)
}

func (s *Server) download(c *gin.Context) {
	sf, ok := s.surfaces.Open(c.Param("token"))
	if !ok || sf.Kind != render.KindBinary {
		c.Status(http.StatusNotFound)
		return
	}
	mime := sf.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	h := c.Writer.Header()
	h.Set("Content-Disposition", "attachment; filename="+strconv.Quote(sf.Filename))
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Security-Policy", render.SandboxPolicy)
	c.Data(http.StatusOK, mime, sf.Download)
}

func (s *Server) errorPage(c *gin.Context) {
	msg := c.Query("message")
	if msg == "" {
		msg = "Unknown error"
	}
	c.HTML(http.StatusOK, "error", gin.H{"Message": msg})
}

func (s *Server) command(c *gin.Context) {
	sess := sessionOf(c)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCommandBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, dispatch.ErrorResponse{Error: "read message: " + err.Error()})
		return
	}
	resp := sess.dispatch.HandleJSON(c.Request.Context(), body)
	if _, isErr := resp.(dispatch.ErrorResponse); isErr {
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
