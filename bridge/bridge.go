package bridge

import (
	"encoding/base64"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"meshbrowse/contentid"
	"meshbrowse/daemon"
	"meshbrowse/logger"
)

type statusResponse struct {
	Status    string `json:"status"`
	Nodes     int    `json:"nodes"`
	CacheSize uint64 `json:"cache_size"`
}

type retrieveResponse struct {
	Success  bool   `json:"success"`
	Content  string `json:"content,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Source   string `json:"source,omitempty"`
	Hash     string `json:"hash,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Handler serves the daemon contract from a Cache.
type Handler struct {
	cache *Cache
	log   logger.Logger
}

// NewHandler returns a handler for cache.
func NewHandler(cache *Cache, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{cache: cache, log: log}
}

// Register mounts the bridge routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.Use(allowAnyOrigin)
	r.GET("/status", h.status)
	r.GET("/retrieve/:hash", h.retrieve)
}

func allowAnyOrigin(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Next()
}

func (h *Handler) status(c *gin.Context) {
	size, err := h.cache.Size()
	if err != nil {
		h.log.Warn("Failed to size cache", logger.Error(err))
	}
	c.JSON(http.StatusOK, statusResponse{Status: "online", Nodes: 1, CacheSize: size})
}

func (h *Handler) retrieve(c *gin.Context) {
	raw := c.Param("hash")
	id, err := contentid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, retrieveResponse{Error: err.Error()})
		return
	}

	data, err := h.cache.Get(id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, retrieveResponse{Error: "Content not found"})
		return
	}
	if err != nil {
		h.log.Error("Failed to read cached content", logger.String("hash", id.String()), logger.Error(err))
		c.JSON(http.StatusInternalServerError, retrieveResponse{Error: "Failed to read content"})
		return
	}

	content := string(data)
	if !utf8.Valid(data) {
		// JSON strings cannot carry raw bytes; images are decoded by the viewer
		content = base64.StdEncoding.EncodeToString(data)
	}
	c.JSON(http.StatusOK, retrieveResponse{
		Success:  true,
		Content:  content,
		MimeType: http.DetectContentType(data),
		Source:   string(daemon.SourceCache),
		Hash:     id.String(),
	})
}
