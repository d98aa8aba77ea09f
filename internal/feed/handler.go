package feed

import (
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the live snapshot stream.
func (h *Hub) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/feed", h.StreamHandler)
}

// StreamHandler serves the observer stream as server-sent events. The client
// receives a "snapshot" event immediately on connect and another after every
// successful ingest. A write failure or client disconnect detaches the
// observer; nothing propagates back to the ingest path.
func (h *Hub) StreamHandler(c *gin.Context) {
	sub := h.Attach()
	defer h.Detach(sub.ID)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case snap, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snap)
			return true
		case <-c.Request.Context().Done():
			slog.Info("Observer stream closed by client", "subscription_id", sub.ID)
			return false
		}
	})
}
