package clinic

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/kbukum/clinicq/server"
	"github.com/kbukum/clinicq/server/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var panelTemplate = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

type panelData struct {
	Rooms  []Room
	Queue  []QueueEntry
	Stream string
}

func (h *Handler) panel(c *gin.Context) {
	ctx := c.Request.Context()
	tenant := middleware.TenantFrom(c)

	rooms, err := h.svc.ListRooms(ctx, tenant)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	queue, err := h.svc.Queue(ctx, tenant)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	c.Render(http.StatusOK, render.HTML{
		Template: panelTemplate,
		Name:     "panel.html",
		Data:     panelData{Rooms: rooms, Queue: queue, Stream: "/room/stream"},
	})
}
