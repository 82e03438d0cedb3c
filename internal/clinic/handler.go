package clinic

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/clinicq/errors"
	"github.com/kbukum/clinicq/logger"
	"github.com/kbukum/clinicq/server"
	"github.com/kbukum/clinicq/server/middleware"
	"github.com/kbukum/clinicq/sse"
	"github.com/kbukum/clinicq/validation"
)

// Handler exposes the clinic operations over HTTP. Routes expect the tenant
// middleware to have run.
type Handler struct {
	svc    *Service
	broker *sse.Broker
	log    *logger.Logger
}

func NewHandler(svc *Service, broker *sse.Broker, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Handler{svc: svc, broker: broker, log: log.WithComponent("clinic-http")}
}

// RegisterRoutes mounts the room, patient, ticket and queue routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	rooms := r.Group("/room")
	rooms.GET("/", h.listRooms)
	rooms.GET("/panel", h.panel)
	rooms.GET("/stream", h.stream)
	rooms.POST("/create/", h.createRoom)
	rooms.GET("/:id", h.getRoom)
	rooms.PUT("/:id", h.updateRoom)
	rooms.DELETE("/:id", h.deleteRoom)
	rooms.POST("/:id/call", h.callRoom)

	patients := r.Group("/patient")
	patients.GET("/", h.listPatients)
	patients.POST("/", h.createPatient)
	patients.GET("/:id", h.getPatient)
	patients.PUT("/:id", h.updatePatient)
	patients.DELETE("/:id", h.deletePatient)

	tickets := r.Group("/ticket")
	tickets.GET("/", h.listTickets)
	tickets.POST("/", h.createTicket)
	tickets.DELETE("/:id", h.deleteTicket)

	queue := r.Group("/queue")
	queue.GET("/", h.queue)
	queue.GET("/next", h.next)
}

// bind decodes the JSON body into dst. An empty body leaves dst untouched
// when optional is set.
func bind(c *gin.Context, dst any, optional bool) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.InvalidInput("body", "request body must be valid JSON").WithCause(err)
	}
	return nil
}

func pathID(c *gin.Context) (string, bool) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return "", false
	}
	return id, true
}

// stream verifies the customer and hands the connection to the broker.
func (h *Handler) stream(c *gin.Context) {
	tenant := middleware.TenantFrom(c)
	ok, err := h.svc.CustomerExists(c.Request.Context(), tenant)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if !ok {
		server.RespondWithError(c, apperrors.NotFound("customer", tenant))
		return
	}
	sse.ServeSSE(h.broker, c.Writer, c.Request, tenant)
}

func (h *Handler) listRooms(c *gin.Context) {
	rooms, err := h.svc.ListRooms(c.Request.Context(), middleware.TenantFrom(c))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, rooms)
}

func (h *Handler) getRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	room, err := h.svc.GetRoom(c.Request.Context(), middleware.TenantFrom(c), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, room)
}

func (h *Handler) createRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := bind(c, &req, false); err != nil {
		server.RespondWithError(c, err)
		return
	}
	room, err := h.svc.CreateRoom(c.Request.Context(), middleware.TenantFrom(c), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, room)
}

func (h *Handler) updateRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateRoomRequest
	if err := bind(c, &req, false); err != nil {
		server.RespondWithError(c, err)
		return
	}
	room, err := h.svc.UpdateRoom(c.Request.Context(), middleware.TenantFrom(c), id, req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, room)
}

func (h *Handler) deleteRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteRoom(c.Request.Context(), middleware.TenantFrom(c), id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) callRoom(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req CallRequest
	if err := bind(c, &req, true); err != nil {
		server.RespondWithError(c, err)
		return
	}
	room, err := h.svc.CallNext(c.Request.Context(), middleware.TenantFrom(c), id, req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, room)
}

func (h *Handler) listPatients(c *gin.Context) {
	patients, err := h.svc.ListPatients(c.Request.Context(), middleware.TenantFrom(c))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, patients)
}

func (h *Handler) getPatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	patient, err := h.svc.GetPatient(c.Request.Context(), middleware.TenantFrom(c), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, patient)
}

func (h *Handler) createPatient(c *gin.Context) {
	var req CreatePatientRequest
	if err := bind(c, &req, false); err != nil {
		server.RespondWithError(c, err)
		return
	}
	patient, err := h.svc.CreatePatient(c.Request.Context(), middleware.TenantFrom(c), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, patient)
}

func (h *Handler) updatePatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdatePatientRequest
	if err := bind(c, &req, false); err != nil {
		server.RespondWithError(c, err)
		return
	}
	patient, err := h.svc.UpdatePatient(c.Request.Context(), middleware.TenantFrom(c), id, req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, patient)
}

func (h *Handler) deletePatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeletePatient(c.Request.Context(), middleware.TenantFrom(c), id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) listTickets(c *gin.Context) {
	tickets, err := h.svc.ListTickets(c.Request.Context(), middleware.TenantFrom(c))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, tickets)
}

func (h *Handler) createTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := bind(c, &req, false); err != nil {
		server.RespondWithError(c, err)
		return
	}
	ticket, err := h.svc.CreateTicket(c.Request.Context(), middleware.TenantFrom(c), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, ticket)
}

func (h *Handler) deleteTicket(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteTicket(c.Request.Context(), middleware.TenantFrom(c), id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) queue(c *gin.Context) {
	entries, err := h.svc.Queue(c.Request.Context(), middleware.TenantFrom(c))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, entries)
}

func (h *Handler) next(c *gin.Context) {
	entry, err := h.svc.Next(c.Request.Context(), middleware.TenantFrom(c))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, entry)
}
