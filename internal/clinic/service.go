package clinic

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/kbukum/clinicq/database"
	apperrors "github.com/kbukum/clinicq/errors"
	"github.com/kbukum/clinicq/logger"
	"github.com/kbukum/clinicq/observability"
	"github.com/kbukum/clinicq/sse"
	"github.com/kbukum/clinicq/validation"
)

// Change is the payload attached to published events.
type Change struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	ID       string `json:"id"`
}

// Service implements the tenant-scoped clinic operations. Mutations commit
// first and publish afterwards; a failed mutation publishes nothing.
type Service struct {
	db        *database.DB
	repo      Repository
	publisher sse.Publisher
	log       *logger.Logger
}

// NewService creates a Service. publisher receives one event per committed mutation.
func NewService(db *database.DB, publisher sse.Publisher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Service{db: db, publisher: publisher, log: log.WithComponent("clinic")}
}

// mutate runs fn in a transaction and publishes eventType for tenant once it
// has committed. fn returns the id of the affected record.
func (s *Service) mutate(ctx context.Context, tenant, resource, action, eventType string, fn func(tx *gorm.DB) (string, error)) error {
	if tenant == "" {
		return apperrors.Unauthorized("")
	}
	ctx, span := observability.StartSpan(ctx, "clinic."+resource+"."+action,
		attribute.String(observability.AttrTenant, tenant),
		attribute.String(observability.AttrEventType, eventType),
	)

	var id string
	err := s.db.WithTransaction(ctx, func(tx *gorm.DB) error {
		var err error
		id, err = fn(tx)
		return err
	})
	if err != nil {
		err = translate(err, resource, "")
		observability.EndSpan(span, err)
		return err
	}
	span.SetAttributes(attribute.String(observability.AttrEntityID, id))

	report := s.publisher.Publish(ctx, tenant, eventType, Change{Resource: resource, Action: action, ID: id})
	s.log.WithContext(ctx).Debug("Change published", map[string]interface{}{
		logger.FieldTenant:    tenant,
		logger.FieldEventType: eventType,
		"delivered":           report.Delivered,
		"dropped":             report.Dropped,
	})
	observability.EndSpan(span, nil)
	return nil
}

func (s *Service) read(ctx context.Context, tenant string) (*gorm.DB, error) {
	if tenant == "" {
		return nil, apperrors.Unauthorized("")
	}
	return s.db.WithContext(ctx), nil
}

// translate maps err to an AppError. id is reported for not-found errors.
func translate(err error, resource, id string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(resource, id)
	}
	return database.FromDatabase(err, resource)
}

// CustomerExists reports whether id names an enabled customer.
func (s *Service) CustomerExists(ctx context.Context, id string) (bool, error) {
	ok, err := s.repo.CustomerExists(s.db.WithContext(ctx), id)
	if err != nil {
		return false, translate(err, "customer", id)
	}
	return ok, nil
}

// --- rooms ---

func (s *Service) ListRooms(ctx context.Context, tenant string) ([]Room, error) {
	db, err := s.read(ctx, tenant)
	if err != nil {
		return nil, err
	}
	rooms, err := s.repo.ListRooms(db, tenant)
	return rooms, translate(err, "room", "")
}

func (s *Service) GetRoom(ctx context.Context, tenant, id string) (*Room, error) {
	db, err := s.read(ctx, tenant)
	if err != nil {
		return nil, err
	}
	room, err := s.repo.GetRoom(db, tenant, id)
	if err != nil {
		return nil, translate(err, "room", id)
	}
	return room, nil
}

func (s *Service) CreateRoom(ctx context.Context, tenant string, req CreateRoomRequest) (*Room, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	room := &Room{
		TenantModel: TenantModel{CustomerID: tenant},
		Name:        req.Name,
		Capacity:    req.Capacity,
		DoctorName:  req.DoctorName,
	}
	err := s.mutate(ctx, tenant, "room", "create", sse.EventRoomUpdate, func(tx *gorm.DB) (string, error) {
		if err := s.repo.Create(tx, room); err != nil {
			return "", err
		}
		if req.PatientID != nil && *req.PatientID != "" {
			if err := s.assign(tx, tenant, room, *req.PatientID); err != nil {
				return "", err
			}
			if err := s.repo.Save(tx, room); err != nil {
				return "", err
			}
		}
		return room.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetRoom(ctx, tenant, room.ID)
}

func (s *Service) UpdateRoom(ctx context.Context, tenant, id string, req UpdateRoomRequest) (*Room, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	err := s.mutate(ctx, tenant, "room", "update", sse.EventRoomUpdate, func(tx *gorm.DB) (string, error) {
		room, err := s.repo.GetRoom(tx, tenant, id)
		if err != nil {
			return "", translate(err, "room", id)
		}
		if req.Name != nil {
			room.Name = *req.Name
		}
		if req.Capacity != nil {
			room.Capacity = *req.Capacity
		}
		if req.DoctorName != nil {
			room.DoctorName = *req.DoctorName
		}
		if req.PatientID != nil {
			if *req.PatientID == "" {
				room.PatientID = nil
			} else if err := s.assign(tx, tenant, room, *req.PatientID); err != nil {
				return "", err
			}
		}
		room.Patient = nil
		return room.ID, s.repo.Save(tx, room)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRoom(ctx, tenant, id)
}

func (s *Service) DeleteRoom(ctx context.Context, tenant, id string) error {
	return s.mutate(ctx, tenant, "room", "delete", sse.EventRoomUpdate, func(tx *gorm.DB) (string, error) {
		room, err := s.repo.GetRoom(tx, tenant, id)
		if err != nil {
			return "", translate(err, "room", id)
		}
		return room.ID, s.repo.DeleteRoom(tx, room)
	})
}

// CallNext assigns a patient to the room: req.PatientID when set, otherwise
// the head of the queue.
func (s *Service) CallNext(ctx context.Context, tenant, roomID string, req CallRequest) (*Room, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	err := s.mutate(ctx, tenant, "room", "call", sse.EventRoomUpdate, func(tx *gorm.DB) (string, error) {
		room, err := s.repo.GetRoom(tx, tenant, roomID)
		if err != nil {
			return "", translate(err, "room", roomID)
		}
		patientID := req.PatientID
		if patientID == "" {
			head, err := s.head(tx, tenant)
			if err != nil {
				return "", err
			}
			patientID = head.Patient.ID
		}
		if err := s.assign(tx, tenant, room, patientID); err != nil {
			return "", err
		}
		room.Patient = nil
		return room.ID, s.repo.Save(tx, room)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRoom(ctx, tenant, roomID)
}

// assign points room at patientID after checking the patient belongs to the
// tenant and is not seated in another room. The caller saves room.
func (s *Service) assign(tx *gorm.DB, tenant string, room *Room, patientID string) error {
	id, err := validation.ParseID("patient_id", patientID)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetPatient(tx, tenant, id); err != nil {
		return translate(err, "patient", id)
	}
	current, err := s.repo.RoomOf(tx, tenant, id)
	switch {
	case err == nil && current.ID != room.ID:
		return apperrors.Conflict("The patient is already assigned to room " + current.Name + ".").
			WithDetail("room_id", current.ID)
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	room.PatientID = &id
	return nil
}

// --- patients ---

func (s *Service) ListPatients(ctx context.Context, tenant string) ([]Patient, error) {
	db, err := s.read(ctx, tenant)
	if err != nil {
		return nil, err
	}
	patients, err := s.repo.ListPatients(db, tenant)
	return patients, translate(err, "patient", "")
}

func (s *Service) GetPatient(ctx context.Context, tenant, id string) (*Patient, error) {
	db, err := s.read(ctx, tenant)
	if err != nil {
		return nil, err
	}
	patient, err := s.repo.GetPatient(db, tenant, id)
	if err != nil {
		return nil, translate(err, "patient", id)
	}
	return patient, nil
}

func (s *Service) CreatePatient(ctx context.Context, tenant string, req CreatePatientRequest) (*Patient, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	patient := &Patient{
		TenantModel: TenantModel{CustomerID: tenant},
		Name:        strings.TrimSpace(req.Name),
		Age:         req.Age,
		Gender:      req.Gender,
	}
	err := s.mutate(ctx, tenant, "patient", "create", sse.EventPatientUpdate, func(tx *gorm.DB) (string, error) {
		if req.TicketID != nil && *req.TicketID != "" {
			if err := s.attachTicket(tx, tenant, patient, *req.TicketID); err != nil {
				return "", err
			}
		}
		if err := s.repo.Create(tx, patient); err != nil {
			return "", err
		}
		return patient.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetPatient(ctx, tenant, patient.ID)
}

func (s *Service) UpdatePatient(ctx context.Context, tenant, id string, req UpdatePatientRequest) (*Patient, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	err := s.mutate(ctx, tenant, "patient", "update", sse.EventPatientUpdate, func(tx *gorm.DB) (string, error) {
		patient, err := s.repo.GetPatient(tx, tenant, id)
		if err != nil {
			return "", translate(err, "patient", id)
		}
		if req.Name != nil {
			patient.Name = strings.TrimSpace(*req.Name)
		}
		if req.Age != nil {
			patient.Age = *req.Age
		}
		if req.Gender != nil {
			patient.Gender = *req.Gender
		}
		if req.TicketID != nil {
			if *req.TicketID == "" {
				patient.TicketID = nil
			} else if err := s.attachTicket(tx, tenant, patient, *req.TicketID); err != nil {
				return "", err
			}
		}
		patient.Ticket = nil
		return patient.ID, s.repo.Save(tx, patient)
	})
	if err != nil {
		return nil, err
	}
	return s.GetPatient(ctx, tenant, id)
}

func (s *Service) DeletePatient(ctx context.Context, tenant, id string) error {
	return s.mutate(ctx, tenant, "patient", "delete", sse.EventPatientUpdate, func(tx *gorm.DB) (string, error) {
		patient, err := s.repo.GetPatient(tx, tenant, id)
		if err != nil {
			return "", translate(err, "patient", id)
		}
		return patient.ID, s.repo.DeletePatient(tx, patient)
	})
}

// attachTicket sets patient.TicketID after checking the ticket belongs to the
// tenant and no other patient holds it.
func (s *Service) attachTicket(tx *gorm.DB, tenant string, patient *Patient, ticketID string) error {
	id, err := validation.ParseID("ticket_id", ticketID)
	if err != nil {
		return err
	}
	if _, err := s.repo.GetTicket(tx, tenant, id); err != nil {
		return translate(err, "ticket", id)
	}
	inUse, err := s.repo.TicketInUse(tx, tenant, id, patient.ID)
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.Conflict("The ticket is already held by another patient.").WithDetail("ticket_id", id)
	}
	patient.TicketID = &id
	return nil
}

// --- tickets ---

func (s *Service) ListTickets(ctx context.Context, tenant string) ([]Ticket, error) {
	db, err := s.read(ctx, tenant)
	if err != nil {
		return nil, err
	}
	tickets, err := s.repo.ListTickets(db, tenant)
	return tickets, translate(err, "ticket", "")
}

func (s *Service) CreateTicket(ctx context.Context, tenant string, req CreateTicketRequest) (*Ticket, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	ticket := &Ticket{
		TenantModel: TenantModel{CustomerID: tenant},
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Type:        req.Type,
	}
	err := s.mutate(ctx, tenant, "ticket", "create", sse.EventTicketUpdate, func(tx *gorm.DB) (string, error) {
		if err := s.repo.Create(tx, ticket); err != nil {
			return "", err
		}
		return ticket.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *Service) DeleteTicket(ctx context.Context, tenant, id string) error {
	return s.mutate(ctx, tenant, "ticket", "delete", sse.EventTicketUpdate, func(tx *gorm.DB) (string, error) {
		ticket, err := s.repo.GetTicket(tx, tenant, id)
		if err != nil {
			return "", translate(err, "ticket", id)
		}
		return ticket.ID, s.repo.DeleteTicket(tx, ticket)
	})
}

// --- queue ---

// Queue lists waiting patients in call order.
func (s *Service) Queue(ctx context.Context, tenant string) ([]QueueEntry, error) {
	db, err := s.read(ctx, tenant)
	if err != nil {
		return nil, err
	}
	waiting, err := s.repo.ListWaiting(db, tenant)
	if err != nil {
		return nil, translate(err, "patient", "")
	}
	return orderQueue(waiting), nil
}

// Next returns the head of the queue, or NOT_FOUND when nobody is waiting.
func (s *Service) Next(ctx context.Context, tenant string) (*QueueEntry, error) {
	db, err := s.read(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return s.head(db, tenant)
}

func (s *Service) head(db *gorm.DB, tenant string) (*QueueEntry, error) {
	waiting, err := s.repo.ListWaiting(db, tenant)
	if err != nil {
		return nil, translate(err, "patient", "")
	}
	entries := orderQueue(waiting)
	if len(entries) == 0 {
		return nil, apperrors.NotFound("queue entry", "")
	}
	return &entries[0], nil
}
