package clinic

// CreateRoomRequest is the body of POST /room/create/.
type CreateRoomRequest struct {
	Name       string  `json:"name" validate:"required,max=20"`
	Capacity   int     `json:"capacity" validate:"required,gte=1,lte=100"`
	DoctorName string  `json:"doctor_name" validate:"max=40"`
	PatientID  *string `json:"patient_id"`
}

// UpdateRoomRequest is a partial update; nil fields are left untouched and
// an empty patient_id frees the room.
type UpdateRoomRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=20"`
	Capacity   *int    `json:"capacity" validate:"omitempty,gte=1,lte=100"`
	DoctorName *string `json:"doctor_name" validate:"omitempty,max=40"`
	PatientID  *string `json:"patient_id"`
}

type CreatePatientRequest struct {
	Name     string  `json:"name" validate:"required,max=40"`
	Age      int     `json:"age" validate:"gte=0,lte=150"`
	Gender   string  `json:"gender" validate:"required,max=20"`
	TicketID *string `json:"ticket_id"`
}

// UpdatePatientRequest is a partial update; an empty ticket_id detaches the ticket.
type UpdatePatientRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=40"`
	Age      *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender   *string `json:"gender" validate:"omitempty,min=1,max=20"`
	TicketID *string `json:"ticket_id"`
}

type CreateTicketRequest struct {
	Code string     `json:"code" validate:"required,max=5"`
	Type TicketType `json:"type" validate:"required,oneof=normal urgent emergency"`
}

// CallRequest is the optional body of POST /room/:id/call. Without a patient
// the head of the queue is called.
type CallRequest struct {
	PatientID string `json:"patient_id" validate:"omitempty,uuid"`
}
