package clinic

import (
	"github.com/kbukum/clinicq/database"
)

// TicketType is the triage priority printed on a ticket.
type TicketType string

const (
	TicketNormal    TicketType = "normal"
	TicketUrgent    TicketType = "urgent"
	TicketEmergency TicketType = "emergency"
)

// Priority ranks ticket types; higher is called first.
func (t TicketType) Priority() int {
	switch t {
	case TicketEmergency:
		return 2
	case TicketUrgent:
		return 1
	default:
		return 0
	}
}

// Customer is a clinic account and the tenant of every other record.
type Customer struct {
	database.BaseModel
	Name    string `gorm:"size:20;uniqueIndex;not null" json:"name"`
	CNPJ    string `gorm:"column:cnpj;size:14;uniqueIndex;not null" json:"cnpj"`
	Enabled bool   `gorm:"not null;default:true" json:"enabled"`
}

// TenantModel is embedded by every record that belongs to a customer.
type TenantModel struct {
	database.BaseModel
	CustomerID string `gorm:"size:36;index;not null" json:"customer_id"`
}

type Room struct {
	TenantModel
	Name       string   `gorm:"size:20;not null" json:"name"`
	Capacity   int      `gorm:"not null" json:"capacity"`
	DoctorName string   `gorm:"size:40" json:"doctor_name"`
	PatientID  *string  `gorm:"size:36;index" json:"patient_id"`
	Patient    *Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:SET NULL" json:"patient,omitempty"`
}

type Patient struct {
	TenantModel
	Name     string  `gorm:"size:40;not null" json:"name"`
	Age      int     `gorm:"not null" json:"age"`
	Gender   string  `gorm:"size:20;not null" json:"gender"`
	TicketID *string `gorm:"size:36;index" json:"ticket_id"`
	Ticket   *Ticket `gorm:"foreignKey:TicketID;constraint:OnDelete:SET NULL" json:"ticket,omitempty"`
}

type Ticket struct {
	TenantModel
	Code string     `gorm:"size:5;not null" json:"code"`
	Type TicketType `gorm:"size:20;not null" json:"type"`
}

// Models lists the tables owned by this package, in dependency order.
func Models() []interface{} {
	return []interface{}{&Customer{}, &Ticket{}, &Patient{}, &Room{}}
}
