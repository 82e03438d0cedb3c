package clinic

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository holds the tenant-scoped queries. Every method takes the session
// to run on so callers control the transaction.
type Repository struct{}

func scoped(db *gorm.DB, tenant string) *gorm.DB {
	return db.Where("customer_id = ?", tenant)
}

func (Repository) CustomerExists(db *gorm.DB, id string) (bool, error) {
	var count int64
	err := db.Model(&Customer{}).Where("id = ? AND enabled = ?", id, true).Count(&count).Error
	return count > 0, err
}

func (Repository) ListRooms(db *gorm.DB, tenant string) ([]Room, error) {
	var rooms []Room
	err := scoped(db, tenant).Preload("Patient.Ticket").Order("name, created_at").Find(&rooms).Error
	return rooms, err
}

func (Repository) GetRoom(db *gorm.DB, tenant, id string) (*Room, error) {
	var room Room
	if err := scoped(db, tenant).Preload("Patient.Ticket").First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// RoomOf returns the room a patient is assigned to, or gorm.ErrRecordNotFound.
func (Repository) RoomOf(db *gorm.DB, tenant, patientID string) (*Room, error) {
	var room Room
	if err := scoped(db, tenant).First(&room, "patient_id = ?", patientID).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (Repository) ListPatients(db *gorm.DB, tenant string) ([]Patient, error) {
	var patients []Patient
	err := scoped(db, tenant).Preload("Ticket").Order("created_at, id").Find(&patients).Error
	return patients, err
}

// ListWaiting returns the tenant's patients that hold a ticket and are not
// assigned to any room. Order is unspecified.
func (Repository) ListWaiting(db *gorm.DB, tenant string) ([]Patient, error) {
	var patients []Patient
	assigned := db.Model(&Room{}).
		Select("patient_id").
		Where("customer_id = ? AND patient_id IS NOT NULL", tenant)
	err := scoped(db, tenant).
		Preload("Ticket").
		Where("ticket_id IS NOT NULL").
		Where("id NOT IN (?)", assigned).
		Find(&patients).Error
	return patients, err
}

func (Repository) GetPatient(db *gorm.DB, tenant, id string) (*Patient, error) {
	var patient Patient
	if err := scoped(db, tenant).Preload("Ticket").First(&patient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

func (Repository) ListTickets(db *gorm.DB, tenant string) ([]Ticket, error) {
	var tickets []Ticket
	err := scoped(db, tenant).Order("created_at, id").Find(&tickets).Error
	return tickets, err
}

func (Repository) GetTicket(db *gorm.DB, tenant, id string) (*Ticket, error) {
	var ticket Ticket
	if err := scoped(db, tenant).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// TicketInUse reports whether a patient other than exceptPatient holds ticketID.
func (Repository) TicketInUse(db *gorm.DB, tenant, ticketID, exceptPatient string) (bool, error) {
	var count int64
	err := scoped(db.Model(&Patient{}), tenant).
		Where("ticket_id = ? AND id <> ?", ticketID, exceptPatient).
		Count(&count).Error
	return count > 0, err
}

func (Repository) Create(db *gorm.DB, v interface{}) error {
	return db.Create(v).Error
}

// Save writes every column of v, including nil foreign keys.
func (Repository) Save(db *gorm.DB, v interface{}) error {
	return db.Omit(clause.Associations).Save(v).Error
}

func (Repository) DeleteRoom(db *gorm.DB, room *Room) error {
	return db.Delete(room).Error
}

// DeletePatient frees any room holding the patient before deleting it.
func (Repository) DeletePatient(db *gorm.DB, patient *Patient) error {
	if err := db.Model(&Room{}).
		Where("customer_id = ? AND patient_id = ?", patient.CustomerID, patient.ID).
		Update("patient_id", nil).Error; err != nil {
		return err
	}
	return db.Delete(patient).Error
}

func (Repository) DeleteTicket(db *gorm.DB, ticket *Ticket) error {
	if err := db.Model(&Patient{}).
		Where("customer_id = ? AND ticket_id = ?", ticket.CustomerID, ticket.ID).
		Update("ticket_id", nil).Error; err != nil {
		return err
	}
	return db.Delete(ticket).Error
}
