package clinic

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kbukum/clinicq/database/migration"
)

// Sample tenants created by the seed migration. Their ids are stable so a
// browser can be pointed at /cookie/create/?customer_id=<id>.
const (
	SampleCustomerA = "6f1c2a10-8f3e-4c1b-9a55-0a1d2c3b4e01"
	SampleCustomerB = "6f1c2a10-8f3e-4c1b-9a55-0a1d2c3b4e02"
)

var sampleCustomers = []Customer{
	{Name: "Rogerio", CNPJ: "20223324000104", Enabled: true},
	{Name: "Gustavo", CNPJ: "50229669000128", Enabled: true},
}

// Migrations returns the data migrations of the clinic domain. The schema
// itself is created by the database component's auto-migration.
func Migrations(seed bool) []migration.Migration {
	if !seed {
		return nil
	}
	return []migration.Migration{{
		ID:          "0001_sample_data",
		Description: "two sample customers with rooms, patients and tickets",
		Up:          SeedSampleData,
	}}
}

// SeedSampleData inserts the sample customers and their records. Customers
// that already exist, matched by name, are left untouched.
func SeedSampleData(tx *gorm.DB) error {
	ids := []string{SampleCustomerA, SampleCustomerB}
	for i, c := range sampleCustomers {
		var existing Customer
		err := tx.Where("name = ?", c.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		c.ID = ids[i]
		if err := tx.Create(&c).Error; err != nil {
			return fmt.Errorf("seed customer %s: %w", c.Name, err)
		}
		if err := seedTenant(tx, c.ID); err != nil {
			return fmt.Errorf("seed customer %s: %w", c.Name, err)
		}
	}
	return nil
}

func seedTenant(tx *gorm.DB, tenant string) error {
	owned := TenantModel{CustomerID: tenant}

	tickets := []Ticket{
		{TenantModel: owned, Code: "E123", Type: TicketEmergency},
		{TenantModel: owned, Code: "N456", Type: TicketNormal},
		{TenantModel: owned, Code: "U789", Type: TicketUrgent},
	}
	for i := range tickets {
		if err := tx.Create(&tickets[i]).Error; err != nil {
			return err
		}
	}

	patients := []Patient{
		{TenantModel: owned, Name: "José Joaquim", Age: 70, Gender: "male"},
		{TenantModel: owned, Name: "Paulo Henrique", Age: 99, Gender: "male"},
		{TenantModel: owned, Name: "Jacinto Santos", Age: 101, Gender: "male"},
	}
	for i := range patients {
		patients[i].TicketID = &tickets[i].ID
		if err := tx.Create(&patients[i]).Error; err != nil {
			return err
		}
	}

	rooms := []Room{
		{TenantModel: owned, Name: "Sala 1", Capacity: 1, DoctorName: "Dr. Rogerio"},
		{TenantModel: owned, Name: "Sala 2", Capacity: 1, DoctorName: "Dr. Gustavo"},
		{TenantModel: owned, Name: "Sala 3", Capacity: 1, DoctorName: "Dr. Rogerio"},
	}
	return tx.Create(&rooms).Error
}
