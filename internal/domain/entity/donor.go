package entity

import "time"

// Donor is a person or organisation that donates
type Donor struct {
	Name      string    `json:"name"`
	DonorName string    `json:"donor_name"`
	DonorType string    `json:"donor_type"`
	Email     string    `json:"email"`
	Mobile    string    `json:"mobile"`
	PANNumber string    `json:"pan_number"`
	Customer  string    `json:"customer"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DonorType classifies donors and names the item billed on their invoices
type DonorType struct {
	Name       string `json:"name"`
	LinkedItem string `json:"linked_item"`
}

// Customer is the billing party created for a donor
type Customer struct {
	Name          string    `json:"name"`
	CustomerName  string    `json:"customer_name"`
	CustomerType  string    `json:"customer_type"`
	CustomerGroup string    `json:"customer_group"`
	Territory     string    `json:"territory"`
	Email         string    `json:"email"`
	Mobile        string    `json:"mobile"`
	CreatedAt     time.Time `json:"created_at"`
}

// Fields returns the donor as a flat field map
func (d *Donor) Fields() map[string]interface{} {
	return map[string]interface{}{
		"name":       d.Name,
		"donor_name": d.DonorName,
		"donor_type": d.DonorType,
		"email":      d.Email,
		"mobile":     d.Mobile,
		"pan_number": d.PANNumber,
		"customer":   d.Customer,
	}
}
