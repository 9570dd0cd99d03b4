package billing

import (
	"time"

	"github.com/jhoicas/invoice-manager/internal/application/dto"
	dbilling "github.com/jhoicas/invoice-manager/internal/domain/billing"
	"github.com/jhoicas/invoice-manager/internal/domain/entity"
)

// ToInvoiceResponse convierte la entidad en DTO; today se usa para due_state.
func ToInvoiceResponse(inv *entity.Invoice, today time.Time) dto.InvoiceResponse {
	out := dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Customer:      toCustomerDTO(inv.Customer),
		InvoiceDate:   formatDate(inv.InvoiceDate),
		DueDate:       formatDate(inv.DueDate),
		Items:         make([]dto.InvoiceItemResponse, 0, len(inv.Items)),
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		PaymentStatus: string(inv.PaymentStatus),
		DueState:      string(dbilling.ClassifyDue(inv.PaymentStatus == entity.PaymentStatusPending, inv.DueDate, today)),
		Notes:         inv.Notes,
		Terms:         inv.Terms,
	}
	for _, it := range inv.Items {
		out.Items = append(out.Items, dto.InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
	}
	if !inv.CreatedAt.IsZero() {
		c := inv.CreatedAt
		out.CreatedAt = &c
	}
	if !inv.UpdatedAt.IsZero() {
		u := inv.UpdatedAt
		out.UpdatedAt = &u
	}
	return out
}

func toCustomerDTO(c entity.Customer) dto.CustomerDTO {
	return dto.CustomerDTO{
		Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address,
		City: c.City, State: c.State, PostalCode: c.PostalCode, Country: c.Country,
	}
}

func toSuggestion(inv *entity.Invoice) dbilling.CustomerSuggestion {
	c := inv.Customer
	return dbilling.CustomerSuggestion{
		Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address,
		City: c.City, State: c.State, PostalCode: c.PostalCode, Country: c.Country,
		InvoiceDate: inv.InvoiceDate,
		CreatedAt:   inv.CreatedAt,
	}
}

func toSuggestionDTO(s dbilling.CustomerSuggestion) dto.CustomerSuggestionDTO {
	return dto.CustomerSuggestionDTO{
		Name: s.Name, Email: s.Email, Phone: s.Phone, Address: s.Address,
		City: s.City, State: s.State, PostalCode: s.PostalCode, Country: s.Country,
	}
}

func toClientResponse(c *entity.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:            c.ID,
		Name:          c.Name,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		City:          c.City,
		State:         c.State,
		PostalCode:    c.PostalCode,
		Country:       c.Country,
		GSTNumber:     c.GSTNumber,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dto.DateLayout)
}
