package entity

// CompanySettings perfil de la empresa emisora (aparece en PDF y correos).
// Los valores son instantáneas inmutables: para cambiarlos se guarda una nueva.
type CompanySettings struct {
	Name    string `json:"companyName"`
	Address string `json:"companyAddress"`
	Phone   string `json:"companyPhone"`
	Email   string `json:"companyEmail"`
	Website string `json:"companyWebsite"`
}

// PlaceholderCompanySettings valores de "restablecer" mostrados en el formulario de ajustes.
func PlaceholderCompanySettings() CompanySettings {
	return CompanySettings{
		Name:    "Your Company Name",
		Address: "Your Company Address",
		Phone:   "Your Phone Number",
		Email:   "your-email@company.com",
		Website: "www.yourcompany.com",
	}
}
