package dto

// CompanySettingsDTO perfil de la empresa emisora (GET/PUT /api/settings/company).
type CompanySettingsDTO struct {
	CompanyName    string `json:"companyName" validate:"required,min=1,max=200"`
	CompanyAddress string `json:"companyAddress" validate:"omitempty,max=500"`
	CompanyPhone   string `json:"companyPhone" validate:"omitempty,max=50"`
	CompanyEmail   string `json:"companyEmail" validate:"omitempty,email,max=200"`
	CompanyWebsite string `json:"companyWebsite" validate:"omitempty,max=200"`
}
