// internal/model/tenant.go
package model

import "time"

type EmailSettings struct {
	SenderName   string `json:"senderName"`
	SenderEmail  string `json:"senderEmail"`
	EmailSubject string `json:"emailSubject"`
}

// Tenant is a company account. Tenants partition every other record.
type Tenant struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	CompanyName    string         `json:"companyName"`
	LogoURL        string         `json:"logoUrl,omitempty"`
	BrandColor     string         `json:"brandColor"`
	Departments    []string       `json:"departments"`
	IntroText      string         `json:"introText"`
	CareersPageURL string         `json:"careersPageUrl"`
	EmailSettings  *EmailSettings `json:"emailSettings,omitempty"`
	ATSProvider    string         `json:"atsProvider,omitempty"`
	CompanyATSID   string         `json:"companyAtsId,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Registration is the input of tenant sign-up. Empty optional fields are
// filled from the configured tenant defaults.
type Registration struct {
	Email          string         `json:"email"`
	Password       string         `json:"password"`
	CompanyName    string         `json:"companyName"`
	LogoURL        string         `json:"logoUrl,omitempty"`
	BrandColor     string         `json:"brandColor,omitempty"`
	Departments    []string       `json:"departments,omitempty"`
	IntroText      string         `json:"introText,omitempty"`
	CareersPageURL string         `json:"careersPageUrl,omitempty"`
	EmailSettings  *EmailSettings `json:"emailSettings,omitempty"`
}

// TenantPatch carries a partial tenant update. Nil fields keep their value.
type TenantPatch struct {
	Email          *string        `json:"email,omitempty"`
	CompanyName    *string        `json:"companyName,omitempty"`
	LogoURL        *string        `json:"logoUrl,omitempty"`
	BrandColor     *string        `json:"brandColor,omitempty"`
	Departments    *[]string      `json:"departments,omitempty"`
	IntroText      *string        `json:"introText,omitempty"`
	CareersPageURL *string        `json:"careersPageUrl,omitempty"`
	EmailSettings  *EmailSettings `json:"emailSettings,omitempty"`
	ATSProvider    *string        `json:"atsProvider,omitempty"`
	CompanyATSID   *string        `json:"companyAtsId,omitempty"`
}

func (t *Tenant) Apply(p TenantPatch) {
	setString(&t.Email, p.Email)
	setString(&t.CompanyName, p.CompanyName)
	setString(&t.LogoURL, p.LogoURL)
	setString(&t.BrandColor, p.BrandColor)
	setList(&t.Departments, p.Departments)
	setString(&t.IntroText, p.IntroText)
	setString(&t.CareersPageURL, p.CareersPageURL)
	if p.EmailSettings != nil {
		settings := *p.EmailSettings
		t.EmailSettings = &settings
	}
	setString(&t.ATSProvider, p.ATSProvider)
	setString(&t.CompanyATSID, p.CompanyATSID)
}

// Branding is the public part of a tenant shown on its subscription page.
type Branding struct {
	ID             string   `json:"id"`
	CompanyName    string   `json:"companyName"`
	LogoURL        string   `json:"logoUrl,omitempty"`
	BrandColor     string   `json:"brandColor"`
	Departments    []string `json:"departments"`
	IntroText      string   `json:"introText"`
	CareersPageURL string   `json:"careersPageUrl"`
}

func (t Tenant) Branding() Branding {
	return Branding{
		ID:             t.ID,
		CompanyName:    t.CompanyName,
		LogoURL:        t.LogoURL,
		BrandColor:     t.BrandColor,
		Departments:    t.Departments,
		IntroText:      t.IntroText,
		CareersPageURL: t.CareersPageURL,
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setList(dst *[]string, v *[]string) {
	if v != nil {
		*dst = append([]string{}, (*v)...)
	}
}
