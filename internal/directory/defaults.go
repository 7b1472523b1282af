package directory

import (
	"slices"
	"strings"
	"time"

	"talent-pipeline/internal/model"
)

// DemoTenantID is the reserved id of the always-available demo tenant.
const DemoTenantID = "demo-company"

const companyPlaceholder = "{company}"

// TenantDefaults fills the optional fields a registration leaves empty.
// IntroTemplate may reference the company name as {company}.
type TenantDefaults struct {
	BrandColor     string
	Departments    []string
	IntroTemplate  string
	CareersPageURL string
}

func DefaultTenantDefaults() TenantDefaults {
	return TenantDefaults{
		BrandColor:     "#3B82F6",
		Departments:    []string{"Engineering", "Product", "Marketing", "Sales"},
		IntroTemplate:  "Join our team at {company}! We're always looking for talented individuals.",
		CareersPageURL: "#",
	}
}

func (td TenantDefaults) Intro(company string) string {
	return strings.ReplaceAll(td.IntroTemplate, companyPlaceholder, company)
}

// withFallback replaces blank fields with the built-in defaults.
func (td TenantDefaults) withFallback() TenantDefaults {
	def := DefaultTenantDefaults()
	if td.BrandColor == "" {
		td.BrandColor = def.BrandColor
	}
	if len(td.Departments) == 0 {
		td.Departments = def.Departments
	}
	if td.IntroTemplate == "" {
		td.IntroTemplate = def.IntroTemplate
	}
	if td.CareersPageURL == "" {
		td.CareersPageURL = def.CareersPageURL
	}
	return td
}

func (td TenantDefaults) fill(t *model.Tenant) {
	if t.BrandColor == "" {
		t.BrandColor = td.BrandColor
	}
	if len(t.Departments) == 0 {
		t.Departments = slices.Clone(td.Departments)
	}
	if t.IntroText == "" {
		t.IntroText = td.Intro(t.CompanyName)
	}
	if t.CareersPageURL == "" {
		t.CareersPageURL = td.CareersPageURL
	}
}

// DemoAccount is the reserved login that resolves to the demo tenant.
type DemoAccount struct {
	Email  string
	Secret string
}

func DefaultDemoAccount() DemoAccount {
	return DemoAccount{Email: "demo@company.com", Secret: "demo123"}
}

var demoEpoch = time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

// newDemoTenant builds the demo tenant for the configured demo login. It is
// never persisted; it is rebuilt on every lookup.
func newDemoTenant(acct DemoAccount) model.Tenant {
	return model.Tenant{
		ID:             DemoTenantID,
		Email:          acct.Email,
		CompanyName:    "Tech Innovations Inc.",
		BrandColor:     "#3B82F6",
		Departments:    []string{"Engineering", "Product", "Marketing", "Sales"},
		IntroText:      "Join our team and help build the future of technology!",
		CareersPageURL: "https://techinnovations.com/careers",
		CreatedAt:      demoEpoch,
	}
}
