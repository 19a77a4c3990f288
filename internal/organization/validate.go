package organization

import (
	"regexp"
	"strings"

	"github.com/asaskevich/govalidator"

	dErrors "docproof/pkg/domain-errors"
)

// KYCSubmission is the full profile payload for a KYC submission. The
// certificate reference is the content-addressed id returned by the artifact
// gateway for the uploaded certificate.
type KYCSubmission struct {
	OrgName        string `json:"orgName"`
	OrgType        string `json:"orgType"`
	OfficialEmail  string `json:"officialEmail"`
	Website        string `json:"website"`
	Address        string `json:"address"`
	Country        string `json:"country"`
	RegistrationNo string `json:"registrationNo"`
	CertificateRef string `json:"certificateRef"`
	FullName       string `json:"fullName"`
	Position       string `json:"position"`
	ContactNo      string `json:"contactNo"`
	PersonalEmail  string `json:"personalEmail"`
}

var schemePrefix = regexp.MustCompile(`(?i)^https?://`)

// Normalize trims fields and defaults the website to an explicit https
// scheme when the caller omitted one.
func (s *KYCSubmission) Normalize() {
	s.OrgName = strings.TrimSpace(s.OrgName)
	s.OrgType = strings.TrimSpace(s.OrgType)
	s.OfficialEmail = strings.TrimSpace(s.OfficialEmail)
	s.Website = strings.TrimSpace(s.Website)
	s.Address = strings.TrimSpace(s.Address)
	s.Country = strings.TrimSpace(s.Country)
	s.RegistrationNo = strings.TrimSpace(s.RegistrationNo)
	s.CertificateRef = strings.TrimSpace(s.CertificateRef)
	s.FullName = strings.TrimSpace(s.FullName)
	s.Position = strings.TrimSpace(s.Position)
	s.ContactNo = strings.TrimSpace(s.ContactNo)
	s.PersonalEmail = strings.TrimSpace(s.PersonalEmail)

	if s.Website != "" && !schemePrefix.MatchString(s.Website) {
		s.Website = "https://" + s.Website
	}
}

// Validate checks the whole payload and reports every violated field, not
// just the first. Call Normalize first.
func (s *KYCSubmission) Validate() error {
	var fields []dErrors.FieldViolation
	add := func(field, message string) {
		fields = append(fields, dErrors.FieldViolation{Field: field, Message: message})
	}

	if !govalidator.StringLength(s.OrgName, "2", "50") {
		add("orgName", "organization name must be between 2 and 50 characters")
	}
	if !govalidator.StringLength(s.OrgType, "2", "50") {
		add("orgType", "organization type is required")
	}
	if !govalidator.IsEmail(s.OfficialEmail) {
		add("officialEmail", "invalid official email format")
	}
	if s.Website != "" && !govalidator.IsURL(s.Website) {
		add("website", "invalid website URL")
	}
	if !govalidator.StringLength(s.Address, "5", "200") {
		add("address", "registered address must be at least 5 characters")
	}
	if !govalidator.StringLength(s.Country, "2", "60") {
		add("country", "country is required")
	}
	if !govalidator.StringLength(s.RegistrationNo, "2", "60") {
		add("registrationNo", "registration number is required")
	}
	if s.CertificateRef == "" {
		add("certificate", "certificate file is required")
	}
	if !govalidator.StringLength(s.FullName, "2", "50") {
		add("fullName", "full name must be between 2 and 50 characters")
	}
	if !govalidator.StringLength(s.Position, "2", "30") {
		add("position", "position must be between 2 and 30 characters")
	}
	if !govalidator.StringLength(s.ContactNo, "5", "20") {
		add("contactNo", "contact number is required")
	}
	if !govalidator.IsEmail(s.PersonalEmail) {
		add("personalEmail", "invalid personal email format")
	}

	if len(fields) > 0 {
		return dErrors.NewValidation(fields)
	}
	return nil
}

// Details converts a validated submission into the persisted profile with
// the state machine reset to Pending.
func (s *KYCSubmission) Details() KYCDetails {
	return KYCDetails{
		OrgName:        s.OrgName,
		OrgType:        s.OrgType,
		OfficialEmail:  s.OfficialEmail,
		Website:        s.Website,
		Address:        s.Address,
		Country:        s.Country,
		RegistrationNo: s.RegistrationNo,
		CertificateRef: s.CertificateRef,
		Contact: Contact{
			FullName:      s.FullName,
			Position:      s.Position,
			ContactNo:     s.ContactNo,
			PersonalEmail: s.PersonalEmail,
		},
		Status: StatusPending,
	}
}
