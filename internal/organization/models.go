// Package organization holds the organization record: its wallet identity,
// its single-use challenge nonce and the KYC approval state machine.
package organization

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// KYCStatus is the approval state of a submitted KYC profile.
type KYCStatus string

const (
	StatusPending  KYCStatus = "Pending"
	StatusApproved KYCStatus = "Approved"
	StatusRejected KYCStatus = "Rejected"
)

// ValidDecision reports whether s is a permitted approval decision.
// Pending is not a decision; it is only ever set by submission.
func ValidDecision(s KYCStatus) bool {
	return s == StatusApproved || s == StatusRejected
}

// Contact is the KYC contact person substructure.
type Contact struct {
	FullName      string `json:"fullName"`
	Position      string `json:"position"`
	ContactNo     string `json:"contactNo"`
	PersonalEmail string `json:"personalEmail"`
}

// KYCDetails is the full organization profile. A resubmission replaces the
// whole structure; there is no partial merge.
type KYCDetails struct {
	OrgName        string    `json:"orgName"`
	OrgType        string    `json:"orgType"`
	OfficialEmail  string    `json:"officialEmail"`
	Website        string    `json:"website,omitempty"`
	Address        string    `json:"address"`
	Country        string    `json:"country"`
	RegistrationNo string    `json:"registrationNo"`
	CertificateRef string    `json:"certificateRef"`
	Contact        Contact   `json:"contactPerson"`
	Status         KYCStatus `json:"status"`
}

// Organization is created lazily on the first challenge request for an
// unseen wallet. The nonce is single-use: consumed and replaced by every
// successful authentication.
type Organization struct {
	ID            uuid.UUID   `json:"id"`
	WalletAddress string      `json:"walletAddress"`
	Nonce         string      `json:"-"`
	KYC           *KYCDetails `json:"kycDetails,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// IsKYCVerified derives the issuer capability flag from the approval state.
// Computed at read time so status and flag can never disagree.
func (o *Organization) IsKYCVerified() bool {
	return o.KYC != nil && o.KYC.Status == StatusApproved
}

// NormalizeWallet lowercases a wallet address for case-insensitive identity.
func NormalizeWallet(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}
