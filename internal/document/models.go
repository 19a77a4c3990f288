// Package document implements credential issuance with content-hash
// deduplication and the aggregate dashboard statistics built on top of it.
package document

import (
	"time"

	"github.com/google/uuid"
)

// IssuedDocument is one issuance record. DocHash is the content hash of the
// underlying file and is unique across the whole table; issuing the same
// content twice is rejected regardless of which organization issues it.
type IssuedDocument struct {
	ID           uuid.UUID `json:"id"`
	PersonName   string    `json:"personName"`
	PersonWallet string    `json:"personWallet"`
	DocType      string    `json:"docType"`
	OrgWallet    string    `json:"orgWallet"`
	OrgName      string    `json:"orgName"`
	DocHash      string    `json:"docHash"`
	IssuedAt     time.Time `json:"issuedAt"`
	Valid        bool      `json:"valid"`
}

// Stats is the aggregate view backing the public dashboard.
type Stats struct {
	DocumentsIssued       int64 `json:"documentsIssued"`
	VerificationsRecorded int64 `json:"verificationsRecorded"`
	OrganizationsApproved int64 `json:"organizationsApproved"`
}
