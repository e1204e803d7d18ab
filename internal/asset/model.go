package asset

import "time"

// Asset types.
const (
	TypeSubscription  = "subscription"
	TypeInvestment    = "investment"
	TypeLegalDocument = "legal_document"
	TypeCrypto        = "crypto"
	TypeTextNote      = "text_note"
)

// Asset is an owner's encrypted record. The payload arrives already
// encrypted from the owner's session: the server stores the ciphertext
// and IV and never sees the plaintext or the decryption key.
type Asset struct {
	ID         string
	UserID     string
	Name       string
	Type       string
	Platform   string
	Ciphertext string // base64
	IV         string // base64
	CreatedAt  time.Time
}

// Encrypted is the release form handed to a verified beneficiary:
// ciphertext and IV only, decryptable solely with the key the owner
// shared out of band.
type Encrypted struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Platform   string `json:"platform,omitempty"`
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
}

// ValidType reports whether t is a known asset type.
func ValidType(t string) bool {
	switch t {
	case TypeSubscription, TypeInvestment, TypeLegalDocument, TypeCrypto, TypeTextNote:
		return true
	}
	return false
}
