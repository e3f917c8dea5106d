package mess

import (
	"strings"
	"time"
)

type TokenType string

const (
	// TokenDigital is self-service from the resident app.
	TokenDigital TokenType = "Digital"
	// TokenManual is issued at the mess counter.
	TokenManual TokenType = "Manual"
)

func (t TokenType) Valid() bool {
	return t == TokenDigital || t == TokenManual
}

type TokenStatus string

const (
	TokenActive TokenStatus = "Active"
	TokenClosed TokenStatus = "Closed"
)

// CodePrefix starts every printed token code.
const CodePrefix = "TOK-"

// Token is one resident's registration for a special dish. It stays Active until
// the mess warden closes the dish and bills each token its share of the cost.
type Token struct {
	ID            string
	Code          string
	ResidentID    string
	Type          TokenType
	Status        TokenStatus
	Price         float64
	FoodName      string
	Session       string
	ProvidingDate string
	GeneratedAt   time.Time
	ClosedAt      *time.Time
	ClosedBy      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined from residents for listings
	ResidentName   *string
	ResidentRollNo *string
	ResidentRoomNo *string
}

// CodeFromID derives the printed code from the random tail of a token id.
func CodeFromID(id string) string {
	hex := strings.ReplaceAll(id, "-", "")
	if len(hex) > 7 {
		hex = hex[len(hex)-7:]
	}
	return CodePrefix + strings.ToUpper(hex)
}
