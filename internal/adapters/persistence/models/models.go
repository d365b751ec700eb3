package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Advisors & auth
// ============================================================

// Advisor represents advisors table (brokerage staff accounts)
type Advisor struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	FullName  string         `gorm:"size:100;not null" json:"full_name"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Role      string         `gorm:"size:20;default:'ADVISOR'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Advisor) TableName() string {
	return "advisors"
}

// AdvisorResponse DTO
type AdvisorResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Advisor) ToResponse() *AdvisorResponse {
	return &AdvisorResponse{
		ID:        a.ID,
		Email:     a.Email,
		FullName:  a.FullName,
		Role:      a.Role,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	AdvisorID uint       `gorm:"index;not null" json:"advisor_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	Advisor   Advisor    `gorm:"foreignKey:AdvisorID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Leads (captured quotes)
// ============================================================

// Lead represents leads table: one row per tarification request, for
// advisor follow-up
type Lead struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	QuoteRef       string         `gorm:"uniqueIndex;size:36;not null" json:"quote_ref"`
	DateEffet      string         `gorm:"size:10;not null" json:"date_effet"`
	CodePostal     string         `gorm:"size:10" json:"code_postal"`
	AnneeNaissance int            `json:"annee_naissance"`
	Regime         string         `gorm:"size:50" json:"regime"`
	AvecConjoint   bool           `json:"avec_conjoint"`
	NbEnfants      int            `json:"nb_enfants"`
	NbOffres       int            `json:"nb_offres"`
	PrixMin        float64        `gorm:"type:decimal(8,2)" json:"prix_min"`
	Degraded       bool           `json:"degraded"`
	Email          string         `gorm:"size:100" json:"email,omitempty"`
	Phone          string         `gorm:"size:20" json:"phone,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Lead) TableName() string {
	return "leads"
}

// ============================================================
// Subscription tracking
// ============================================================

// Subscription flow statuses
const (
	FlowStatusPending   = "PENDING"
	FlowStatusAbandoned = "ABANDONED"
	FlowStatusCompleted = "COMPLETED"
)

// SubscriptionRecord represents subscription_records table: a local
// snapshot of a remote subscription flow's progress
type SubscriptionRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	RemoteLeadID   string    `gorm:"size:64;index" json:"remote_lead_id"`
	SubscriptionID string    `gorm:"size:64;uniqueIndex" json:"subscription_id"`
	OffreNom       string    `gorm:"size:100" json:"offre_nom"`
	OffrePrix      float64   `gorm:"type:decimal(8,2)" json:"offre_prix"`
	Step           string    `gorm:"size:20" json:"step"`
	CurrentStep    int       `json:"currentstep"`
	TotalStep      int       `json:"totalstep"`
	Status         string    `gorm:"size:20;default:'PENDING';index" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SubscriptionRecord) TableName() string {
	return "subscription_records"
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Advisor{},
		&RefreshToken{},
		&Lead{},
		&SubscriptionRecord{},
	)
}
