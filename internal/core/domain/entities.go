package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ============================================================
// Tarification (quote) inputs
// ============================================================

// TarificationRequest carries the parameters of a quote request
type TarificationRequest struct {
	DateEffet      string    `json:"dateEffet"`
	CodePostal     string    `json:"codePostal"`
	AnneeNaissance int       `json:"anneeNaissance"`
	Regime         string    `json:"regime"`
	Conjoint       *Conjoint `json:"conjoint,omitempty"`
	Enfants        []Enfant  `json:"enfants,omitempty"`
}

// Conjoint is the optional spouse sub-record
type Conjoint struct {
	AnneeNaissance int    `json:"anneeNaissance"`
	Regime         string `json:"regime,omitempty"`
}

// Enfant is a child sub-record
type Enfant struct {
	AnneeNaissance int `json:"anneeNaissance"`
}

// Age returns the insured's age for the current calendar year
func (r *TarificationRequest) Age() int {
	return time.Now().Year() - r.AnneeNaissance
}

// ============================================================
// Offers
// ============================================================

// Garantie is a single guarantee line of an offer
type Garantie struct {
	Nom    string `json:"nom"`
	Niveau string `json:"niveau"`
}

// Offre is a priced offer derived from the remote catalog (or the fallback)
type Offre struct {
	Nom       string     `json:"nom"`
	Prix      float64    `json:"prix"`
	Garanties []Garantie `json:"garanties"`
	ProductID string     `json:"product_id,omitempty"`
	FormulaID string     `json:"formula_id,omitempty"`
	GammeID   int        `json:"gammeId,omitempty"`
}

// TarificationResponse is the result of a Tarify call.
// Degraded is true when the offers come from the static fallback catalog
// instead of live pricing; Message then explains the degraded mode.
type TarificationResponse struct {
	QuoteRef string  `json:"quote_ref"`
	Offres   []Offre `json:"offres"`
	Degraded bool    `json:"degraded"`
	Message  string  `json:"message,omitempty"`
}

// ============================================================
// Remote catalog
// ============================================================

// Product is a remote catalog entry. GammeLabel is nullable upstream.
type Product struct {
	GammeID    int     `json:"gammeId"`
	GammeLabel *string `json:"gammeLabel"`
	Type       string  `json:"type"`
}

// ProductDocument is the metadata of a downloadable sale document
type ProductDocument struct {
	DocumentID         int     `json:"documentId"`
	EnumDocumentTypeID int     `json:"enumDocumentTypeId"`
	Filename           string  `json:"filename"`
	Thumbnail          *string `json:"thumbnail"`
	FileExtension      *string `json:"fileExtension"`
	Pages              *string `json:"pages"`
	Label              *string `json:"label"`
}

// DocumentFile is a decoded, ready-to-stream document payload
type DocumentFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ============================================================
// Subscription flow
// ============================================================

// FlowStep tags the progress of a subscription flow
type FlowStep string

const (
	StepCart         FlowStep = "cart"
	StepSubscription FlowStep = "subscription"
	StepConcern      FlowStep = "stepconcern"
	StepBank         FlowStep = "stepbank"
	StepDocuments    FlowStep = "documents"
	StepValidation   FlowStep = "validation"
	StepCompleted    FlowStep = "completed"
)

// SubscriptionFlowState describes where a subscription flow stands.
// It advances only through explicit orchestrator calls.
type SubscriptionFlowState struct {
	Step           FlowStep `json:"step"`
	LeadID         string   `json:"lead_id,omitempty"`
	SubscriptionID string   `json:"subscription_id,omitempty"`
	Token          string   `json:"token,omitempty"`
	CurrentStep    int      `json:"currentstep,omitempty"`
	TotalStep      int      `json:"totalstep,omitempty"`
}

// ============================================================
// Effective date
// ============================================================

// DateEffect is the effective date in the exploded form the quoting API expects
type DateEffect struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

var dateEffetPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDateEffect validates a YYYY-MM-DD effective date and explodes it.
// The date must be a valid calendar date strictly after today.
func ParseDateEffect(s string) (DateEffect, error) {
	if !dateEffetPattern.MatchString(s) {
		return DateEffect{}, &ValidationError{Field: "dateEffet", Reason: "format attendu YYYY-MM-DD"}
	}

	parts := strings.SplitN(s, "-", 3)
	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])

	if month < 1 || month > 12 {
		return DateEffect{}, &ValidationError{Field: "dateEffet", Reason: "mois invalide"}
	}
	if day < 1 || day > 31 {
		return DateEffect{}, &ValidationError{Field: "dateEffet", Reason: "jour invalide"}
	}

	effet := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if effet.Day() != day || effet.Month() != time.Month(month) {
		return DateEffect{}, &ValidationError{Field: "dateEffet", Reason: fmt.Sprintf("date inexistante: %s", s)}
	}

	today := time.Now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	if !effet.After(today) {
		return DateEffect{}, &ValidationError{Field: "dateEffet", Reason: "la date d'effet doit être postérieure à aujourd'hui"}
	}

	return DateEffect{Year: year, Month: month, Day: day}, nil
}
