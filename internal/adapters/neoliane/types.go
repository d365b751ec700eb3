package neoliane

import (
	"github.com/goccy/go-json"
)

// ============================================================
// Proxy wire protocol
// ============================================================

// proxy actions
const (
	actionTest     = "test"
	actionAuth     = "auth"
	actionAPICall  = "api_call"
	actionDownload = "download_documents"
)

// proxyRequest is the single request shape understood by the remote proxy
type proxyRequest struct {
	Action         string      `json:"action"`
	UserKey        string      `json:"user_key,omitempty"`
	Endpoint       string      `json:"endpoint,omitempty"`
	Method         string      `json:"method,omitempty"`
	AccessToken    string      `json:"access_token,omitempty"`
	Data           interface{} `json:"data,omitempty"`
	SubscriptionID string      `json:"subscription_id,omitempty"`
}

// proxyEnvelope is the proxy's response envelope
type proxyEnvelope struct {
	Success     bool            `json:"success"`
	Data        json.RawMessage `json:"data"`
	AccessToken string          `json:"access_token"`
	ExpiresIn   int64           `json:"expires_in"`
	Error       json.RawMessage `json:"error"`
	Message     string          `json:"message"`
}

// apiEnvelope is the downstream quoting API envelope, nested inside the
// proxy envelope's data field
type apiEnvelope struct {
	Status bool            `json:"status"`
	Error  *string         `json:"error"`
	Value  json.RawMessage `json:"value"`
}

// ============================================================
// Downstream request/response payloads
// ============================================================

// CartMemberProduct references the chosen product/formula pair
type CartMemberProduct struct {
	ProductID string `json:"product_id"`
	FormulaID string `json:"formula_id"`
}

// CartMember is one insured person in the cart profile
type CartMember struct {
	Concern   string              `json:"concern"`
	BirthYear string              `json:"birthyear"`
	Regime    string              `json:"regime"`
	Products  []CartMemberProduct `json:"products"`
}

// CartProfile carries the effective date and the member list
type CartProfile struct {
	DateEffect struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"date_effect"`
	Zipcode string       `json:"zipcode"`
	Members []CartMember `json:"members"`
}

// CartRequest creates a cart on the quoting API
type CartRequest struct {
	TotalAmount string      `json:"total_amount,omitempty"`
	Profile     CartProfile `json:"profile"`
}

// CartResult is the useful part of a cart creation response
type CartResult struct {
	LeadID string `json:"lead_id"`
	Token  string `json:"token"`
}

// SubscriptionRequest creates a subscription referencing a cart lead
type SubscriptionRequest struct {
	LeadID   string   `json:"lead_id"`
	SignType string   `json:"signtype"`
	Features []string `json:"features,omitempty"`
}

// SubscriptionResult is the useful part of a subscription creation response
type SubscriptionResult struct {
	ID          string `json:"id"`
	CurrentStep int    `json:"currentstep"`
	TotalStep   int    `json:"totalstep"`
}

// ConcernMember is one member block of the stepconcern form
type ConcernMember struct {
	IsPoliticallyExposed int    `json:"is_politically_exposed"`
	Gender               string `json:"gender"`
	Lastname             string `json:"lastname"`
	Firstname            string `json:"firstname"`
	Regime               string `json:"regime"`
	Birthdate            struct {
		Day   string `json:"day"`
		Month string `json:"month"`
		Year  string `json:"year"`
	} `json:"birthdate"`
	Birthplace   string `json:"birthplace"`
	Birthzipcode string `json:"birthzipcode"`
	Birthcountry string `json:"birthcountry"`
	CSP          string `json:"csp"`
	NumSS        string `json:"numss"`
	NumOrganisme string `json:"numorganisme"`
}

// StepConcernRequest is the insured-details step form
type StepConcernRequest struct {
	Members      []ConcernMember `json:"members"`
	StreetNumber string          `json:"streetnumber"`
	Street       string          `json:"street"`
	StreetBis    string          `json:"streetbis"`
	Zipcode      string          `json:"zipcode"`
	City         string          `json:"city"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
}

// BankDetail is one levy mandate of the stepbank form
type BankDetail struct {
	LevyDate                   string `json:"levydate"`
	LevyFrequency              string `json:"levyfrequency"`
	IBAN                       string `json:"iban"`
	BIC                        string `json:"bic"`
	IsDifferentFromStepConcern string `json:"isDifferentFromStepConcern"`
	Gender                     string `json:"gender,omitempty"`
	Lastname                   string `json:"lastname,omitempty"`
	Firstname                  string `json:"firstname,omitempty"`
	StreetNumber               string `json:"streetnumber,omitempty"`
	Street                     string `json:"street,omitempty"`
	StreetBis                  string `json:"streetbis,omitempty"`
	Zipcode                    string `json:"zipcode,omitempty"`
	City                       string `json:"city,omitempty"`
	Country                    string `json:"country,omitempty"`
}

// StepBankRequest is the bank-details step form
type StepBankRequest struct {
	Details []BankDetail `json:"details"`
}
