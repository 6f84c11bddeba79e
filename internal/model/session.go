package model

import "strings"

// Care partner roles as reported by CareLink.
const (
	RoleCarePartner    = "CARE_PARTNER"
	RoleCarePartnerOUS = "CARE_PARTNER_OUS"
)

// User is the account returned by /patient/users/me.
type User struct {
	LoginDateUTC         *Time  `json:"loginDateUTC,omitempty"`
	ID                   string `json:"id,omitempty"`
	Country              string `json:"country,omitempty"`
	Language             string `json:"language,omitempty"`
	LastName             string `json:"lastName,omitempty"`
	FirstName            string `json:"firstName,omitempty"`
	AccountID            int64  `json:"accountId,omitempty"`
	Role                 string `json:"role,omitempty"`
	CPRegistrationStatus string `json:"cpRegistrationStatus,omitempty"`
	AccountSuspended     bool   `json:"accountSuspended"`
	NeedToReconsent      bool   `json:"needToReconsent"`
	MFARequired          bool   `json:"mfaRequired"`
	MFAEnabled           bool   `json:"mfaEnabled"`
}

// IsCarePartner reports whether the account follows a patient instead of
// being the patient.
func (u *User) IsCarePartner() bool {
	return u.Role == RoleCarePartner || u.Role == RoleCarePartnerOUS
}

// Profile is the patient profile returned by /patient/users/me/profile.
type Profile struct {
	Username              string `json:"username,omitempty"`
	Email                 string `json:"email,omitempty"`
	FirstName             string `json:"firstName,omitempty"`
	LastName              string `json:"lastName,omitempty"`
	MiddleName            string `json:"middleName,omitempty"`
	Address               string `json:"address,omitempty"`
	City                  string `json:"city,omitempty"`
	StateProvince         string `json:"stateProvince,omitempty"`
	PostalCode            string `json:"postalCode,omitempty"`
	Country               string `json:"country,omitempty"`
	DateOfBirth           string `json:"dateOfBirth,omitempty"`
	Phone                 string `json:"phone,omitempty"`
	PhoneLegacy           string `json:"phoneLegacy,omitempty"`
	ParentFirstName       string `json:"parentFirstName,omitempty"`
	ParentLastName        string `json:"parentLastName,omitempty"`
	PatientNickname       string `json:"patientNickname,omitempty"`
	Sex                   string `json:"sex,omitempty"`
	Diagnosis             string `json:"diagnosis,omitempty"`
	InsulinType           string `json:"insulinType,omitempty"`
	TimeFormat            string `json:"timeFormat,omitempty"`
	GlucoseUnits          string `json:"glucoseUnits,omitempty"`
	CarbUnits             string `json:"carbUnits,omitempty"`
	CarbDefaultUnit       string `json:"carbDefaultUnit,omitempty"`
	MFAEnabled            bool   `json:"mfaEnabled"`
	AgeRange              string `json:"ageRange,omitempty"`
	GuardianParent        bool   `json:"guardianParent"`
	TermsAcceptanceStatus string `json:"termsAcceptanceStatus,omitempty"`
}

// Language is one language offered in a country.
type Language struct {
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
}

// CountrySettings is returned by /patient/countries/settings.
type CountrySettings struct {
	Name                    string     `json:"name,omitempty"`
	Languages               []Language `json:"languages,omitempty"`
	DefaultLanguage         string     `json:"defaultLanguage,omitempty"`
	DefaultCountryName      string     `json:"defaultCountryName,omitempty"`
	DefaultDevice           string     `json:"defaultDevice,omitempty"`
	DialCode                string     `json:"dialCode,omitempty"`
	FirstDayOfWeek          string     `json:"firstDayOfWeek,omitempty"`
	GlucoseUnitsDefault     string     `json:"glucoseUnitsDefault,omitempty"`
	CarbDefaultUnit         string     `json:"carbDefaultUnit,omitempty"`
	TimeFormat              string     `json:"timeFormat,omitempty"`
	TimeZone                string     `json:"timeZone,omitempty"`
	TechSupport             string     `json:"techSupport,omitempty"`
	MFAEnabled              bool       `json:"mfaEnabled"`
	MediaHost               string     `json:"mediaHost,omitempty"`
	BLEPeriodicDataEndpoint string     `json:"blePereodicDataEndpoint,omitempty"`
}

// MonitorData describes the device family of the patient.
type MonitorData struct {
	DeviceFamily string `json:"deviceFamily,omitempty"`
}

// IsBLE reports whether recent data must be fetched from the BLE
// periodic data endpoint.
func (m *MonitorData) IsBLE() bool {
	return m != nil && strings.Contains(m.DeviceFamily, "BLE")
}
