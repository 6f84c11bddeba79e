// Package anonymize replaces personally identifying fields of CareLink
// records with fixed placeholders.
//
// Placeholders are constants, so anonymized exports of the same data are
// identical across runs and can be diffed. Applying Anonymize twice gives
// the same result as applying it once.
package anonymize

import (
	"strconv"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// AccountID replaces account and user identifiers.
const AccountID int64 = 99999999

// Placeholder values written over identifying text fields.
const (
	FirstName           = "FirstName"
	LastName            = "LastName"
	MiddleName          = "MiddleName"
	Address             = "Address"
	City                = "City"
	StateProvince       = "State"
	PostalCode          = "9999"
	DateOfBirth         = "1900-01-01"
	Email               = "email@email.email"
	Phone               = "+00-00-000000"
	ParentFirstName     = "ParentFirstName"
	ParentLastName      = "ParentLastName"
	PatientNickname     = "Nickname"
	Username            = "Username"
	MedicalDeviceSerial = "SN9999999X"
	ConduitSerial       = "XXXXXX-XXXX-XXXX-XXXX-9999-9999-9999-9999"
)

// Anonymize scrubs r in place and returns it.
// Records without identifying fields and nil records are returned unchanged.
func Anonymize(r model.Record) model.Record {
	switch v := r.(type) {
	case *model.User:
		if v != nil {
			user(v)
		}
	case *model.Profile:
		if v != nil {
			profile(v)
		}
	case *model.RecentData:
		if v != nil {
			recentData(v)
		}
	default:
		// CountrySettings and MonitorData carry no personal data.
	}
	return r
}

func user(u *model.User) {
	u.AccountID = AccountID
	u.ID = strconv.FormatInt(AccountID, 10)
	u.FirstName = FirstName
	u.LastName = LastName
}

func profile(p *model.Profile) {
	p.Address = Address
	p.FirstName = FirstName
	p.LastName = LastName
	p.MiddleName = MiddleName
	p.DateOfBirth = DateOfBirth
	p.City = City
	p.Email = Email
	p.ParentFirstName = ParentFirstName
	p.ParentLastName = ParentLastName
	p.Phone = Phone
	p.PhoneLegacy = Phone
	p.PostalCode = PostalCode
	p.PatientNickname = PatientNickname
	p.StateProvince = StateProvince
	p.Username = Username
}

func recentData(d *model.RecentData) {
	d.FirstName = FirstName
	d.LastName = LastName
	d.MedicalDeviceSerialNumber = MedicalDeviceSerial
	d.ConduitSerialNumber = ConduitSerial
}
