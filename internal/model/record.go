package model

// Kind identifies the type of an exported artifact.
// It is the prefix of every artifact name.
type Kind string

// Artifact kinds.
const (
	// KindUser is the account of the logged-in user.
	KindUser Kind = "user"
	// KindProfile is the patient profile.
	KindProfile Kind = "profile"
	// KindCountry is the country settings of the account's country.
	KindCountry Kind = "country"
	// KindMonitor is the monitor (device family) description.
	KindMonitor Kind = "monitor"
	// KindData is the recent pump and sensor telemetry.
	KindData Kind = "data"
	// KindDataException is the raw body of a failed recent-data response.
	KindDataException Kind = "dataex"
)

// String returns the kind as a string.
func (k Kind) String() string {
	return string(k)
}

// Record is an exportable CareLink response.
//
// The set of implementations is closed: only the types of this package
// can satisfy it, which lets consumers switch over every variant.
type Record interface {
	// Kind returns the artifact kind used to name the exported file.
	Kind() Kind
	record()
}

// Kind implements Record.
func (*User) Kind() Kind { return KindUser }

// Kind implements Record.
func (*Profile) Kind() Kind { return KindProfile }

// Kind implements Record.
func (*CountrySettings) Kind() Kind { return KindCountry }

// Kind implements Record.
func (*MonitorData) Kind() Kind { return KindMonitor }

// Kind implements Record.
func (*RecentData) Kind() Kind { return KindData }

func (*User) record()            {}
func (*Profile) record()         {}
func (*CountrySettings) record() {}
func (*MonitorData) record()     {}
func (*RecentData) record()      {}

// IsNil reports whether r is nil or holds a nil pointer.
func IsNil(r Record) bool {
	switch v := r.(type) {
	case nil:
		return true
	case *User:
		return v == nil
	case *Profile:
		return v == nil
	case *CountrySettings:
		return v == nil
	case *MonitorData:
		return v == nil
	case *RecentData:
		return v == nil
	default:
		return false
	}
}
