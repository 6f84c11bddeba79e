package export

import (
	"time"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// TimestampLayout is the timestamp part of artifact names.
const TimestampLayout = "20060102_150405"

// Extension is the file extension of every artifact.
const Extension = ".json"

// ArtifactName returns the name of an artifact of kind exported at t.
// The time is rendered in the location it carries.
func ArtifactName(kind model.Kind, t time.Time) string {
	return kind.String() + "-" + t.Format(TimestampLayout) + Extension
}
