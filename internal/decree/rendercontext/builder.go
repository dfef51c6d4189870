package rendercontext

import (
	"strings"
	"time"

	"decree-workers/internal/decree/dates"
	"decree-workers/internal/models"
)

// Missing is printed for an absent candidate value.
const Missing = "-"

// Context maps placeholder keys to display values.
type Context map[string]string

// Input is everything Build needs for one decree.
type Input struct {
	Candidate    models.Candidate
	Category     models.Category
	DecreeNumber string
	Settings     models.Settings
	IssuedAt     time.Time
	VerifyURL    string
}

// Build writes every alias of every field. Absent values become Missing,
// settings-derived names become "", and nothing ever renders as "undefined".
func Build(in Input) Context {
	values := Values(in)
	ctx := make(Context, len(values)*12)
	for _, f := range Fields() {
		v := values[f]
		for _, key := range Aliases(f) {
			ctx[key] = v
		}
	}
	return ctx
}

// Values computes the display value of each field.
func Values(in Input) map[Field]string {
	c := in.Candidate
	issued := in.IssuedAt
	if issued.IsZero() {
		if t, ok := dates.Parse(in.Settings.IssueDate); ok {
			issued = t
		} else {
			issued = time.Now()
		}
	}

	unit := orDefault(c.Unit, in.Settings.DefaultUnit)

	return map[Field]string{
		FieldName:          orMissing(c.Name),
		FieldNIP:           orMissing(c.NIP),
		FieldUnit:          orMissing(unit),
		FieldRole:          orMissing(c.Role),
		FieldEducation:     orMissing(c.Education),
		FieldSubject:       orMissing(c.Subject),
		FieldBirth:         BirthLine(c.BirthPlace, c.BirthDate),
		FieldTenureStart:   orMissing(dates.Display(c.TenureStart)),
		FieldCategory:      in.Category.Label(),
		FieldCertification: certification(c.Certified),
		FieldDecreeNumber:  orMissing(in.DecreeNumber),
		FieldIssueDate:     dates.FormatLong(issued),
		FieldIssuePlace:    strings.TrimSpace(in.Settings.IssuePlace),
		FieldExpiryDate:    dates.FormatLong(issued.AddDate(1, 0, 0)),
		FieldYear:          issued.Format("2006"),
		FieldChair:         strings.TrimSpace(in.Settings.ChairName),
		FieldSecretary:     strings.TrimSpace(in.Settings.SecretaryName),
		FieldVerifyURL:     in.VerifyURL,
	}
}

// BirthLine joins place and date of birth as "Place, 1 Januari 1990". With
// one part missing the other stands alone; with both missing it is Missing.
func BirthLine(place string, date interface{}) string {
	p := strings.TrimSpace(place)
	d := dates.Display(date)
	switch {
	case p != "" && d != "":
		return p + ", " + d
	case p != "":
		return p
	case d != "":
		return d
	default:
		return Missing
	}
}

func certification(certified bool) string {
	if certified {
		return "Sudah Sertifikasi"
	}
	return "Belum Sertifikasi"
}

func orMissing(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "undefined") || strings.EqualFold(s, "null") {
		return Missing
	}
	return s
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
