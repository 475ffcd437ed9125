package visualization

import (
	"strings"
	"time"

	"contract-console/internal/documents"
)

const (
	notAvailable       = "N/A"
	noSummary          = "No summary available"
	noRisks            = "No risks identified"
	noRequirements     = "No compliance requirements found"
	noDates            = "No date information available"
	compliantLabel     = "Compliant"
	nonCompliantLabel  = "Non-compliant"
	uploadDisplayStyle = "1/2/2006"
)

// uploadLayouts covers the timestamp spellings the backend emits.
var uploadLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type Metadata struct {
	Filename       string `json:"filename"`
	UploadDate     string `json:"upload_date"`
	Parties        string `json:"parties"`
	EffectiveDates string `json:"effective_dates"`
	RenewalTerms   string `json:"renewal_terms"`
}

type Risk struct {
	Level          string `json:"level"`
	Compliance     string `json:"compliance"`
	PotentialRisks string `json:"potential_risks"`
}

// Model is the fully resolved content of the visualization view. Every
// field already carries its fallback text.
type Model struct {
	DocumentID             string    `json:"document_id"`
	Summary                string    `json:"summary"`
	Metadata               Metadata  `json:"metadata"`
	Risk                   Risk      `json:"risk"`
	ComplianceRequirements []string  `json:"compliance_requirements"`
	ComplianceNote         string    `json:"compliance_note,omitempty"`
	Timeline               *Timeline `json:"timeline,omitempty"`
	TimelineNote           string    `json:"timeline_note,omitempty"`
}

// Build turns a finished record into a render model. Upload dates are shown
// in loc.
func Build(rec documents.Record, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	m := Model{
		DocumentID: rec.DocumentID.String(),
		Summary:    orDefault(rec.ContractSummary, noSummary),
		Metadata: Metadata{
			Filename:       orDefault(rec.Filename, notAvailable),
			UploadDate:     uploadDate(rec.UploadDate, loc),
			Parties:        joinOr(rec.PartiesInvolved, ", "),
			EffectiveDates: joinOr(rec.EffectiveDates, " - "),
			RenewalTerms:   joinOr(rec.RenewalTerms, " - "),
		},
		Risk: Risk{
			Level:          orDefault(rec.Risk, notAvailable),
			Compliance:     nonCompliantLabel,
			PotentialRisks: orDefault(rec.PotentialRisks, noRisks),
		},
	}
	if rec.Compliance != nil && bool(*rec.Compliance) {
		m.Risk.Compliance = compliantLabel
	}

	for _, req := range rec.ComplianceRequirements {
		if s := strings.TrimSpace(req); s != "" {
			m.ComplianceRequirements = append(m.ComplianceRequirements, s)
		}
	}
	if len(m.ComplianceRequirements) == 0 {
		m.ComplianceRequirements = []string{}
		m.ComplianceNote = noRequirements
	}

	if tl, ok := BuildTimeline(rec.EffectiveDates, rec.RenewalTerms); ok {
		m.Timeline = &tl
	} else {
		m.TimelineNote = noDates
	}
	return m
}

func uploadDate(raw string, loc *time.Location) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return notAvailable
	}
	for _, layout := range uploadLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc).Format(uploadDisplayStyle)
		}
	}
	return notAvailable
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func joinOr(items []string, sep string) string {
	if len(items) == 0 {
		return notAvailable
	}
	return strings.Join(items, sep)
}
