package documents

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// StatusComplete is the backend status code for a finished analysis.
const StatusComplete = 5

// ID is an opaque document identifier. The backend sends it either as a JSON
// string or as a bare number; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Flag is a boolean that also accepts 0/1 and "true"/"false" style values.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null" || string(b) == "false":
		*f = false
	case string(b) == "true":
		*f = true
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		*f = Flag(err == nil && v)
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = n != 0
	}
	return nil
}

// Record is the backend's view of one uploaded document. It is refreshed
// wholesale on every fetch and never modified by the client.
type Record struct {
	DocumentID             ID       `json:"document_id"`
	Status                 int      `json:"status"`
	Filename               string   `json:"filename"`
	ContentType            string   `json:"content_type"`
	FileSize               int64    `json:"file_size"`
	UploadDate             string   `json:"upload_date"`
	ContractSummary        string   `json:"contract_summary"`
	PartiesInvolved        []string `json:"parties_involved"`
	EffectiveDates         []string `json:"effective_dates"`
	RenewalTerms           []string `json:"renewal_terms"`
	Renewal                string   `json:"renewal"`
	Risk                   string   `json:"risk"`
	Compliance             *Flag    `json:"compliance"`
	PotentialRisks         string   `json:"potential_risks"`
	ComplianceRequirements []string `json:"compliance_requirements"`
}

// UnmarshalJSON accepts the record under either "document_id" or "id".
func (r *Record) UnmarshalJSON(b []byte) error {
	type alias Record
	aux := struct {
		*alias
		LegacyID ID `json:"id"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if r.DocumentID == "" {
		r.DocumentID = aux.LegacyID
	}
	return nil
}

// Complete reports whether the analysis has finished.
func (r Record) Complete() bool { return r.Status == StatusComplete }

// UploadResult is the backend's answer to an accepted upload.
type UploadResult struct {
	DocumentID ID     `json:"document_id"`
	Filename   string `json:"filename"`
	Message    string `json:"message"`
}
