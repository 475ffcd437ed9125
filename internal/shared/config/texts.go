package config

// Texts holds the user-visible lookup tables. Accessors never hand out the
// underlying slice or map.
type Texts struct {
	progress           []string
	progressFallback   string
	stageErrors        map[int]string
	stageErrorFallback string
	connectionError    string
	notPDF             string
}

// DefaultTexts returns the built-in English tables.
func DefaultTexts() Texts {
	return Texts{
		progress: []string{
			"extracting contract text...",
			"identifying contract metadata...",
			"creating contract summary...",
			"analysing potential risks...",
			"executing analysis engine...",
		},
		progressFallback: "Processing...",
		stageErrors: map[int]string{
			1: "Failed to extract text from document",
			2: "Failed to identify contract metadata",
			3: "Failed to create contract summary",
			4: "Failed to analyze potential risks",
			5: "Failed to finalize analysis",
		},
		stageErrorFallback: "Processing failed",
		connectionError:    "Failed to connect to server",
		notPDF:             "Please upload a PDF file only",
	}
}

// ProgressMessage maps a backend status code to its progress line.
func (t Texts) ProgressMessage(status int) string {
	if status >= 0 && status < len(t.progress) {
		return t.progress[status]
	}
	return t.progressFallback
}

// StageError maps a stage key (last observed status + 1) to its failure message.
func (t Texts) StageError(key int) string {
	if msg, ok := t.stageErrors[key]; ok {
		return msg
	}
	return t.stageErrorFallback
}

// ConnectionError is shown when a status fetch fails outright.
func (t Texts) ConnectionError() string { return t.connectionError }

// NotPDF is the alert shown for rejected selections.
func (t Texts) NotPDF() string { return t.notPDF }

func (t Texts) merge(f *fileTexts) Texts {
	if f == nil {
		return t
	}
	out := t
	if len(f.Progress) > 0 {
		out.progress = append([]string(nil), f.Progress...)
	}
	if f.ProgressFallback != "" {
		out.progressFallback = f.ProgressFallback
	}
	if len(f.StageErrors) > 0 {
		merged := make(map[int]string, len(t.stageErrors)+len(f.StageErrors))
		for k, v := range t.stageErrors {
			merged[k] = v
		}
		for k, v := range f.StageErrors {
			merged[k] = v
		}
		out.stageErrors = merged
	}
	if f.StageErrorFallback != "" {
		out.stageErrorFallback = f.StageErrorFallback
	}
	if f.ConnectionError != "" {
		out.connectionError = f.ConnectionError
	}
	if f.NotPDF != "" {
		out.notPDF = f.NotPDF
	}
	return out
}
