package service

// previewResponse is the JSON body of /preview
type previewResponse struct {
	PreviewImage string `json:"preview_image"`
	Error        string `json:"error,omitempty"`
}

// analyzeResponse is the JSON body of /analyze. Pointers tell a missing
// field apart from a zero value.
type analyzeResponse struct {
	OriginalImage *string  `json:"original_image"`
	Result        *string  `json:"result"`
	Confidence    *float64 `json:"confidence"`
	ELAImage      *string  `json:"ela_image"`
	Error         string   `json:"error,omitempty"`
	Traceback     string   `json:"traceback,omitempty"`
}

// missingFields lists the required success fields absent from the reply
func (r *analyzeResponse) missingFields() []string {
	var missing []string
	if r.OriginalImage == nil {
		missing = append(missing, "original_image")
	}
	if r.Result == nil {
		missing = append(missing, "result")
	}
	if r.Confidence == nil {
		missing = append(missing, "confidence")
	}
	if r.ELAImage == nil {
		missing = append(missing, "ela_image")
	}
	return missing
}
