package contact

import "strings"

// Request is a contact-form submission as posted by the website. It lives for
// the duration of one request and is never persisted.
type Request struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone,omitempty"`
	Subject        string  `json:"subject,omitempty"`
	Branch         string  `json:"branch,omitempty"`
	Message        string  `json:"message"`
	RecaptchaToken string  `json:"recaptchaToken,omitempty"`
	// TimeSpent is the client-reported seconds between form render and
	// submit. Trusted only as far as a minimum-threshold check.
	TimeSpent float64 `json:"timeSpent"`
}

// Response is the uniform JSON body returned for every outcome.
type Response struct {
	Message string `json:"message"`
}

func (r Request) trimmed() Request {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Branch = strings.TrimSpace(r.Branch)
	r.Message = strings.TrimSpace(r.Message)
	return r
}
