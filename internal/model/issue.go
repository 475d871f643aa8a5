package model

// Issue is one vulnerability reported by an audit module.
type Issue struct {
	// Name is the vulnerability class, e.g. "Cross-Site Scripting (XSS)".
	Name string `yaml:"name" json:"name"`

	// Severity is the risk level.
	Severity Severity `yaml:"severity" json:"severity"`

	// URL is the page the issue was found on.
	URL string `yaml:"url" json:"url"`

	// Method is the HTTP method of the vulnerable request.
	Method string `yaml:"method,omitempty" json:"method,omitempty"`

	// Element is the input vector type: form, link, cookie, header or body.
	Element string `yaml:"element,omitempty" json:"element,omitempty"`

	// Variable is the name of the vulnerable input, if any.
	Variable string `yaml:"variable,omitempty" json:"variable,omitempty"`

	// Description explains the vulnerability.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Remedy gives guidance on fixing the issue.
	Remedy string `yaml:"remedy,omitempty" json:"remedy,omitempty"`
}

// Location returns a short "METHOD url (element: variable)" description of
// where the issue was found.
func (i Issue) Location() string {
	loc := i.URL
	if i.Method != "" {
		loc = i.Method + " " + loc
	}
	switch {
	case i.Element != "" && i.Variable != "":
		loc += " (" + i.Element + ": " + i.Variable + ")"
	case i.Element != "":
		loc += " (" + i.Element + ")"
	}
	return loc
}
