package bundle

// Files holds the three source files making up one project. Field
// order matches the wire layout of the stored JSON document.
type Files struct {
	Markup string `json:"index.html"`
	Styles string `json:"style.css"`
	Script string `json:"script.js"`
}

// Bundle is the full project payload as written to blob storage.
type Bundle struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Content   Files  `json:"content"`
}
