package config

// GetDefaultSystemFramingTemplate returns the framing sentence that fixes the entity and title
func GetDefaultSystemFramingTemplate() string {
	return `You are an expert educator and assessment designer. Create educational content for the {{.EntityType}} titled "{{.Title}}".`
}

// GetDefaultReferenceContextTemplate returns the block that lists selected reference documents
func GetDefaultReferenceContextTemplate() string {
	return `REFERENCE MATERIAL:
Base the content on the following reference documents:
{{range $i, $ref := .References}}{{inc $i}}. {{$ref.Name}}{{if $ref.Type}} [{{$ref.Type}}]{{end}}{{if $ref.Description}}: {{$ref.Description}}{{end}}
{{end}}`
}

// GetDefaultClosingInstruction returns the instruction that demands a bare JSON object
func GetDefaultClosingInstruction() string {
	return `Respond with ONLY a single valid JSON object containing exactly the keys "summary", "objective" and "subjective".
Do not wrap it in markdown and do not add any text before or after the JSON.`
}
