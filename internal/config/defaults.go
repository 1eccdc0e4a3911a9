package config

// GetDefaultSummaryTemplate returns the default sub-prompt for the summary section
func GetDefaultSummaryTemplate() string {
	return `SUMMARY:
Write a clear, well-structured summary of the {{.EntityType}} "{{.Title}}" for students.
Cover the key concepts, definitions and takeaways in 150-300 words.
Use this JSON shape for the "summary" key:
"summary": "<summary text>"`
}

// GetDefaultObjectiveTemplate returns the default sub-prompt for objective (multiple-choice) questions
func GetDefaultObjectiveTemplate() string {
	return `OBJECTIVE QUESTIONS:
Generate multiple-choice question sets for each difficulty level exactly as specified:
{{range .Levels}}- {{.Key}} ({{.Difficulty}}): exactly {{.Sets}} set(s) with exactly {{.QuestionsPerSet}} question(s) per set{{if .SetNames}}, named {{.SetNameList}}{{end}}
{{end}}
Every question must have exactly 4 options and a "correctAnswer" holding the 0-based index of the correct option.
Include every level key; use an empty array for a level with 0 sets.
Use this JSON shape for the "objective" key:
"objective": {
  "L1": [{"setName": "Set 1", "questions": [{"question": "...", "options": ["...", "...", "...", "..."], "correctAnswer": 0}]}],
  "L2": [],
  "L3": []
}`
}

// GetDefaultSubjectiveTemplate returns the default sub-prompt for subjective (written-answer) questions
func GetDefaultSubjectiveTemplate() string {
	return `SUBJECTIVE QUESTIONS:
Generate written-answer question sets for each difficulty level exactly as specified:
{{range .Levels}}- {{.Key}} ({{.Difficulty}}): exactly {{.Sets}} set(s) with exactly {{.QuestionsPerSet}} question(s) per set{{if .SetNames}}, named {{.SetNameList}}{{end}}
{{end}}
Every question must have a model "answer" and "keyPoints": an array of the key points a good answer covers.
Include every level key; use an empty array for a level with 0 sets.
Use this JSON shape for the "subjective" key:
"subjective": {
  "L1": [{"setName": "Set 1", "questions": [{"question": "...", "answer": "...", "keyPoints": ["...", "..."]}]}],
  "L2": [],
  "L3": []
}`
}
