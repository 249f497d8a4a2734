package services

import (
	"fmt"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAttributeExtractionPrompt asks for the fixed resume attribute schema.
// Keys match the ones the normalizer decodes.
func (pb *PromptBuilder) BuildAttributeExtractionPrompt(resumeText string) string {
	return fmt.Sprintf(`You are a resume parser. Extract the candidate attributes from the resume below.

RESUME:
%s

Return ONLY a JSON object with exactly these keys. Use null or an empty list when a value is not present in the resume, never guess.
{
  "Name": "<full name>",
  "Email_ID": "<email address>",
  "Mobile_Number": "<phone number>",
  "CPI/GPA": <highest CPI or GPA as a number, null if none>,
  "Education": [{"degree": "<degree>", "field": "<field of study>", "institution": "<institution>", "gpa": <number or null>}],
  "Branch": "<branch or major, e.g. Computer Science and Engineering>",
  "Skills": ["<technical skill>", ...],
  "No_of_Projects": <number of projects listed>,
  "Project_Keywords": ["<technology or topic used in the projects>", ...],
  "Experience": "<Yes if the candidate lists internships or work experience, otherwise No>",
  "Core_Computer_Skills": ["<core CS subject such as DBMS, Operating Systems, Computer Networks, OOPS, DSA>", ...]
}

Copy skill and keyword names as written in the resume. Do not add commentary.`, resumeText)
}
