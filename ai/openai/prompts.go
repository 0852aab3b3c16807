package openai

import (
	"fmt"
	"strings"

	"github.com/gophora/scout/core"
)

const validationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "is_legitimate": {"type": "boolean"},
    "trust_score": {"type": "integer", "minimum": 0, "maximum": 100},
    "red_flags": {"type": "array", "items": {"type": "string"}},
    "category": {"type": "string"},
    "skill_level": {"type": "string"},
    "immediate_availability": {"type": "boolean"},
    "payment_timeframe": {"type": "string"},
    "required_skills": {"type": "array", "items": {"type": "string"}},
    "salary_range": {"type": "string"},
    "experience_level": {"type": "string"},
    "time_commitment": {"type": "string"},
    "deadline": {"type": "string"}
  },
  "required": ["is_legitimate", "trust_score", "red_flags", "category", "skill_level", "immediate_availability"],
  "additionalProperties": false
}`

const validationPromptTemplate = `You analyze job postings for legitimacy and categorization. Return your assessment as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "is_legitimate" is false when the posting looks like a scam, spam, or otherwise not a real opportunity.
- "trust_score" is an integer from 0 (certain scam) to 100 (verifiably legitimate). Established companies
  with concrete role descriptions score high; anonymous posters with vague promises score low.
- "red_flags" lists every suspicious signal you find, in lowercase snake_case. Use these names when they
  apply: upfront_payment, pay_to_apply, personal_financial_info, unrealistic_salary, vague_description,
  no_company_info, urgency_pressure, off_platform_contact, mlm_structure, crypto_payment_only.
  Add others as needed. Empty array when nothing is suspicious.
- "category" must be exactly one of: %s.
- "skill_level" is the expertise the posting demands and must be exactly one of: %s.
  Use "zero" for work anyone can start untrained, "low" for work needing only brief onboarding.
- "immediate_availability" is true only when someone could realistically start this work today or tomorrow,
  without an extended interview process.
- "payment_timeframe" describes when workers get paid (e.g. "daily", "weekly", "monthly", "on delivery").
  Empty string when the posting does not say.
- "required_skills" lists concrete skills named by the posting, lowercase. Empty array when none are named.
- "salary_range", "experience_level", "time_commitment", "deadline" are short verbatim-ish extracts from
  the posting; empty string when absent. Never invent values that are not in the text.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example (legitimate posting):
Input:
Title: Warehouse Picker
Company: Nordlog AB
Location: Malmo, Sweden
Description: Pick and pack orders at our Malmo warehouse. Paid weekly, 140 SEK/hour. Start this week. No experience needed, training on day one.
Output:
{
  "is_legitimate": true,
  "trust_score": 82,
  "red_flags": [],
  "category": "Work",
  "skill_level": "zero",
  "immediate_availability": true,
  "payment_timeframe": "weekly",
  "required_skills": [],
  "salary_range": "140 SEK/hour",
  "experience_level": "none",
  "time_commitment": "",
  "deadline": ""
}

Example (scam posting):
Input:
Title: Earn $5000/week from home!!!
Company:
Location: Anywhere
Description: Send $50 registration fee via crypto to unlock your starter kit. Limited spots, act NOW. Message us on Telegram.
Output:
{
  "is_legitimate": false,
  "trust_score": 4,
  "red_flags": ["upfront_payment", "unrealistic_salary", "no_company_info", "urgency_pressure", "off_platform_contact", "crypto_payment_only"],
  "category": "Work",
  "skill_level": "zero",
  "immediate_availability": false,
  "payment_timeframe": "",
  "required_skills": [],
  "salary_range": "$5000/week",
  "experience_level": "",
  "time_commitment": "",
  "deadline": ""
}`

// buildValidationPrompt creates the system prompt with the category and skill
// level vocabularies embedded.
func buildValidationPrompt() string {
	categories := make([]string, len(core.Categories))
	for i, c := range core.Categories {
		categories[i] = string(c)
	}
	levels := make([]string, len(core.SkillLevels))
	for i, l := range core.SkillLevels {
		levels[i] = string(l)
	}
	return fmt.Sprintf(validationPromptTemplate,
		validationResponseSchema,
		strings.Join(categories, ", "),
		strings.Join(levels, ", "))
}

// buildPostingMessage renders a posting into the user message the validator
// model sees.
func buildPostingMessage(p *core.RawPosting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", scrubString(p.Title))
	fmt.Fprintf(&b, "Company: %s\n", scrubString(p.Company))
	fmt.Fprintf(&b, "Location: %s\n", scrubString(p.Location))
	fmt.Fprintf(&b, "Source: %s\n", p.Source)
	if p.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", p.URL)
	}
	fmt.Fprintf(&b, "Description:\n%s\n", truncateText(p.Description, maxDescriptionChars))
	return b.String()
}
