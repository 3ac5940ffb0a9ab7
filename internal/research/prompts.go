package research

import (
	"encoding/json"
	"errors"
)

// ErrUnsupportedData reports a research seed that cannot be embedded in the
// prompt. The handler maps it to a 400.
var ErrUnsupportedData = errors.New("unsupported 'data' format: provide a string or JSON-serializable object")

const systemText = "You are an elite advertising agency assistant. Your job is to research companies on the public web using Google Search " +
	"and compile accurate, marketing-relevant intelligence. Treat the input as seed hints (e.g., company name, domain, notes). " +
	"Prioritize official and authoritative sources. Do not fabricate or guess; if data is unavailable, leave fields empty or null. " +
	"Normalize and deduplicate all outputs."

const userTextHeader = `Research the company using Google Search. Use the following seed hints to guide your search.
Return a single JSON object with this schema:
{
  "company_name": string | null,
  "known_domains": string[],
  "social_media": {
    "linkedin": string | null,
    "twitter": string | null,
    "facebook": string | null,
    "instagram": string | null,
    "tiktok": string | null,
    "youtube": string | null,
    "github": string | null,
    "other": string[]
  },
  "contact": {
    "emails": string[],
    "phones": string[],
    "addresses": string[]
  },
  "industry": string | null,
  "size_employees": number | null,
  "locations": string[],
  "key_personnel": [{ "name": string, "title": string | null, "link": string | null }],
  "products_services": string[],
  "value_proposition": string | null,
  "marketing_insights": {
    "audience": string | null,
    "tone_style": string | null,
    "differentiators": string[],
    "competitors": string[]
  },
  "suggested_pitch_points": string[],
  "missing_information": string[],
  "confidence": number,  // 0.0 - 1.0
  "sources": string[]   // distinct URLs that substantiate the data
}

Rules:
- Perform web research with Google Search. Prefer official sites and verified profiles.
- Do not invent URLs, emails, or names.
- Normalize URLs (include https scheme). Deduplicate lists.
- If multiple candidates exist, pick the most authoritative or include the top 3.
- Output only the JSON object, with no prose.

Seed hints:
`

// buildPrompts assembles the system instruction and user prompt around the
// seed data. A string seed is embedded verbatim; anything else is
// pretty-printed as JSON.
func buildPrompts(seed any) (system, user string, err error) {
	var block string
	switch s := seed.(type) {
	case string:
		block = s
	default:
		raw, merr := json.MarshalIndent(s, "", "  ")
		if merr != nil {
			return "", "", ErrUnsupportedData
		}
		block = string(raw)
	}
	return systemText, userTextHeader + block, nil
}
