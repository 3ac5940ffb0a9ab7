// Package gemini implements llm.Provider against Google's Gemini
// generateContent REST API, including Google Search grounding.
package gemini
