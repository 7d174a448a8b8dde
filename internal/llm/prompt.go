package llm

import (
	"fmt"
	"strings"
)

// DefaultPageInstruction is used when a job carries no instruction.
const DefaultPageInstruction = "Extract the content of this page."

// MetadataUserPrompt is the user turn of every metadata extraction call.
const MetadataUserPrompt = "Extract the bibliographic information"

const pageSystemPrompt = `# Task:
Extract the visible content from the document image.

# Output Format:
Output MUST be valid JSON with exactly these keys: "text", "tables", "images".

# Rules:
- Do NOT explain or analyse.
- Do NOT add extra keys.
- Always include all three keys.
- Return JSON only. Do not use markdown code fences.

# Key Descriptions:
"text": a single string of all visible text in reading order. Keep line breaks.
"tables": a list of tables, each {"headers": [...], "rows": [[...], ...]}. If no tables, output [].
"images": a list of short descriptions of figures, charts or diagrams. If none, output [].

# Example Output:
{"text": "Full text content here...", "tables": [{"headers": ["H1", "H2"], "rows": [["a", "b"]]}], "images": ["Bar chart of results"]}`

const metadataSystemPrompt = `Extract bibliographic information from the OCR text.
Return ONLY valid JSON with keys: title, authors, journal, year, abstract.
Use empty string for missing text fields, empty array for authors, and null for year.`

const completenessSystemPrompt = `# Task:
Determine if the extracted bibliographic information is complete.

# Criteria for Completeness:
- "title" is non-empty.
- "authors" has at least one author.
- "journal" is non-empty.
- "year" is correct according to the document.
- "abstract" is not cut or incomplete.

# Output:
Return ONLY "complete" or "incomplete".`

// PageSystemPrompt is the fixed instruction for per-page vision extraction.
func PageSystemPrompt() string {
	return pageSystemPrompt
}

// PageUserPrompt builds the per-page user turn, e.g. "Page 2: Extract ...".
func PageUserPrompt(page int, instruction string) string {
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultPageInstruction
	}
	return fmt.Sprintf("Page %d: %s", page, instruction)
}

// MetadataExtractionPrompt embeds the OCR context and the optional retry focus.
func MetadataExtractionPrompt(ocrText string, focus []string) string {
	var b strings.Builder
	b.WriteString(metadataSystemPrompt)
	b.WriteString("\n")
	if len(focus) > 0 {
		b.WriteString("Focus on missing fields: ")
		b.WriteString(strings.Join(focus, ", "))
		b.WriteString(".\n")
	}
	b.WriteString("OCR TEXT:\n")
	b.WriteString(ocrText)
	b.WriteString("\n")
	return b.String()
}

// CompletenessSystemPrompt asks for a bare complete/incomplete verdict.
func CompletenessSystemPrompt() string {
	return completenessSystemPrompt
}

// CompletenessUserPrompt pairs the OCR context with the merged metadata JSON.
func CompletenessUserPrompt(ocrText, metadataJSON string) string {
	return "OCR TEXT:\n" + ocrText + "\n\nBIBLIOGRAPHIC INFORMATION JSON:\n" + metadataJSON
}
