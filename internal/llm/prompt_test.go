package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageUserPrompt(t *testing.T) {
	assert.Equal(t, "Page 2: Read the tables.", PageUserPrompt(2, "Read the tables."))
	assert.Equal(t, "Page 1: "+DefaultPageInstruction, PageUserPrompt(1, "  "))
}

func TestMetadataExtractionPrompt(t *testing.T) {
	p := MetadataExtractionPrompt("Deep Learning\nJ. Doe", nil)
	assert.Contains(t, p, "OCR TEXT:\nDeep Learning\nJ. Doe")
	assert.NotContains(t, p, "Focus on missing fields")

	p = MetadataExtractionPrompt("ctx", []string{"journal", "year"})
	assert.Contains(t, p, "Focus on missing fields: journal, year.\n")
}
