package render

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/papers-extractor/internal/common"
)

// blankPDF builds a valid PDF with n empty 72x72pt pages.
func blankPDF(n int) []byte {
	var objs []string
	kids := make([]string, n)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	for i := 0; i < n; i++ {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 72 72] >>")
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return b.Bytes()
}

func TestCheckPDF(t *testing.T) {
	pdf := blankPDF(1)
	tests := []struct {
		name        string
		data        []byte
		contentType string
		wantErr     bool
	}{
		{"pdf", pdf, "application/pdf", false},
		{"pdf with params", pdf, "application/pdf; charset=binary", false},
		{"undeclared pdf", pdf, "", false},
		{"declared image", pdf, "image/png", true},
		{"empty", nil, "application/pdf", true},
		{"png bytes declared as pdf", []byte("\x89PNG\r\n\x1a\n0000"), "application/pdf", true},
		{"text", []byte("hello"), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPDF(tt.data, tt.contentType)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, common.CodeUnsupportedInput, common.ErrorCode(err))
		})
	}
}

func TestRenderRejectsBeforeParsing(t *testing.T) {
	r := NewRenderer(0, 0, nil)
	_, err := r.Render(context.Background(), []byte("not a pdf"), "text/plain")
	assert.ErrorIs(t, err, common.ErrUnsupportedInput)
}

func TestRenderPages(t *testing.T) {
	r := NewRenderer(DefaultDPI, 0, nil)
	pages, err := r.Render(context.Background(), blankPDF(3), "application/pdf")
	require.NoError(t, err)
	require.Len(t, pages, 3)

	cfg, err := png.DecodeConfig(bytes.NewReader(pages[0]))
	require.NoError(t, err)
	// 72pt at 144 DPI
	assert.InDelta(t, 144, cfg.Width, 1)
	assert.InDelta(t, 144, cfg.Height, 1)
}

func TestRenderCapsPages(t *testing.T) {
	r := NewRenderer(72, 2, nil)
	pages, err := r.Render(context.Background(), blankPDF(5), "application/pdf")
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}
