package extract_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/m-mizutani/gt"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/mootai/moot/pkg/service/extract"
)

func newTestPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		doc.AddPage()
		doc.Cell(40, 10, text)
	}

	var buf bytes.Buffer
	gt.NoError(t, doc.Output(&buf)).Required()
	return buf.Bytes()
}

func extractBytes(t *testing.T, x *extract.Extractor, name string, data []byte) *extract.Result {
	t.Helper()
	return x.Extract(context.Background(), name, bytes.NewReader(data), int64(len(data)))
}

func TestExtract_PlainText(t *testing.T) {
	x := extract.New()

	testCases := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{name: "utf-8 text", file: "a.txt", data: []byte("被告人张三"), want: "被告人张三"},
		{name: "upper-case extension", file: "NOTES.MD", data: []byte("# heading"), want: "# heading"},
		{name: "byte order mark is stripped", file: "b.csv", data: []byte("\xef\xbb\xbfx,y"), want: "x,y"},
		{name: "yaml", file: "c.yml", data: []byte("k: v"), want: "k: v"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := extractBytes(t, x, tc.file, tc.data)
			gt.V(t, result.Class).Equal(types.DocumentClassPlain)
			gt.V(t, result.Outcome).Equal(extract.OutcomeText)
			gt.V(t, result.Text).Equal(tc.want)
			gt.B(t, result.Fallback).False()
		})
	}
}

func TestExtract_InvalidUTF8FallsBackToLatin1(t *testing.T) {
	data := []byte{'c', 'a', 'f', 0xe9, ' ', 0xff, 0xfe}
	result := extractBytes(t, extract.New(), "legacy.log", data)

	gt.V(t, result.Outcome).Equal(extract.OutcomeText)
	gt.B(t, result.Fallback).True()
	gt.V(t, result.Err).Nil()
	gt.V(t, result.Text).Equal("café ÿþ")
}

func TestDecodePlain_NeverFails(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	text, fallback := extract.DecodePlain(all)
	gt.B(t, fallback).True()
	gt.V(t, len([]rune(text))).Equal(256)
}

func TestExtract_PDF(t *testing.T) {
	data := newTestPDF(t, "Hello World", "Second Page")
	result := extractBytes(t, extract.New(), "b.pdf", data)

	gt.V(t, result.Class).Equal(types.DocumentClassPDF)
	gt.V(t, result.Outcome).Equal(extract.OutcomeText)
	gt.S(t, result.Text).Contains("Hello World")
	gt.S(t, result.Text).Contains("Second Page")
	gt.B(t, strings.Index(result.Text, "Hello World") < strings.Index(result.Text, "Second Page")).True()
	gt.V(t, result.Text).Equal(strings.TrimSpace(result.Text))
}

func TestExtract_MalformedPDF(t *testing.T) {
	result := extractBytes(t, extract.New(), "broken.pdf", []byte("%PDF-1.4 this is not really a pdf"))

	gt.V(t, result.Outcome).Equal(extract.OutcomeFailed)
	gt.Error(t, result.Err).Is(model.ErrExtractionFailed)

	entry := result.Entry("broken.pdf", 33)
	gt.V(t, entry.Status).Equal(types.ContentStatusSizeOnly)
	gt.V(t, entry.Text).Equal("")
	gt.V(t, entry.Note).Equal(model.NoteExtractionFailed)
	gt.V(t, entry.Size).Equal(int64(33))
}

func TestExtract_OpaqueIsNeverRead(t *testing.T) {
	r := &countingReader{}
	result := extract.New().Extract(context.Background(), "c.exe", r, 1024)

	gt.V(t, result.Class).Equal(types.DocumentClassOpaque)
	gt.V(t, result.Outcome).Equal(extract.OutcomeUnsupported)
	gt.V(t, r.calls).Equal(0)

	entry := result.Entry("c.exe", 1024)
	gt.V(t, entry.Status).Equal(types.ContentStatusSizeOnly)
	gt.V(t, entry.Note).Equal(model.NoteBinary)
	gt.S(t, entry.Render()).Contains("1024")
}

func TestExtract_EmptyText(t *testing.T) {
	result := extractBytes(t, extract.New(), "blank.txt", []byte("  \n\t"))
	gt.V(t, result.Outcome).Equal(extract.OutcomeEmpty)

	entry := result.Entry("blank.txt", 4)
	gt.V(t, entry.Status).Equal(types.ContentStatusSizeOnly)
	gt.V(t, entry.Note).Equal(model.NoteEmptyText)
}

func TestExtract_MaxBytes(t *testing.T) {
	x := extract.New(extract.WithMaxBytes(4))

	t.Run("declared size over limit", func(t *testing.T) {
		result := extractBytes(t, x, "big.txt", []byte("0123456789"))
		gt.V(t, result.Outcome).Equal(extract.OutcomeTooLarge)
	})

	t.Run("reader longer than declared size", func(t *testing.T) {
		result := x.Extract(context.Background(), "big.txt", bytes.NewReader([]byte("0123456789")), 2)
		gt.V(t, result.Outcome).Equal(extract.OutcomeTooLarge)
	})

	t.Run("within limit", func(t *testing.T) {
		result := extractBytes(t, x, "ok.txt", []byte("abcd"))
		gt.V(t, result.Outcome).Equal(extract.OutcomeText)
		gt.V(t, result.Text).Equal("abcd")
	})
}

type countingReader struct {
	calls int
}

func (r *countingReader) Read(p []byte) (int, error) {
	r.calls++
	return 0, nil
}
