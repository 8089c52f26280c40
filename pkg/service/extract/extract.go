package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/mootai/moot/pkg/utils/logging"
	"golang.org/x/text/encoding/charmap"
)

// DefaultMaxBytes bounds how much of one artifact is read into memory
const DefaultMaxBytes int64 = 32 << 20

const pageSeparator = "\n"

// Outcome is the kind of result an extraction produced
type Outcome int

const (
	// OutcomeText means text was extracted
	OutcomeText Outcome = iota
	// OutcomeEmpty means the document was readable but had no text
	OutcomeEmpty
	// OutcomeUnsupported means the class is never read
	OutcomeUnsupported
	// OutcomeTooLarge means the artifact exceeds the read limit
	OutcomeTooLarge
	// OutcomeFailed means decoding or parsing failed
	OutcomeFailed
)

// Result is the explicit outcome of extracting one artifact. Extraction
// never fails the caller; a failure is carried in Err with OutcomeFailed.
type Result struct {
	Class   types.DocumentClass
	Outcome Outcome
	Text    string
	// Fallback is set when plain text was not valid UTF-8 and was decoded
	// as ISO-8859-1.
	Fallback bool
	Err      error
}

// Entry converts the result into the ContentEntry for requestedName
func (r *Result) Entry(requestedName string, size int64) model.ContentEntry {
	entry := model.ContentEntry{
		RequestedName: requestedName,
		Size:          size,
	}

	switch r.Outcome {
	case OutcomeText:
		entry.Status = types.ContentStatusExtracted
		entry.Text = r.Text
		return entry
	case OutcomeUnsupported:
		entry.Note = model.NoteBinary
	case OutcomeEmpty:
		entry.Note = model.NoteEmptyText
	case OutcomeTooLarge:
		entry.Note = model.NoteTooLarge
	default:
		entry.Note = model.NoteExtractionFailed
	}
	entry.Status = types.ContentStatusSizeOnly
	return entry
}

// Extractor reads text out of stored artifacts, dispatching on the
// extension of the requested name.
type Extractor struct {
	maxBytes int64
}

type Option func(*Extractor)

// WithMaxBytes overrides DefaultMaxBytes. Zero or negative disables the limit.
func WithMaxBytes(n int64) Option {
	return func(x *Extractor) {
		x.maxBytes = n
	}
}

func New(opts ...Option) *Extractor {
	x := &Extractor{
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract reads r, which holds size bytes, as the document class of name
func (x *Extractor) Extract(ctx context.Context, name string, r io.Reader, size int64) *Result {
	class := types.ClassifyName(name)
	logger := logging.From(ctx).With(
		slog.String("name", name),
		slog.String("class", class.String()),
	)

	if class == types.DocumentClassOpaque {
		return &Result{Class: class, Outcome: OutcomeUnsupported}
	}
	if x.maxBytes > 0 && size > x.maxBytes {
		logger.Info("artifact exceeds read limit", slog.Int64("size", size), slog.Int64("limit", x.maxBytes))
		return &Result{Class: class, Outcome: OutcomeTooLarge}
	}

	data, err := x.readAll(r)
	if err != nil {
		logger.Warn("failed to read artifact", slog.Any("error", err))
		return &Result{Class: class, Outcome: OutcomeFailed, Err: err}
	}
	if x.maxBytes > 0 && int64(len(data)) > x.maxBytes {
		return &Result{Class: class, Outcome: OutcomeTooLarge}
	}

	switch class {
	case types.DocumentClassPlain:
		text, fallback := DecodePlain(data)
		if fallback {
			logger.Debug("artifact is not valid UTF-8, decoded as ISO-8859-1")
		}
		return textResult(class, text, fallback)

	case types.DocumentClassPDF:
		text, err := ExtractPDF(data)
		if err != nil {
			logger.Warn("failed to extract PDF text", slog.Any("error", err))
			return &Result{Class: class, Outcome: OutcomeFailed, Err: err}
		}
		return textResult(class, text, false)
	}

	return &Result{Class: class, Outcome: OutcomeUnsupported}
}

func (x *Extractor) readAll(r io.Reader) ([]byte, error) {
	if x.maxBytes > 0 {
		// one extra byte detects a reader longer than its reported size
		r = io.LimitReader(r, x.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(model.ErrExtractionFailed, "failed to read artifact", goerr.V("cause", err.Error()))
	}
	return data, nil
}

func textResult(class types.DocumentClass, text string, fallback bool) *Result {
	if strings.TrimSpace(text) == "" {
		return &Result{Class: class, Outcome: OutcomeEmpty, Fallback: fallback}
	}
	return &Result{Class: class, Outcome: OutcomeText, Text: text, Fallback: fallback}
}

// DecodePlain decodes data as UTF-8, or as ISO-8859-1 when data is not
// valid UTF-8. ISO-8859-1 accepts every byte, so DecodePlain never fails.
func DecodePlain(data []byte) (text string, fallback bool) {
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), false
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// unreachable for a single-byte charset
		return strings.ToValidUTF8(string(data), string(utf8.RuneError)), true
	}
	return string(decoded), true
}

// ExtractPDF returns the text of every page in order, joined by a newline
// and trimmed. Malformed documents yield ErrExtractionFailed.
func ExtractPDF(data []byte) (text string, err error) {
	// the parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = goerr.Wrap(model.ErrExtractionFailed, "PDF parser panicked", goerr.V("panic", fmt.Sprint(r)))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", goerr.Wrap(model.ErrExtractionFailed, "failed to open PDF", goerr.V("cause", err.Error()))
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", goerr.Wrap(model.ErrExtractionFailed, "failed to read PDF page",
				goerr.V("page", i),
				goerr.V("cause", err.Error()))
		}
		pages = append(pages, pageText)
	}

	return strings.TrimSpace(strings.Join(pages, pageSeparator)), nil
}
