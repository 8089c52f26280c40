package usecase_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/m-mizutani/gt"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/repository/filesystem"
)

const testOwner model.OwnerID = "owner-1"

type mockBackend struct {
	generateFn  func(ctx context.Context, d *model.Directive) (string, error)
	summarizeFn func(ctx context.Context, req *model.SummaryRequest) (string, error)
	verdictFn   func(ctx context.Context, req *model.VerdictRequest) (*model.Verdict, error)
}

func (m *mockBackend) Generate(ctx context.Context, d *model.Directive) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, d)
	}
	return "ok", nil
}

func (m *mockBackend) Summarize(ctx context.Context, req *model.SummaryRequest) (string, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, req)
	}
	return "summary", nil
}

func (m *mockBackend) Verdict(ctx context.Context, req *model.VerdictRequest) (*model.Verdict, error) {
	if m.verdictFn != nil {
		return m.verdictFn(ctx, req)
	}
	return &model.Verdict{Verdict: "verdict"}, nil
}

func (m *mockBackend) Health(ctx context.Context) error {
	return nil
}

func (m *mockBackend) InitModel(ctx context.Context) (model.ModelStatus, error) {
	return model.ModelStatus(`{"loaded":true}`), nil
}

func (m *mockBackend) ModelStatus(ctx context.Context) (model.ModelStatus, error) {
	return model.ModelStatus(`{"loaded":true}`), nil
}

func newTestPDF(t *testing.T, text string) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Cell(40, 10, text)

	var buf bytes.Buffer
	gt.NoError(t, doc.Output(&buf)).Required()
	return buf.Bytes()
}

// newFilesystemCase lays out files under <root>/<owner>/ the way an
// external uploader would.
func newFilesystemCase(t *testing.T, files map[string][]byte) *filesystem.Store {
	t.Helper()

	root := t.TempDir()
	dir := filepath.Join(root, string(testOwner))
	gt.NoError(t, os.MkdirAll(dir, 0o750)).Required()
	for name, data := range files {
		gt.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600)).Required()
	}

	store, err := filesystem.New(root)
	gt.NoError(t, err).Required()
	return store
}
