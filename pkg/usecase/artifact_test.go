package usecase_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/mootai/moot/pkg/repository/memory"
	"github.com/mootai/moot/pkg/usecase"
)

func TestBuildContentBundle_EndToEnd(t *testing.T) {
	exe := bytes.Repeat([]byte{0x4d, 0x5a, 0x00}, 100)
	store := newFilesystemCase(t, map[string][]byte{
		"u1_a.txt": []byte("起诉书：被告人张三盗窃。"),
		"u2_b.pdf": newTestPDF(t, "Evidence list"),
		"u3_c.exe": exe,
	})
	uc := usecase.New(store, &mockBackend{})

	bundle, err := uc.Artifact.BuildContentBundle(context.Background(), testOwner, []string{"a.txt", "b.pdf", "c.exe"})
	gt.NoError(t, err).Required()
	gt.A(t, bundle.Entries).Length(3)

	gt.V(t, bundle.Entries[0].RequestedName).Equal("a.txt")
	gt.V(t, bundle.Entries[0].Status).Equal(types.ContentStatusExtracted)
	gt.V(t, bundle.Entries[0].Text).Equal("起诉书：被告人张三盗窃。")

	gt.V(t, bundle.Entries[1].Status).Equal(types.ContentStatusExtracted)
	gt.S(t, bundle.Entries[1].Text).Contains("Evidence list")

	gt.V(t, bundle.Entries[2].Status).Equal(types.ContentStatusSizeOnly)
	gt.V(t, bundle.Entries[2].Text).Equal("")
	gt.V(t, bundle.Entries[2].Size).Equal(int64(len(exe)))

	rendered := bundle.Render()
	gt.S(t, rendered).Contains("文件名: a.txt\n内容:\n起诉书")
	gt.S(t, rendered).Contains("文件名: c.exe\n文件大小: 300 字节")
}

func TestBuildContentBundle_NotFoundIsNotAnError(t *testing.T) {
	store := newFilesystemCase(t, map[string][]byte{
		"u1_a.txt": []byte("alpha"),
	})
	uc := usecase.New(store, &mockBackend{})

	bundle, err := uc.Artifact.BuildContentBundle(context.Background(), testOwner, []string{"missing.doc", "a.txt"})
	gt.NoError(t, err).Required()
	gt.A(t, bundle.Entries).Length(2)
	gt.V(t, bundle.Entries[0].Status).Equal(types.ContentStatusNotFound)
	gt.A(t, bundle.Contents()).Length(1)
	gt.B(t, strings.Contains(bundle.Render(), "missing.doc")).False()
}

func TestBuildContentBundle_UnknownOwner(t *testing.T) {
	uc := usecase.New(memory.NewStore(), &mockBackend{})

	bundle, err := uc.Artifact.BuildContentBundle(context.Background(), "nobody", []string{"a.txt"})
	gt.NoError(t, err).Required()
	gt.A(t, bundle.Entries).Length(1)
	gt.V(t, bundle.Entries[0].Status).Equal(types.ContentStatusNotFound)
}

func TestResolve_MatchingRules(t *testing.T) {
	store := newFilesystemCase(t, map[string][]byte{
		"p1_my_file.txt": []byte("x"),
		"p2_report.pdf":  []byte("y"),
	})
	uc := usecase.New(store, &mockBackend{})

	testCases := []struct {
		name      string
		requested string
		want      string
	}{
		{name: "sanitized form equals suffix", requested: "my file.txt", want: "p1_my_file.txt"},
		{name: "raw name equals suffix", requested: "report.pdf", want: "p2_report.pdf"},
		{name: "suffix ends with raw name", requested: "file.txt", want: "p1_my_file.txt"},
		{name: "no match", requested: "other.txt", want: ""},
		{name: "empty name", requested: "", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolved, err := uc.Artifact.Resolve(context.Background(), testOwner, []string{tc.requested})
			gt.NoError(t, err).Required()
			gt.A(t, resolved).Length(1)
			if tc.want == "" {
				gt.V(t, resolved[0]).Nil()
				return
			}
			gt.V(t, resolved[0]).NotNil()
			gt.V(t, resolved[0].PhysicalName).Equal(tc.want)
		})
	}
}

func TestResolve_NewestUploadWins(t *testing.T) {
	ctx := context.Background()

	for _, withIndex := range []bool{false, true} {
		name := "scan"
		opts := []usecase.Option{}
		if withIndex {
			name = "index"
			opts = append(opts, usecase.WithIndex(memory.NewIndex()))
		}

		t.Run(name, func(t *testing.T) {
			store := memory.NewStore()
			uc := usecase.New(store, &mockBackend{}, opts...)

			_, err := uc.Artifact.Upload(ctx, testOwner, []usecase.Upload{
				{Name: "a.txt", Size: 3, Body: strings.NewReader("old")},
			})
			gt.NoError(t, err).Required()
			_, err = uc.Artifact.Upload(ctx, testOwner, []usecase.Upload{
				{Name: "a.txt", Size: 3, Body: strings.NewReader("new")},
			})
			gt.NoError(t, err).Required()

			bundle, err := uc.Artifact.BuildContentBundle(ctx, testOwner, []string{"a.txt"})
			gt.NoError(t, err).Required()
			gt.V(t, bundle.Entries[0].Text).Equal("new")
		})
	}
}

func TestResolve_ExactMatchBeatsNewerSuffixMatch(t *testing.T) {
	ctx := context.Background()

	for _, withIndex := range []bool{false, true} {
		name := "scan"
		opts := []usecase.Option{}
		if withIndex {
			name = "index"
			opts = append(opts, usecase.WithIndex(memory.NewIndex()))
		}

		t.Run(name, func(t *testing.T) {
			uc := usecase.New(memory.NewStore(), &mockBackend{}, opts...)

			_, err := uc.Artifact.Upload(ctx, testOwner, []usecase.Upload{
				{Name: "a.txt", Size: 5, Body: strings.NewReader("exact")},
			})
			gt.NoError(t, err).Required()
			_, err = uc.Artifact.Upload(ctx, testOwner, []usecase.Upload{
				{Name: "data.txt", Size: 5, Body: strings.NewReader("other")},
			})
			gt.NoError(t, err).Required()

			bundle, err := uc.Artifact.BuildContentBundle(ctx, testOwner, []string{"a.txt"})
			gt.NoError(t, err).Required()
			gt.V(t, bundle.Entries[0].Text).Equal("exact")
		})
	}
}

func TestResolve_SuffixMatchPicksNewest(t *testing.T) {
	store := newFilesystemCase(t, map[string][]byte{
		"p1_old_report.txt": []byte("old"),
		"p2_new_report.txt": []byte("new"),
	})
	uc := usecase.New(store, &mockBackend{})

	resolved, err := uc.Artifact.Resolve(context.Background(), testOwner, []string{"report.txt"})
	gt.NoError(t, err).Required()
	gt.V(t, resolved[0]).NotNil()
	gt.V(t, resolved[0].PhysicalName).Equal("p2_new_report.txt")
}

func TestResolve_FallsBackToScanWhenIndexMisses(t *testing.T) {
	store := newFilesystemCase(t, map[string][]byte{
		"u1_a.txt": []byte("written by another process"),
	})
	uc := usecase.New(store, &mockBackend{}, usecase.WithIndex(memory.NewIndex()))

	resolved, err := uc.Artifact.Resolve(context.Background(), testOwner, []string{"a.txt"})
	gt.NoError(t, err).Required()
	gt.V(t, resolved[0]).NotNil()
	gt.V(t, resolved[0].PhysicalName).Equal("u1_a.txt")
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.New(store, &mockBackend{})

	names, err := uc.Artifact.Upload(ctx, testOwner, []usecase.Upload{
		{Name: "起诉书.txt", Size: 5, Body: strings.NewReader("hello")},
		{Name: "empty.txt", Size: 0, Body: strings.NewReader("")},
		{Name: "", Size: 2, Body: strings.NewReader("hi")},
	})
	gt.NoError(t, err).Required()
	gt.V(t, names).Equal([]string{"起诉书.txt", model.UnnamedArtifact})

	list, err := store.List(ctx, testOwner)
	gt.NoError(t, err).Required()
	gt.A(t, list).Length(2)

	// the original name resolves to its sanitized artifact
	bundle, err := uc.Artifact.BuildContentBundle(ctx, testOwner, []string{"起诉书.txt"})
	gt.NoError(t, err).Required()
	gt.V(t, bundle.Entries[0].Text).Equal("hello")
}

func TestUpload_InvalidOwner(t *testing.T) {
	uc := usecase.New(memory.NewStore(), &mockBackend{})
	_, err := uc.Artifact.Upload(context.Background(), "../etc", []usecase.Upload{
		{Name: "a.txt", Size: 1, Body: strings.NewReader("a")},
	})
	gt.Error(t, err).Is(model.ErrInvalidOwner)
}

func TestSummarize(t *testing.T) {
	store := newFilesystemCase(t, map[string][]byte{
		"u1_a.txt": []byte("alpha"),
		"u3_c.exe": []byte{0, 1, 2},
	})

	var got *model.SummaryRequest
	uc := usecase.New(store, &mockBackend{
		summarizeFn: func(ctx context.Context, req *model.SummaryRequest) (string, error) {
			got = req
			return "案情摘要", nil
		},
	})

	summary, err := uc.Artifact.Summarize(context.Background(), testOwner, []string{"a.txt", "c.exe", "gone.txt"}, types.RoleDefendant)
	gt.NoError(t, err).Required()
	gt.V(t, summary).Equal("案情摘要")
	gt.V(t, got.FileNames).Equal([]string{"a.txt", "c.exe", "gone.txt"})
	gt.V(t, got.Identity).Equal("defendant")
	gt.A(t, got.FileContents).Length(2)
	gt.S(t, got.FileContents[0]).Contains("alpha")
	gt.S(t, got.FileContents[1]).Contains("文件大小: 3 字节")
}

func TestSummarize_Validation(t *testing.T) {
	uc := usecase.New(memory.NewStore(), &mockBackend{})
	ctx := context.Background()

	_, err := uc.Artifact.Summarize(ctx, testOwner, nil, types.RolePlaintiff)
	gt.Error(t, err).Is(usecase.ErrMissingFileNames)

	_, err = uc.Artifact.Summarize(ctx, testOwner, []string{"a.txt"}, types.RoleJudge)
	gt.Error(t, err).Is(usecase.ErrInvalidRequest)
}

func TestSummarize_BackendErrorPropagates(t *testing.T) {
	uc := usecase.New(memory.NewStore(), &mockBackend{
		summarizeFn: func(ctx context.Context, req *model.SummaryRequest) (string, error) {
			return "", model.ErrBackendUnreachable
		},
	})

	_, err := uc.Artifact.Summarize(context.Background(), testOwner, []string{"a.txt"}, types.RolePlaintiff)
	gt.Error(t, err).Is(model.ErrBackendUnreachable)
}
