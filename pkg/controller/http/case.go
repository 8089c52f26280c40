package http

import (
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/mootai/moot/pkg/usecase"
	"github.com/mootai/moot/pkg/utils/safe"
)

// uploadMemory is how much of a multipart form is held in memory before
// spilling to temporary files.
const uploadMemory = 32 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := ownerOf(r)
	if err != nil {
		writeError(w, r, err, "文件上传失败")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		writeError(w, r, goerr.Wrap(errBadRequest, "failed to parse multipart form", goerr.V("cause", err.Error())), "文件上传失败")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // temporary files only

	headers := r.MultipartForm.File["files"]
	uploads := make([]usecase.Upload, 0, len(headers))
	files := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range files {
			safe.Close(ctx, f)
		}
	}()

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, r, goerr.Wrap(err, "failed to open uploaded file", goerr.V("name", fh.Filename)), "文件上传失败")
			return
		}
		files = append(files, f)
		uploads = append(uploads, usecase.Upload{Name: fh.Filename, Size: fh.Size, Body: f})
	}

	names, err := s.uc.Artifact.Upload(ctx, owner, uploads)
	if err != nil {
		writeError(w, r, err, "文件上传失败")
		return
	}

	writeOK(w, r, "文件上传成功", names)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner, err := ownerOf(r)
	if err != nil {
		writeError(w, r, err, "文件读取失败")
		return
	}

	rc, artifact, err := s.uc.Artifact.Open(ctx, owner, chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err, "文件读取失败")
		return
	}
	defer safe.Close(ctx, rc)

	contentType := mime.TypeByExtension(types.Extension(artifact.OriginalName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(artifact.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
		"filename": artifact.OriginalName,
	}))
	w.WriteHeader(http.StatusOK)
	safe.Copy(ctx, w, rc)
}

type fileNamesRequest struct {
	FileNames []string `json:"fileNames"`
	Identity  string   `json:"identity,omitempty"`
}

func (s *Server) handleContents(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerOf(r)
	if err != nil {
		writeError(w, r, err, "获取文件内容失败")
		return
	}

	var req fileNamesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "获取文件内容失败")
		return
	}

	bundle, err := s.uc.Artifact.BuildContentBundle(r.Context(), owner, req.FileNames)
	if err != nil {
		writeError(w, r, err, "获取文件内容失败")
		return
	}

	writeOK(w, r, "获取成功", bundle.Entries)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerOf(r)
	if err != nil {
		writeError(w, r, err, "案件总结失败")
		return
	}

	var req fileNamesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "案件总结失败")
		return
	}

	summary, err := s.uc.Artifact.Summarize(r.Context(), owner, req.FileNames, types.Role(req.Identity).Normalize())
	if err != nil {
		writeError(w, r, err, "案件总结失败")
		return
	}

	writeOK(w, r, "案件总结生成成功", summary)
}
