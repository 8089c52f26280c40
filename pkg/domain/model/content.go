package model

import (
	"fmt"
	"strings"

	"github.com/mootai/moot/pkg/domain/types"
)

// Notes rendered into the background when no text could be extracted. The
// backend model is prompted in Chinese, so the rendered text is Chinese too.
const (
	NoteBinary           = "该文件为二进制文件，无法直接读取文本内容。"
	NoteExtractionFailed = "该文件内容提取失败，无法读取文本内容。"
	NoteEmptyText        = "该文件未包含可读取的文本内容。"
	NoteTooLarge         = "该文件过大，未读取文本内容。"
	NoteNotFound         = "未找到该文件。"
)

// ContentEntry is the extracted text, or a placeholder note, for one
// requested case document.
type ContentEntry struct {
	RequestedName string              `json:"requested_name"`
	Status        types.ContentStatus `json:"status"`
	Text          string              `json:"text,omitempty"`
	Size          int64               `json:"size"`
	Note          string              `json:"note,omitempty"`
}

// HasText reports whether text was extracted for the entry
func (e ContentEntry) HasText() bool {
	return e.Status == types.ContentStatusExtracted && e.Text != ""
}

// Render formats the entry the way the backend expects it in file_contents
// and in the compiled background.
func (e ContentEntry) Render() string {
	if e.HasText() {
		return fmt.Sprintf("文件名: %s\n内容:\n%s", e.RequestedName, e.Text)
	}
	return fmt.Sprintf("文件名: %s\n文件大小: %d 字节\n注意: %s", e.RequestedName, e.Size, e.Note)
}

// ContentBundle holds one ContentEntry per requested name, in request order
type ContentBundle struct {
	Entries []ContentEntry `json:"entries"`
}

// Resolved returns the entries whose artifact was found
func (b *ContentBundle) Resolved() []ContentEntry {
	resolved := make([]ContentEntry, 0, len(b.Entries))
	for _, e := range b.Entries {
		if e.Status != types.ContentStatusNotFound {
			resolved = append(resolved, e)
		}
	}
	return resolved
}

// Contents renders every resolved entry. Unresolved names are dropped
// silently, they are not an error.
func (b *ContentBundle) Contents() []string {
	resolved := b.Resolved()
	contents := make([]string, 0, len(resolved))
	for _, e := range resolved {
		contents = append(contents, e.Render())
	}
	return contents
}

// Render joins Contents with blank lines
func (b *ContentBundle) Render() string {
	return strings.Join(b.Contents(), "\n\n")
}
