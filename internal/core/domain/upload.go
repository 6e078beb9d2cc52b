package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// UploadPhase is the state of an upload session.
type UploadPhase string

const (
	PhaseIdle       UploadPhase = "idle"
	PhaseRequesting UploadPhase = "requesting"
	PhaseUploading  UploadPhase = "uploading"
	PhaseFinalizing UploadPhase = "finalizing"
	PhaseDone       UploadPhase = "done"
	PhaseFailed     UploadPhase = "failed"
	PhaseCancelled  UploadPhase = "cancelled"
)

// Terminal reports whether no further transition happens without a retry.
func (p UploadPhase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed || p == PhaseCancelled
}

// InFlight reports whether a submit is currently running.
func (p UploadPhase) InFlight() bool {
	return p == PhaseRequesting || p == PhaseUploading || p == PhaseFinalizing
}

// FileSlot names a form input of the bundle upload form.
type FileSlot string

const (
	SlotManifest FileSlot = "manifest"
	SlotBundle   FileSlot = "bundle"
	SlotLayout   FileSlot = "layout"
)

// NamedFile is one file picked by the operator.
type NamedFile struct {
	Slot        FileSlot `json:"slot"`
	Name        string   `json:"name"`
	ContentType string   `json:"contentType,omitempty"`
	Data        []byte   `json:"-"`
}

// Size returns the payload length in bytes.
func (f NamedFile) Size() int { return len(f.Data) }

// BundleMetadata is the form metadata sent with the finalize call.
type BundleMetadata struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Usage       string   `json:"usage,omitempty"`
	OS          string   `json:"os,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description,omitempty"`
}

// FileInfo describes a file in the initiate-upload request.
type FileInfo struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
}

// PresignedURL is one direct-to-storage destination.
type PresignedURL struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
}

// PresignedUpload is the initiate-upload response.
type PresignedUpload struct {
	UploadID string         `json:"uploadId"`
	URLs     []PresignedURL `json:"urls"`
}

// URLFor returns the presigned URL issued for fileName.
func (p *PresignedUpload) URLFor(fileName string) (string, bool) {
	for _, u := range p.URLs {
		if u.FileName == fileName && u.URL != "" {
			return u.URL, true
		}
	}
	return "", false
}

// FinalizeRequest is sent once every transfer has succeeded.
type FinalizeRequest struct {
	UploadID  string
	Metadata  BundleMetadata
	Reference *NamedFile
}

// FinalizeResult is the server's finalize response, passed through untouched.
type FinalizeResult map[string]any

// ID returns the "id" field of the response, if any.
func (r FinalizeResult) ID() string {
	switch v := r["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

// UploadSnapshot is a read-only copy of a session's state.
type UploadSnapshot struct {
	ID        string         `json:"id"`
	Phase     UploadPhase    `json:"phase"`
	UploadID  string         `json:"uploadId,omitempty"`
	Files     []NamedFile    `json:"files"`
	Metadata  BundleMetadata `json:"metadata"`
	Error     string         `json:"error,omitempty"`
	FailedOn  string         `json:"failedFile,omitempty"`
	Result    FinalizeResult `json:"result,omitempty"`
	Attempts  int            `json:"attempts"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
