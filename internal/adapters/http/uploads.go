package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// Form field names of the bundle upload form.
var uploadSlots = []struct {
	field string
	slot  domain.FileSlot
}{
	{"mainManifest", domain.SlotManifest},
	{"assetBundle", domain.SlotBundle},
	{"layoutFile", domain.SlotLayout},
}

var errFileTooLarge = errors.New("file too large")

// CreateUploadHandler accepts the bundle form and starts an upload session.
// With ?wait=true the response is sent once the session finishes.
func CreateUploadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		files, err := formFiles(c, deps.MaxFileMB)
		if errors.Is(err, errFileTooLarge) {
			return errTooLarge(c, err.Error())
		}
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		meta := domain.BundleMetadata{
			Name:        strings.TrimSpace(c.FormValue("name")),
			Version:     strings.TrimSpace(c.FormValue("version")),
			Usage:       c.FormValue("usage"),
			OS:          c.FormValue("os"),
			Tags:        splitTags(c.FormValue("tags")),
			Description: c.FormValue("description"),
		}

		snap, err := deps.Uploads.Submit(c.UserContext(), files, meta, c.QueryBool("wait", false))
		if err != nil {
			return uploadError(c, snap, err)
		}

		status := fiber.StatusAccepted
		if snap.Phase == domain.PhaseDone {
			status = fiber.StatusCreated
		}
		c.Set("Location", "/v1/bundles/uploads/"+snap.ID)
		return c.Status(status).JSON(snap)
	}
}

// GetUploadHandler returns a session's state. ?wait=true blocks until the current run ends.
func GetUploadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if c.QueryBool("wait", false) {
			// A deadline returns the state reached so far.
			snap, err := deps.Uploads.Wait(c.UserContext(), id)
			if errors.Is(err, domain.ErrNotFound) {
				return errFrom(c, err)
			}
			return c.JSON(snap)
		}

		snap, err := deps.Uploads.Get(id)
		if err != nil {
			return errFrom(c, err)
		}
		return c.JSON(snap)
	}
}

// RetryUploadHandler restarts a failed or cancelled session with the same files.
func RetryUploadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, err := deps.Uploads.Retry(c.Params("id"))
		if err != nil {
			return uploadError(c, snap, err)
		}
		return c.Status(fiber.StatusAccepted).JSON(snap)
	}
}

// CancelUploadHandler cancels a running session and forgets it.
func CancelUploadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Uploads.Remove(c.Params("id")); err != nil {
			return errFrom(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadHistoryHandler returns recently finished sessions from the audit trail.
func UploadHistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}
		history, err := deps.Uploads.History(c.UserContext(), limit)
		if err != nil {
			return errFrom(c, err)
		}
		if history == nil {
			history = []domain.UploadSnapshot{}
		}
		return c.JSON(history)
	}
}

// uploadError reports a failed submit. Sessions that exist are returned with the error.
func uploadError(c *fiber.Ctx, snap domain.UploadSnapshot, err error) error {
	status, code, msg := classify(err)
	logServerError(c, status, err)
	body := apiError(c, status, code, msg)
	if snap.ID != "" {
		body.Upload = &snap
	}
	return c.Status(status).JSON(body)
}

func formFiles(c *fiber.Ctx, maxMB int) ([]domain.NamedFile, error) {
	var files []domain.NamedFile
	for _, s := range uploadSlots {
		fh, err := c.FormFile(s.field)
		if err != nil {
			// Missing slots are reported by session validation.
			continue
		}
		if maxMB > 0 && fh.Size > int64(maxMB)<<20 {
			return nil, fmt.Errorf("%w: %s exceeds %d MB", errFileTooLarge, fh.Filename, maxMB)
		}
		data, err := readFormFile(fh)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", s.field, err)
		}
		files = append(files, domain.NamedFile{
			Slot:        s.slot,
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
