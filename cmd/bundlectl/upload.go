package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samirrijal/echoadmin/internal/adapters/upstream"
	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/upload"
	"github.com/samirrijal/echoadmin/internal/pkg/config"
	"github.com/samirrijal/echoadmin/internal/pkg/logging"
)

var uploadFlags struct {
	manifest    string
	bundle      string
	layout      string
	name        string
	version     string
	usage       string
	os          string
	tags        string
	description string
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a bundle (manifest, asset bundle and layout JSON)",
	Long: `Request presigned URLs from the upstream API, transfer the manifest and
asset bundle directly to storage in parallel, then register the bundle with
the layout JSON. Interrupting the command cancels the upload.`,
	RunE: runUpload,
}

func init() {
	f := uploadCmd.Flags()
	f.StringVar(&uploadFlags.manifest, "manifest", "", "Main manifest file")
	f.StringVar(&uploadFlags.bundle, "bundle", "", "Asset bundle file")
	f.StringVar(&uploadFlags.layout, "layout", "", "Layout JSON file")
	f.StringVarP(&uploadFlags.name, "name", "n", "", "Bundle name")
	f.StringVar(&uploadFlags.version, "version", "", "Bundle version")
	f.StringVar(&uploadFlags.usage, "usage", "", "historical, promo or both")
	f.StringVar(&uploadFlags.os, "os", "", "Target platform")
	f.StringVar(&uploadFlags.tags, "tags", "", "Comma separated tags")
	f.StringVar(&uploadFlags.description, "description", "", "Free-text description")
	for _, name := range []string{"manifest", "bundle", "layout", "name", "version"} {
		_ = uploadCmd.MarkFlagRequired(name)
	}
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configService)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	// stdout carries the JSON snapshot.
	logging.Setup(os.Stderr, level, "text", cfg.Telemetry.ServiceName)

	files, err := readBundleFiles()
	if err != nil {
		return err
	}
	meta := domain.BundleMetadata{
		Name:        uploadFlags.name,
		Version:     uploadFlags.version,
		Usage:       uploadFlags.usage,
		OS:          uploadFlags.os,
		Tags:        splitTags(uploadFlags.tags),
		Description: uploadFlags.description,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := upstream.New(cfg.Upstream)
	coord := upload.NewCoordinator(client, upstream.NewStorage(cfg.Upload.PutTimeoutDuration()))

	sess := upload.NewSession(files, meta)
	sess.Observe(func(snap domain.UploadSnapshot) {
		slog.Info("upload", "phase", string(snap.Phase), "upload_id", snap.UploadID)
	})

	_, err = coord.Submit(ctx, sess)
	if printErr := printJSON(cmd, sess.Snapshot()); printErr != nil {
		return printErr
	}
	return err
}

func readBundleFiles() ([]domain.NamedFile, error) {
	paths := []struct {
		slot domain.FileSlot
		path string
	}{
		{domain.SlotManifest, uploadFlags.manifest},
		{domain.SlotBundle, uploadFlags.bundle},
		{domain.SlotLayout, uploadFlags.layout},
	}
	files := make([]domain.NamedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p.path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p.slot, err)
		}
		files = append(files, domain.NamedFile{
			Slot:        p.slot,
			Name:        filepath.Base(p.path),
			ContentType: mime.TypeByExtension(filepath.Ext(p.path)),
			Data:        data,
		})
	}
	return files, nil
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

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
