package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/photomart/cli/internal/gallery"
	"github.com/photomart/cli/internal/models"
)

func runPhotos(ctx context.Context, deps *dependencies, args []string) error {
	if len(args) == 0 {
		return errors.New("expected photos subcommand: list, show, upload, edit, delete, or download")
	}

	switch args[0] {
	case "list":
		return runPhotosList(ctx, deps, args[1:])
	case "show":
		return runPhotosShow(ctx, deps, args[1:])
	case "upload":
		return runPhotosUpload(ctx, deps, args[1:])
	case "edit":
		return runPhotosEdit(ctx, deps, args[1:])
	case "delete":
		return runPhotosDelete(ctx, deps, args[1:])
	case "download":
		return runPhotosDownload(ctx, deps, args[1:])
	default:
		return fmt.Errorf("unknown photos subcommand %q", args[0])
	}
}

func runPhotosList(ctx context.Context, deps *dependencies, args []string) error {
	fs := flag.NewFlagSet("photos list", flag.ContinueOnError)
	mine := fs.Bool("mine", false, "only my own photos (uploaders)")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := requireUser(ctx, deps)
	if err != nil {
		return err
	}
	if *mine && user.Role != models.RoleUploader {
		return errors.New("only uploaders have their own photo listing")
	}

	result, err := deps.client.ListPhotos(ctx, *page, *mine)
	if err != nil {
		return fmt.Errorf("load photos: %w", err)
	}

	if *mine {
		stats := gallery.Summarize(result.Results)
		fmt.Printf("Total %d, visible to buyers %d, needing metadata %d\n\n", stats.Total, stats.Published, stats.Drafts)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tUPLOADER\tCAPTURED")
	for _, photo := range result.Results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			photo.ID,
			gallery.StatusLabel(photo),
			gallery.Title(photo),
			photo.UploaderUsername,
			stringOr(photo.CaptureDate, "-"),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if result.Next != nil {
		fmt.Printf("\nMore photos available: photos list -page %d\n", *page+1)
	}
	return nil
}

func runPhotosShow(ctx context.Context, deps *dependencies, args []string) error {
	fs := flag.NewFlagSet("photos show", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := photoIDArg(fs.Args())
	if err != nil {
		return err
	}
	if _, err := requireUser(ctx, deps); err != nil {
		return err
	}

	photo, err := deps.client.GetPhoto(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("Photo %d (%s)\n", photo.ID, gallery.StatusLabel(photo))
	fmt.Printf("Title:       %s\n", gallery.Title(photo))
	fmt.Printf("Description: %s\n", stringOr(photo.Description, "-"))
	fmt.Printf("Captured:    %s\n", stringOr(photo.CaptureDate, "-"))
	fmt.Printf("Uploader:    %s\n", photo.UploaderUsername)
	fmt.Printf("Preview:     %s\n", stringOr(photo.PreviewURL, "processing"))
	return nil
}

func runPhotosUpload(ctx context.Context, deps *dependencies, args []string) error {
	fs := flag.NewFlagSet("photos upload", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	paths := fs.Args()
	if len(paths) == 0 {
		return errors.New("usage: photos upload FILE...")
	}

	user, err := requireUser(ctx, deps)
	if err != nil {
		return err
	}
	if user.Role != models.RoleUploader {
		return errors.New("only uploaders can upload photos")
	}

	photos, err := deps.client.UploadPhotos(ctx, paths)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	fmt.Printf("Uploaded %d photo(s).\n", len(photos))
	for _, photo := range photos {
		fmt.Printf("  photo %d — add metadata with: photos edit %d -title ... -description ... -capture-date ...\n", photo.ID, photo.ID)
	}
	return nil
}

func runPhotosEdit(ctx context.Context, deps *dependencies, args []string) error {
	fs := flag.NewFlagSet("photos edit", flag.ContinueOnError)
	title := fs.String("title", "", "photo title")
	description := fs.String("description", "", "photo description")
	captureDate := fs.String("capture-date", "", "capture date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := photoIDArg(fs.Args())
	if err != nil {
		return err
	}
	if *title == "" || *description == "" || *captureDate == "" {
		return errors.New("title, description, and capture date are all required for buyer visibility")
	}

	user, err := requireUser(ctx, deps)
	if err != nil {
		return err
	}
	if user.Role != models.RoleUploader {
		return errors.New("only uploaders can edit photo metadata")
	}

	photo, err := deps.client.UpdateMetadata(ctx, id, models.PhotoMetadata{
		Title:       *title,
		Description: *description,
		CaptureDate: *captureDate,
	})
	if err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}

	if photo.HasCompleteMetadata {
		fmt.Printf("Metadata saved. Photo %d is now visible to buyers.\n", photo.ID)
	} else {
		fmt.Printf("Metadata saved for photo %d.\n", photo.ID)
	}
	return nil
}

func runPhotosDelete(ctx context.Context, deps *dependencies, args []string) error {
	fs := flag.NewFlagSet("photos delete", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := photoIDArg(fs.Args())
	if err != nil {
		return err
	}

	user, err := requireUser(ctx, deps)
	if err != nil {
		return err
	}
	if user.Role != models.RoleUploader {
		return errors.New("only uploaders can delete photos")
	}

	if !*yes && !confirm(fmt.Sprintf("Delete photo %d? This cannot be undone.", id)) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := deps.client.DeletePhoto(ctx, id); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	fmt.Printf("Deleted photo %d.\n", id)
	return nil
}

func runPhotosDownload(ctx context.Context, deps *dependencies, args []string) error {
	fs := flag.NewFlagSet("photos download", flag.ContinueOnError)
	hq := fs.Bool("hq", false, "download the high-quality original instead of the watermarked preview")
	out := fs.String("o", "", "output path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := photoIDArg(fs.Args())
	if err != nil {
		return err
	}
	if _, err := requireUser(ctx, deps); err != nil {
		return err
	}

	variant := models.DownloadWatermarked
	if *hq {
		variant = models.DownloadHQ
	}

	link, err := deps.client.DownloadLink(ctx, id, variant)
	if err != nil {
		return fmt.Errorf("resolve download: %w", err)
	}

	dest := *out
	if dest == "" {
		dest = fmt.Sprintf("photo-%d-%s.jpg", id, variant)
	}
	if err := deps.client.FetchFile(ctx, link, dest); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	fmt.Printf("Saved %s\n", dest)
	return nil
}

func runGallery(ctx context.Context, deps *dependencies, args []string) error {
	fs := flag.NewFlagSet("gallery", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := requireUser(ctx, deps)
	if err != nil {
		return err
	}
	if user.Role == models.RoleUploader {
		fmt.Fprintln(os.Stderr, "Tip: uploaders manage their photos with `photomart photos list -mine`.")
	}

	result, err := deps.client.ListPhotos(ctx, *page, false)
	if err != nil {
		return fmt.Errorf("load gallery: %w", err)
	}

	visible := gallery.BuyerVisible(result.Results)
	if len(visible) == 0 {
		fmt.Println("No photos available yet. Photographers are still uploading — check back later.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tUPLOADER\tCAPTURED")
	for _, photo := range visible {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", photo.ID, gallery.Title(photo), photo.UploaderUsername, stringOr(photo.CaptureDate, "-"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if result.Next != nil {
		fmt.Printf("\nMore photos available: gallery -page %d\n", *page+1)
	}
	return nil
}

func photoIDArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one photo id")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid photo id %q", args[0])
	}
	return id, nil
}

func stringOr(value *string, fallback string) string {
	if value != nil && *value != "" {
		return *value
	}
	return fallback
}
