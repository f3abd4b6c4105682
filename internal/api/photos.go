package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/photomart/cli/internal/models"
)

// ListPhotos fetches one page of the photo listing. When mine is true the
// backend restricts results to the authenticated uploader's own photos.
func (c *Client) ListPhotos(ctx context.Context, page int, mine bool) (models.PhotoPage, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{"page": []string{strconv.Itoa(page)}}
	if mine {
		query.Set("my_photos", "true")
	}

	var result models.PhotoPage
	r := request{method: http.MethodGet, path: "/photos/", query: query}
	if err := c.do(ctx, r, &result); err != nil {
		return models.PhotoPage{}, err
	}
	return result, nil
}

// GetPhoto fetches a single photo by id.
func (c *Client) GetPhoto(ctx context.Context, id int) (models.Photo, error) {
	var photo models.Photo
	r := request{method: http.MethodGet, path: fmt.Sprintf("/photos/%d/", id)}
	if err := c.do(ctx, r, &photo); err != nil {
		return models.Photo{}, err
	}
	return photo, nil
}

// UpdateMetadata saves the photo annotation. Completing all three fields makes
// the photo visible to buyers.
func (c *Client) UpdateMetadata(ctx context.Context, id int, meta models.PhotoMetadata) (models.Photo, error) {
	body, err := json.Marshal(meta)
	if err != nil {
		return models.Photo{}, err
	}

	var photo models.Photo
	r := request{method: http.MethodPatch, path: fmt.Sprintf("/photos/%d/metadata/", id), body: body}
	if err := c.do(ctx, r, &photo); err != nil {
		return models.Photo{}, err
	}
	return photo, nil
}

// DeletePhoto removes the photo. The backend enforces ownership.
func (c *Client) DeletePhoto(ctx context.Context, id int) error {
	r := request{method: http.MethodDelete, path: fmt.Sprintf("/photos/%d/", id)}
	return c.do(ctx, r, nil)
}

// UploadPhotos sends the provided image files as one multipart request. The
// body is buffered up front so a refresh-and-retry cycle can replay it.
func (c *Client) UploadPhotos(ctx context.Context, paths []string) ([]models.Photo, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files to upload", ErrInvalidRequest)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, path := range paths {
		if err := appendImagePart(writer, path); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var payload struct {
		Photos []models.Photo `json:"photos"`
	}
	r := request{
		method:      http.MethodPost,
		path:        "/photos/upload/",
		body:        buf.Bytes(),
		contentType: writer.FormDataContentType(),
	}
	if err := c.do(ctx, r, &payload); err != nil {
		return nil, err
	}
	return payload.Photos, nil
}

// DownloadLink resolves the short-lived download URL for the requested variant.
func (c *Client) DownloadLink(ctx context.Context, id int, variant string) (string, error) {
	if variant != models.DownloadWatermarked && variant != models.DownloadHQ {
		return "", fmt.Errorf("%w: unknown download variant %q", ErrInvalidRequest, variant)
	}

	var payload struct {
		DownloadURL string `json:"download_url"`
	}
	r := request{method: http.MethodGet, path: fmt.Sprintf("/photos/%d/download/%s/", id, variant)}
	if err := c.do(ctx, r, &payload); err != nil {
		return "", err
	}
	if payload.DownloadURL == "" {
		return "", fmt.Errorf("%w: download URL not available", ErrNotFound)
	}
	return payload.DownloadURL, nil
}

// FetchFile downloads the presigned URL to dest. The URL is already
// authorized by the backend, so no bearer header is attached. The file is
// written to a temp path first and renamed once complete.
func (c *Client) FetchFile(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, nil)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".photomart-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func appendImagePart(writer *multipart.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="images"; filename=%q`, filepath.Base(path))}
	header["Content-Type"] = []string{contentType}

	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, file)
	return err
}
