package utils

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

func NewGCSClient(ctx context.Context) (*storage.Client, string, error) {
	bucket := os.Getenv("GCS_BUCKET")
	credentialsPath := os.Getenv("CREDENTIALS_FILE_LOCATION")
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	client, err := storage.NewClient(ctx, option.WithAuthCredentialsFile(option.ServiceAccount, filepath.Join(wd, credentialsPath)))
	if err != nil {
		return nil, "", err
	}
	return client, bucket, nil
}

func UploadImagesToGCSAndGetPublicURLs(
	ctx context.Context,
	gcs *storage.Client,
	bucketName string,
	blogSlug string,
	files []*multipart.FileHeader,
) ([]string, error) {

	maxImages := ParseIntDefault(os.Getenv("MAX_BLOG_IMAGES"), 8)
	if len(files) > maxImages {
		return nil, fmt.Errorf("at most %d images per story", maxImages)
	}

	urls := make([]string, 0, len(files))

	for _, fh := range files {
		// Build a safe unique object name
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if ext == "" {
			ext = ".bin"
		}
		objectName := fmt.Sprintf("blogs/%s/%d%s", blogSlug, time.Now().UnixNano(), ext)

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = mime.TypeByExtension(ext)
		}
		if ct == "" {
			ct = "application/octet-stream"
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}

		w := gcs.Bucket(bucketName).Object(objectName).NewWriter(ctx)
		w.ContentType = ct

		if _, err := io.Copy(w, f); err != nil {
			_ = f.Close()
			_ = w.Close()
			return nil, fmt.Errorf("upload copy: %w", err)
		}
		_ = f.Close()

		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("upload close: %w", err)
		}

		urls = append(urls, fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectName))
	}

	return urls, nil
}

func ObjectNameFromGCSPublicURL(bucket string, raw string) (string, error) {
	withoutScheme := raw
	for _, prefix := range []string{"https://", "http://"} {
		withoutScheme = strings.TrimPrefix(withoutScheme, prefix)
	}

	slash := strings.Index(withoutScheme, "/")
	if slash == -1 {
		return "", fmt.Errorf("no object path in url")
	}
	host := strings.ToLower(withoutScheme[:slash])
	path := withoutScheme[slash+1:]

	// style 1: storage.googleapis.com/<bucket>/<object>
	if host == "storage.googleapis.com" {
		prefix := bucket + "/"
		if !strings.HasPrefix(path, prefix) {
			return "", fmt.Errorf("url bucket mismatch")
		}
		return strings.TrimPrefix(path, prefix), nil
	}

	// style 2: <bucket>.storage.googleapis.com/<object>
	if host == strings.ToLower(bucket)+".storage.googleapis.com" {
		if path == "" {
			return "", fmt.Errorf("missing object path")
		}
		return path, nil
	}

	return "", fmt.Errorf("not a gcs public url")
}

func DeleteGCSObjects(ctx context.Context, client *storage.Client, bucket string, objectNames []string) error {
	var firstErr error

	for _, obj := range objectNames {
		if obj == "" {
			continue
		}
		err := client.Bucket(bucket).Object(obj).Delete(ctx)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("delete %s: %w", obj, err)
		}
	}

	return firstErr
}

// DeleteImagesByPublicURL is the cascade-cleanup path for post and
// account deletion. It never fails the surrounding delete; orphaned
// objects are only logged.
func DeleteImagesByPublicURL(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	client, bucket, err := NewGCSClient(ctx)
	if err != nil {
		LogCleanupError("gcs client", err)
		return
	}
	defer client.Close()

	objectNames := make([]string, 0, len(urls))
	for _, u := range urls {
		obj, err := ObjectNameFromGCSPublicURL(bucket, u)
		if err == nil {
			objectNames = append(objectNames, obj)
		}
	}
	LogCleanupError("gcs objects", DeleteGCSObjects(ctx, client, bucket, objectNames))
}
