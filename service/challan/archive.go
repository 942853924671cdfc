package challan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// Archive mirrors settled challans as JSON documents so billing outcomes
// survive a process restart. The base URL accepts any afs scheme (file://,
// mem://, s3://, ...).
type Archive struct {
	fs      afs.Service
	baseURL string
}

// NewArchive creates an archive rooted at baseURL.
func NewArchive(fs afs.Service, baseURL string) (*Archive, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("archive base URL cannot be empty")
	}
	return &Archive{fs: fs, baseURL: baseURL}, nil
}

// Store writes the record as a JSON document named by its ID.
func (a *Archive) Store(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", record.ID, err)
	}
	URL := url.Join(a.baseURL, record.ID+".json")
	if err := a.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to upload record %s: %w", record.ID, err)
	}
	return nil
}

// Load reads an archived record by ID; it returns (nil, nil) when the
// document does not exist.
func (a *Archive) Load(ctx context.Context, id string) (*Record, error) {
	URL := url.Join(a.baseURL, id+".json")
	if exists, _ := a.fs.Exists(ctx, URL); !exists {
		return nil, nil
	}
	data, err := a.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download record %s: %w", id, err)
	}
	record := &Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", id, err)
	}
	return record, nil
}

// List returns all archived records.
func (a *Archive) List(ctx context.Context) ([]*Record, error) {
	objects, err := a.fs.List(ctx, a.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	var records []*Record
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		data, err := a.fs.DownloadWithURL(ctx, object.URL())
		if err != nil {
			return nil, err
		}
		record := &Record{}
		if err := json.Unmarshal(data, record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
