package exports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"expertcof/internal/analysis"
	"expertcof/internal/shared/metrics"
	"expertcof/internal/shared/storage/object"
	"expertcof/internal/shared/telemetry"
	"expertcof/internal/shared/util"
)

var (
	ErrUnknownFormat   = errors.New("unknown export format")
	ErrArchiveDisabled = errors.New("export archive not configured")
	ErrNotFound        = errors.New("archived export not found")
	ErrForbidden       = errors.New("archived export belongs to another user")
)

// Format selects an exporter.
type Format string

const (
	FormatSpreadsheet Format = "xlsx"
	FormatDocument    Format = "pdf"
)

// ParseFormat accepts the two supported extensions, case-insensitively.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatSpreadsheet:
		return FormatSpreadsheet, nil
	case FormatDocument:
		return FormatDocument, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatSpreadsheet {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Artifact is a rendered export held in memory.
type Artifact struct {
	FileName    string
	ContentType string
	Body        []byte
}

// Archived describes an export kept in the object store.
type Archived struct {
	Key         string `json:"key"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"sizeBytes"`
}

// Service renders exports and optionally archives them.
type Service struct {
	Clock       Clock
	Spreadsheet Spreadsheet
	Document    Document
	Store       object.ObjectStore
}

// NewService wires both exporters to one clock. store may be nil, in which
// case archiving is unavailable and downloads still work.
func NewService(store object.ObjectStore, clock Clock, compressPDF bool) *Service {
	return &Service{
		Clock:       clock,
		Spreadsheet: Spreadsheet{Clock: clock},
		Document:    Document{Clock: clock, Compress: compressPDF},
		Store:       store,
	}
}

// Render produces the artifact for r in format f.
func (s *Service) Render(r analysis.Result, f Format) (Artifact, error) {
	var (
		body []byte
		name string
		err  error
	)
	switch f {
	case FormatSpreadsheet:
		body, err = s.Spreadsheet.Render(r)
		name = SpreadsheetFileName(r, s.Clock.now())
	case FormatDocument:
		body, err = s.Document.Render(r)
		name = DocumentFileName(r)
	default:
		return Artifact{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		metrics.IncExport(string(f), "failed")
		telemetry.Error("export.render_failed", map[string]any{
			"analysis_id": r.ID,
			"format":      string(f),
			"error":       err,
		})
		return Artifact{}, fmt.Errorf("render %s: %w", f, err)
	}
	metrics.IncExport(string(f), "success")
	return Artifact{FileName: name, ContentType: f.ContentType(), Body: body}, nil
}

// Archive renders r and stores the bytes under the user's namespace.
func (s *Service) Archive(ctx context.Context, userID string, r analysis.Result, f Format) (Archived, error) {
	if s.Store == nil {
		return Archived{}, ErrArchiveDisabled
	}
	art, err := s.Render(r, f)
	if err != nil {
		return Archived{}, err
	}
	key, size, _, err := s.Store.Save(ctx, userID, art.FileName, bytes.NewReader(art.Body))
	if err != nil {
		return Archived{}, fmt.Errorf("archive export: %w", err)
	}
	telemetry.Info("export.archived", map[string]any{
		"analysis_id": r.ID,
		"format":      string(f),
		"key":         key,
		"size_bytes":  size,
	})
	return Archived{Key: key, FileName: art.FileName, ContentType: art.ContentType, Size: size}, nil
}

// OpenArchived opens a stored export after checking it lives in userID's
// namespace. The returned name drops the store's random prefix.
func (s *Service) OpenArchived(ctx context.Context, userID, key string) (io.ReadCloser, Archived, error) {
	if s.Store == nil {
		return nil, Archived{}, ErrArchiveDisabled
	}
	key = strings.TrimSpace(key)
	owner, base := path.Split(path.Clean(key))
	if strings.TrimSuffix(owner, "/") != util.HashUserKey(userID) {
		return nil, Archived{}, ErrForbidden
	}

	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) || errors.Is(err, object.ErrInvalidKey) {
			return nil, Archived{}, ErrNotFound
		}
		return nil, Archived{}, fmt.Errorf("open archived export: %w", err)
	}

	name := util.OriginalName(base)
	contentType := FormatDocument.ContentType()
	if strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		contentType = FormatSpreadsheet.ContentType()
	}
	return rc, Archived{Key: key, FileName: name, ContentType: contentType}, nil
}
