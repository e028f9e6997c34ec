package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/oauth2"

	"expertcof/internal/analysis"
	"expertcof/internal/shared/metrics"
	"expertcof/internal/shared/telemetry"
)

const (
	uploadPath = "/api/cof/upload"
	pdfMIME    = "application/pdf"
	// MaxFileSize bounds the accepted document size.
	MaxFileSize = 25 << 20
)

var (
	ErrNoFile            = errors.New("no file provided")
	ErrNotPDF            = errors.New("file is not a pdf")
	ErrTooLarge          = errors.New("file too large")
	ErrUnauthenticated   = errors.New("no valid session")
	ErrMalformedResponse = errors.New("malformed analysis response")
)

// RemoteError is a non-2xx answer from the analysis endpoint.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("analysis endpoint returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("analysis endpoint returned %d", e.Status)
}

// UserMessage is the text shown to the user for an upload failure.
func UserMessage(err error) string {
	var remote *RemoteError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotPDF):
		return "Por favor, envie apenas arquivos PDF."
	case errors.Is(err, ErrNoFile):
		return "Selecione um arquivo PDF."
	case errors.Is(err, ErrTooLarge):
		return "Arquivo muito grande."
	case errors.Is(err, ErrUnauthenticated):
		return "Usuário não autenticado."
	case errors.As(err, &remote):
		if remote.Detail != "" {
			return remote.Detail
		}
		return "Falha no upload do arquivo."
	case errors.Is(err, ErrMalformedResponse):
		return "Falha no upload do arquivo."
	default:
		return "Erro ao enviar arquivo."
	}
}

// Client sends documents to the remote analysis endpoint. It never retries;
// the endpoint persists the result on success.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the API at baseURL.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Validate checks a candidate upload without touching the network.
func Validate(filename string, body []byte) error {
	if len(body) == 0 {
		return ErrNoFile
	}
	if len(body) > MaxFileSize {
		return ErrTooLarge
	}
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") || !mimetype.Detect(body).Is(pdfMIME) {
		return ErrNotPDF
	}
	return nil
}

// Upload validates the file, posts it with the caller's token and decodes
// the analysis.
func (c *Client) Upload(ctx context.Context, token *oauth2.Token, filename string, body []byte) (analysis.Result, error) {
	if err := Validate(filename, body); err != nil {
		return analysis.Result{}, err
	}
	if token == nil || !token.Valid() {
		return analysis.Result{}, ErrUnauthenticated
	}

	payload, contentType, err := multipartBody(filepath.Base(filename), body)
	if err != nil {
		return analysis.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, payload)
	if err != nil {
		return analysis.Result{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	token.SetAuthHeader(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRemoteCall("analyzer", "error", time.Since(start))
		return analysis.Result{}, fmt.Errorf("upload %s: %w", filename, err)
	}
	defer resp.Body.Close()
	metrics.ObserveRemoteCall("analyzer", strconv.Itoa(resp.StatusCode), time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return analysis.Result{}, fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remote := &RemoteError{Status: resp.StatusCode, Detail: detail(data)}
		telemetry.Warn("analyzer.upload_rejected", map[string]any{
			"status": resp.StatusCode,
			"detail": remote.Detail,
		})
		return analysis.Result{}, remote
	}

	res, err := analysis.Decode(data)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if res.Filename == "" {
		res.Filename = filepath.Base(filename)
	}
	return res, nil
}

func multipartBody(filename string, body []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", pdfMIME)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(body); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// detail extracts a string "detail" field from an error body.
func detail(data []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if s, ok := body.Detail.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
