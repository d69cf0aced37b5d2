package doc2pdf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mdresch/go-doc2pdf/internal/fileutil"
)

// Cloud service location and credential environment variables.
const (
	defaultCloudBaseURL = "https://pdf-services.adobe.io"

	envCloudClientID     = "PDF_SERVICES_CLIENT_ID"
	envCloudClientSecret = "PDF_SERVICES_CLIENT_SECRET" // #nosec G101 -- variable name, not a credential
)

// defaultPollInterval paces job status polling.
const defaultPollInterval = 2 * time.Second

// Compile-time interface check
var _ renderer = (*cloudRenderer)(nil)

// cloudRenderer renders HTML to PDF through a hosted conversion service:
// stage the document in a temp file, authenticate, upload it as an asset,
// submit an asynchronous HTML-to-PDF job, poll until it finishes, download
// the result. Credentials are read from the environment on every call so
// a missing secret is an ordinary backend failure, not a construction
// error.
type cloudRenderer struct {
	client       *http.Client
	baseURL      string // overridable for tests
	pollInterval time.Duration
	logger       *slog.Logger
}

// newCloudRenderer creates a cloudRenderer against the production service.
func newCloudRenderer(logger *slog.Logger) *cloudRenderer {
	return &cloudRenderer{
		client:       &http.Client{Timeout: 2 * time.Minute},
		baseURL:      defaultCloudBaseURL,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
}

// Name returns the backend name used in logs and fallback errors.
func (r *cloudRenderer) Name() string {
	return BackendCloud.String()
}

// Close drops idle connections kept alive by the HTTP client.
func (r *cloudRenderer) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

// Render converts htmlContent to PDF bytes via the hosted service.
func (r *cloudRenderer) Render(ctx context.Context, htmlContent string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clientID := os.Getenv(envCloudClientID)
	clientSecret := os.Getenv(envCloudClientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: %s and %s must be set",
			ErrCloudCredentials, envCloudClientID, envCloudClientSecret)
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cleanup(); err != nil {
			r.logger.Warn("temp file cleanup failed", "path", tmpPath, "error", err)
		}
	}()

	token, err := r.authenticate(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	assetID, uploadURI, err := r.createAsset(ctx, clientID, token)
	if err != nil {
		return nil, err
	}

	if err := r.uploadAsset(ctx, uploadURI, tmpPath); err != nil {
		return nil, err
	}

	statusURL, err := r.createJob(ctx, clientID, token, assetID)
	if err != nil {
		return nil, err
	}

	downloadURI, err := r.awaitJob(ctx, clientID, token, statusURL)
	if err != nil {
		return nil, err
	}

	return r.download(ctx, downloadURI)
}

// authenticate exchanges client credentials for a short-lived access token.
func (r *cloudRenderer) authenticate(ctx context.Context, clientID, clientSecret string) (string, error) {
	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCloudAuth, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := r.doJSON(req, http.StatusOK, &body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCloudAuth, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrCloudAuth)
	}
	return body.AccessToken, nil
}

// createAsset registers an upload slot for the HTML document.
func (r *cloudRenderer) createAsset(ctx context.Context, clientID, token string) (assetID, uploadURI string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/assets", strings.NewReader(`{"mediaType":"text/html"}`))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrCloudUpload, err)
	}
	r.setAuthHeaders(req, clientID, token)
	req.Header.Set("Content-Type", "application/json")

	var body struct {
		AssetID   string `json:"assetID"`
		UploadURI string `json:"uploadUri"`
	}
	if err := r.doJSON(req, http.StatusOK, &body); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrCloudUpload, err)
	}
	if body.AssetID == "" || body.UploadURI == "" {
		return "", "", fmt.Errorf("%w: incomplete asset response", ErrCloudUpload)
	}
	return body.AssetID, body.UploadURI, nil
}

// uploadAsset streams the staged HTML file to the pre-signed upload URI.
// The URI is self-authorizing; no auth headers here.
func (r *cloudRenderer) uploadAsset(ctx context.Context, uploadURI, tmpPath string) error {
	f, err := os.Open(tmpPath) // #nosec G304 -- path comes from os.CreateTemp
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCloudUpload, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCloudUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURI, f)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCloudUpload, err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", "text/html")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCloudUpload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrCloudUpload, readErrorBody(resp))
	}
	return nil
}

// createJob submits the HTML-to-PDF operation and returns the status URL
// handed back in the Location header.
func (r *cloudRenderer) createJob(ctx context.Context, clientID, token, assetID string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"assetID": assetID,
		"pageLayout": map[string]float64{
			"pageWidth":  paperWidthInches,
			"pageHeight": paperHeightInches,
		},
		"includeHeaderFooter": false,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCloudJob, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/operation/htmltopdf", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCloudJob, err)
	}
	r.setAuthHeaders(req, clientID, token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCloudJob, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("%w: %s", ErrCloudJob, readErrorBody(resp))
	}

	statusURL := resp.Header.Get("Location")
	if statusURL == "" {
		return "", fmt.Errorf("%w: missing job location", ErrCloudJob)
	}
	return statusURL, nil
}

// awaitJob polls the job status until it reports done, the job fails, or
// the context expires.
func (r *cloudRenderer) awaitJob(ctx context.Context, clientID, token, statusURL string) (string, error) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		status, downloadURI, err := r.pollJob(ctx, clientID, token, statusURL)
		if err != nil {
			return "", err
		}
		if status == "done" {
			if downloadURI == "" {
				return "", fmt.Errorf("%w: done without download URI", ErrCloudJob)
			}
			return downloadURI, nil
		}
		r.logger.Debug("cloud job pending", "status", status)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// pollJob reads the job status document once.
func (r *cloudRenderer) pollJob(ctx context.Context, clientID, token, statusURL string) (status, downloadURI string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrCloudJob, err)
	}
	r.setAuthHeaders(req, clientID, token)

	var body struct {
		Status string `json:"status"`
		Asset  struct {
			DownloadURI string `json:"downloadUri"`
		} `json:"asset"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := r.doJSON(req, http.StatusOK, &body); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrCloudJob, err)
	}
	if body.Status == "failed" {
		return "", "", fmt.Errorf("%w: %s (%s)", ErrCloudJob, body.Error.Message, body.Error.Code)
	}
	return body.Status, body.Asset.DownloadURI, nil
}

// download fetches the finished PDF from the pre-signed download URI.
func (r *cloudRenderer) download(ctx context.Context, downloadURI string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURI, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCloudDownload, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCloudDownload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", ErrCloudDownload, readErrorBody(resp))
	}

	pdfBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCloudDownload, err)
	}
	return pdfBytes, nil
}

// setAuthHeaders applies the bearer token and API key headers.
func (r *cloudRenderer) setAuthHeaders(req *http.Request, clientID, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("x-api-key", clientID)
}

// doJSON executes req, checks the status code, and decodes the JSON body
// into out (skipped when out is nil).
func (r *cloudRenderer) doJSON(req *http.Request, wantStatus int, out any) error {
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, readErrorBody(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %v", err)
	}
	return nil
}

// readErrorBody summarizes a non-2xx response for error messages.
func readErrorBody(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, 512))
	if err != nil || len(b) == 0 {
		return resp.Status
	}
	return fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(b)))
}
