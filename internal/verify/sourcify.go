package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// SourcifyConfig configures the Sourcify verification server.
type SourcifyConfig struct {
	ServerURL string
	Timeout   time.Duration
}

// Sourcify implements the one-shot multipart upload flow: unlike
// Etherscan, a single POST either verifies the contract synchronously or
// fails; there is no polling step.
type Sourcify struct {
	cfg    SourcifyConfig
	client *retryablehttp.Client
	upload func(ctx context.Context, body *bytes.Buffer, contentType string) (*http.Response, error)
}

// NewSourcify constructs a Sourcify platform, defaulting the request
// timeout to 60s when unset.
func NewSourcify(cfg SourcifyConfig) *Sourcify {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 1
	client.HTTPClient.Timeout = cfg.Timeout

	s := &Sourcify{cfg: cfg, client: client}
	s.upload = s.defaultUpload
	return s
}

func (s *Sourcify) Name() string { return "sourcify" }

func (s *Sourcify) Verify(ctx context.Context, req Request) (Result, error) {
	body, contentType, err := buildSourcifyMultipart(req)
	if err != nil {
		return Result{}, pkgerrors.NewValidationError("sources", err.Error(), err)
	}

	resp, err := s.upload(ctx, body, contentType)
	if err != nil {
		return Result{}, pkgerrors.NewRemoteError("sourcify.verify", true, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return Result{Platform: s.Name(), Status: StatusAlreadyVerified, Message: "contract already verified on Sourcify"}, nil
	}

	raw, err := readBody(resp)
	if err != nil {
		return Result{}, pkgerrors.NewRemoteError("sourcify.verify", false, err)
	}

	status, err := parseSourcifyStatus(raw)
	if err != nil {
		return Result{}, pkgerrors.NewRemoteError("sourcify.verify", false, err)
	}
	return Result{Platform: s.Name(), Status: status, Message: raw}, nil
}

func buildSourcifyMultipart(req Request) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	if err := writer.WriteField("address", req.Address); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("chain", strconv.FormatUint(req.ChainID, 10)); err != nil {
		return nil, "", err
	}

	sources := req.Sources
	if sources == nil {
		sources = map[string]string{req.SourceName: req.Source}
	}
	for name, content := range sources {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write([]byte(content)); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf, writer.FormDataContentType(), nil
}

// parseSourcifyStatus reads the {result: [{status: "perfect"|"partial"}]}
// (or top-level {error: "..."}) shape Sourcify's /verify endpoint returns;
// only the first result entry is inspected.
func parseSourcifyStatus(body string) (Status, error) {
	var decoded struct {
		Result []struct {
			Status string `json:"status"`
		} `json:"result"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("sourcify: %s", decoded.Error)
	}
	if len(decoded.Result) == 0 {
		return "", fmt.Errorf("sourcify returned no result entries")
	}
	switch decoded.Result[0].Status {
	case "perfect":
		return StatusVerified, nil
	case "partial":
		return StatusPartial, nil
	default:
		return "", fmt.Errorf("sourcify: unrecognized status %q", decoded.Result[0].Status)
	}
}

func (s *Sourcify) defaultUpload(ctx context.Context, body *bytes.Buffer, contentType string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", s.cfg.ServerURL+"/server/verify", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return s.client.Do(req)
}
