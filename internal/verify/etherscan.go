package verify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// EtherscanConfig configures one Etherscan-family explorer (Etherscan
// itself, or a compatible fork — Basescan, Polygonscan, etc. — that shares
// the same v1 API shape).
type EtherscanConfig struct {
	APIBaseURL string
	APIKey     string
	PollEvery  time.Duration
	PollFor    time.Duration
}

// Etherscan implements the submit-then-poll verification flow: POST
// verifysourcecode, then poll checkverifystatus on the returned GUID until
// it reports a terminal state or the poll window elapses.
type Etherscan struct {
	cfg    EtherscanConfig
	client *retryablehttp.Client
	// post/get are overridable for tests so no real HTTP round-trip is
	// required to exercise the state machine.
	post func(ctx context.Context, form url.Values) (string, error)
	get  func(ctx context.Context, query url.Values) (string, error)
}

// NewEtherscan constructs an Etherscan platform, defaulting the poll
// interval/timeout to 5s/300s when unset.
func NewEtherscan(cfg EtherscanConfig) *Etherscan {
	if cfg.PollEvery == 0 {
		cfg.PollEvery = 5 * time.Second
	}
	if cfg.PollFor == 0 {
		cfg.PollFor = 300 * time.Second
	}
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 3

	e := &Etherscan{cfg: cfg, client: client}
	e.post = e.defaultPost
	e.get = e.defaultGet
	return e
}

func (e *Etherscan) Name() string { return "etherscan" }

func (e *Etherscan) Verify(ctx context.Context, req Request) (Result, error) {
	guid, err := e.submit(ctx, req)
	if err != nil {
		if isAlreadyVerified(err) {
			return Result{Platform: e.Name(), Status: StatusAlreadyVerified, Message: err.Error()}, nil
		}
		return Result{}, err
	}
	return e.poll(ctx, guid)
}

func (e *Etherscan) submit(ctx context.Context, req Request) (string, error) {
	form := url.Values{}
	form.Set("apikey", e.cfg.APIKey)
	form.Set("module", "contract")
	form.Set("action", "verifysourcecode")
	form.Set("contractaddress", req.Address)
	form.Set("sourceCode", req.Source)
	form.Set("contractname", fmt.Sprintf("%s:%s", req.SourceName, req.ContractName))
	form.Set("compilerversion", req.Compiler)
	form.Set("codeformat", "solidity-standard-json-input")
	// Etherscan's API has carried this misspelling since launch; every
	// client, including the official ones, must match it verbatim.
	form.Set("constructorArguements", req.ConstructorArgs)
	if req.OptimizerEnabled {
		form.Set("optimizationUsed", "1")
	} else {
		form.Set("optimizationUsed", "0")
	}
	form.Set("runs", strconv.Itoa(req.OptimizerRuns))
	if req.EVMVersion != "" {
		form.Set("evmversion", req.EVMVersion)
	}

	body, err := e.post(ctx, form)
	if err != nil {
		return "", pkgerrors.NewRemoteError("etherscan.verifysourcecode", true, err)
	}

	status, message, result, err := parseEtherscanEnvelope(body)
	if err != nil {
		return "", pkgerrors.NewRemoteError("etherscan.verifysourcecode", false, err)
	}
	if status != "1" {
		return "", fmt.Errorf("%s", message+": "+result)
	}
	return result, nil
}

func (e *Etherscan) poll(ctx context.Context, guid string) (Result, error) {
	deadline := time.Now().Add(e.cfg.PollFor)
	ticker := time.NewTicker(e.cfg.PollEvery)
	defer ticker.Stop()

	for {
		query := url.Values{}
		query.Set("apikey", e.cfg.APIKey)
		query.Set("module", "contract")
		query.Set("action", "checkverifystatus")
		query.Set("guid", guid)

		body, err := e.get(ctx, query)
		if err != nil {
			return Result{}, pkgerrors.NewRemoteError("etherscan.checkverifystatus", true, err)
		}

		_, message, result, err := parseEtherscanEnvelope(body)
		if err != nil {
			return Result{}, pkgerrors.NewRemoteError("etherscan.checkverifystatus", false, err)
		}

		switch {
		case strings.Contains(strings.ToLower(result), "pass"):
			return Result{Platform: e.Name(), Status: StatusVerified, Message: result}, nil
		case isRetryableEtherscanMessage(result):
			// Not yet indexed; fall through to wait for the next tick.
		default:
			return Result{}, pkgerrors.NewRemoteError("etherscan.checkverifystatus", false, fmt.Errorf("%s: %s", message, result))
		}

		if time.Now().After(deadline) {
			return Result{}, pkgerrors.NewRemoteError("etherscan.checkverifystatus", true, fmt.Errorf("verification did not complete within %s", e.cfg.PollFor))
		}

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// isRetryableEtherscanMessage recognizes the "contract source code hasn't
// been indexed yet" subclass of failure message Etherscan returns while a
// submission is still pending, as distinct from a genuine compile mismatch.
func isRetryableEtherscanMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "pending") ||
		strings.Contains(lower, "unable to locate contractcode") ||
		strings.Contains(lower, "in queue")
}

func isAlreadyVerified(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already verified")
}

// parseEtherscanEnvelope parses Etherscan's {status, message, result} JSON
// envelope without pulling in a full JSON schema for it.
func parseEtherscanEnvelope(body string) (status, message, result string, err error) {
	return parseFlatJSONEnvelope(body, "status", "message", "result")
}

func (e *Etherscan) defaultPost(ctx context.Context, form url.Values) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", e.cfg.APIBaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return readBody(resp)
}

func (e *Etherscan) defaultGet(ctx context.Context, query url.Values) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", e.cfg.APIBaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	return readBody(resp)
}
