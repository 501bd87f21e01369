package execnode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

var httpNodeMethods = map[string]bool{"GET": true, "POST": true, "PUT": true, "DELETE": true, "PATCH": true}

// HTTPConfig is the declarative config for an Http node.
type HTTPConfig struct {
	URL            string            `json:"url"`
	Method         string            `json:"method"`
	InputData      map[string]interface{} `json:"input_data"`
	Headers        map[string]string `json:"headers"`
	TimeoutSeconds uint32            `json:"timeout_seconds"`
}

// HTTPNode issues a single HTTP request built by merging runtime input JSON
// over the node's configured defaults.
type HTTPNode struct {
	base NodeBase
	cfg  HTTPConfig
}

// NewHTTPNode parses config, rejecting an empty URL and defaulting an
// unrecognized/blank method to POST.
func NewHTTPNode(base NodeBase, config json.RawMessage) (*HTTPNode, error) {
	var cfg HTTPConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, wferrors.NodeConfigMissing(base.ID, "http node config malformed: "+err.Error())
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, wferrors.NodeConfigMissing(base.ID, "http node requires a url")
	}
	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	if !httpNodeMethods[cfg.Method] {
		cfg.Method = "POST"
	}
	if cfg.InputData == nil {
		cfg.InputData = map[string]interface{}{}
	}
	return &HTTPNode{base: base, cfg: cfg}, nil
}

func (n *HTTPNode) Base() *NodeBase { return &n.base }

func (n *HTTPNode) ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error) {
	return n.base.ProcessInput(ctx, input)
}

// mergeRequestData overrides config input_data keys with matching keys from
// the runtime input JSON; config keys act as defaults for anything the
// input doesn't supply.
func mergeRequestData(configData map[string]interface{}, input *flowdata.FlowData) (map[string]interface{}, error) {
	merged := make(map[string]interface{}, len(configData))
	for k, v := range configData {
		merged[k] = v
	}
	if input == nil {
		return merged, nil
	}
	payload, err := input.AsJSON()
	if err != nil {
		// Non-JSON input simply contributes nothing to the merge; config
		// defaults stand alone.
		return merged, nil
	}
	override, ok := payload.(map[string]interface{})
	if !ok {
		return merged, nil
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged, nil
}

func (n *HTTPNode) CoreExecute(ctx context.Context, input *flowdata.FlowData, _ Context) (flowdata.FlowOutput, error) {
	merged, err := mergeRequestData(n.cfg.InputData, input)
	if err != nil {
		return flowdata.FlowOutput{}, err
	}

	reqURL := n.cfg.URL
	var body io.Reader
	if n.cfg.Method == http.MethodGet {
		q := url.Values{}
		for k, v := range merged {
			q.Set(k, fmt.Sprintf("%v", v))
		}
		if encoded := q.Encode(); encoded != "" {
			reqURL = reqURL + "?" + encoded
		}
	} else {
		raw, err := json.Marshal(merged)
		if err != nil {
			return flowdata.FlowOutput{}, wferrors.Serialization("http request body", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, n.cfg.Method, reqURL, body)
	if err != nil {
		return flowdata.FlowOutput{}, wferrors.Transport("http", err)
	}
	for k, v := range n.cfg.Headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	timeout := 30 * time.Second
	if n.cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(n.cfg.TimeoutSeconds) * time.Second
	}
	client := &http.Client{Timeout: timeout}

	resp, err := client.Do(req)
	if err != nil {
		return flowdata.FlowOutput{}, wferrors.Transport("http", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return flowdata.FlowOutput{}, wferrors.Transport("http", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return flowdata.FlowOutput{}, wferrors.ExecutionError(n.base.ID,
			fmt.Sprintf("http request returned status %d: %s", resp.StatusCode, string(respBody)))
	}

	var parsed interface{}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		parsed = map[string]interface{}{"response": string(respBody), "_type": "text"}
	}

	return flowdata.Data(flowdata.NewJSONData(parsed)), nil
}

func (n *HTTPNode) ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error) {
	return n.base.ProcessOutput(ctx, output)
}
