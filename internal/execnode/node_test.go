package execnode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/llmclient"
	"github.com/duragraph/workflow-go/internal/mcpclient"
)

func base(id string) NodeBase { return NewNodeBase(id, nil, nil, nil) }

// fakeContext resolves children by id from a plain map, for control-class
// node tests that don't need a whole graph/execctx.Context.
type fakeContext struct {
	children map[string]Executable
}

func (f fakeContext) Executor(id string) (Executable, bool) {
	e, ok := f.children[id]
	return e, ok
}

func TestInputNodeIgnoresInput(t *testing.T) {
	cfg, _ := json.Marshal(map[string]interface{}{"literal": flowdata.NewTextData("fixed")})
	n, err := NewInputNode(base("in"), cfg)
	require.NoError(t, err)

	out, err := n.CoreExecute(context.Background(), nil, nil)
	require.NoError(t, err)
	text, err := out.Data.AsText()
	require.NoError(t, err)
	assert.Equal(t, "fixed", text)
}

func TestIdentityNodeRequiresInput(t *testing.T) {
	n := NewIdentityNode(base("id"))
	_, err := n.CoreExecute(context.Background(), nil, nil)
	assert.Error(t, err)

	in := flowdata.NewTextData("x")
	out, err := n.CoreExecute(context.Background(), &in, nil)
	require.NoError(t, err)
	assert.Equal(t, flowdata.OutputData, out.Kind)
}

func TestPromptNodeRejectsEmptyTemplate(t *testing.T) {
	cfg, _ := json.Marshal(map[string]string{"template": "  "})
	_, err := NewPromptNode(base("p"), cfg)
	assert.Error(t, err)
}

func TestPromptNodeReturnsTemplateRegardlessOfInput(t *testing.T) {
	cfg, _ := json.Marshal(map[string]string{"template": "hello {{name}}"})
	n, err := NewPromptNode(base("p"), cfg)
	require.NoError(t, err)

	out, err := n.CoreExecute(context.Background(), nil, nil)
	require.NoError(t, err)
	text, err := out.Data.AsText()
	require.NoError(t, err)
	assert.Equal(t, "hello {{name}}", text)
}

func TestBranchNodeMatchesFirstCaseInOrder(t *testing.T) {
	cfg, _ := json.Marshal(map[string]interface{}{
		"branches": []map[string]string{
			{"id": "small", "condition": "<", "value": "10", "value_type": "number"},
			{"id": "big", "condition": ">=", "value": "10", "value_type": "number"},
		},
		"default": "fallback",
	})
	n, err := NewBranchNode(base("b"), cfg)
	require.NoError(t, err)

	in := flowdata.NewTextData("3")
	out, err := n.CoreExecute(context.Background(), &in, nil)
	require.NoError(t, err)
	assert.Equal(t, flowdata.OutputControl, out.Kind)
	assert.Equal(t, "small", out.Control.NextHandle)
}

func TestBranchNodeFallsBackToDefault(t *testing.T) {
	cfg, _ := json.Marshal(map[string]interface{}{
		"branches": []map[string]string{
			{"id": "yes", "condition": "==", "value": "yes"},
		},
	})
	n, err := NewBranchNode(base("b"), cfg)
	require.NoError(t, err)

	in := flowdata.NewTextData("maybe")
	out, err := n.CoreExecute(context.Background(), &in, nil)
	require.NoError(t, err)
	assert.Equal(t, "default", out.Control.NextHandle)
}

func TestBranchNodeRejectsNilInput(t *testing.T) {
	n, err := NewBranchNode(base("b"), json.RawMessage(`{}`))
	require.NoError(t, err)
	_, err = n.CoreExecute(context.Background(), nil, nil)
	assert.Error(t, err)
}

// identityChild is a tiny Executable stand-in used to populate fakeContext
// without depending on execctx.
func identityChild(id string) Executable {
	return NewIdentityNode(base(id))
}

func TestAggregatorMergesDataAndDropsOthers(t *testing.T) {
	cfg, _ := json.Marshal(map[string]interface{}{
		"branches": map[string]string{"a": "childA", "b": "childB"},
	})
	n, err := NewAggregatorNode(base("agg"), cfg)
	require.NoError(t, err)

	rc := fakeContext{children: map[string]Executable{
		"childA": identityChild("childA"),
		"childB": identityChild("childB"),
	}}

	in := flowdata.NewNumberData(7)
	out, err := n.CoreExecute(context.Background(), &in, rc)
	require.NoError(t, err)
	require.Equal(t, flowdata.OutputData, out.Kind)

	items, err := out.Data.AsCollection()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, float64(7), items[0].Num)
	assert.Equal(t, float64(7), items[1].Num)

	// A child whose output is not Data (a Branch yields Control) is dropped
	// from the merge rather than failing the aggregation.
	mixedCfg, _ := json.Marshal(map[string]interface{}{
		"branches": map[string]string{"a": "childA", "c": "childC"},
	})
	mixed, err := NewAggregatorNode(base("agg2"), mixedCfg)
	require.NoError(t, err)
	branchChild, err := NewBranchNode(base("childC"), json.RawMessage(`{}`))
	require.NoError(t, err)
	mixedRC := fakeContext{children: map[string]Executable{
		"childA": identityChild("childA"),
		"childC": branchChild,
	}}

	textIn := flowdata.NewTextData("x")
	mixedOut, err := mixed.CoreExecute(context.Background(), &textIn, mixedRC)
	require.NoError(t, err)
	mixedItems, err := mixedOut.Data.AsCollection()
	require.NoError(t, err)
	require.Len(t, mixedItems, 1)
	assert.Equal(t, "x", mixedItems[0].Text)
}

func TestAggregatorRequiresAtLeastOneBranch(t *testing.T) {
	_, err := NewAggregatorNode(base("agg"), json.RawMessage(`{"branches":{}}`))
	assert.Error(t, err)
}

func TestRepeatFeedsOutputBackAsInput(t *testing.T) {
	cfg, _ := json.Marshal(map[string]interface{}{"child_id": "child", "max_iterations": 3})
	n, err := NewRepeatNode(base("r"), cfg)
	require.NoError(t, err)

	rc := fakeContext{children: map[string]Executable{"child": identityChild("child")}}

	in := flowdata.NewTextData("same")
	out, err := n.CoreExecute(context.Background(), &in, rc)
	require.NoError(t, err)
	text, err := out.Data.AsText()
	require.NoError(t, err)
	assert.Equal(t, "same", text)
}

func TestRepeatErrorsOnNonDataChild(t *testing.T) {
	cfg, _ := json.Marshal(map[string]interface{}{"child_id": "child", "max_iterations": 1})
	n, err := NewRepeatNode(base("r"), cfg)
	require.NoError(t, err)

	branchCfg, _ := json.Marshal(map[string]interface{}{"default": "only"})
	branchChild, err := NewBranchNode(base("child"), branchCfg)
	require.NoError(t, err)

	rc := fakeContext{children: map[string]Executable{"child": branchChild}}
	in := flowdata.NewTextData("x")
	_, err = n.CoreExecute(context.Background(), &in, rc)
	assert.Error(t, err)
}

func TestParallelFansOutAndJoins(t *testing.T) {
	cfg, _ := json.Marshal(map[string]interface{}{
		"branches": map[string]string{"left": "childA", "right": "childB"},
	})
	n, err := NewParallelNode(base("par"), cfg)
	require.NoError(t, err)

	rc := fakeContext{children: map[string]Executable{
		"childA": identityChild("childA"),
		"childB": identityChild("childB"),
	}}

	in := flowdata.NewTextData("fanout")
	out, err := n.CoreExecute(context.Background(), &in, rc)
	require.NoError(t, err)
	require.Equal(t, flowdata.OutputParallel, out.Kind)
	require.Len(t, out.Parallel, 2)

	byHandle := map[string]flowdata.ControlFlow{}
	for _, f := range out.Parallel {
		byHandle[f.NextHandle] = f
	}
	leftText, err := byHandle["left"].Data.AsText()
	require.NoError(t, err)
	assert.Equal(t, "fanout", leftText)
}

func TestHTTPNodeMergesInputOverDefaultsAndParsesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "overridden", body["field"])
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg, _ := json.Marshal(map[string]interface{}{
		"url":    srv.URL,
		"method": "POST",
		"input_data": map[string]interface{}{
			"field": "default",
		},
	})
	n, err := NewHTTPNode(base("http"), cfg)
	require.NoError(t, err)

	in := flowdata.NewJSONData(map[string]interface{}{"field": "overridden"})
	out, err := n.CoreExecute(context.Background(), &in, nil)
	require.NoError(t, err)

	val, err := out.Data.AsJSON()
	require.NoError(t, err)
	assert.Equal(t, true, val.(map[string]interface{})["ok"])
}

func TestHTTPNodeErrorsOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg, _ := json.Marshal(map[string]interface{}{"url": srv.URL, "method": "GET"})
	n, err := NewHTTPNode(base("http"), cfg)
	require.NoError(t, err)

	_, err = n.CoreExecute(context.Background(), nil, nil)
	assert.Error(t, err)
}

type fakeLLMClient struct{ reply string }

func (f fakeLLMClient) Name() string { return "fake" }
func (f fakeLLMClient) Complete(ctx context.Context, req llmclient.CompletionRequest) (*llmclient.CompletionResponse, error) {
	return &llmclient.CompletionResponse{Content: f.reply}, nil
}
func (f fakeLLMClient) CompleteStream(ctx context.Context, req llmclient.CompletionRequest, cb llmclient.StreamCallback) (*llmclient.CompletionResponse, error) {
	return &llmclient.CompletionResponse{Content: f.reply}, nil
}

func TestLLMNodeUsesInjectedFactory(t *testing.T) {
	cfg, _ := json.Marshal(map[string]interface{}{"model": "test-model"})
	n, err := NewLLMNode(base("llm"), cfg, func(LLMConfig) llmclient.Client {
		return fakeLLMClient{reply: "42"}
	})
	require.NoError(t, err)

	in := flowdata.NewTextData("what is the answer")
	out, err := n.CoreExecute(context.Background(), &in, nil)
	require.NoError(t, err)
	text, err := out.Data.AsText()
	require.NoError(t, err)
	assert.Equal(t, "42", text)
}

func TestLLMNodeRequiresModel(t *testing.T) {
	_, err := NewLLMNode(base("llm"), json.RawMessage(`{}`), nil)
	assert.Error(t, err)
}

type fakeMCPClient struct{ result interface{} }

func (f fakeMCPClient) Call(ctx context.Context, callName string, arguments interface{}) (interface{}, error) {
	return f.result, nil
}

func TestMCPNodeCallsRegisteredClient(t *testing.T) {
	registry := mcpclient.NewRegistry()
	registry.Register("srv", fakeMCPClient{result: map[string]interface{}{"ok": true}})

	cfg, _ := json.Marshal(map[string]interface{}{"server_id": "srv", "call_name": "do_thing"})
	n, err := NewMCPNode(base("mcp"), cfg, registry)
	require.NoError(t, err)

	out, err := n.CoreExecute(context.Background(), nil, nil)
	require.NoError(t, err)
	val, err := out.Data.AsJSON()
	require.NoError(t, err)
	assert.Equal(t, true, val.(map[string]interface{})["ok"])
}

func TestMCPNodeErrorsOnUnregisteredServer(t *testing.T) {
	registry := mcpclient.NewRegistry()
	cfg, _ := json.Marshal(map[string]interface{}{"server_id": "missing", "call_name": "do_thing"})
	n, err := NewMCPNode(base("mcp"), cfg, registry)
	require.NoError(t, err)

	_, err = n.CoreExecute(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestMCPNodeRequiresServerAndCallName(t *testing.T) {
	_, err := NewMCPNode(base("mcp"), json.RawMessage(`{}`), nil)
	assert.Error(t, err)
}
