package execnode

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/duragraph/workflow-go/internal/flowdata"
	"github.com/duragraph/workflow-go/internal/pkg/wferrors"
)

// BranchCase is one predicate entry in a Branch node's config.
type BranchCase struct {
	ID        string `json:"id"`
	Condition string `json:"condition"`
	Value     string `json:"value"`
	ValueType string `json:"value_type"`
}

// BranchConfig is the declarative config for a Branch node.
type BranchConfig struct {
	Branches []BranchCase `json:"branches"`
	Default  string       `json:"default"`
}

// BranchNode evaluates its cases in declaration order against text input
// and returns a Control output naming the chosen handle. Handle resolution
// to a target node happens in the Runner via the graph's handle routing
// table, not here.
type BranchNode struct {
	base NodeBase
	cfg  BranchConfig
}

// NewBranchNode parses config, defaulting the fallback handle to "default".
func NewBranchNode(base NodeBase, config json.RawMessage) (*BranchNode, error) {
	var cfg BranchConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, wferrors.NodeConfigMissing(base.ID, "branch node config malformed: "+err.Error())
	}
	if cfg.Default == "" {
		cfg.Default = "default"
	}
	return &BranchNode{base: base, cfg: cfg}, nil
}

func (n *BranchNode) Base() *NodeBase { return &n.base }

func (n *BranchNode) ProcessInput(ctx context.Context, input *flowdata.FlowData) (*flowdata.FlowData, error) {
	return n.base.ProcessInput(ctx, input)
}

func matchString(input, condition, value string) bool {
	switch condition {
	case "==":
		return input == value
	case "!=":
		return input != value
	case "contains":
		return strings.Contains(input, value)
	default:
		return false
	}
}

func matchNumber(input float64, condition string, value float64) bool {
	switch condition {
	case "==":
		return input == value
	case "!=":
		return input != value
	case ">":
		return input > value
	case ">=":
		return input >= value
	case "<":
		return input < value
	case "<=":
		return input <= value
	default:
		return false
	}
}

func (n *BranchNode) CoreExecute(_ context.Context, input *flowdata.FlowData, _ Context) (flowdata.FlowOutput, error) {
	if input == nil {
		return flowdata.FlowOutput{}, wferrors.InvalidBranchInput(n.base.ID)
	}
	text, err := input.AsText()
	if err != nil {
		return flowdata.FlowOutput{}, wferrors.InvalidBranchInput(n.base.ID)
	}

	inputNumber, numberErr := strconv.ParseFloat(text, 64)

	for _, c := range n.cfg.Branches {
		switch c.ValueType {
		case "number":
			if numberErr != nil {
				continue
			}
			caseValue, err := strconv.ParseFloat(c.Value, 64)
			if err != nil {
				continue
			}
			if matchNumber(inputNumber, c.Condition, caseValue) {
				return flowdata.Control(c.ID, *input), nil
			}
		default:
			if matchString(text, c.Condition, c.Value) {
				return flowdata.Control(c.ID, *input), nil
			}
		}
	}

	return flowdata.Control(n.cfg.Default, *input), nil
}

func (n *BranchNode) ProcessOutput(ctx context.Context, output flowdata.FlowOutput) (*flowdata.FlowOutput, error) {
	return n.base.ProcessOutput(ctx, output)
}
