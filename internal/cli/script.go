package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/opweave/opweave/internal/engine"
	"github.com/opweave/opweave/internal/graph"
)

// EditScript is a YAML batch of edits applied in order against one
// session. A failed step stops the batch; earlier steps stay applied
// and remain undoable.
type EditScript struct {
	Edits []EditStep `yaml:"edits"`
}

// EditStep is one edit in a script. Op selects the action; the other
// fields are read as that action needs them.
type EditStep struct {
	Op     string `yaml:"op"`
	Target string `yaml:"target"`

	// modify_attributes
	Updates map[string]string `yaml:"updates"`
	Deletes []string          `yaml:"deletes"`

	// create
	Name        string       `yaml:"name"`
	Block       string       `yaml:"block"`
	ResultTypes []string     `yaml:"result_types"`
	Operands    []string     `yaml:"operands"`
	Attributes  []ScriptAttr `yaml:"attributes"`

	// delete
	Cascade bool `yaml:"cascade"`

	// operand edits
	Index    int    `yaml:"index"`
	Value    string `yaml:"value"`
	Position *int   `yaml:"position"`

	// add_result_to_output
	ResultIndex int `yaml:"result_index"`
}

// ScriptAttr is one named attribute value in a create step. A list,
// not a map, so attribute order survives the YAML round trip.
type ScriptAttr struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// LoadScript reads and decodes an edit script file.
func LoadScript(path string) (*EditScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var script EditScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return &script, nil
}

// position converts the optional YAML field to the engine convention:
// absent means append.
func (s EditStep) position() int {
	if s.Position == nil {
		return -1
	}
	return *s.Position
}

// runStep applies one script step against the session.
func runStep(sess *engine.Session, step EditStep) error {
	switch step.Op {
	case "modify_attributes":
		_, err := sess.ModifyAttributes(step.Target, step.Updates, step.Deletes)
		return err
	case "create":
		attrs := make([]graph.AttributeInfo, 0, len(step.Attributes))
		for _, a := range step.Attributes {
			attrs = append(attrs, graph.AttributeInfo{Name: a.Name, Value: a.Value})
		}
		_, err := sess.CreateOperation(step.Name, step.ResultTypes, step.Operands, attrs, step.Block, step.position())
		return err
	case "delete":
		if step.Cascade {
			_, err := sess.DeleteOperation(step.Target)
			return err
		}
		_, err := sess.DeleteOperationSingle(step.Target)
		return err
	case "set_operand":
		_, err := sess.SetOperand(step.Target, step.Index, step.Value)
		return err
	case "add_operand":
		_, err := sess.AddOperand(step.Target, step.Value, step.position())
		return err
	case "remove_operand":
		_, err := sess.RemoveOperand(step.Target, step.Index)
		return err
	case "add_result_to_output":
		_, err := sess.AddResultToOutput(step.Target, step.ResultIndex)
		return err
	case "undo":
		_, err := sess.Undo()
		return err
	case "redo":
		_, err := sess.Redo()
		return err
	default:
		return fmt.Errorf("unknown edit op %q", step.Op)
	}
}
