package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dspygo/optimizer/internal/contracts"
)

// LMProgramRunner adapts a raw BaseLM-shaped backend to the
// contracts.ProgramRunner contract: it renders an instruction, a set of
// demonstrations, and a fresh set of inputs into a chat-style Request, calls
// the backend, and parses the expected output fields back out of the
// response text.
type LMProgramRunner struct {
	lm           BaseLM
	outputFields []string
}

// NewLMProgramRunner builds a ProgramRunner over lm, expecting the backend's
// response to contain one "field: value" line per name in outputFields.
func NewLMProgramRunner(lm BaseLM, outputFields []string) *LMProgramRunner {
	return &LMProgramRunner{lm: lm, outputFields: outputFields}
}

// Forward implements contracts.ProgramRunner.
func (r *LMProgramRunner) Forward(ctx context.Context, instruction string, demos []map[string]interface{}, inputs map[string]interface{}, opts contracts.CallOptions) (map[string]interface{}, error) {
	request := NewRequest()
	if instruction != "" {
		request = request.WithMessages(NewMessage("system", instruction))
	}

	for _, demo := range demos {
		request = request.WithMessages(demoMessages(demo, r.outputFields)...)
	}

	request = request.WithMessages(NewMessage("user", renderFields(inputs)))

	if opts.Temperature != 0 {
		request = request.WithTemperature(opts.Temperature)
	}
	if opts.MaxTokens != 0 {
		request = request.WithMaxTokens(opts.MaxTokens)
	}

	response, err := r.lm.Call(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrUpstream, err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", contracts.ErrMalformedResponse)
	}

	outputs, err := parseOutputFields(response.Choices[0].Message.Content, r.outputFields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrMalformedResponse, err)
	}
	return outputs, nil
}

// demoMessages renders one demonstration as a user/assistant exchange: the
// demo's non-output fields become the user turn, its output fields become
// the assistant turn.
func demoMessages(demo map[string]interface{}, outputFields []string) []Message {
	isOutput := make(map[string]bool, len(outputFields))
	for _, f := range outputFields {
		isOutput[f] = true
	}

	userFields := make(map[string]interface{})
	outFields := make(map[string]interface{})
	for k, v := range demo {
		if isOutput[k] {
			outFields[k] = v
		} else {
			userFields[k] = v
		}
	}

	return []Message{
		NewMessage("user", renderFields(userFields)),
		NewMessage("assistant", renderFields(outFields)),
	}
}

// renderFields formats a field map as "name: value" lines, stably ordered
// so a cached call with the same logical inputs has the same rendering.
func renderFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %v", k, fields[k])
	}
	return b.String()
}

// parseOutputFields first reads the whole text as a JSON object of
// field->value; if that fails or yields none of the expected fields, it
// extracts "field: value" lines for the expected field names instead.
func parseOutputFields(text string, outputFields []string) (map[string]interface{}, error) {
	outputs := make(map[string]interface{})

	var asJSON map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &asJSON); err == nil {
		for _, f := range outputFields {
			if v, ok := asJSON[f]; ok {
				outputs[f] = v
			}
		}
		if len(outputs) > 0 {
			return outputs, nil
		}
	}

	want := make(map[string]bool, len(outputFields))
	for _, f := range outputFields {
		want[f] = true
	}

	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimSpace(parts[0])
		if want[name] {
			outputs[name] = strings.TrimSpace(parts[1])
		}
	}

	if len(outputs) == 0 && len(outputFields) > 0 {
		return nil, fmt.Errorf("could not find any of %v in response text", outputFields)
	}
	return outputs, nil
}
