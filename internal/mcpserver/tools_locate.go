package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/locator"
)

type locateInput struct {
	Spec    sourceInput `json:"spec"    jsonschema:"The OpenAPI document to search"`
	Pointer string      `json:"pointer" jsonschema:"JSON pointer to the element, with or without a leading #"`
}

type locateOutput struct {
	Pointer string `json:"pointer"`
	Found   bool   `json:"found"`
	From    int    `json:"from"`
	To      int    `json:"to"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Text    string `json:"text,omitempty"`
}

func handleLocate(ctx context.Context, _ *mcp.CallToolRequest, input locateInput) (*mcp.CallToolResult, locateOutput, error) {
	ptr := input.Pointer
	if !strings.HasPrefix(ptr, "#") {
		ptr = "#" + ptr
	}
	keys, ok := locator.SplitPointer(ptr)
	if !ok {
		return errResult(fmt.Errorf("invalid JSON pointer %q", input.Pointer)), locateOutput{}, nil
	}

	src, err := input.Spec.text(ctx)
	if err != nil {
		return errResult(err), locateOutput{}, nil
	}
	doc, err := document.Parse(src)
	if err != nil {
		return errResult(err), locateOutput{}, nil
	}

	output := locateOutput{Pointer: ptr}
	if len(keys) > 0 && doc.Root.Lookup(keys...) == nil {
		return nil, output, nil
	}
	r := locator.Node(src, locator.FallbackStart, keys...)
	output.Found = len(keys) == 0 || !r.IsEmpty()
	output.From, output.To = r.From, r.To
	output.Line, output.Column = locator.LineCol(src, r.From)
	output.Text = r.Text(src)
	return nil, output, nil
}
