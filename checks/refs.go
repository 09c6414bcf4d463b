package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/locator"
	"github.com/erraggy/oaslint/oaserrors"
)

var refTargets = engine.Check{
	Name:        NameRefTargets,
	Description: "Every local $ref must resolve and must not be circular",
	Func:        checkRefTargets,
}

func checkRefTargets(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	var out []finding.Finding
	sc := in.Scanner()
	visited := make(map[*document.Node]bool)

	// The tree is walked in source order, so every $ref value advances the
	// scanner past its own occurrence, broken or not.
	var walk func(n *document.Node)
	walk = func(n *document.Node) {
		if n == nil || visited[n] {
			return
		}
		switch n.Kind {
		case document.KindMapping:
			visited[n] = true
			for key, v := range n.Pairs() {
				if key == "$ref" && v.Kind == document.KindScalar {
					var r locator.Range
					r, sc = sc.AnyToken(v.Value, locator.FallbackStart)
					if msg := brokenRef(in, n); msg != "" {
						out = append(out, in.Finding(r, msg))
					}
					continue
				}
				walk(v)
			}
		case document.KindSequence:
			visited[n] = true
			for _, item := range n.Items() {
				walk(item)
			}
		}
	}
	walk(in.Document.Root)
	return out, nil
}

// brokenRef describes why the $ref carried by n does not resolve, or "".
// Pointers into other documents are not judged.
func brokenRef(in *engine.Input, n *document.Node) string {
	ref := n.Ref()
	if !strings.HasPrefix(ref, "#") {
		return ""
	}
	_, err := in.Resolver.Check(n)
	if err == nil {
		return ""
	}
	if errors.Is(err, oaserrors.ErrCircularReference) {
		return fmt.Sprintf("$ref %s is circular", ref)
	}
	var rerr *oaserrors.ReferenceError
	if errors.As(err, &rerr) && rerr.Message != "" {
		return fmt.Sprintf("$ref %s does not resolve: %s", ref, rerr.Message)
	}
	return fmt.Sprintf("$ref %s does not resolve", ref)
}
