package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/erraggy/oaslint/document"
	"github.com/erraggy/oaslint/engine"
	"github.com/erraggy/oaslint/finding"
	"github.com/erraggy/oaslint/locator"
)

var httpsServers = engine.Check{
	Name:        NameHTTPSServers,
	Description: "Server URLs (and Swagger 2.0 schemes) must use https",
	Func:        checkHTTPSServers,
}

func checkHTTPSServers(_ context.Context, in *engine.Input) ([]finding.Finding, error) {
	var out []finding.Finding

	if in.Document.IsOAS2() {
		sc := in.Scanner()
		for _, scheme := range in.Document.Root.Get("schemes").Items() {
			name := scheme.String()
			var r locator.Range
			r, sc = sc.Token([]string{"schemes"}, name, locator.FallbackStart)
			if !strings.EqualFold(name, "https") && !strings.EqualFold(name, "wss") {
				out = append(out, in.Finding(r, fmt.Sprintf("scheme %q is not https", name)))
			}
		}
		return out, nil
	}

	out = append(out, insecureServers(in, in.Document.Root.Get("servers"), []string{"servers"})...)
	for path, item := range in.Document.Paths().Pairs() {
		site := []string{"paths", path}
		out = append(out, insecureServers(in, item.Get("servers"), extend(site, "servers"))...)
		for op := range document.OperationsOf(path, item) {
			out = append(out, insecureServers(in, op.Node.Get("servers"), extend(site, op.Method, "servers"))...)
		}
	}
	return out, nil
}

// insecureServers reports the servers[] entries at site whose URL has a
// scheme other than https. Relative and templated URLs are not judged.
func insecureServers(in *engine.Input, servers *document.Node, site []string) []finding.Finding {
	var out []finding.Finding
	sc := in.Scanner()
	for _, server := range servers.Items() {
		url := server.Get("url").String()
		if url == "" {
			continue
		}
		var r locator.Range
		r, sc = sc.Field(site, "url", url, locator.FallbackDocument)
		scheme, _, ok := strings.Cut(url, "://")
		if !ok || strings.HasPrefix(scheme, "{") || strings.EqualFold(scheme, "https") {
			continue
		}
		out = append(out, in.Finding(r, fmt.Sprintf("server url %q does not use https", url)))
	}
	return out
}
