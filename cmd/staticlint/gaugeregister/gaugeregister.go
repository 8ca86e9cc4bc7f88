// Package gaugeregister defines an analyzer that reports Prometheus collector
// registration outside the exporter/prom package.
//
// Gauges must be created through the gauge registry so that each key is
// registered exactly once; registering on Prometheus directly bypasses it.
package gaugeregister

import (
	"fmt"
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const (
	promPkgPath      = "github.com/prometheus/client_golang/prometheus"
	allowedPkgSuffix = "/exporter/prom"
)

// Analyzer is the gaugeregister analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "gaugeregister",
	Doc:      "reports direct Prometheus gauge registration outside the exporter/prom package",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var forbidden = map[string]bool{
	"Register":     true,
	"MustRegister": true,
	"NewGaugeFunc": true,
}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg == nil || allowed(pass.Pkg.Path()) {
		return nil, nil
	}

	insp, ok := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, fmt.Errorf("failed to assert type: expected *inspector.Inspector")
	}

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return
		}
		if name, ok := promCall(pass, call); ok {
			pass.Reportf(call.Pos(), "direct prometheus.%s call; publish gauges through the gauge registry", name)
		}
	})

	return nil, nil
}

func allowed(path string) bool {
	path = strings.TrimSuffix(path, "_test")
	return strings.HasSuffix(path, allowedPkgSuffix)
}

// promCall reports whether call resolves to a forbidden function or method of the prometheus package.
func promCall(pass *analysis.Pass, call *ast.CallExpr) (string, bool) {
	if call == nil || pass.TypesInfo == nil {
		return "", false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel == nil {
		return "", false
	}

	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != promPkgPath {
		return "", false
	}
	if !forbidden[fn.Name()] {
		return "", false
	}
	return fn.Name(), true
}
