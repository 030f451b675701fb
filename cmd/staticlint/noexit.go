package main

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
)

// NoExitAnalyzer запрещает прямой вызов os.Exit в функции main пакета main:
// os.Exit пропускает отложенные вызовы, в том числе Sync логгера и остановку сервера.
var NoExitAnalyzer = &analysis.Analyzer{
	Name:     "noexit",
	Doc:      "reports direct os.Exit calls inside func main of package main",
	Run:      runNoExit,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func runNoExit(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Recv != nil || fn.Name.Name != "main" || fn.Body == nil {
			return
		}

		ast.Inspect(fn.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			if isOsExit(typeutil.Callee(pass.TypesInfo, call)) {
				pass.Reportf(call.Pos(), "direct os.Exit call in main skips deferred cleanup")
			}
			return true
		})
	})

	return nil, nil
}

func isOsExit(obj types.Object) bool {
	fn, ok := obj.(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == "os" && fn.Name() == "Exit"
}
