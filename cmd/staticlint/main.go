// Command staticlint запускает набор статических анализаторов проекта:
// стандартные проходы golang.org/x/tools, классы SA, ST и S из staticcheck,
// go-critic, errcheck и собственный анализатор noexit.
//
// Использование:
//
//	go run ./cmd/staticlint ./...
package main

import (
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/assign"
	"golang.org/x/tools/go/analysis/passes/atomic"
	"golang.org/x/tools/go/analysis/passes/bools"
	"golang.org/x/tools/go/analysis/passes/composite"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/errorsas"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/nilfunc"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/stdmethods"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/tests"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"golang.org/x/tools/go/analysis/passes/unusedresult"

	"github.com/go-critic/go-critic/checkers/analyzer"
	"github.com/kisielk/errcheck/errcheck"
	"honnef.co/go/tools/analysis/lint"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
	"honnef.co/go/tools/stylecheck"
)

// disabledStyleChecks отключает проверки, конфликтующие с русскоязычными комментариями
var disabledStyleChecks = map[string]bool{
	"ST1000": true, // комментарий пакета
	"ST1020": true, // комментарий экспортируемой функции
	"ST1021": true, // комментарий экспортируемого типа
	"ST1022": true, // комментарий экспортируемой переменной
}

func main() {
	checks := []*analysis.Analyzer{
		NoExitAnalyzer,

		assign.Analyzer,
		atomic.Analyzer,
		bools.Analyzer,
		composite.Analyzer,
		copylock.Analyzer,
		errorsas.Analyzer,
		httpresponse.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		nilfunc.Analyzer,
		nilness.Analyzer,
		printf.Analyzer,
		shadow.Analyzer,
		stdmethods.Analyzer,
		structtag.Analyzer,
		tests.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,
		unusedresult.Analyzer,

		analyzer.Analyzer,
		errcheck.Analyzer,
	}

	checks = appendLint(checks, staticcheck.Analyzers, "SA")
	checks = appendLint(checks, simple.Analyzers, "S")
	checks = appendLint(checks, stylecheck.Analyzers, "ST")

	multichecker.Main(checks...)
}

// appendLint добавляет анализаторы staticcheck указанного класса
func appendLint(checks []*analysis.Analyzer, analyzers []*lint.Analyzer, prefix string) []*analysis.Analyzer {
	for _, a := range analyzers {
		name := a.Analyzer.Name
		if !strings.HasPrefix(name, prefix) || disabledStyleChecks[name] {
			continue
		}
		checks = append(checks, a.Analyzer)
	}
	return checks
}
