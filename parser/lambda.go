package parser

// lambdaArgs maps a function name to the set of argument positions that are
// lambda bodies (implicitly evaluated with $this/$index bound per element)
// rather than plain eagerly-evaluated expressions. A value of -1 as the sole
// entry means "every argument is a lambda body" (used by sort()).
//
// This mirrors the registry's own notion of which functions are
// lambda-taking (spec.md §4.2's "at call-sites that expect a lambda") so the
// parser can shape the AST accordingly; the function bodies in functions/
// (filtering.go, existence.go, ...) and evaluator/call.go's callEvaluator
// are the actual grounding for *why* each of these needs per-element
// evaluation.
var lambdaArgs = map[string]map[int]bool{
	"where":         {0: true},
	"exists":        {0: true},
	"select":        {0: true},
	"all":           {0: true},
	"any":           {0: true},
	"repeat":        {0: true},
	"aggregate":     {0: true},
	"sort":          {-1: true},
	"trace":         {1: true},
	"defineVariable": nil, // never lambda; value args are eager
}

func isLambdaArg(funcName string, argIndex int) bool {
	m, ok := lambdaArgs[funcName]
	if !ok {
		return false
	}
	if m[-1] {
		return true
	}
	return m[argIndex]
}
