// Command fhirpath evaluates a single FHIRPath expression against a JSON
// resource read from a file or stdin, printing the result collection one
// value per line. Flag-based configuration and log.Fatal error reporting
// follow the teacher's main.go texture; the evaluation itself runs through
// this module's own fhirpath package (root), not a wrapped library.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	fhirpath "fhirpath-go"
	"fhirpath-go/trace"
	"fhirpath-go/value"
)

func main() {
	var exprFlag, resourceFlag string
	flag.StringVar(&exprFlag, "expr", "", "FHIRPath expression to evaluate (required)")
	flag.StringVar(&resourceFlag, "resource", "-", "path to a JSON resource file, or - for stdin")
	flag.Parse()

	if exprFlag == "" {
		log.Fatal("missing required -expr flag")
	}

	raw, err := readResource(resourceFlag)
	if err != nil {
		log.Fatalf("reading resource: %v", err)
	}

	resource, err := value.NewResource(raw)
	if err != nil {
		log.Fatalf("parsing resource JSON: %v", err)
	}

	ctx := fhirpath.WithTracer(context.Background(), trace.StdLogger{Logger: log.Default()})
	result, err := fhirpath.EvaluateExpression(ctx, value.ResourceVal(resource), exprFlag)
	if err != nil {
		log.Fatalf("evaluating %q: %v", exprFlag, err)
	}

	for _, v := range result {
		fmt.Println(v.String())
	}
}

func readResource(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
