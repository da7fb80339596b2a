// Command fhirpath-server runs the HTTP /evaluate endpoint over this
// module's own FHIRPath engine. Flag/PORT-based addr configuration follows
// the teacher's main.go; the mux it serves is this module's
// internal/server, which runs expressions through fhirpath.Evaluate instead
// of wrapping an external library (spec.md §1: the HTTP server is out of
// scope beyond the interface it exposes).
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strings"

	"fhirpath-go/internal/server"
)

func main() {
	mux := server.NewMux()
	var addrFlag string
	flag.StringVar(&addrFlag, "addr", "", "listen address, e.g. :3001 or 127.0.0.1:3001 (overrides PORT)")
	flag.Parse()

	addr := ":3001"
	if strings.TrimSpace(addrFlag) != "" {
		addr = addrFlag
	} else if v := os.Getenv("PORT"); strings.TrimSpace(v) != "" {
		if strings.HasPrefix(v, ":") || strings.Contains(v, ":") {
			addr = v
		} else {
			addr = ":" + v
		}
	}
	log.Printf("fhirpath-go server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
