// Command generate-sample-schema writes the bundled agreement fixture as a
// YAML schema file, giving the CLI an offline schemas directory to start from.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formfill/pkg/testsupport"
)

func main() {
	output := flag.String("output", "schemas", "directory to write the schema file into")
	flag.Parse()

	form := testsupport.AgreementForm()
	data, err := yaml.Marshal(form)
	if err != nil {
		log.Fatalf("encode schema: %v", err)
	}

	if err := os.MkdirAll(*output, 0o755); err != nil {
		log.Fatalf("create %s: %v", *output, err)
	}
	path := filepath.Join(*output, form.Name+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	fmt.Printf("Schema written to %s\n", path)
}
