package main

import (
	"log"

	"entgo.io/ent/entc"
	"entgo.io/ent/entc/gen"
)

// Generates typed ent clients from ./db/ent/schema into gen/ent. The runtime
// repositories build SQL with ent's dialect/sql builders directly; the generated
// client is for ad-hoc tooling and atlas migration diffs.
func main() {
	err := entc.Generate(
		"./db/ent/schema",
		&gen.Config{
			Target:  "gen/ent",
			Package: "github.com/joseph-ayodele/nanopore-tracker/gen/ent",
			Schema:  "github.com/joseph-ayodele/nanopore-tracker/db/ent/schema",
		},
	)
	if err != nil {
		log.Fatal(err)
	}
}
