// Command casedev-shapes validates, normalises and generates code from shape
// declarations and OpenAPI documents.
//
//	casedev-shapes validate -s chat.yaml -m Message payload.json
//	casedev-shapes dump -s chat.yaml -m Message payload.json
//	casedev-shapes gen -s openapi.json -p shapes -o shapes_gen.go
//	casedev-shapes prompt -s chat.yaml -m Message
//
// The -s flag defaults to $CASEDEV_SHAPES; a .env file in the working
// directory is loaded first.
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	log.SetFlags(0)
	os.Exit(run(os.Args[1:], newEnv()))
}
