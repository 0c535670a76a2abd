package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra/doc"

	"github.com/conveydesk/convey-cli/cmd"
)

func main() {
	log.Println("Generating docs...")
	outputDir := filepath.Join("docs")
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		err := os.Mkdir(outputDir, 0755)
		if err != nil {
			log.Fatal("Error creating docs dir: " + err.Error())
		}
	}

	err := doc.GenMarkdownTree(cmd.RootCmd, outputDir)
	if err != nil {
		log.Fatal("Error generating documentation: " + err.Error())
	}
	log.Println("Documentation generated in " + outputDir)
}
