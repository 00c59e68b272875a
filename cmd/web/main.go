// Command web runs the score-change dashboard: it loads the NAEP
// percentile dataset, starts the HTTP server and serves the embedded
// frontend until interrupted.
package main

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"naepdash/internal/app"
)

//go:embed all:web
var embeddedFrontend embed.FS

func main() {
	frontendFS, err := fs.Sub(embeddedFrontend, "web")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to access embedded frontend: %v\n", err)
		os.Exit(1)
	}

	application, err := app.NewApplication(frontendFS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "application error: %v\n", err)
		os.Exit(1)
	}
}
