package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-note-keeper/internal/app"
	"github.com/MKhiriev/go-note-keeper/internal/client"
	"github.com/MKhiriev/go-note-keeper/internal/tui"
	"github.com/MKhiriev/go-note-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	err := client.Execute(ctx, build, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, tui.RenderError(app.UserMessage(err), err))
		os.Exit(1)
	}
}
