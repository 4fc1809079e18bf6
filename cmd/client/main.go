package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-note-keeper/internal/client"
	"github.com/MKhiriev/go-note-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli := client.NewCLI(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))
	if err := cli.Run(ctx, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}
