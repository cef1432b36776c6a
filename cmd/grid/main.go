package main

import (
	"context"
	"flag"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/weektally/weektally/internal/config"
	"github.com/weektally/weektally/internal/utils"
	"github.com/weektally/weektally/pkg/grid"
	"github.com/weektally/weektally/pkg/week"
)

// grid exports a week's timesheet as CSV on stdout, reading the local grid
// cache first and falling back to the timesheet service.
func main() {
	configPath := flag.String("config", "./config/application.yaml", "path to the configuration file")
	weekArg := flag.String("week", "", "week to export as YYYY-MM-DD (any day of the week; defaults to the current week)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	client, err := grid.NewClient(cfg.Client, &utils.SystemClock{})
	if err != nil {
		log.Fatalf("failed to build grid client: %v", err)
	}

	ready := make(chan struct{}, 1)
	client.OnChange(func() {
		if client.State() == grid.StateReady {
			select {
			case ready <- struct{}{}:
			default:
			}
		}
	})

	ctx := context.Background()
	client.Start(ctx)

	if *weekArg != "" {
		target, err := week.ParseKey(*weekArg)
		if err != nil {
			log.Fatal(err)
		}
		if delta := weeksBetween(client.Week(), target); delta != 0 {
			// Drop the readiness signal from Start before navigating.
			select {
			case <-ready:
			default:
			}
			client.NavigateWeek(ctx, delta)
			select {
			case <-ready:
			case <-time.After(grid.DefaultRemoteTimeout + time.Second):
				log.Fatalf("timed out loading week %s", target)
			}
		}
	}

	if err := client.ExportCSV(os.Stdout); err != nil {
		log.Fatalf("failed to export timesheet: %v", err)
	}
}

func weeksBetween(from, to week.Key) int {
	return int(to.Monday().Sub(from.Monday()).Hours() / (24 * 7))
}
