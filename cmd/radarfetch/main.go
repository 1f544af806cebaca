package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jgivc/radarfetch/internal/app"
	"github.com/jgivc/radarfetch/internal/entity"
)

func main() {
	var (
		cfgFileName = flag.String("c", "", "Path to config file (optional)")
		directory   = flag.String("directory", "", "Where the downloaded images should be stored. Created if it does not exist; existing files are not downloaded again.")
		site        = flag.String("site", "", "Which site to pull data for, e.g. CASBI or the ATL aggregate")
		imageType   = flag.String("image-type", "", "What kind of image to request, e.g. PRECIPET_RAIN_WEATHEROFFICE")
		startYear   = flag.Int("start-year", 0, "Collection will start with this year")
		startMonth  = flag.Int("start-month", 0, "Collection will start with this month (numeric, 1-12)")
		startDay    = flag.Int("start-day", 0, "Collection will start with this day")
		startHour   = flag.Int("start-hour", 0, "Collection will start with this hour")
		endYear     = flag.Int("end-year", 0, "Collection will end with this year")
		endMonth    = flag.Int("end-month", 0, "Collection will end with this month (numeric, 1-12)")
		endDay      = flag.Int("end-day", 0, "Collection will end with this day")
		endHour     = flag.Int("end-hour", 23, "Collection will end with this hour")
	)
	flag.Parse()

	if *directory == "" || *site == "" || *imageType == "" {
		fmt.Fprintln(os.Stderr, "The -directory, -site and -image-type flags are required")
		flag.Usage()
		os.Exit(1)
	}

	start, err := entity.NewHour(*startYear, *startMonth, *startDay, *startHour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid start date: %s\n", err)
		os.Exit(1)
	}

	end, err := entity.NewHour(*endYear, *endMonth, *endDay, *endHour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid end date: %s\n", err)
		os.Exit(1)
	}

	job := entity.Job{
		Site:      *site,
		ImageType: *imageType,
		Range:     entity.NewRange(start, end),
		Directory: *directory,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.New(*cfgFileName, job).Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "radarfetch: %s\n", err)
		os.Exit(1)
	}
}
