//
// Copyright (c) 2025-2026, Forschungszentrum Juelich GmbH. All rights reserved.
//
// See LICENSE.txt for license information
//

package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gvallee/go_util/pkg/util"
	"github.com/joho/godotenv"

	"github.com/slcs-jsc/netcdf-bench/internal/pkg/decomp"
	"github.com/slcs-jsc/netcdf-bench/internal/pkg/driver"
	berr "github.com/slcs-jsc/netcdf-bench/internal/pkg/errors"
	"github.com/slcs-jsc/netcdf-bench/internal/pkg/grid"
	"github.com/slcs-jsc/netcdf-bench/internal/pkg/group"
	"github.com/slcs-jsc/netcdf-bench/internal/pkg/ncio"
	"github.com/slcs-jsc/netcdf-bench/internal/pkg/timings"
)

// elementSize is the on-disk size of one data element in bytes. The
// datasets this benchmark targets store single-precision floats.
const elementSize = 4

func usage(cmdName string) {
	fmt.Printf("%s measures the parallel read throughput of a domain-decomposed gridded dataset\n", cmdName)
	fmt.Println("\nUsage:")
	fmt.Printf("  %s [options] <halo> <nproc_x> <nproc_y> <use_independent:0|1> <lon_axis> <lat_axis> <file1> [file2 ...]\n", cmdName)
	fmt.Println("\nOptions:")
	flag.PrintDefaults()
}

// fatal aborts the whole run. The short delay gives the diagnostic a
// chance to reach the terminal before the launcher tears the group down.
func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
	time.Sleep(100 * time.Millisecond)
	os.Exit(1)
}

type runArgs struct {
	halo        int
	nprocX      int
	nprocY      int
	independent bool
	lonName     string
	latName     string
	files       []string
}

func parseArgs(args []string) (*runArgs, error) {
	if len(args) < 7 {
		return nil, fmt.Errorf("expected at least 7 arguments, got %d", len(args))
	}
	var a runArgs
	var err error
	if a.halo, err = strconv.Atoi(args[0]); err != nil {
		return nil, fmt.Errorf("invalid halo size %q", args[0])
	}
	if a.nprocX, err = strconv.Atoi(args[1]); err != nil {
		return nil, fmt.Errorf("invalid process-grid width %q", args[1])
	}
	if a.nprocY, err = strconv.Atoi(args[2]); err != nil {
		return nil, fmt.Errorf("invalid process-grid height %q", args[2])
	}
	switch args[3] {
	case "0":
		a.independent = false
	case "1":
		a.independent = true
	default:
		return nil, fmt.Errorf("invalid access-mode flag %q, want 0 or 1", args[3])
	}
	a.lonName = args[4]
	a.latName = args[5]
	a.files = args[6:]
	return &a, nil
}

// effectiveHalo applies the single-column rule up front so every printed
// line and the decomposition agree on one halo value. The returned warning
// is empty when nothing was forced.
func effectiveHalo(nprocX, nprocY, halo int) (int, string) {
	if nprocX != 1 || halo == 0 {
		return halo, ""
	}
	layout := "single-column"
	if nprocY == 1 {
		layout = "1x1"
	}
	return 0, fmt.Sprintf("Warning: %s domain decomposition detected, forcing halo=0", layout)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printMetadata(a *runArgs, g *grid.Grid) {
	fmt.Printf("Halo size: %d\n", a.halo)
	fmt.Printf("Process grid: %dx%d\n", a.nprocX, a.nprocY)
	fmt.Printf("Use independent access: %s\n", yesNo(a.independent))
	fmt.Printf("Number of files: %d\n", len(a.files))
	for i, axis := range g.Axes {
		fmt.Printf("  Dimension %d: name='%s', length=%d\n", i, axis.Name, axis.Len)
	}
	fmt.Printf("Found lon dimension at index %d\n", g.LonIdx)
	fmt.Printf("Found lat dimension at index %d\n", g.LatIdx)
	fmt.Printf("First file contains %d dimensions and %d variables (+ %d dimension variables)\n",
		len(g.Axes), len(g.DataVars()), g.NumCoordVars())
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose mode")
	outputDirFlag := flag.String("output-dir", "", "Directory where to save the markdown timing report (optional)")
	help := flag.Bool("h", false, "Help message")

	// An optional .env file can predefine defaults for the flags and
	// MPI-related variables for the launcher environment.
	godotenv.Load(".env")

	flag.Parse()

	if *outputDirFlag == "" {
		*outputDirFlag = os.Getenv("NCREADBENCH_OUTPUT_DIR")
	}

	cmdName := filepath.Base(os.Args[0])
	if *help {
		usage(cmdName)
		os.Exit(0)
	}

	logFile := util.OpenLogFile("netcdf-bench", cmdName)
	defer logFile.Close()
	if *verbose {
		multiWriters := io.MultiWriter(os.Stdout, logFile)
		log.SetOutput(multiWriters)
	} else {
		log.SetOutput(ioutil.Discard)
	}

	world := group.Init()
	rank := world.Rank()
	size := world.Size()

	args, err := parseArgs(flag.Args())
	if err != nil {
		if rank == 0 {
			fmt.Printf("ERROR: %s\n", err)
			usage(cmdName)
		}
		time.Sleep(100 * time.Millisecond)
		os.Exit(1)
	}
	if size != args.nprocX*args.nprocY {
		if rank == 0 {
			fmt.Printf("ERROR: %d workers launched but the layout %dx%d needs %d\n",
				size, args.nprocX, args.nprocY, args.nprocX*args.nprocY)
		}
		time.Sleep(100 * time.Millisecond)
		os.Exit(1)
	}

	var warning string
	args.halo, warning = effectiveHalo(args.nprocX, args.nprocY, args.halo)
	if warning != "" && rank == 0 {
		fmt.Println(warning)
	}

	mode := ncio.Collective
	if args.independent {
		mode = ncio.Independent
	}

	// Every worker reads the metadata of the first file; its shape is
	// treated as valid for the whole list.
	log.Println("-> Reading dataset metadata...")
	first, err := ncio.Open(args.files[0], mode, world)
	if err != nil {
		fatal(berr.NewFile(berr.ErrIO, rank, args.files[0], err))
	}
	g, err := grid.Discover(first, args.lonName, args.latName, rank)
	first.Close()
	if err != nil {
		fatal(err)
	}

	if rank == 0 {
		printMetadata(args, g)
	}

	px, py := decomp.Coords(rank, args.nprocX)
	sub, err := decomp.Decompose(g.LonLen(), g.LatLen(), args.nprocX, args.nprocY, px, py, args.halo)
	if err != nil {
		fatal(berr.New(berr.ErrConfig, rank, err))
	}

	suffix := ""
	if sub.HasWrap {
		suffix = " with periodic halo"
	}
	fmt.Printf("Rank %d: subdomain %s%s\n", rank, sub.Primary, suffix)

	if rank == 0 {
		fmt.Printf("Processing %d files with %d workers (%dx%d decomposition, halo=%d)\n",
			len(args.files), size, args.nprocX, args.nprocY, sub.Halo)
	}

	log.Println("-> Reading files...")
	cfg := &driver.Config{
		Files: args.files,
		Open: func(path string) (driver.File, error) {
			return ncio.Open(path, mode, world)
		},
		Peers:      world,
		Grid:       g,
		Sub:        sub,
		Collective: mode == ncio.Collective,
	}
	durations, err := driver.Run(cfg)
	if err != nil {
		fatal(err)
	}

	log.Println("-> Gathering timings...")
	all := timings.Gather(world, durations, 0)

	if rank == 0 {
		fileBytes := g.TotalElements() * int64(len(g.DataVars())) * elementSize
		fileMB := float64(fileBytes) / 1e6
		if err := timings.WriteReport(os.Stdout, fileMB, all); err != nil {
			fatal(err)
		}
		if *outputDirFlag != "" {
			if !util.PathExists(*outputDirFlag) {
				fatal(berr.New(berr.ErrConfig, rank, fmt.Errorf("%s does not exist", *outputDirFlag)))
			}
			meta := timings.RunMeta{
				NprocX: args.nprocX,
				NprocY: args.nprocY,
				Halo:   sub.Halo,
				Mode:   mode.String(),
				Files:  args.files,
				FileMB: fileMB,
			}
			path, err := timings.Save(*outputDirFlag, meta, all)
			if err != nil {
				fatal(err)
			}
			fmt.Printf("Data successfully saved in %s\n", path)
		}
	}

	world.Close()
}
