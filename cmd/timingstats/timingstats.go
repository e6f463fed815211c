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

	"github.com/fatih/color"
	"github.com/gvallee/go_util/pkg/util"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/slcs-jsc/netcdf-bench/internal/pkg/bandwidth"
	"github.com/slcs-jsc/netcdf-bench/internal/pkg/bins"
	"github.com/slcs-jsc/netcdf-bench/internal/pkg/timings"
)

type logStats struct {
	name   string
	data   *timings.RunData
	maxima []float64
	mean   float64
	stddev float64
}

// analyzeLog reduces one benchmark log to the per-file maxima across ranks
// and their statistics.
func analyzeLog(path string) (*logStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", path, err)
	}
	defer f.Close()

	data, err := timings.ParseLog(f)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", path, err)
	}
	if len(data.Times) == 0 {
		return nil, fmt.Errorf("%s holds no timing lines", path)
	}

	all := make([][]float64, 0, len(data.Times))
	for _, rank := range data.Ranks() {
		all = append(all, data.Times[rank])
	}

	s := &logStats{
		name:   filepath.Base(path),
		data:   data,
		maxima: timings.MaxPerFile(all),
	}
	s.mean = stat.Mean(s.maxima, nil)
	s.stddev = stat.StdDev(s.maxima, nil)
	return s, nil
}

func modeString(independent bool) string {
	if independent {
		return "independent"
	}
	return "collective"
}

func plotMaxima(path string, allStats []*logStats) error {
	p := plot.New()
	p.Title.Text = "Per-file read time"
	p.X.Label.Text = "File index"
	p.Y.Label.Text = "Slowest worker (s)"

	var args []interface{}
	for _, s := range allStats {
		pts := make(plotter.XYs, len(s.maxima))
		for i, d := range s.maxima {
			pts[i].X = float64(i)
			pts[i].Y = d
		}
		args = append(args, s.name, pts)
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return fmt.Errorf("unable to plot timings: %w", err)
	}
	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("unable to save plot to %s: %w", path, err)
	}
	return nil
}

func saveBandwidth(outputDir string, s *logStats) error {
	ranks := s.data.Ranks()
	execTimes := make(map[int]map[int]float64)
	for file := 0; file < s.data.NumFiles; file++ {
		execTimes[file] = make(map[int]float64)
		for _, rank := range ranks {
			if file < len(s.data.Times[rank]) {
				execTimes[file][rank] = s.data.Times[rank][file]
			}
		}
	}
	readBytes := int64(s.data.FileMB * 1e6)
	bwData, err := bandwidth.GetFromRunTimes(s.data.NumFiles, len(ranks), readBytes, execTimes)
	if err != nil {
		return fmt.Errorf("unable to calculate bandwidths: %w", err)
	}

	outputFilePath := filepath.Join(outputDir, bandwidth.GetOutputFilename(s.data.NprocX, s.data.NprocY))
	outputFile, err := os.Create(outputFilePath)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", outputFilePath, err)
	}
	defer outputFile.Close()

	for file := 0; file < s.data.NumFiles; file++ {
		d := bwData.FileData[file]
		fmt.Fprintf(outputFile, "# File %d\nread BW (%s)\n", file, d.ScaledReadRankBWUnit)
		for _, rank := range ranks {
			fmt.Fprintf(outputFile, "%.2f\n", d.ScaledReadRankBW[rank])
		}
		fmt.Fprintf(outputFile, "\n")
	}
	fmt.Printf("Data successfully saved in %s\n", outputFilePath)
	return nil
}

func main() {
	helpFlag := flag.Bool("h", false, "Display help")
	verbose := flag.Bool("v", false, "Enable verbose mode")
	outputDirFlag := flag.String("output-dir", "", "Directory where to save per-rank bandwidth data (optional)")
	plotFlag := flag.String("plot", "", "Path of a plot file (e.g. timings.svg) of the per-file maxima (optional)")
	binsFlag := flag.String("bins", "", "Comma-separated duration thresholds for a histogram of the per-file maxima (optional)")
	flag.Parse()

	cmdName := filepath.Base(os.Args[0])
	if *helpFlag {
		fmt.Printf("%s summarizes benchmark logs: per-file maxima across ranks, mean, standard deviation and read speed\n", cmdName)
		fmt.Println("\nUsage:")
		fmt.Printf("  %s [options] <log1> [log2 ...]\n", cmdName)
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
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

	if flag.NArg() == 0 {
		fmt.Printf("ERROR: no log file given\n")
		os.Exit(1)
	}
	if *outputDirFlag != "" && !util.PathExists(*outputDirFlag) {
		fmt.Printf("ERROR: %s does not exist\n", *outputDirFlag)
		os.Exit(1)
	}

	var allStats []*logStats
	for _, path := range flag.Args() {
		log.Printf("-> Analyzing %s...\n", path)
		s, err := analyzeLog(path)
		if err != nil {
			color.Red("ERROR: %s", err)
			os.Exit(1)
		}
		expected := s.data.NprocX * s.data.NprocY
		if expected > 0 && len(s.data.Times) != expected {
			color.Yellow("WARNING: %s holds timings for %d of %d ranks", s.name, len(s.data.Times), expected)
		}
		allStats = append(allStats, s)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Log file", "Mean (s)", "Std (s)", "Size (MB)", "Speed (MB/s)", "Files", "Config"})
	for _, s := range allStats {
		speed := 0.0
		if s.mean > 0 {
			speed = s.data.FileMB / s.mean
		}
		config := fmt.Sprintf("%dx%d halo=%d %s", s.data.NprocX, s.data.NprocY, s.data.Halo, modeString(s.data.Independent))
		table.Append([]string{
			s.name,
			fmt.Sprintf("%.6f", s.mean),
			fmt.Sprintf("%.6f", s.stddev),
			fmt.Sprintf("%.2f", s.data.FileMB),
			fmt.Sprintf("%.2f", speed),
			fmt.Sprintf("%d", len(s.maxima)),
			config,
		})
	}
	table.Render()

	if *binsFlag != "" {
		thresholds, err := bins.GetFromInputDescr(*binsFlag)
		if err != nil {
			color.Red("ERROR: %s", err)
			os.Exit(1)
		}
		for _, s := range allStats {
			b := bins.GetFromDurations(s.maxima, thresholds)
			fmt.Printf("\nDuration bins for %s:\n", s.name)
			for _, bin := range b {
				if bin.Max < 0 {
					fmt.Printf("  >= %.6f s: %d\n", bin.Min, bin.Size)
					continue
				}
				fmt.Printf("  [%.6f, %.6f) s: %d\n", bin.Min, bin.Max, bin.Size)
			}
			if *outputDirFlag != "" {
				binsFilePath, err := bins.Save(*outputDirFlag, s.data.NprocX, s.data.NprocY, b)
				if err != nil {
					color.Red("ERROR: %s", err)
					os.Exit(1)
				}
				fmt.Printf("Data successfully saved in %s\n", binsFilePath)
			}
		}
	}

	if *outputDirFlag != "" {
		for _, s := range allStats {
			if err := saveBandwidth(*outputDirFlag, s); err != nil {
				color.Red("ERROR: %s", err)
				os.Exit(1)
			}
		}
	}

	if *plotFlag != "" {
		log.Println("-> Plotting per-file maxima...")
		if err := plotMaxima(*plotFlag, allStats); err != nil {
			color.Red("ERROR: %s", err)
			os.Exit(1)
		}
		fmt.Printf("Plot successfully saved in %s\n", *plotFlag)
	}
}
