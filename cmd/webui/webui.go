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

	"github.com/gvallee/go_util/pkg/util"

	"github.com/slcs-jsc/netcdf-bench/internal/pkg/webui"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose mode")
	datasetDir := flag.String("dataset", "", "Directory holding the markdown timing reports")
	name := flag.String("name", "netcdf-bench", "Name of the dataset to display")
	help := flag.Bool("h", false, "Help message")
	port := flag.Int("port", webui.DefaultPort, "Port on which to start the WebUI")

	flag.Parse()

	cmdName := filepath.Base(os.Args[0])
	if *help {
		fmt.Printf("%s starts a Web-based user interface to browse timing reports", cmdName)
		fmt.Println("\nUsage:")
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

	if *datasetDir == "" || !util.PathExists(*datasetDir) {
		fmt.Printf("%s is an invalid dataset, please make sure to use the '-dataset' parameter to point to the timing reports\n", *datasetDir)
		os.Exit(1)
	}

	fmt.Printf("Starting WebUI for dataset in %s...\n", *datasetDir)

	cfg := webui.Init()
	cfg.DatasetDir = *datasetDir
	cfg.Name = *name
	cfg.Port = *port

	err := cfg.Start()
	if err != nil {
		fmt.Printf("WebUI faced an internal error: %s\n", err)
		os.Exit(1)
	}
	cfg.Wait()
}
