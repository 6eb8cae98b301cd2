package main

import (
	"fmt"
	"os"

	"github.com/vexsearch/kmeans/cmd/kmeans/bench"
	"github.com/vexsearch/kmeans/cmd/kmeans/generate"
	"github.com/vexsearch/kmeans/cmd/kmeans/run"
	"github.com/vexsearch/kmeans/cmd/kmeans/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		run.Run(os.Args[2:])
	case "bench":
		bench.Run(os.Args[2:])
	case "generate":
		generate.Run(os.Args[2:])
	case "version":
		version.Run()
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`kmeans - Lloyd's k-means clustering, sequential or parallel

Usage:
  kmeans <command> [options]

Commands:
  run        Cluster a dataset once and print the cluster sizes
  bench      Time the sequential and parallel strategies against each other
  generate   Write a synthetic dataset of Gaussian blobs
  version    Print version information
  help       Show this help message

Run 'kmeans <command> -h' for more information on a command.`)
}
