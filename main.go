package main

import (
	"log"
	"os"
	"runtime/pprof"

	"github.com/lumipallolabs/sweeper/cmd"
)

func main() {
	// Enable CPU profiling if CPUPROFILE env var is set
	if cpuProfile := os.Getenv("CPUPROFILE"); cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		log.Printf("CPU profiling enabled, writing to %s", cpuProfile)
		code := cmd.Execute()
		pprof.StopCPUProfile()
		f.Close()
		os.Exit(code)
	}

	os.Exit(cmd.Execute())
}
