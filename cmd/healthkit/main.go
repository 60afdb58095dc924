// Imports an Apple HealthKit export.xml into the markdown check-in log.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nbowman189/vitruvian/healthlog"
	"github.com/nbowman189/vitruvian/pkg/logger"
)

func main() {
	exportPath := flag.String("export", "export.xml", "Path to the HealthKit export.xml")
	logPath := flag.String("log", "content/checkins.md", "Path to the markdown check-in log")
	flag.Parse()

	log, err := logger.New(os.Getenv("APP_MODE"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	f, err := os.Open(*exportPath)
	if err != nil {
		log.Fatal("open export", "path", *exportPath, "err", err)
	}
	defer f.Close()

	imported, err := healthlog.ParseHealthKitExport(f)
	if err != nil {
		log.Fatal("parse export", "err", err)
	}
	log.Info("parsed export", "days", len(imported))

	existing, err := healthlog.LoadFile(*logPath)
	if err != nil {
		log.Fatal("load check-in log", "path", *logPath, "err", err)
	}

	merged := healthlog.Merge(existing, imported)
	if err := healthlog.SaveFile(*logPath, merged); err != nil {
		log.Fatal("write check-in log", "path", *logPath, "err", err)
	}

	fmt.Printf("merged %d day(s) into %s (%d total)\n", len(imported), *logPath, len(merged))
}
