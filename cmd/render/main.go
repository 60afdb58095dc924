// Renders a markdown health log to standalone HTML and/or PDF, optionally
// archiving the result to S3.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nbowman189/vitruvian/pkg/logger"
	"github.com/nbowman189/vitruvian/report"
	"github.com/nbowman189/vitruvian/utils"
)

func main() {
	inPath := flag.String("in", "content/checkins.md", "Markdown file to render")
	htmlPath := flag.String("html", "", "Write HTML to this path")
	pdfPath := flag.String("pdf", "", "Write PDF to this path")
	title := flag.String("title", "", "Document title (default: derived from the input filename)")
	upload := flag.Bool("s3", false, "Also upload rendered output to S3")
	flag.Parse()

	log, err := logger.New(os.Getenv("APP_MODE"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if *htmlPath == "" && *pdfPath == "" {
		base := strings.TrimSuffix(*inPath, filepath.Ext(*inPath))
		*htmlPath = base + ".html"
	}

	docTitle := *title
	if docTitle == "" {
		name := filepath.Base(*inPath)
		docTitle = strings.TrimSuffix(name, filepath.Ext(name))
	}

	source, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatal("read input", "path", *inPath, "err", err)
	}

	if *upload {
		utils.InitS3()
	}

	if *htmlPath != "" {
		html, err := report.RenderHTML(docTitle, source)
		if err != nil {
			log.Fatal("render html", "err", err)
		}
		if err := os.WriteFile(*htmlPath, html, 0o644); err != nil {
			log.Fatal("write html", "path", *htmlPath, "err", err)
		}
		fmt.Printf("wrote %s\n", *htmlPath)
		archive(log, *upload, html, filepath.Base(*htmlPath))
	}

	if *pdfPath != "" {
		pdf, err := report.RenderPDF(docTitle, source)
		if err != nil {
			log.Fatal("render pdf", "err", err)
		}
		if err := os.WriteFile(*pdfPath, pdf, 0o644); err != nil {
			log.Fatal("write pdf", "path", *pdfPath, "err", err)
		}
		fmt.Printf("wrote %s\n", *pdfPath)
		archive(log, *upload, pdf, filepath.Base(*pdfPath))
	}
}

func archive(log *logger.Logger, upload bool, data []byte, filename string) {
	if !upload {
		return
	}
	key, err := utils.UploadReport(data, filename)
	if err != nil {
		log.Warn("s3 upload failed", "file", filename, "err", err)
		return
	}
	log.Info("uploaded report", "key", key)
}
