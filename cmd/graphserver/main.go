// Small plain-HTTP server for graphing weight and body-fat trends:
// /data serves the check-in log as JSON, /content/:file serves rendered
// markdown from the content directory.
package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nbowman189/vitruvian/healthlog"
	"github.com/nbowman189/vitruvian/middlewares"
	"github.com/nbowman189/vitruvian/pkg/logger"
	"github.com/nbowman189/vitruvian/utils"
)

func main() {
	addr := flag.String("addr", ":8090", "Listen address")
	logPath := flag.String("log", "content/checkins.md", "Path to the markdown check-in log")
	contentDir := flag.String("content", "content", "Directory of markdown files served under /content")
	flag.Parse()

	log, err := logger.New(os.Getenv("APP_MODE"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger(log))

	r.GET("/data", func(c *gin.Context) {
		entries, err := healthlog.LoadFile(*logPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		type point struct {
			Date    string  `json:"date"`
			Weight  float64 `json:"weight"`
			BodyFat float64 `json:"bodyFat"`
		}
		points := make([]point, 0, len(entries))
		for _, e := range entries {
			points = append(points, point{Date: e.Day(), Weight: e.Weight, BodyFat: e.BodyFat})
		}
		c.JSON(http.StatusOK, points)
	})

	r.GET("/content/:file", func(c *gin.Context) {
		name := c.Param("file")
		// Serve only flat markdown files out of the content dir.
		if name != filepath.Base(name) || strings.Contains(name, "..") || !strings.HasSuffix(name, ".md") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
			return
		}

		source, err := os.ReadFile(filepath.Join(*contentDir, name))
		if err != nil {
			if os.IsNotExist(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		html, err := utils.RenderMarkdown(source)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", html)
	})

	log.Info("graph server listening", "addr", *addr)
	if err := r.Run(*addr); err != nil {
		log.Fatal("graph server exited", "err", err)
	}
}
