package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/chenBenjamin97/pose3d-live/pkg/utils"
	"github.com/chenBenjamin97/pose3d-live/pkg/video"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

//SetRouter exposes the running session's statistics and the recorded outputs found in 'output.directory'
func SetRouter(monitor *video.Monitor) *gin.Engine {
	r := gin.Default()

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/Stats", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, monitor.Snapshot())
	})

	apiRoutes.GET("/Outputs", func(ctx *gin.Context) {
		if names, err := utils.ListDir(viper.GetString("output.directory")); err != nil {
			ctx.Status(http.StatusInternalServerError)
		} else {
			ctx.JSON(http.StatusOK, names)
		}
	})

	apiRoutes.GET("/Play", func(ctx *gin.Context) {
		videoName := ctx.Request.URL.Query().Get("name")
		if videoName == "" {
			ctx.Status(http.StatusNotAcceptable) //missing url parameter
			return
		}

		videoPath := filepath.Join(viper.GetString("output.directory"), filepath.Base(videoName))

		if info, err := os.Stat(videoPath); err != nil {
			if os.IsNotExist(err) {
				ctx.Status(http.StatusNotFound)
				return
			} else {
				ctx.Status(http.StatusInternalServerError)
				return
			}
		} else if info.IsDir() {
			ctx.Status(http.StatusNotFound)
			return
		}

		http.ServeFile(ctx.Writer, ctx.Request, videoPath)
	})

	return r
}

//Serve runs handler on addr until ctx is done
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Serve: Error shutting down, got '%v'", err)
		}
	}()

	log.Printf("Serve: Status API listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
