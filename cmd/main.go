package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chenBenjamin97/pose3d-live/pkg/api"
	"github.com/chenBenjamin97/pose3d-live/pkg/geometry"
	"github.com/chenBenjamin97/pose3d-live/pkg/inference"
	"github.com/chenBenjamin97/pose3d-live/pkg/pose"
	"github.com/chenBenjamin97/pose3d-live/pkg/utils"
	"github.com/chenBenjamin97/pose3d-live/pkg/video"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

//flagKeys maps every command line flag to the config key it overrides
var flagKeys = map[string]string{
	"model":        "model.path",
	"device":       "model.device",
	"input":        "input.source",
	"output":       "output.path",
	"output_limit": "output.limit",
	"height_size":  "network.height_size",
	"fx":           "camera.fx",
	"extrinsics":   "extrinsics.path",
	"no_show":      "display.disabled",
	"timing_plot":  "timing.plot",
	"http_port":    "http.port",
	"verbose":      "log.verbose",
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pose3d",
		Short:         "Lightweight 3D human pose estimation demo. Press esc to exit, \"p\" to (un)pause video or space to process next image, a/d/w/s to turn the 3D view.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(); err != nil {
				return err
			}
			return run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.StringP("model", "m", "", "Required. Path to a trained model (OpenVINO '.xml' with its '.bin', or any format OpenCV dnn reads).")
	flags.StringP("input", "i", "", "Required. An input to process. The input must be a single image, a folder of images, video file or camera id.")
	flags.StringP("output", "o", "", "Optional. Name of the output file to save.")
	flags.Int("output_limit", utils.DefaultOutputLimit, "Optional. Number of frames to store in output. If 0 is set, all frames are stored.")
	flags.StringP("device", "d", "CPU", "Optional. Specify the target device to infer on: CPU, GPU, MYRIAD, HDDL or CUDA.")
	flags.Int("height_size", utils.DefaultBaseHeight, "Optional. Network input layer height size.")
	flags.Float64("fx", -1, "Optional. Camera focal length. Estimated from the frame width when not set.")
	flags.String("extrinsics", "data/extrinsics.json", "Optional. Camera extrinsics file holding 'R' and 't'.")
	flags.Bool("no_show", false, "Optional. Do not open any window.")
	flags.String("timing_plot", "", "Optional. Save a chart of per frame processing time to this file when the session ends.")
	flags.String("http_port", "", "Optional. Serve session statistics and recorded outputs on this port.")
	flags.Bool("verbose", false, "Optional. Log every processed frame.")

	for flag, key := range flagKeys {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatalf("Error: Could not bind flag '%s', got '%v'", flag, err)
		}
	}

	return cmd
}

//loadConfig reads the optional config.yaml from the working directory. Flags set on the command line win over it
func loadConfig() error {
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("Could not read config file, got '%w'", err)
		}
	}

	if viper.GetString("model.path") == "" || viper.GetString("input.source") == "" {
		return errors.New("Missing critical configurations: both a model and an input are required")
	}

	if viper.GetString("output.directory") == "" && viper.GetString("output.path") != "" {
		viper.Set("output.directory", filepath.Dir(viper.GetString("output.path")))
	}

	return nil
}

func run(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	extrinsics, err := geometry.LoadExtrinsics(viper.GetString("extrinsics.path"))
	if err != nil {
		return err
	}

	engine, err := inference.NewDNNEngine(viper.GetString("model.path"), viper.GetString("model.device"), utils.Stride)
	if err != nil {
		return err
	}
	defer engine.Close()

	cfg := video.DefaultPipelineConfig()
	cfg.BaseHeight = viper.GetInt("network.height_size")
	cfg.FocalLength = viper.GetFloat64("camera.fx")
	cfg.OutputLimit = viper.GetInt("output.limit")
	cfg.Verbose = viper.GetBool("log.verbose")

	parser := pose.NewHeatmapParser()
	parser.Verbose = cfg.Verbose

	pipeline, err := video.NewPipeline(cfg, engine, parser, video.NewCVRenderer(cfg.CanvasWidth, cfg.CanvasHeight), extrinsics)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	var display video.Display
	if !viper.GetBool("display.disabled") {
		windows := video.NewWindowDisplay()
		defer windows.Close()
		display = windows
	}

	source, err := video.OpenSource(viper.GetString("input.source"))
	if err != nil {
		return err
	}

	sessionCfg := video.DefaultSessionConfig()
	sessionCfg.TimingPlotPath = viper.GetString("timing.plot")

	id := uuid.NewString()
	session := video.NewSession(id, sessionCfg, source, pipeline, display)
	if out := viper.GetString("output.path"); out != "" {
		session.SetSinkOpener(video.VideoSinkOpener(out))
	}

	monitor := video.NewMonitor(id)
	session.SetMonitor(monitor)

	if port := viper.GetString("http.port"); port != "" {
		go func() {
			if err := api.Serve(ctx, ":"+port, api.SetRouter(monitor)); err != nil {
				log.Printf("Error: Status API stopped, got '%v'", err)
			}
		}()
	}

	return session.Run(ctx)
}
