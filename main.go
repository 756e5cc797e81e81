package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/df07/go-sphere-tracer/pkg/config"
	"github.com/df07/go-sphere-tracer/pkg/output"
	"github.com/df07/go-sphere-tracer/pkg/renderer"
	"github.com/df07/go-sphere-tracer/pkg/scene"
	"github.com/df07/go-sphere-tracer/web/server"
)

const appName = "raytracer"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree; each invocation gets its own viper instance
func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Stochastic sphere path tracer",
		Long: `Renders scenes made of spheres with diffuse, metal and glass materials
using Monte Carlo path tracing against a sky gradient.

Scenes are either built in (see "raytracer scenes") or loaded from YAML files.
Settings come from flags, RAYTRACER_* environment variables and an optional
raytracer.yaml config file, in that order of precedence.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./raytracer.yaml or ./configs/raytracer.yaml)")

	loadConfig := func(cmd *cobra.Command) (config.RenderConfig, error) {
		v := config.New(cfgFile)
		if err := config.BindFlags(v, cmd.Flags()); err != nil {
			return config.RenderConfig{}, err
		}
		return config.Load(v)
	}

	defaults := config.DefaultConfig()

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to a PPM or PNG file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			_, err = runRender(cmd.Context(), cfg, cmd.OutOrStdout())
			return err
		},
	}
	renderCmd.Flags().String("scene", defaults.Scene, "Scene ID: built-in name, yaml:<name>, or a YAML file path")
	renderCmd.Flags().Int("width", defaults.Width, "Image width (0 uses the scene's width)")
	renderCmd.Flags().Int("samples", defaults.SamplesPerPixel, "Samples per pixel (0 uses the scene's value)")
	renderCmd.Flags().Int("max-depth", defaults.MaxDepth, "Maximum ray bounces (0 uses the scene's value)")
	renderCmd.Flags().Int64("seed", defaults.Seed, "Sampler seed")
	renderCmd.Flags().StringP("output", "o", defaults.Output, "Output file (default output/<scene>/render_<timestamp>.<format>)")
	renderCmd.Flags().String("format", defaults.Format, "Image format: ppm or png")
	renderCmd.Flags().String("scenes-dir", defaults.ScenesDir, "Directory containing YAML scenes")

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "List built-in and YAML scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return listScenes(cfg.ScenesDir, cmd.OutOrStdout())
		},
	}
	scenesCmd.Flags().String("scenes-dir", defaults.ScenesDir, "Directory containing YAML scenes")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the progressive web preview server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log.Printf("Sphere Tracer Web Server")
			log.Printf("Visit http://localhost:%d/api/scenes to list scenes", cfg.Port)
			return server.NewServer(cfg.Port, cfg.ScenesDir).Start()
		},
	}
	serveCmd.Flags().Int("port", defaults.Port, "Port to serve on")
	serveCmd.Flags().String("scenes-dir", defaults.ScenesDir, "Directory containing YAML scenes")

	rootCmd.AddCommand(renderCmd, scenesCmd, serveCmd)
	return rootCmd
}

// createScene resolves a scene ID against the built-in scenes and scenesDir
func createScene(sceneID, scenesDir string) (*scene.Scene, error) {
	if sceneID == "" {
		return nil, fmt.Errorf("scene must be set")
	}
	return scene.Create(sceneID, scenesDir)
}

// runRender renders the configured scene and writes it to disk, returning the output path
func runRender(ctx context.Context, cfg config.RenderConfig, out io.Writer) (string, error) {
	logger := log.New(out, "", 0)

	selectedScene, err := createScene(cfg.Scene, cfg.ScenesDir)
	if err != nil {
		return "", err
	}

	// Zero values fall back to the scene's recommendations
	sceneConfig := selectedScene.GetSamplingConfig()
	width := cfg.Width
	if width == 0 {
		width = sceneConfig.Width
	}
	height := scene.HeightForWidth(width, selectedScene.CameraConfig.AspectRatio)
	samplingConfig := renderer.SamplingConfig{
		SamplesPerPixel: cfg.SamplesPerPixel,
		MaxDepth:        cfg.MaxDepth,
	}
	if samplingConfig.SamplesPerPixel == 0 {
		samplingConfig.SamplesPerPixel = sceneConfig.SamplesPerPixel
	}
	if samplingConfig.MaxDepth == 0 {
		samplingConfig.MaxDepth = sceneConfig.MaxDepth
	}

	format := cfg.Format
	path := cfg.Output
	if path == "" {
		path = output.DefaultPath(sceneDirName(cfg.Scene), format, time.Now())
	} else if extFormat, err := output.ParseFormat(filepath.Ext(path)); err == nil {
		format = extFormat
	}

	logger.Printf("Rendering %s (%d spheres) at %dx%d, %d samples/pixel, max depth %d",
		selectedScene.Name, selectedScene.GetPrimitiveCount(), width, height,
		samplingConfig.SamplesPerPixel, samplingConfig.MaxDepth)

	raytracer := renderer.NewRaytracer(selectedScene, width, height)
	raytracer.SetSamplingConfig(samplingConfig)
	raytracer.SetSeed(cfg.Seed)
	raytracer.SetLogger(logger)

	step := max(height/10, 1)
	raytracer.SetProgress(func(done, total int) {
		if done%step == 0 || done == total {
			logger.Printf("Scanlines remaining: %d", total-done)
		}
	})

	frame, stats, err := raytracer.RenderPass(ctx)
	if err != nil {
		return "", err
	}

	if err := output.SaveFile(path, frame, format); err != nil {
		return "", err
	}

	logger.Printf("Render completed in %v (%d samples, mean luminance %.3f ± %.3f)",
		stats.Duration, stats.TotalSamples, stats.MeanLuminance, stats.LuminanceStdDev)
	logger.Printf("Render saved as %s", path)
	return path, nil
}

// sceneDirName turns a scene ID into a directory name
func sceneDirName(sceneID string) string {
	name := strings.TrimPrefix(sceneID, "yaml:")
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if name == "" || name == "." {
		return "scene"
	}
	return name
}

// listScenes prints every scene grouped by category
func listScenes(scenesDir string, out io.Writer) error {
	response, err := scene.ListAllScenes(scenesDir, log.New(out, "", 0))
	if err != nil {
		return err
	}

	for _, group := range response.Groups {
		fmt.Fprintf(out, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			if info.Description != "" {
				fmt.Fprintf(out, "  %-20s %s\n", info.ID, info.Description)
			} else {
				fmt.Fprintf(out, "  %s\n", info.ID)
			}
		}
	}
	return nil
}
