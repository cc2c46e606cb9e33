package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"nds3dsoft/internal/present"
	"nds3dsoft/internal/raster"
	"nds3dsoft/internal/rconfig"
	"nds3dsoft/internal/scene"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	threaded := flag.Bool("threaded", false, "Run the rasterizer on a background goroutine")
	antialias := flag.Bool("antialias", false, "Enable antialiasing")
	edgeMarking := flag.Bool("edge-marking", false, "Enable edge marking")
	fog := flag.Bool("fog", false, "Enable fog")
	alphaBlend := flag.Bool("alpha-blend", true, "Enable alpha blending")
	textureEnable := flag.Bool("texture", true, "Enable texturing")
	outputDir := flag.String("output", "", "Output directory (default: out)")
	frames := flag.Int("frames", 60, "Number of frames to render")
	scaleFlag := flag.Int("scale", 1, "Integer upscale factor for the output WebP")

	flag.Parse()

	var settings rconfig.Settings
	if *configFile != "" {
		var err error
		settings, err = rconfig.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Without a config file, flag defaults are authoritative; with one,
	// only flags the user actually passed on the command line override it.
	var overrides rconfig.Flags
	if *configFile == "" {
		overrides = rconfig.Flags{
			Threaded: threaded, Antialias: antialias, EdgeMarking: edgeMarking,
			Fog: fog, AlphaBlend: alphaBlend, TextureEnable: textureEnable,
			OutputDir: outputDir, Frames: frames,
		}
	} else {
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "threaded":
				overrides.Threaded = threaded
			case "antialias":
				overrides.Antialias = antialias
			case "edge-marking":
				overrides.EdgeMarking = edgeMarking
			case "fog":
				overrides.Fog = fog
			case "alpha-blend":
				overrides.AlphaBlend = alphaBlend
			case "texture":
				overrides.TextureEnable = textureEnable
			case "output":
				overrides.OutputDir = outputDir
			case "frames":
				overrides.Frames = frames
			}
		})
	}

	settings = settings.Resolve(overrides)

	if err := os.MkdirAll(settings.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}

	r := raster.NewRenderer()
	r.Regs = settings.Registers()
	scene.BuildCheckerTexture(r.VRAM)
	r.SetRenderSettings(settings.Threaded)
	defer r.DeInit()

	fmt.Printf("nds3dsoft demo: %d frame(s), threaded=%v, antialias=%v, edge-marking=%v, fog=%v\n",
		settings.Frames, settings.Threaded, settings.Antialias, settings.EdgeMarking, settings.Fog)

	for i := 0; i < settings.Frames; i++ {
		angle := float64(i) * (math.Pi / 60)
		polygons := scene.Cube(angle, 4)

		r.RenderFrame(polygons, false)
		r.VCount144()

		rows := make([][]uint32, 192)
		for y := 0; y < 192; y++ {
			rows[y] = append([]uint32(nil), r.GetLine(int32(y))...)
		}

		img := present.ToNRGBA(rows, 256, 192)
		if *scaleFlag > 1 {
			img = present.Upscale(img, 256*(*scaleFlag), 192*(*scaleFlag))
		}

		outPath := filepath.Join(settings.OutputDir, fmt.Sprintf("frame%03d.webp", i))
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", outPath, err)
			os.Exit(1)
		}
		err = present.EncodeWebP(f, img)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding %s: %v\n", outPath, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Wrote %d frame(s) to %s\n", settings.Frames, settings.OutputDir)
}
