// cmd/routewxviz/main.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// routewxviz displays the weather cross-section chart for a saved route
// forecast, or prints a per-sample hazard summary with -summary.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/mmp/xsect/log"
	"github.com/mmp/xsect/math"
	"github.com/mmp/xsect/platform"
	"github.com/mmp/xsect/renderer"
	"github.com/mmp/xsect/wx"
	"github.com/mmp/xsect/xsection"

	"github.com/AllenDang/cimgui-go/imgui"
)

var (
	model      = flag.String("model", "", "weather model to display (default: first in the forecast)")
	summary    = flag.Bool("summary", false, "print a per-sample hazard summary and exit")
	cpuprofile = flag.String("cpuprofile", "", "write CPU profile to file")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: routewxviz [flags] <forecast%s>\n", wx.ForecastFilenameSuffix)
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}

	if *cpuprofile != "" {
		if pf, err := os.Create(*cpuprofile); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", *cpuprofile, err)
		} else {
			pprof.StartCPUProfile(pf)
			defer pprof.StopCPUProfile()
		}
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	forecast, err := wx.LoadRouteForecast(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}

	models := forecast.Models()
	if len(models) == 0 {
		fmt.Fprintf(os.Stderr, "%s: forecast has no model analyses\n", flag.Arg(0))
		os.Exit(1)
	}
	if *model == "" {
		*model = models[0]
	}

	extractor := wx.NewExtractor()
	ds, err := extractor.Dataset(forecast, *model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *model, err)
		os.Exit(1)
	}

	if *summary {
		printSummary(forecast, ds)
		return
	}

	runViewer(forecast, extractor, ds, log.New("info", ""))
}

func printSummary(f *wx.RouteForecast, ds *wx.ChartDataset) {
	fmt.Printf("%s: %.0f nm, %d samples, cruise %.0f ft\n",
		f.Route, ds.TotalDistance, len(ds.Samples), ds.CruiseAltitude)
	for i := range ds.Samples {
		s := &ds.Samples[i]
		line := fmt.Sprintf("%6.1f nm:", s.DistanceNM)
		if len(s.CloudLayers) > 0 {
			line += fmt.Sprintf(" clouds %d", len(s.CloudLayers))
		}
		if risk := wx.WorstIcing(s); risk > wx.IcingNone {
			line += " icing " + risk.String()
		}
		if risk := wx.WorstTurbulence(s); risk > wx.TurbNone {
			line += " turb " + risk.String()
		}
		if s.Convective > wx.ConvectiveNone {
			line += " convective " + s.Convective.String()
		}
		if s.FreezingLevel != nil {
			line += fmt.Sprintf(" fzl %.0f", *s.FreezingLevel)
		}
		fmt.Println(line)
	}
}

func imguiInit() *imgui.Context {
	context := imgui.CreateContext()
	imgui.CurrentIO().SetIniFilename("")

	style := imgui.CurrentStyle()
	style.SetFrameRounding(2.)
	style.SetWindowRounding(4.)
	style.SetPopupRounding(4.)
	style.SetScrollbarSize(6.)

	return context
}

func runViewer(forecast *wx.RouteForecast, extractor *wx.Extractor, ds *wx.ChartDataset, lg *log.Logger) {
	_ = imguiInit()

	plat, err := platform.New(&platform.Config{InitialWindowSize: [2]int{1280, 800}}, lg)
	if err != nil {
		panic(fmt.Sprintf("Unable to create application window: %v", err))
	}
	imgui.CurrentPlatformIO().SetClipboardHandler(plat.GetClipboard())

	render, err := renderer.NewOpenGL2Renderer(lg)
	if err != nil {
		panic(fmt.Sprintf("Unable to initialize OpenGL: %v", err))
	}
	renderer.FontsInit(render, plat)

	pane := xsection.NewXSectionPane()
	pane.Activate(render, plat, lg)
	pane.SetDataset(ds)
	pane.OnSelect(func(idx int) {
		lg.Infof("selected sample %d at %.1f nm", idx, ds.Samples[idx].DistanceNM)
	})

	plat.SetWindowTitle("routewxviz: " + forecast.Route)

	for {
		plat.ProcessEvents()
		plat.NewFrame()
		imgui.NewFrame()

		displaySize := plat.DisplaySize()
		fbSize := plat.FramebufferSize()
		pixelScale := float32(1)
		if displaySize[0] > 0 {
			pixelScale = fbSize[0] / displaySize[0]
		}

		ctx := &xsection.Context{
			PaneExtent:     math.Extent2D{P1: displaySize},
			DisplaySize:    displaySize,
			DPIScale:       plat.DPIScale(),
			DrawPixelScale: pixelScale,
			Renderer:       render,
			Platform:       plat,
			Now:            time.Now(),
			Lg:             lg,
		}
		ctx.InitializeMouse()

		cb := renderer.GetCommandBuffer()
		cb.ClearRGB(renderer.RGB{R: .07, G: .08, B: .10})
		cb.SetDrawBounds(ctx.PaneExtent, pixelScale)
		pane.Draw(ctx, cb)
		render.RenderCommandBuffer(cb)
		renderer.ReturnCommandBuffer(cb)

		drawControls(pane, forecast, extractor, lg)

		imgui.Render()
		uiCB := renderer.GetCommandBuffer()
		renderer.GenerateImguiCommandBuffer(uiCB, displaySize, fbSize, lg)
		render.RenderCommandBuffer(uiCB)
		renderer.ReturnCommandBuffer(uiCB)

		plat.PostRender()

		if plat.ShouldStop() {
			break
		}
	}

	render.Dispose()
	plat.Dispose()
}

func drawControls(pane *xsection.XSectionPane, forecast *wx.RouteForecast,
	extractor *wx.Extractor, lg *log.Logger) {
	imgui.Begin("Chart")

	models := forecast.Models()
	if imgui.BeginCombo("Model", *model) {
		for _, m := range models {
			if imgui.SelectableBoolV(m, m == *model, 0, imgui.Vec2{}) && m != *model {
				if ds, err := extractor.Dataset(forecast, m); err != nil {
					lg.Errorf("%s: %v", m, err)
				} else {
					*model = m
					pane.SetDataset(ds)
				}
			}
		}
		imgui.EndCombo()
	}

	pane.DrawUI()
	imgui.End()
}
