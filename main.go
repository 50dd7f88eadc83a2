package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	canvasApp "canvas/internal/app"
	"canvas/internal/config"
	"canvas/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	cfgPath := config.DefaultPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	log := logging.Init(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	defer logging.Close()

	// `canvas mcp` serves the canvas to agents over stdio, no window.
	if len(os.Args) > 1 && os.Args[1] == "mcp" {
		if err := canvasApp.ServeMCP(cfg); err != nil {
			log.Error("mcp server stopped", "err", err)
			os.Exit(1)
		}
		return
	}

	app := canvasApp.New(cfg, cfgPath)

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	err = wails.Run(&options.App{
		Title:     "Canvas",
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		MinWidth:  640,
		MinHeight: 480,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 245, G: 245, B: 242, A: 1},
		Menu:             appMenu,
		Logger:           logging.NewWailsLogger(logging.WithComponent("wails")),
		LogLevel:         logging.WailsLevel(cfg.Logging.Level),
		OnStartup:        app.Startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				FullSizeContent:            true,
			},
			About: &mac.AboutInfo{
				Title:   "Canvas",
				Message: "Block canvas with icon, text, image and generated table content",
			},
		},
	})

	if err != nil {
		log.Error("wails run failed", "err", err)
	}
}
