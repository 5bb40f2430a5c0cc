package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/hoshinonyaruko/snake-autopilot/api"
	"github.com/hoshinonyaruko/snake-autopilot/config"
	"github.com/hoshinonyaruko/snake-autopilot/input"
	"github.com/hoshinonyaruko/snake-autopilot/memimg"
	"github.com/hoshinonyaruko/snake-autopilot/render"
	"github.com/hoshinonyaruko/snake-autopilot/session"
)

func main() {
	configPath := flag.String("config", "./config.json", "path of the configuration file")
	term := flag.Bool("term", false, "also play the game in this terminal")
	flag.Parse()
	defer glog.Flush()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize the configuration
	cfg := *config.LoadConfig(*configPath)
	EnsureFoldersExist(cfg.OutputDir, cfg.TilesDir)
	// 获取blockSize
	blockSize := config.GetConfigValue("blocksize").(int)
	// 载入贴图到内存
	if err := memimg.LoadTiles(cfg.TilesDir, blockSize); err != nil {
		glog.Warningf("loading tiles from %s: %v", cfg.TilesDir, err)
	}
	// 检测并热更新到内存 加速绘图
	go memimg.WatchTiles(ctx, cfg.TilesDir, blockSize)
	go func() {
		err := config.Watch(ctx, *configPath, func(c config.AppConfig) {
			glog.Infof("configuration reloaded, next game is %dx%d at %v per tick", c.Width, c.Height, c.TickInterval())
		})
		if err != nil {
			glog.Errorf("watching %s: %v", *configPath, err)
		}
	}()

	store := api.InitDB(cfg.DBPath)
	defer store.Close()

	hub := api.NewHub()
	png := render.NewPNG(cfg.OutputDir, blockSize)
	sinks := []session.Sink{hub, png}

	var screen tcell.Screen
	if *term {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			glog.Fatalf("problem creating screen: %v", err)
		}
		if err := screen.Init(); err != nil {
			glog.Fatalf("init problem: %v", err)
		}
		defer screen.Fini()
		sinks = append(sinks, render.NewTerminal(screen))
		// 终端模式下不要把请求日志打到屏幕上
		gin.DefaultWriter = io.Discard
	}

	manager := session.NewManager(config.Snapshot, store, sinks...)
	if _, err := manager.Start(ctx); err != nil {
		glog.Fatalf("starting game: %v", err)
	}

	router := gin.Default()
	api.RegisterRoutes(ctx, router, manager, store, png, hub)
	router.Static("/static", cfg.OutputDir) // 静态文件服务

	// 从配置单例读取端口 监听
	srv := &http.Server{Addr: ":" + config.GetConfigValue("port").(string), Handler: router}
	go func() {
		glog.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Errorf("http server: %v", err)
			cancel()
		}
	}()

	if *term {
		go input.Pump(ctx, screen, func() input.Pusher {
			r, err := manager.Current()
			if err != nil {
				return nil
			}
			return r
		})
		// 跟随 /new-game 换掉的新游戏，直到当前这局结束
		manager.Wait(ctx)
		if ctx.Err() == nil {
			// 让玩家看一眼结果
			time.Sleep(2 * time.Second)
		}
	} else {
		<-ctx.Done()
	}

	manager.Stop()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("http shutdown: %v", err)
	}
}

// EnsureFoldersExist 检查并创建必需的文件夹
func EnsureFoldersExist(folders ...string) {
	for _, folder := range folders {
		if _, err := os.Stat(folder); os.IsNotExist(err) {
			// 文件夹不存在，尝试创建它
			if err := os.MkdirAll(folder, 0755); err != nil {
				glog.Fatalf("Failed to create %s directory: %s", folder, err)
			}
			glog.Infof("Created %s directory", folder)
		} else {
			glog.V(1).Infof("%s directory already exists", folder)
		}
	}
}
