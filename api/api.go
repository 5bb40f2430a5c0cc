package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/hoshinonyaruko/snake-autopilot/config"
	"github.com/hoshinonyaruko/snake-autopilot/input"
	"github.com/hoshinonyaruko/snake-autopilot/render"
	"github.com/hoshinonyaruko/snake-autopilot/session"
	"github.com/hoshinonyaruko/snake-autopilot/sqlite"
	"github.com/hoshinonyaruko/snake-autopilot/structs"
)

// ResultStore is the read side of the results database.
type ResultStore interface {
	TopResults(limit int) ([]structs.Result, error)
	GetResult(id string) (structs.Result, error)
}

// InitDB opens the results database or exits.
func InitDB(path string) *sqlite.Store {
	store, err := sqlite.Open(path)
	if err != nil {
		glog.Fatal(err)
	}
	return store
}

// RegisterRoutes wires every handler onto the router. New games started
// over HTTP live until ctx is done.
func RegisterRoutes(ctx context.Context, router *gin.Engine, m *session.Manager, results ResultStore, png *render.PNG, hub *Hub) {
	// 玩家操作
	router.GET("/action", ActionHandler(m))
	router.POST("/action", ActionHandler(m))
	router.GET("/status", StatusHandler(m))
	// 渲染函数 返回静态地址
	router.GET("/render-map", RenderMapHandler(m, png))
	router.GET("/results", ResultsHandler(results))
	router.GET("/results/:id", ResultHandler(results))
	router.POST("/new-game", NewGameHandler(ctx, m))
	router.GET("/ws", hub.Handler(m))
}

// ActionHandler queues one action for the current game.
func ActionHandler(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("do")
		if name == "" {
			name = c.PostForm("do")
		}
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameter: do"})
			return
		}
		action, err := input.ParseAction(name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		r, err := m.Current()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if !r.Push(action) {
			c.JSON(http.StatusConflict, gin.H{"error": "turns are ignored while the autopilot is on", "action": action.String()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "action queued", "action": action.String()})
	}
}

// StatusHandler returns the last snapshot of the current game.
func StatusHandler(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := m.Current()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, r.Snapshot())
	}
}

// RenderMapHandler draws the current board and returns its static address.
func RenderMapHandler(m *session.Manager, png *render.PNG) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := m.Current()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		name, err := png.Render(r.Snapshot())
		if err != nil {
			glog.Errorf("rendering %s: %v", r.ID(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to render game map"})
			return
		}
		imageUrl := fmt.Sprintf("http://%s/static/%s", config.Snapshot().SelfPath, name)
		c.JSON(http.StatusOK, gin.H{"image_url": imageUrl})
	}
}

// ResultsHandler lists the best finished games.
func ResultsHandler(results ResultStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number"})
			return
		}
		list, err := results.TopResults(limit)
		if err != nil {
			glog.Errorf("loading results: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load results"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": list})
	}
}

// ResultHandler returns one finished game.
func ResultHandler(results ResultStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := results.GetResult(c.Param("id"))
		switch {
		case errors.Is(err, sqlite.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case err != nil:
			glog.Errorf("loading result: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load result"})
		default:
			c.JSON(http.StatusOK, res)
		}
	}
}

// NewGameHandler abandons the current game and starts a fresh one with the
// current configuration.
func NewGameHandler(ctx context.Context, m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := m.Restart(ctx)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": r.ID(), "status": r.Snapshot().Status})
	}
}
