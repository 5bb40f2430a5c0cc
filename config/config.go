package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// AppConfig holds the structure of the configuration
type AppConfig struct {
	SelfPath  string `json:"selfpath"`
	Port      string `json:"port"`
	Blocksize int    `json:"blocksize"`

	// Board settings, copied into every new game.
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	TickMs       int    `json:"tick_ms"`
	Growth       int    `json:"growth"`
	FoodAttempts int    `json:"food_attempts"`
	StartX       int    `json:"start_x"`
	StartY       int    `json:"start_y"`
	Seed         uint64 `json:"seed"` // 0: seed from the clock

	DBPath    string `json:"db_path"`
	OutputDir string `json:"output_dir"`
	TilesDir  string `json:"tiles_dir"`
}

var (
	instance *AppConfig
	once     sync.Once
	mu       sync.RWMutex
)

// Default returns the values written to a fresh config file.
func Default() AppConfig {
	return AppConfig{
		SelfPath:     "127.0.0.1:38870",
		Port:         "38870",
		Blocksize:    20,
		Width:        40,
		Height:       30,
		TickMs:       100,
		Growth:       5,
		FoodAttempts: 1000,
		StartX:       5,
		StartY:       5,
		DBPath:       "game.db",
		OutputDir:    "./output",
		TilesDir:     "./tiles",
	}
}

// LoadConfig initializes and returns the instance of AppConfig
func LoadConfig(filePath string) *AppConfig {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		cfg := Default()
		instance = &cfg
		// Load the config file if it exists, otherwise create one
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			if err := saveConfig(filePath, instance); err != nil {
				panic(err)
			}
		} else if err := loadConfig(filePath, instance); err != nil {
			panic(err)
		}
	})
	return instance
}

// Reload re-reads filePath. The current values stay in place if the file
// cannot be parsed or is invalid.
func Reload(filePath string) error {
	cfg := Default()
	if err := loadConfig(filePath, &cfg); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if instance == nil {
		instance = &cfg
		return nil
	}
	*instance = cfg
	return nil
}

// loadConfig loads the settings from the file
func loadConfig(filePath string, cfg *AppConfig) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("decoding %s: %w", filePath, err)
	}
	return cfg.Validate()
}

// saveConfig saves the current settings to the file
func saveConfig(filePath string, cfg *AppConfig) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// Validate rejects boards the engine cannot run.
func (c *AppConfig) Validate() error {
	switch {
	case c.Width < 2 || c.Height < 2:
		return fmt.Errorf("board %dx%d is too small", c.Width, c.Height)
	case c.TickMs <= 0:
		return fmt.Errorf("tick_ms must be positive, got %d", c.TickMs)
	case c.Growth <= 0 || c.FoodAttempts <= 0:
		return fmt.Errorf("growth and food_attempts must be positive")
	case c.StartX < 0 || c.StartX >= c.Width || c.StartY < 0 || c.StartY >= c.Height:
		return fmt.Errorf("start (%d,%d) is outside the board", c.StartX, c.StartY)
	case c.Blocksize <= 0:
		return fmt.Errorf("blocksize must be positive, got %d", c.Blocksize)
	}
	return nil
}

// TickInterval is the wall-clock time between two ticks.
func (c AppConfig) TickInterval() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

// Snapshot returns a copy of the current configuration.
func Snapshot() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		return Default()
	}
	return *instance
}

// GetConfigValue returns the value of the configuration by key
func GetConfigValue(key string) interface{} {
	mu.RLock()
	defer mu.RUnlock()
	switch key {
	case "selfpath":
		return instance.SelfPath
	case "port":
		return instance.Port
	case "blocksize":
		return instance.Blocksize
	case "output_dir":
		return instance.OutputDir
	case "tiles_dir":
		return instance.TilesDir
	case "db_path":
		return instance.DBPath
	default:
		return ""
	}
}
