// Package config loads the viewer settings from a TOML file.
package config

import (
	"bytes"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"histo-viewer/core"
	"histo-viewer/internal/peel"
)

// Renderer mirrors peel.Config in a file-friendly form.
type Renderer struct {
	MaxPeels       int        `toml:"max_peels"`
	OcclusionRatio float64    `toml:"occlusion_ratio"`
	PointPicking   bool       `toml:"point_picking"`
	Samples        int        `toml:"samples"`
	Background     [4]float32 `toml:"background"`
	DebugView      string     `toml:"debug_view"`
}

type Window struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Title     string `toml:"title"`
	VSync     bool   `toml:"vsync"`
	Resizable bool   `toml:"resizable"`
}

// Scene selects what the viewer shows. An empty LabelsPath uses the built-in
// demo labels.
type Scene struct {
	LabelsPath    string  `toml:"labels_path"`
	LabelOpacity  float32 `toml:"label_opacity"`
	FirstObjectID uint32  `toml:"first_object_id"`
	SlideWidth    float32 `toml:"slide_width"`
	SlideHeight   float32 `toml:"slide_height"`
}

type Config struct {
	Development bool     `toml:"development"`
	Renderer    Renderer `toml:"renderer"`
	Window      Window   `toml:"window"`
	Scene       Scene    `toml:"scene"`
}

func Default() Config {
	pc := peel.DefaultConfig()
	wc := core.DefaultWindowConfig()
	bg := pc.Background
	return Config{
		Renderer: Renderer{
			MaxPeels:       pc.MaxPeels,
			OcclusionRatio: pc.OcclusionRatio,
			PointPicking:   pc.PointPicking,
			Samples:        pc.Samples,
			Background:     [4]float32{bg.R, bg.G, bg.B, bg.A},
			DebugView:      pc.Debug.String(),
		},
		Window: Window{
			Width:     wc.Width,
			Height:    wc.Height,
			Title:     wc.Title,
			VSync:     wc.VSync,
			Resizable: wc.Resizable,
		},
		Scene: Scene{
			LabelOpacity:  0.45,
			FirstObjectID: 1,
			SlideWidth:    4,
			SlideHeight:   3,
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default value; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	return cfg, Decode(data, &cfg)
}

// Decode parses TOML data into cfg and validates the result.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return errors.Wrapf(err, "config line %d column %d", row, col)
		}
		return errors.Wrap(err, "decode config")
	}
	return cfg.Validate()
}

// Encode renders cfg as TOML, e.g. to write out a starting config.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, errors.Wrap(err, "encode config")
	}
	return buf.Bytes(), nil
}

func (c Config) Validate() error {
	r := c.Renderer
	if r.MaxPeels < 1 {
		return errors.Errorf("renderer.max_peels must be >= 1, got %d", r.MaxPeels)
	}
	if math.IsNaN(r.OcclusionRatio) || r.OcclusionRatio < 0 || r.OcclusionRatio > 1 {
		return errors.Errorf("renderer.occlusion_ratio must be in [0, 1], got %v", r.OcclusionRatio)
	}
	if r.Samples < 1 {
		return errors.Errorf("renderer.samples must be >= 1, got %d", r.Samples)
	}
	if _, ok := peel.ParseDebugView(r.DebugView); !ok {
		return errors.Errorf("renderer.debug_view: unknown view %q", r.DebugView)
	}
	if c.Window.Width < 1 || c.Window.Height < 1 {
		return errors.Errorf("window size %dx%d is invalid", c.Window.Width, c.Window.Height)
	}
	if c.Scene.LabelOpacity < 0 || c.Scene.LabelOpacity > 1 {
		return errors.Errorf("scene.label_opacity must be in [0, 1], got %v", c.Scene.LabelOpacity)
	}
	return nil
}

// PeelConfig converts the renderer section. Call Validate first; an unknown
// debug view maps to none.
func (r Renderer) PeelConfig() peel.Config {
	view, _ := peel.ParseDebugView(r.DebugView)
	return peel.Config{
		MaxPeels:       r.MaxPeels,
		OcclusionRatio: r.OcclusionRatio,
		PointPicking:   r.PointPicking,
		Samples:        r.Samples,
		Background:     core.Color{R: r.Background[0], G: r.Background[1], B: r.Background[2], A: r.Background[3]},
		Debug:          view,
	}
}

func (w Window) WindowConfig() core.WindowConfig {
	wc := core.DefaultWindowConfig()
	wc.Width = w.Width
	wc.Height = w.Height
	wc.Title = w.Title
	wc.VSync = w.VSync
	wc.Resizable = w.Resizable
	return wc
}
