// Registry adapters binding parameter maps to the transform functions
package algorithms

import (
	"math"

	"gocv.io/x/gocv"
)

// Parameter ranges accepted by the strict Validate path.
const (
	MinBrightness = -100.0
	MaxBrightness = 100.0
	MinContrast   = 0.5
	MaxContrast   = 2.0
	MaxThreshold  = 255.0
	MaxBlur       = 50.0
)

func getFloat(params map[string]interface{}, name string, def float64) float64 {
	if val, ok := params[name]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		}
	}
	return def
}

// wholeNumber converts v to int only when it has no fractional part.
func wholeNumber(v float64) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

func getString(params map[string]interface{}, name, def string) string {
	if val, ok := params[name]; ok {
		if v, ok := val.(string); ok {
			return v
		}
	}
	return def
}

// GrayscaleOp

type grayscaleOp struct{}

func (g *grayscaleOp) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	return Grayscale(input)
}

func (g *grayscaleOp) GetDefaultParams() map[string]interface{} { return map[string]interface{}{} }
func (g *grayscaleOp) GetName() string                          { return "Grayscale" }
func (g *grayscaleOp) GetDescription() string {
	return "Luminance conversion keeping the channel layout"
}
func (g *grayscaleOp) Validate(params map[string]interface{}) error { return nil }
func (g *grayscaleOp) GetParameterInfo() []ParameterInfo             { return nil }

// BlurOp

type blurOp struct{}

func (b *blurOp) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	v := getFloat(params, "intensity", 3)
	intensity, ok := wholeNumber(v)
	if !ok {
		return gocv.NewMat(), invalidParam(OpBlur, "intensity", v, "must be a whole number")
	}
	return Blur(input, intensity)
}

func (b *blurOp) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{"intensity": 3.0}
}

func (b *blurOp) GetName() string        { return "Blur" }
func (b *blurOp) GetDescription() string { return "Gaussian blur with a (2*intensity+1) kernel" }

func (b *blurOp) Validate(params map[string]interface{}) error {
	v := getFloat(params, "intensity", 3)
	if _, ok := wholeNumber(v); !ok {
		return invalidParam(OpBlur, "intensity", v, "must be a whole number")
	}
	if v < 0 || v > MaxBlur {
		return invalidParam(OpBlur, "intensity", v, "must be between 0 and %.0f", MaxBlur)
	}
	return nil
}

func (b *blurOp) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{Name: "intensity", Type: "int", Min: 0.0, Max: MaxBlur, Default: 3.0, Description: "Blur intensity; kernel size is 2*intensity+1"},
	}
}

// EdgesOp

type edgesOp struct{}

func (e *edgesOp) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	return EdgeDetect(input, getFloat(params, "low", 100), getFloat(params, "high", 200))
}

func (e *edgesOp) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{"low": 100.0, "high": 200.0}
}

func (e *edgesOp) GetName() string        { return "Edge Detection" }
func (e *edgesOp) GetDescription() string { return "Canny dual-threshold edge detection" }

func (e *edgesOp) Validate(params map[string]interface{}) error {
	low := getFloat(params, "low", 100)
	high := getFloat(params, "high", 200)
	if low < 0 || low > MaxThreshold {
		return invalidParam(OpEdges, "low", low, "must be between 0 and %.0f", MaxThreshold)
	}
	if high < 0 || high > MaxThreshold {
		return invalidParam(OpEdges, "high", high, "must be between 0 and %.0f", MaxThreshold)
	}
	if low > high {
		return invalidParam(OpEdges, "low", low, "must not exceed high threshold %.0f", high)
	}
	return nil
}

func (e *edgesOp) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{Name: "low", Type: "float", Min: 0.0, Max: MaxThreshold, Default: 100.0, Description: "Lower hysteresis threshold"},
		{Name: "high", Type: "float", Min: 0.0, Max: MaxThreshold, Default: 200.0, Description: "Upper hysteresis threshold"},
	}
}

// RotateOp

type rotateOp struct{}

func (r *rotateOp) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	// Fractional angles are not quarter turns; Rotate treats 0 as identity.
	angle, ok := wholeNumber(getFloat(params, "angle", 90))
	if !ok {
		angle = 0
	}
	return Rotate(input, angle)
}

func (r *rotateOp) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{"angle": 90.0}
}

func (r *rotateOp) GetName() string        { return "Rotate" }
func (r *rotateOp) GetDescription() string { return "Clockwise rotation by 90, 180 or 270 degrees" }

func (r *rotateOp) Validate(params map[string]interface{}) error {
	switch angle := getFloat(params, "angle", 90); angle {
	case 90, 180, 270:
		return nil
	default:
		return invalidParam(OpRotate, "angle", angle, "must be 90, 180 or 270")
	}
}

func (r *rotateOp) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{Name: "angle", Type: "enum", Default: 90.0, Description: "Clockwise angle in degrees", Options: []string{"90", "180", "270"}},
	}
}

// FlipOp

type flipOp struct{}

func (f *flipOp) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	return Flip(input, FlipAxis(getString(params, "axis", string(FlipHorizontal))))
}

func (f *flipOp) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{"axis": string(FlipHorizontal)}
}

func (f *flipOp) GetName() string        { return "Flip" }
func (f *flipOp) GetDescription() string { return "Mirror horizontally or vertically" }

func (f *flipOp) Validate(params map[string]interface{}) error {
	switch axis := FlipAxis(getString(params, "axis", string(FlipHorizontal))); axis {
	case FlipHorizontal, FlipVertical:
		return nil
	default:
		return invalidParam(OpFlip, "axis", axis, "must be horizontal or vertical")
	}
}

func (f *flipOp) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{Name: "axis", Type: "enum", Default: string(FlipHorizontal), Description: "Mirror axis", Options: []string{string(FlipHorizontal), string(FlipVertical)}},
	}
}

// ResizeOp

type resizeOp struct{}

func (r *resizeOp) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	return Resize(input, getFloat(params, "scale", 1))
}

func (r *resizeOp) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{"scale": 1.0}
}

func (r *resizeOp) GetName() string        { return "Resize" }
func (r *resizeOp) GetDescription() string { return "Uniform scaling with linear interpolation" }

func (r *resizeOp) Validate(params map[string]interface{}) error {
	if scale := getFloat(params, "scale", 1); scale <= 0 {
		return invalidParam(OpResize, "scale", scale, "must be positive")
	}
	return nil
}

func (r *resizeOp) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{Name: "scale", Type: "float", Min: 0.2, Max: 2.0, Default: 1.0, Description: "Scale factor"},
	}
}

// ToneOp

type toneOp struct{}

func (t *toneOp) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	return AdjustBrightnessContrast(input, getFloat(params, "brightness", 0), getFloat(params, "contrast", 1))
}

func (t *toneOp) GetDefaultParams() map[string]interface{} {
	return map[string]interface{}{"brightness": 0.0, "contrast": 1.0}
}

func (t *toneOp) GetName() string        { return "Brightness / Contrast" }
func (t *toneOp) GetDescription() string { return "out = clamp(in*contrast + brightness, 0, 255)" }

func (t *toneOp) Validate(params map[string]interface{}) error {
	b := getFloat(params, "brightness", 0)
	if b < MinBrightness || b > MaxBrightness {
		return invalidParam(OpBrightnessContrast, "brightness", b, "must be between %.0f and %.0f", MinBrightness, MaxBrightness)
	}
	c := getFloat(params, "contrast", 1)
	if c < MinContrast || c > MaxContrast {
		return invalidParam(OpBrightnessContrast, "contrast", c, "must be between %.1f and %.1f", MinContrast, MaxContrast)
	}
	return nil
}

func (t *toneOp) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{Name: "brightness", Type: "float", Min: MinBrightness, Max: MaxBrightness, Default: 0.0, Description: "Additive offset"},
		{Name: "contrast", Type: "float", Min: MinContrast, Max: MaxContrast, Default: 1.0, Description: "Multiplicative gain"},
	}
}

// BackgroundOp

type backgroundOp struct{}

func (b *backgroundOp) Apply(input gocv.Mat, params map[string]interface{}) (gocv.Mat, error) {
	return RemoveBackground(input)
}

func (b *backgroundOp) GetDefaultParams() map[string]interface{} { return map[string]interface{}{} }
func (b *backgroundOp) GetName() string                          { return "Remove Background" }
func (b *backgroundOp) GetDescription() string {
	return "GrabCut segmentation seeded by a 10px inset rectangle"
}
func (b *backgroundOp) Validate(params map[string]interface{}) error { return nil }
func (b *backgroundOp) GetParameterInfo() []ParameterInfo             { return nil }
