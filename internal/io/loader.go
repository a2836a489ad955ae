// Image decoding and encoding at the file boundary
package io

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"image-editor/internal/core"
)

// DefaultExtension is appended by EnsureExtension when a save path has none.
const DefaultExtension = ".jpg"

var supportedFormats = map[string]string{
	".jpg":  "JPEG",
	".jpeg": "JPEG",
	".png":  "PNG",
	".bmp":  "BMP",
}

// ErrUnsupportedFormat is wrapped by load and save errors for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ImageLoader handles image file operations
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImageLoader{
		logger: logger,
	}
}

// LoadImage decodes filepath as a three-channel color image.
func (il *ImageLoader) LoadImage(filepath string) (gocv.Mat, error) {
	il.logger.WithField("filepath", filepath).Debug("Loading image")

	if !IsSupportedFormat(filepath) {
		return gocv.NewMat(), &core.LoadError{Path: filepath, Err: ErrUnsupportedFormat}
	}

	mat := gocv.IMRead(filepath, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), &core.LoadError{Path: filepath, Err: errors.New("file missing or not decodable")}
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": filepath,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image loaded successfully")

	return mat, nil
}

// DecodeImage decodes an in-memory encoded image; name is used for errors
// and logging only.
func (il *ImageLoader) DecodeImage(data []byte, name string) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), &core.LoadError{Path: name, Err: errors.New("no data")}
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		mat.Close()
		return gocv.NewMat(), &core.LoadError{Path: name, Err: err}
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), &core.LoadError{Path: name, Err: errors.New("data is not a decodable image")}
	}

	il.logger.WithFields(logrus.Fields{
		"name":   name,
		"bytes":  len(data),
		"width":  mat.Cols(),
		"height": mat.Rows(),
	}).Info("Image decoded successfully")

	return mat, nil
}

// SaveImage encodes mat to filepath; the format follows the extension.
func (il *ImageLoader) SaveImage(mat gocv.Mat, filepath string) error {
	il.logger.WithField("filepath", filepath).Debug("Saving image")

	if mat.Empty() {
		return &core.SaveError{Path: filepath, Err: errors.New("cannot save empty image")}
	}

	if !IsSupportedFormat(filepath) {
		return &core.SaveError{Path: filepath, Err: ErrUnsupportedFormat}
	}

	if success := gocv.IMWrite(filepath, mat); !success {
		return &core.SaveError{Path: filepath, Err: fmt.Errorf("%s encoder failed", FormatName(filepath))}
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": filepath,
		"format":   FormatName(filepath),
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"channels": mat.Channels(),
	}).Info("Image saved successfully")

	return nil
}

// IsSupportedFormat reports whether the extension of path is a supported
// raster format.
func IsSupportedFormat(path string) bool {
	_, ok := supportedFormats[strings.ToLower(filepath.Ext(path))]
	return ok
}

// FormatName returns the format implied by the extension of path, or "".
func FormatName(path string) string {
	return supportedFormats[strings.ToLower(filepath.Ext(path))]
}

// EnsureExtension appends DefaultExtension when path has no extension.
func EnsureExtension(path string) string {
	if path == "" || filepath.Ext(path) != "" {
		return path
	}
	return path + DefaultExtension
}

// SupportedExtensions lists the accepted file extensions for file pickers.
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".bmp"}
}
