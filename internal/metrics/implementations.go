// Concrete implementations of difference metrics
package metrics

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// ErrIncomparable is returned when two images differ in shape.
var ErrIncomparable = errors.New("images are not comparable")

// MSE implements mean squared error over all channels
type MSE struct{}

func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed gocv.Mat) (float64, error) {
	return meanSquaredError(original, processed)
}

func (m *MSE) GetName() string {
	return "MSE"
}

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

// NewPSNR creates a new PSNR metric
func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(original, processed gocv.Mat) (float64, error) {
	mse, err := meanSquaredError(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil // Perfect match
	}

	maxVal := 255.0
	return 20 * math.Log10(maxVal/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

// SSIM implements the Structural Similarity Index on luminance, using an
// 11x11 Gaussian window (sigma 1.5).
type SSIM struct{}

// NewSSIM creates a new SSIM metric
func NewSSIM() *SSIM {
	return &SSIM{}
}

func (s *SSIM) Calculate(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("%w: empty image", ErrIncomparable)
	}
	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrIncomparable,
			original.Cols(), original.Rows(), processed.Cols(), processed.Rows())
	}

	f1, err := luminance32(original)
	if err != nil {
		return 0, err
	}
	defer f1.Close()

	f2, err := luminance32(processed)
	if err != nil {
		return 0, err
	}
	defer f2.Close()

	return structuralSimilarity(f1, f2), nil
}

func (s *SSIM) GetName() string {
	return "SSIM"
}

// luminance32 returns a single-channel float32 copy of m.
func luminance32(m gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	defer gray.Close()

	var err error
	switch m.Channels() {
	case 1:
		m.CopyTo(&gray)
	case 3:
		err = gocv.CvtColor(m, &gray, gocv.ColorBGRToGray)
	case 4:
		err = gocv.CvtColor(m, &gray, gocv.ColorBGRAToGray)
	default:
		return gocv.NewMat(), fmt.Errorf("%w: %d channels", ErrIncomparable, m.Channels())
	}
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("luminance conversion failed: %w", err)
	}

	out := gocv.NewMat()
	if err := gray.ConvertTo(&out, gocv.MatTypeCV32F); err != nil {
		out.Close()
		return gocv.NewMat(), fmt.Errorf("float conversion failed: %w", err)
	}
	return out, nil
}

func structuralSimilarity(f1, f2 gocv.Mat) float64 {
	const (
		C1 = 6.5025  // (0.01 * 255)^2
		C2 = 58.5225 // (0.03 * 255)^2
	)

	window := image.Pt(11, 11)
	smooth := func(src gocv.Mat) gocv.Mat {
		dst := gocv.NewMat()
		gocv.GaussianBlur(src, &dst, window, 1.5, 1.5, gocv.BorderDefault)
		return dst
	}
	product := func(a, b gocv.Mat) gocv.Mat {
		dst := gocv.NewMat()
		gocv.Multiply(a, b, &dst)
		return dst
	}

	// Local means
	mu1 := smooth(f1)
	defer mu1.Close()
	mu2 := smooth(f2)
	defer mu2.Close()

	mu1Sq := product(mu1, mu1)
	defer mu1Sq.Close()
	mu2Sq := product(mu2, mu2)
	defer mu2Sq.Close()
	mu1Mu2 := product(mu1, mu2)
	defer mu1Mu2.Close()

	// Local variances and covariance
	f1Sq := product(f1, f1)
	defer f1Sq.Close()
	sigma1Sq := smooth(f1Sq)
	defer sigma1Sq.Close()
	gocv.Subtract(sigma1Sq, mu1Sq, &sigma1Sq)

	f2Sq := product(f2, f2)
	defer f2Sq.Close()
	sigma2Sq := smooth(f2Sq)
	defer sigma2Sq.Close()
	gocv.Subtract(sigma2Sq, mu2Sq, &sigma2Sq)

	f1f2 := product(f1, f2)
	defer f1f2.Close()
	sigma12 := smooth(f1f2)
	defer sigma12.Close()
	gocv.Subtract(sigma12, mu1Mu2, &sigma12)

	// (2*mu1*mu2 + C1) * (2*sigma12 + C2)
	mu1Mu2.MultiplyFloat(2)
	mu1Mu2.AddFloat(C1)
	sigma12.MultiplyFloat(2)
	sigma12.AddFloat(C2)
	numerator := product(mu1Mu2, sigma12)
	defer numerator.Close()

	// (mu1^2 + mu2^2 + C1) * (sigma1^2 + sigma2^2 + C2)
	means := gocv.NewMat()
	defer means.Close()
	gocv.Add(mu1Sq, mu2Sq, &means)
	means.AddFloat(C1)
	variances := gocv.NewMat()
	defer variances.Close()
	gocv.Add(sigma1Sq, sigma2Sq, &variances)
	variances.AddFloat(C2)
	denominator := product(means, variances)
	defer denominator.Close()

	ssimMap := gocv.NewMat()
	defer ssimMap.Close()
	gocv.Divide(numerator, denominator, &ssimMap)

	return ssimMap.Mean().Val1
}

func meanSquaredError(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("%w: empty image", ErrIncomparable)
	}
	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrIncomparable,
			original.Cols(), original.Rows(), processed.Cols(), processed.Rows())
	}
	if original.Channels() != processed.Channels() {
		return 0, fmt.Errorf("%w: %d vs %d channels", ErrIncomparable, original.Channels(), processed.Channels())
	}

	a := original.ToBytes()
	b := processed.ToBytes()
	if len(a) != len(b) || len(a) == 0 {
		return 0, fmt.Errorf("%w: unexpected buffer sizes", ErrIncomparable)
	}

	sumSquaredDiff := 0.0
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sumSquaredDiff += diff * diff
	}
	return sumSquaredDiff / float64(len(a)), nil
}
