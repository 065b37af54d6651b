package vision

import (
	"errors"

	"gocv.io/x/gocv"

	"github.com/banshee-data/positionimu/internal/config"
)

// Params configures a Pipeline.
type Params struct {
	Range            ColorRange
	ErodeIterations  int
	DilateIterations int
	ResizeWidth      int
	BlurKernel       int
}

// ParamsFromSettings extracts the vision parameters from resolved settings.
func ParamsFromSettings(s config.Settings) Params {
	return Params{
		Range:            RangeFromArrays(s.HSVLower, s.HSVUpper),
		ErodeIterations:  s.ErodeIterations,
		DilateIterations: s.DilateIterations,
		ResizeWidth:      s.ResizeWidth,
		BlurKernel:       s.BlurKernel,
	}
}

// Pipeline runs resize, blur, segmentation, cleaning and extraction on each
// frame, reusing its scratch Mats between calls. It is not safe for
// concurrent use.
type Pipeline struct {
	params Params

	kernel  gocv.Mat
	resized gocv.Mat
	blurred gocv.Mat
	hsv     gocv.Mat
	mask    gocv.Mat
	cleaned gocv.Mat
}

// NewPipeline allocates a pipeline. Call Close to release it.
func NewPipeline(p Params) *Pipeline {
	return &Pipeline{
		params:  p,
		kernel:  NewKernel(),
		resized: gocv.NewMat(),
		blurred: gocv.NewMat(),
		hsv:     gocv.NewMat(),
		mask:    gocv.NewMat(),
		cleaned: gocv.NewMat(),
	}
}

// Params returns the pipeline configuration.
func (p *Pipeline) Params() Params {
	return p.params
}

// Process returns the largest blob of the target color in frame, or nil when
// there is none. The returned coordinates are in the resized frame.
func (p *Pipeline) Process(frame gocv.Mat) (*Blob, error) {
	if frame.Empty() {
		return nil, errors.New("vision: empty frame")
	}

	Resize(frame, p.params.ResizeWidth, &p.resized)
	Blur(p.resized, p.params.BlurKernel, &p.blurred)
	segment(p.blurred, p.params.Range, &p.hsv, &p.mask)
	clean(p.mask, p.kernel, p.params.ErodeIterations, p.params.DilateIterations, &p.cleaned)
	return ExtractBlob(p.cleaned)
}

// Frame is the resized, unblurred frame from the last Process call, suitable
// for drawing overlays on. It is overwritten by the next call.
func (p *Pipeline) Frame() *gocv.Mat {
	return &p.resized
}

// Mask is the cleaned mask from the last Process call.
func (p *Pipeline) Mask() gocv.Mat {
	return p.cleaned
}

// Close releases the scratch Mats.
func (p *Pipeline) Close() error {
	for _, m := range []*gocv.Mat{&p.kernel, &p.resized, &p.blurred, &p.hsv, &p.mask, &p.cleaned} {
		if err := m.Close(); err != nil {
			return err
		}
	}
	return nil
}
