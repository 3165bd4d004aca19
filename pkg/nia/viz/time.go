package viz

import (
	"bytes"
	"image/color"
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const amplitudeLimit = 1.5

type PlotOptions func(p *plot.Plot)

// TimeDomainPlotter keeps a sliding window of the most recent samples and
// renders it as a PNG line plot.
type TimeDomainPlotter struct {
	mu          sync.Mutex
	buf         []float64
	size        int
	name        string
	plotOptions []PlotOptions
}

func NewTimeDomainPlotter(name string, size int) *TimeDomainPlotter {
	return &TimeDomainPlotter{
		buf:  make([]float64, 0, size),
		size: size,
		name: name,
	}
}

func (tp *TimeDomainPlotter) Name() string {
	return tp.name
}

func (tp *TimeDomainPlotter) AddPlotOption(opt PlotOptions) {
	tp.mu.Lock()
	tp.plotOptions = append(tp.plotOptions, opt)
	tp.mu.Unlock()
}

func (tp *TimeDomainPlotter) Append(samples []float64) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	tp.buf = append(tp.buf, samples...)
	if len(tp.buf) > tp.size {
		tp.buf = append(tp.buf[:0], tp.buf[len(tp.buf)-tp.size:]...)
	}
}

// Window returns a copy of the samples currently held.
func (tp *TimeDomainPlotter) Window() []float64 {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return append([]float64(nil), tp.buf...)
}

// PNG renders the window. It returns nil until the window is full.
func (tp *TimeDomainPlotter) PNG() ([]byte, error) {
	tp.mu.Lock()
	if tp.size == 0 || len(tp.buf) < tp.size {
		tp.mu.Unlock()
		return nil, nil
	}
	pts := make(plotter.XYs, tp.size)
	for i, v := range tp.buf {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}
	opts := append([]PlotOptions(nil), tp.plotOptions...)
	tp.mu.Unlock()

	p := darkPlot()
	p.Title.Text = tp.name
	p.Y.Label.Text = "Amplitude"
	p.Y.Min = -amplitudeLimit
	p.Y.Max = amplitudeLimit
	p.X.Label.Text = "sample"
	for _, opt := range opts {
		opt(p)
	}

	grid := plotter.NewGrid()
	grid.Vertical.Color = color.Gray{Y: 64}
	grid.Horizontal.Color = color.Gray{Y: 64}
	p.Add(grid)

	if err := plotutil.AddLines(p, "signal", pts); err != nil {
		return nil, errors.Wrap(err, "adding signal line")
	}

	w, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, errors.Wrap(err, "rendering plot")
	}
	var imageData bytes.Buffer
	if _, err := w.WriteTo(&imageData); err != nil {
		return nil, errors.WithStack(err)
	}
	return imageData.Bytes(), nil
}

func darkPlot() *plot.Plot {
	p := plot.New()
	p.BackgroundColor = color.Black
	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Color = color.White
		axis.Label.TextStyle.Color = color.White
		axis.Tick.Color = color.White
		axis.Tick.Label.Color = color.White
	}
	p.Title.TextStyle.Color = color.White
	p.Legend.TextStyle.Color = color.White
	return p
}
