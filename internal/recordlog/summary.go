package recordlog

import (
	"fmt"
	"io"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/positionimu/internal/units"
)

// Summary describes a run reconstructed from its log.
type Summary struct {
	Records      int
	Detections   int
	Orientations int
	Start, End   time.Time

	MeanX, StdX float64
	MeanY, StdY float64

	// Heading statistics use circular mean and spread in degrees.
	MeanHeading   float64
	HeadingSpread float64
	MeanRoll      float64
	MeanPitch     float64
}

// DetectionRate is the fraction of records with a position.
func (s Summary) DetectionRate() float64 {
	if s.Records == 0 {
		return 0
	}
	return float64(s.Detections) / float64(s.Records)
}

// Duration is the time between the first and last record.
func (s Summary) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// FrameRate is the mean number of records per second.
func (s Summary) FrameRate() float64 {
	d := s.Duration().Seconds()
	if s.Records < 2 || d <= 0 {
		return 0
	}
	return float64(s.Records-1) / d
}

// Summarize computes statistics over records. Missing fields are excluded
// from the corresponding statistics.
func Summarize(records []Record) Summary {
	s := Summary{Records: len(records)}
	if len(records) == 0 {
		return s
	}
	s.Start = records[0].Timestamp
	s.End = records[len(records)-1].Timestamp

	var xs, ys, sinH, cosH, rolls, pitches []float64
	for _, r := range records {
		if r.Timestamp.Before(s.Start) {
			s.Start = r.Timestamp
		}
		if r.Timestamp.After(s.End) {
			s.End = r.Timestamp
		}
		if r.Position != nil {
			xs = append(xs, float64(r.Position.X))
			ys = append(ys, float64(r.Position.Y))
		}
		if r.Orientation != nil {
			rad := units.DegToRad(r.Orientation.Heading)
			sinH = append(sinH, math.Sin(rad))
			cosH = append(cosH, math.Cos(rad))
			rolls = append(rolls, r.Orientation.Roll)
			pitches = append(pitches, r.Orientation.Pitch)
		}
	}

	s.Detections = len(xs)
	if s.Detections > 0 {
		s.MeanX, s.StdX = meanStd(xs)
		s.MeanY, s.StdY = meanStd(ys)
	}

	s.Orientations = len(sinH)
	if s.Orientations > 0 {
		ms, mc := stat.Mean(sinH, nil), stat.Mean(cosH, nil)
		s.MeanHeading = units.WrapDegrees(units.RadToDeg(math.Atan2(ms, mc)))
		// Circular standard deviation from the mean resultant length.
		rbar := math.Min(1, math.Hypot(ms, mc))
		if rbar > 0 {
			s.HeadingSpread = units.RadToDeg(math.Sqrt(-2 * math.Log(rbar)))
		}
		s.MeanRoll = stat.Mean(rolls, nil)
		s.MeanPitch = stat.Mean(pitches, nil)
	}
	return s
}

func meanStd(v []float64) (mean, std float64) {
	if len(v) < 2 {
		return stat.Mean(v, nil), 0
	}
	return stat.MeanStdDev(v, nil)
}

// summaryTimeLayout is TimestampLayout with the zone appended.
const summaryTimeLayout = TimestampLayout + " MST"

// WriteText prints a human readable summary. Times are shown in the
// location of Start and End.
func (s Summary) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"records:      %d\n"+
			"span:         %s .. %s (%s, %.2f fps)\n"+
			"detections:   %d (%.1f%%)\n"+
			"position:     x %.1f ± %.1f, y %.1f ± %.1f\n"+
			"orientation:  %d samples, heading %.2f° (spread %.2f°), roll %.2f°, pitch %.2f°\n",
		s.Records,
		s.Start.Format(summaryTimeLayout), s.End.Format(summaryTimeLayout), s.Duration(), s.FrameRate(),
		s.Detections, 100*s.DetectionRate(),
		s.MeanX, s.StdX, s.MeanY, s.StdY,
		s.Orientations, s.MeanHeading, s.HeadingSpread, s.MeanRoll, s.MeanPitch,
	)
	return err
}
