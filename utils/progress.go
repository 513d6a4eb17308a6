package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
)

const (
	knownSizeTemplate   = `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }} {{speed . }} {{rtime . "ETA %s"}}`
	unknownSizeTemplate = `{{string . "prefix"}}{{counters . }} {{cycle . "↖" "↗" "↘" "↙" }} {{speed . }}`
)

// ProgressTracker displays transfer progress and collects speed statistics
type ProgressTracker struct {
	bar       *pb.ProgressBar
	quiet     bool
	out       io.Writer
	startTime time.Time
	total     int64
	current   int64
	filename  string
	action    string
	mutex     sync.RWMutex

	lastUpdate   time.Time
	lastBytes    int64
	speedSamples []float64
	maxSamples   int
}

// TransferSummary contains final transfer statistics
type TransferSummary struct {
	TotalBytes   int64
	TotalTime    time.Duration
	AverageSpeed float64 // bytes per second
	PeakSpeed    float64 // bytes per second
	Filename     string
}

// NewProgressTracker creates a tracker. total is -1 when the size is unknown;
// action labels the bar ("Downloading", "Uploading").
func NewProgressTracker(total int64, action string, quiet bool) *ProgressTracker {
	tracker := &ProgressTracker{
		quiet:        quiet,
		out:          os.Stderr,
		startTime:    time.Now(),
		total:        total,
		action:       action,
		lastUpdate:   time.Now(),
		speedSamples: make([]float64, 0, 10),
		maxSamples:   10,
	}

	if !quiet {
		template := knownSizeTemplate
		if total < 0 {
			template = unknownSizeTemplate
		}
		bar := pb.ProgressBarTemplate(template).New(0)
		if total >= 0 {
			bar.SetTotal(total)
		}
		bar.Set(pb.Bytes, true)
		bar.Set(pb.SIBytesPrefix, true)
		bar.Set("prefix", action+": ")
		bar.SetWriter(tracker.out)
		tracker.bar = bar.Start()
	}

	return tracker
}

// Update sets the absolute progress and refreshes the speed statistics
func (p *ProgressTracker) Update(current int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.update(current)
}

// Add advances the progress by n bytes
func (p *ProgressTracker) Add(n int64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.update(p.current + n)
}

func (p *ProgressTracker) update(current int64) {
	now := time.Now()
	p.current = current

	if p.bar != nil {
		p.bar.SetCurrent(current)
	}

	// sample at most every 100ms
	timeDiff := now.Sub(p.lastUpdate).Seconds()
	if timeDiff > 0.1 {
		p.speedSamples = append(p.speedSamples, float64(current-p.lastBytes)/timeDiff)
		if len(p.speedSamples) > p.maxSamples {
			p.speedSamples = p.speedSamples[1:]
		}
		p.lastUpdate = now
		p.lastBytes = current
	}
}

// Wrap returns a reader that reports every byte read through it
func (p *ProgressTracker) Wrap(r io.Reader) io.Reader {
	return &progressReader{reader: r, tracker: p}
}

type progressReader struct {
	reader  io.Reader
	tracker *ProgressTracker
}

func (r *progressReader) Read(b []byte) (int, error) {
	n, err := r.reader.Read(b)
	if n > 0 {
		r.tracker.Add(int64(n))
	}
	return n, err
}

// Finish completes the progress bar and returns the transfer summary
func (p *ProgressTracker) Finish() *TransferSummary {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	totalTime := time.Since(p.startTime)

	if p.bar != nil {
		p.bar.Finish()
	}

	var averageSpeed float64
	if totalTime > 0 {
		averageSpeed = float64(p.current) / totalTime.Seconds()
	}

	var peakSpeed float64
	for _, speed := range p.speedSamples {
		if speed > peakSpeed {
			peakSpeed = speed
		}
	}

	summary := &TransferSummary{
		TotalBytes:   p.current,
		TotalTime:    totalTime,
		AverageSpeed: averageSpeed,
		PeakSpeed:    peakSpeed,
		Filename:     p.filename,
	}

	if !p.quiet {
		p.displaySummary(summary)
	}

	return summary
}

// displaySummary prints the transfer summary statistics
func (p *ProgressTracker) displaySummary(summary *TransferSummary) {
	fmt.Fprintf(p.out, "\n%s completed successfully!\n", p.action)
	fmt.Fprintf(p.out, "Total size: %s\n", FormatBytes(summary.TotalBytes))
	fmt.Fprintf(p.out, "Total time: %v\n", summary.TotalTime.Round(time.Millisecond))
	fmt.Fprintf(p.out, "Average speed: %s/s\n", FormatBytes(int64(summary.AverageSpeed)))
	if summary.PeakSpeed > 0 {
		fmt.Fprintf(p.out, "Peak speed: %s/s\n", FormatBytes(int64(summary.PeakSpeed)))
	}
	if summary.Filename != "" {
		fmt.Fprintf(p.out, "Saved to: %s\n", summary.Filename)
	}
}

// SetFilename sets the filename reported in the summary
func (p *ProgressTracker) SetFilename(filename string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.filename = filename
}

// GetCurrentStats returns current transfer statistics. percentage is 0 when
// the total is unknown.
func (p *ProgressTracker) GetCurrentStats() (speed float64, eta time.Duration, percentage float64) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	// last 3 samples
	if n := len(p.speedSamples); n > 0 {
		count := n
		if count > 3 {
			count = 3
		}
		for i := n - count; i < n; i++ {
			speed += p.speedSamples[i]
		}
		speed /= float64(count)
	}

	if speed > 0 && p.total > p.current {
		eta = time.Duration(float64(p.total-p.current)/speed) * time.Second
	}

	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100
	}

	return speed, eta, percentage
}

// IsQuiet returns whether the tracker is in quiet mode
func (p *ProgressTracker) IsQuiet() bool {
	return p.quiet
}

// FormatBytes formats byte count as human-readable string
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "unknown"
	}
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
