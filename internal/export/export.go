// Package export writes prediction reports to Cloud Storage or a stream.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	gcsstorage "cloud.google.com/go/storage"

	"github.com/castlemilk/savetrack/internal/forecast"
)

// Report is a snapshot of predictions for every goal.
type Report struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	AsOf        string           `json:"asOf"`
	Goals       []GoalPrediction `json:"goals"`
}

// GoalPrediction pairs a goal's identity with its prediction.
type GoalPrediction struct {
	GoalID     string          `json:"goalId"`
	Name       string          `json:"name"`
	Deadline   string          `json:"deadline"`
	Prediction forecast.Result `json:"prediction"`
}

// ObjectName is the report file name for a report generated at t.
func ObjectName(t time.Time) string {
	return "predictions-" + t.UTC().Format("20060102T150405Z") + ".json"
}

// Encode renders the report as indented JSON.
func (r *Report) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return append(data, '\n'), nil
}

// Sink stores an encoded report and returns where it went.
type Sink interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// GCSSink uploads reports as objects under a bucket prefix.
type GCSSink struct {
	bucket     *gcsstorage.BucketHandle
	bucketName string
	prefix     string
}

// NewGCSSink returns a sink writing to gs://bucketName/prefix/.
func NewGCSSink(client *gcsstorage.Client, bucketName, prefix string) *GCSSink {
	return &GCSSink{
		bucket:     client.Bucket(bucketName),
		bucketName: bucketName,
		prefix:     prefix,
	}
}

func (s *GCSSink) Write(ctx context.Context, name string, data []byte) (string, error) {
	objectPath := path.Join(s.prefix, name)
	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "no-cache"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write gs://%s/%s: %w", s.bucketName, objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload gs://%s/%s: %w", s.bucketName, objectPath, err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucketName, objectPath), nil
}

// StreamSink writes reports to an io.Writer such as stdout.
type StreamSink struct {
	mu    sync.Mutex
	w     io.Writer
	label string
}

// NewStreamSink returns a sink that reports its location as label.
func NewStreamSink(w io.Writer, label string) *StreamSink {
	return &StreamSink{w: w, label: label}
}

func (s *StreamSink) Write(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return s.label, nil
}
