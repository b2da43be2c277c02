// tasks/image_processor.go
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
)

// JobState is the lifecycle of one image-processing job.
type JobState string

const (
	StatePending   JobState = "pending"
	StateRunning   JobState = "running"
	StateRetrying  JobState = "retrying"
	StateSucceeded JobState = "succeeded"
	StateFailed    JobState = "failed"
)

const (
	resizeWidth  = 800
	resizeHeight = 600
)

type imageJob struct {
	imageID string
	path    string
}

// Result is the terminal outcome of one job.
type Result struct {
	ImageID string
	State   JobState
	Retries int
	Delays  []time.Duration
}

// ImageProcessor resizes uploaded recipe images off the request path. A
// transient failure is retried up to maxRetries times with a growing delay;
// a missing source file fails the job immediately. Exhausted jobs are logged
// with the image ID for manual follow-up.
type ImageProcessor struct {
	queue      chan imageJob
	workers    int
	maxRetries int

	// Injection points for tests.
	resize  func(path string) error
	backoff func(retry int) time.Duration
	sleep   func(time.Duration)

	wg sync.WaitGroup
}

func NewImageProcessor(queueSize, workers, maxRetries int) *ImageProcessor {
	return &ImageProcessor{
		queue:      make(chan imageJob, queueSize),
		workers:    workers,
		maxRetries: maxRetries,
		resize:     resizeImage,
		backoff: func(retry int) time.Duration {
			return time.Duration(retry) * 60 * time.Second
		},
		sleep: time.Sleep,
	}
}

// Enqueue hands a stored image to the queue. Fire-and-forget from the upload
// path: a full queue is an error for the caller to log, never a block.
func (p *ImageProcessor) Enqueue(imageID, path string) error {
	select {
	case p.queue <- imageJob{imageID: imageID, path: path}:
		return nil
	default:
		return fmt.Errorf("image queue full, dropping job for image %s", imageID)
	}
}

// Start launches the worker pool. Workers drain until Stop closes the queue
// or the context is cancelled.
func (p *ImageProcessor) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case job, ok := <-p.queue:
					if !ok {
						return
					}
					p.Run(job.imageID, job.path)
				case <-ctx.Done():
					return
				}
			}
		}()
	}
}

// Stop closes the queue and waits for in-flight jobs.
func (p *ImageProcessor) Stop() {
	close(p.queue)
	p.wg.Wait()
}

// Run drives one job through the state machine and returns its terminal
// result.
func (p *ImageProcessor) Run(imageID, path string) Result {
	result := Result{ImageID: imageID, State: StateRunning}

	for {
		err := p.resize(path)
		if err == nil {
			result.State = StateSucceeded
			logger.Info("Image processed",
				zap.String("imageID", imageID),
				zap.Int("retries", result.Retries))
			return result
		}

		if errors.Is(err, fs.ErrNotExist) {
			result.State = StateFailed
			logger.Error("Image file missing, job failed",
				zap.String("imageID", imageID),
				zap.String("path", path),
				zap.Error(err))
			return result
		}

		if result.Retries >= p.maxRetries {
			result.State = StateFailed
			logger.Error("Image processing retries exhausted",
				zap.String("imageID", imageID),
				zap.Int("retries", result.Retries),
				zap.Error(err))
			return result
		}

		result.Retries++
		result.State = StateRetrying
		delay := p.backoff(result.Retries)
		result.Delays = append(result.Delays, delay)
		logger.Warn("Image processing failed, retrying",
			zap.String("imageID", imageID),
			zap.Int("retry", result.Retries),
			zap.Duration("delay", delay),
			zap.Error(err))
		p.sleep(delay)
		result.State = StateRunning
	}
}

// resizeImage fits the image into 800x600 and atomically replaces the
// original through a temp file and rename.
func resizeImage(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}

	resized := imaging.Fit(img, resizeWidth, resizeHeight, imaging.Lanczos)

	ext := filepath.Ext(path)
	tmp := strings.TrimSuffix(path, ext) + ".tmp" + ext
	if err := imaging.Save(resized, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
