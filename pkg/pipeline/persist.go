package pipeline

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ishuide/Car-price-prediction/pkg/dataprep"
	"github.com/ishuide/Car-price-prediction/pkg/model"
	"github.com/ishuide/Car-price-prediction/pkg/stats"
)

// ErrModelNotFound matches every *ModelNotFoundError.
var ErrModelNotFound = errors.New("model artifact not found")

// ModelNotFoundError is returned by Load when no usable artifact exists at Path.
type ModelNotFoundError struct {
	Path string
	Err  error
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("no trained model at %s (run train first): %v", e.Path, e.Err)
}

func (e *ModelNotFoundError) Unwrap() error { return e.Err }

func (e *ModelNotFoundError) Is(target error) bool { return target == ErrModelNotFound }

// artifactVersion is bumped whenever the encoded layout changes.
const artifactVersion = 1

type artifact struct {
	Version    int
	RunID      string
	TrainedAt  time.Time
	Column     string
	Categories []string
	Mean       []float64
	Std        []float64
	Weights    []float64
	Bias       float64
}

// MarshalBinary encodes the fitted pipeline with gob.
func (f *Fitted) MarshalBinary() ([]byte, error) {
	a := artifact{
		Version:    artifactVersion,
		RunID:      f.runID,
		TrainedAt:  f.trainedAt,
		Column:     f.pre.encoder.Column,
		Categories: f.pre.encoder.Categories,
		Mean:       f.pre.scaler.Mean,
		Std:        f.pre.scaler.Std,
		Weights:    f.reg.W,
		Bias:       f.reg.B,
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(a); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary restores a pipeline produced by MarshalBinary.
func (f *Fitted) UnmarshalBinary(b []byte) error {
	var a artifact
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&a); err != nil {
		return err
	}
	if a.Version != artifactVersion {
		return fmt.Errorf("unsupported artifact version %d", a.Version)
	}
	width := len(a.Categories) + len(NumericFeatures)
	if len(a.Mean) != len(NumericFeatures) || len(a.Std) != len(NumericFeatures) || len(a.Weights) != width {
		return errors.New("artifact shape does not match the feature schema")
	}
	f.pre = &ColumnTransformer{
		encoder: &dataprep.OneHotEncoder{Column: a.Column, Categories: a.Categories},
		scaler:  &stats.StandardScaler{Mean: a.Mean, Std: a.Std},
	}
	f.reg = &model.LinearRegression{W: a.Weights, B: a.Bias}
	f.runID = a.RunID
	f.trainedAt = a.TrainedAt
	return nil
}

// Save writes f to path atomically: the bytes go to a temporary file in the
// same directory which is then renamed over path. A reader never sees a
// partially written artifact.
func Save(f *Fitted, path string) error {
	b, err := f.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install artifact: %w", err)
	}
	return nil
}

// Load reads an artifact written by Save. A missing or unreadable artifact is
// reported as *ModelNotFoundError; Load never creates anything at path.
func Load(path string) (*Fitted, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &ModelNotFoundError{Path: path, Err: err}
	}
	f := &Fitted{}
	if err := f.UnmarshalBinary(b); err != nil {
		return nil, &ModelNotFoundError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}
	return f, nil
}
