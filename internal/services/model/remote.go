package model

import (
	"context"
	"fmt"
	"time"

	"ChurnPull/internal/services/features"
	xhttp "ChurnPull/pkg/http"
)

// RemoteConfig points at a TF-Serving compatible :predict endpoint.
type RemoteConfig struct {
	URL      string
	Name     string
	InputDim int
	Timeout  time.Duration
	Retries  int
}

// Remote scores vectors through an HTTP model server.
type Remote struct {
	url      string
	name     string
	inputDim int
	retries  int
	client   *xhttp.Client
}

type predictRequest struct {
	Instances [][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
}

// NewRemote builds a remote model. A zero InputDim disables the width check.
func NewRemote(cfg RemoteConfig, opts ...xhttp.ClientOption) (*Remote, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote model url is required")
	}
	name := cfg.Name
	if name == "" {
		name = "remote"
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 1
	}
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(cfg.Timeout)}, opts...)
	return &Remote{
		url:      cfg.URL,
		name:     name,
		inputDim: cfg.InputDim,
		retries:  retries,
		client:   xhttp.NewClient(opts...),
	}, nil
}

func (r *Remote) Name() string { return r.name }

func (r *Remote) InputDim() int { return r.inputDim }

func (r *Remote) PredictProba(ctx context.Context, x []float64) (float64, error) {
	if r.inputDim > 0 && len(x) != r.inputDim {
		return 0, &features.ShapeMismatchError{Stage: "model", Expected: r.inputDim, Got: len(x)}
	}

	var resp predictResponse
	req := predictRequest{Instances: [][]float64{x}}
	if err := r.client.PostJSONWithRetry(ctx, r.url, req, &resp, r.retries); err != nil {
		return 0, fmt.Errorf("remote model %s: %w", r.name, err)
	}
	if len(resp.Predictions) == 0 || len(resp.Predictions[0]) == 0 {
		return 0, fmt.Errorf("remote model %s: empty predictions", r.name)
	}

	p := resp.Predictions[0][0]
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("remote model %s: probability %v outside [0, 1]", r.name, p)
	}
	return p, nil
}
