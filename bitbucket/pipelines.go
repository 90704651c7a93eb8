package bitbucket

import (
	"context"
	"net/http"
)

// PipelinesService covers Bitbucket Pipelines
type PipelinesService struct {
	client *Client
}

func pipelinesPath(workspace, slug string, rest ...string) string {
	path := "repositories/" + escapePath(workspace, slug) + "/pipelines/"
	if len(rest) > 0 {
		path += escapePath(rest...)
	}
	return path
}

// List enumerates pipelines, oldest first unless opts.Sort says otherwise
func (s *PipelinesService) List(workspace, slug string, opts *ListOptions, page PageOptions) *Paginator[Pipeline] {
	return paginate[Pipeline](s.client, pipelinesPath(workspace, slug), opts, page)
}

// Get returns one pipeline by UUID
func (s *PipelinesService) Get(ctx context.Context, workspace, slug, uuid string) (*Pipeline, error) {
	return call[Pipeline](ctx, s.client, V2, http.MethodGet, pipelinesPath(workspace, slug, uuid), nil, nil)
}

// Trigger starts a pipeline for target
func (s *PipelinesService) Trigger(ctx context.Context, workspace, slug string, target *PipelineTarget) (*Pipeline, error) {
	body := &Pipeline{Target: target}
	return call[Pipeline](ctx, s.client, V2, http.MethodPost, pipelinesPath(workspace, slug), nil, body)
}

// Stop halts a running pipeline
func (s *PipelinesService) Stop(ctx context.Context, workspace, slug, uuid string) error {
	return send(ctx, s.client, V2, http.MethodPost, pipelinesPath(workspace, slug, uuid, "stopPipeline"), nil)
}

// Steps enumerates the steps of a pipeline
func (s *PipelinesService) Steps(workspace, slug, uuid string, page PageOptions) *Paginator[PipelineStep] {
	return Paginate[PipelineStep](s.client, pipelinesPath(workspace, slug, uuid, "steps")+"/", nil, page)
}

// StepLog returns the raw log output of a step
func (s *PipelinesService) StepLog(ctx context.Context, workspace, slug, uuid, step string) (string, error) {
	req, err := NewRequest(V2, http.MethodGet, pipelinesPath(workspace, slug, uuid, "steps", step, "log"), nil, nil)
	if err != nil {
		return "", err
	}
	return Execute[string](ctx, s.client, req)
}
