package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/config"
	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/graph"
	"github.com/Sean-Brix/RiderMind-sub003/lifecycle"
	"github.com/Sean-Brix/RiderMind-sub003/logger"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"
	"github.com/Sean-Brix/RiderMind-sub003/progress"
	"github.com/Sean-Brix/RiderMind-sub003/sequencer"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// backend is where maintenance operations run: the local database or a
// remote API.
type backend interface {
	Seed(ctx context.Context, req seedRequest) (*lifecycle.Result, error)
	Clear(ctx context.Context, family string) (*lifecycle.Result, error)
	Audit(ctx context.Context, repair bool) (*lifecycle.AuditReport, error)
	Runs(ctx context.Context, limit int) ([]content.MaintenanceRun, error)
	Close()
}

func openBackend(ctx context.Context, opts *rootOptions) (backend, error) {
	if opts.api != "" {
		return newRemote(opts.api), nil
	}
	return newLocal(ctx)
}

type local struct {
	ops   *lifecycle.Operator
	close func()
}

func newLocal(ctx context.Context) (*local, error) {
	config.LoadConfig()
	cfg := config.AppConfig

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	db, err := database.ConnectDb(cfg, log)
	if err != nil {
		return nil, err
	}
	locker, closeLocker, err := database.NewLocker(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := database.NewStore(db, locker, log)
	seq := sequencer.New(log)
	tracker := progress.New(store, log)
	g := graph.New(store, seq, tracker, log)

	return &local{
		ops: lifecycle.New(store, g, seq, tracker, log, cfg.BulkTimeout),
		close: func() {
			closeLocker()
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
			log.Sync()
		},
	}, nil
}

// seedRequest matches the body of the seed endpoints.
type seedRequest struct {
	Count     int    `json:"count"`
	Generator string `json:"generator,omitempty"`
	Prefix    string `json:"prefix,omitempty"`
	reseed    bool
}

func generatorFor(req seedRequest) (lifecycle.Generator, error) {
	switch req.Generator {
	case "", "template":
		return lifecycle.TemplateGenerator{Prefix: req.Prefix}, nil
	case "fixtures":
		return lifecycle.NewFixtureGenerator()
	default:
		return nil, fmt.Errorf("unknown generator %q", req.Generator)
	}
}

func (l *local) Seed(ctx context.Context, req seedRequest) (*lifecycle.Result, error) {
	gen, err := generatorFor(req)
	if err != nil {
		return nil, err
	}
	if req.reseed {
		return l.ops.ReseedModules(ctx, req.Count, gen)
	}
	return l.ops.SeedModules(ctx, req.Count, gen)
}

func (l *local) Clear(ctx context.Context, family string) (*lifecycle.Result, error) {
	switch family {
	case "modules":
		return l.ops.ClearModules(ctx)
	case "quizzes":
		return l.ops.ClearQuizzes(ctx)
	case "progress":
		return l.ops.ClearStudentProgress(ctx)
	default:
		return nil, fmt.Errorf("unknown family %q", family)
	}
}

func (l *local) Audit(ctx context.Context, repair bool) (*lifecycle.AuditReport, error) {
	return l.ops.Audit(ctx, repair)
}

func (l *local) Runs(ctx context.Context, limit int) ([]content.MaintenanceRun, error) {
	return l.ops.RecentRuns(ctx, limit)
}

func (l *local) Close() { l.close() }

type remote struct {
	client *resty.Client
}

// envelope mirrors the API response body.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
	Error   struct {
		Kind   string `json:"kind"`
		Entity string `json:"entity"`
		ID     string `json:"id"`
	} `json:"error"`
}

func newRemote(baseURL string) *remote {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Minute).
		SetHeader("Accept", "application/json")
	client.JSONMarshal = sonic.Marshal
	client.JSONUnmarshal = sonic.Unmarshal
	return &remote{client: client}
}

func call[T any](ctx context.Context, r *remote, method, path string, body interface{}, query map[string]string) (T, error) {
	var out envelope[T]
	req := r.client.R().SetContext(ctx).SetResult(&out).SetError(&out).SetQueryParams(query)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return out.Data, err
	}
	if resp.IsError() || !out.Success {
		return out.Data, fmt.Errorf("%s %s: %d %s (%s)", method, path, resp.StatusCode(), out.Message, out.Error.Kind)
	}
	return out.Data, nil
}

func (r *remote) Seed(ctx context.Context, req seedRequest) (*lifecycle.Result, error) {
	path := "/dev/seed-modules"
	if req.reseed {
		path = "/dev/reseed-modules"
	}
	return call[*lifecycle.Result](ctx, r, resty.MethodPost, path, req, nil)
}

func (r *remote) Clear(ctx context.Context, family string) (*lifecycle.Result, error) {
	paths := map[string]string{
		"modules":  "/dev/clear-modules",
		"quizzes":  "/dev/clear-quizzes",
		"progress": "/dev/clear-student-progress",
	}
	path, ok := paths[family]
	if !ok {
		return nil, fmt.Errorf("unknown family %q", family)
	}
	return call[*lifecycle.Result](ctx, r, resty.MethodDelete, path, nil, nil)
}

func (r *remote) Audit(ctx context.Context, repair bool) (*lifecycle.AuditReport, error) {
	return call[*lifecycle.AuditReport](ctx, r, resty.MethodGet, "/dev/integrity", nil, map[string]string{"repair": strconv.FormatBool(repair)})
}

func (r *remote) Runs(ctx context.Context, limit int) ([]content.MaintenanceRun, error) {
	return call[[]content.MaintenanceRun](ctx, r, resty.MethodGet, "/dev/runs", nil, map[string]string{"limit": strconv.Itoa(limit)})
}

func (r *remote) Close() {}
