// Package batch fans compile requests out across a bounded pool of
// workers.
package batch

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/provebench/leanc/internal/service"
)

// DefaultMaxConcurrent bounds a batch when the caller gives no ceiling.
const DefaultMaxConcurrent = 4

// Run executes every request with at most maxConcurrent in flight and
// returns one response per request, indexed by submission position.
// Requests are isolated: a failure (including a panicking invocation)
// becomes a failed response for that slot and never aborts its
// siblings. No completion-order guarantee is made.
func Run(ctx context.Context, svc *service.Service, requests []service.Request, maxConcurrent int, logger *zap.Logger) []*service.Response {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}

	responses := make([]*service.Response, len(requests))

	var g errgroup.Group
	g.SetLimit(maxConcurrent)

	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			responses[i] = compileOne(ctx, svc, req, logger)
			return nil
		})
	}

	// Workers never return errors; failures land in their response slot
	_ = g.Wait()

	logger.Info("batch finished",
		zap.Int("requests", len(requests)),
		zap.Int("max_concurrent", maxConcurrent))

	return responses
}

func compileOne(ctx context.Context, svc *service.Service, req service.Request, logger *zap.Logger) (resp *service.Response) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("compile worker panicked", zap.Any("panic", r))
			resp = &service.Response{
				Success:    false,
				ReturnCode: -1,
				Err:        fmt.Sprintf("compilation panicked: %v", r),
			}
		}
	}()

	resp, err := svc.Compile(ctx, req)
	if err != nil {
		// Ledger append failed; the outcome itself is still valid
		logger.Warn("attempt not recorded", zap.String("file", req.FileName), zap.Error(err))
	}

	if resp == nil {
		resp = &service.Response{Success: false, ReturnCode: -1, Err: "no response"}
	}

	return resp
}
