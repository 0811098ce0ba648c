// Package grpc serves simulation runs over gRPC, encoded with msgpack.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/chrissnell/hydrosphere/internal/storage"
	"github.com/chrissnell/hydrosphere/pkg/config"
	"github.com/chrissnell/hydrosphere/pkg/hydrosphere"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"
)

const (
	defaultPort      = 50051
	defaultListLimit = 50
)

// Runner executes and stores simulation runs.
type Runner interface {
	Execute(ctx context.Context, params hydrosphere.Parameters, opts hydrosphere.Options) (*storage.RunRecord, *hydrosphere.Result, error)
	Store() storage.RunStore
}

// Controller represents the gRPC controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	GRPCConfig config.GRPCData
	Server     *grpc.Server
	runner     Runner
	logger     *zap.SugaredLogger
}

// NewController creates a new gRPC controller instance
func NewController(ctx context.Context, wg *sync.WaitGroup, gc config.GRPCData, runner Runner, logger *zap.SugaredLogger) (*Controller, error) {
	if runner == nil {
		return nil, fmt.Errorf("gRPC server requires a run manager")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if gc.MaxSteps < 0 {
		return nil, fmt.Errorf("grpc.max_steps must not be negative, got %d", gc.MaxSteps)
	}

	if gc.ListenAddr == "" {
		logger.Info("grpc.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		gc.ListenAddr = "0.0.0.0"
	}
	if gc.Port == 0 {
		logger.Infof("grpc.port not provided; defaulting to %d", defaultPort)
		gc.Port = defaultPort
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		GRPCConfig: gc,
		runner:     runner,
		logger:     logger,
	}

	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(ctrl.logRequests)}
	if gc.Cert != "" && gc.Key != "" {
		creds, err := credentials.NewServerTLSFromFile(gc.Cert, gc.Key)
		if err != nil {
			return nil, fmt.Errorf("could not create TLS server from keypair: %v", err)
		}
		opts = append(opts, grpc.Creds(creds))
	}
	ctrl.Server = grpc.NewServer(opts...)

	RegisterRunServiceServer(ctrl.Server, ctrl)

	return ctrl, nil
}

// Addr returns the configured listen address.
func (c *Controller) Addr() string {
	return net.JoinHostPort(c.GRPCConfig.ListenAddr, fmt.Sprint(c.GRPCConfig.Port))
}

// StartController starts the gRPC controller
func (c *Controller) StartController() error {
	l, err := net.Listen("tcp", c.Addr())
	if err != nil {
		return fmt.Errorf("gRPC controller could not create listener: %v", err)
	}
	return c.Serve(l)
}

// Serve serves on l until the controller's context is done.
func (c *Controller) Serve(l net.Listener) error {
	c.logger.Infof("Starting gRPC server on %s...", l.Addr())
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()
		if err := c.Server.Serve(l); err != nil {
			c.logger.Errorf("gRPC controller serve error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("Shutting down the gRPC server...")
		c.Server.GracefulStop()
	}()

	return nil
}

// CreateRun runs a simulation synchronously and returns the stored record.
func (c *Controller) CreateRun(ctx context.Context, req *CreateRunRequest) (*RunReply, error) {
	if req.StepLimit < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "step_limit must not be negative, got %d", req.StepLimit)
	}

	sim := config.DefaultSimulationData()
	if req.Simulation != nil {
		sim = *req.Simulation
	}
	opts := hydrosphere.Options{StepLimit: c.capSteps(req.StepLimit)}

	rec, res, err := c.runner.Execute(ctx, sim.Parameters(), opts)
	switch {
	case errors.Is(err, hydrosphere.ErrInvalidConfiguration):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case res != nil && res.Status == hydrosphere.StatusStopped:
		return nil, status.Error(codes.Unavailable, err.Error())
	case err != nil:
		c.logger.Errorf("run failed: %v", err)
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &RunReply{Run: rec}, nil
}

// GetRun returns one stored run with its profile.
func (c *Controller) GetRun(ctx context.Context, req *GetRunRequest) (*RunReply, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid run id: %v", err)
	}

	rec, err := c.runner.Store().GetRun(ctx, id)
	if errors.Is(err, storage.ErrRunNotFound) {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if err != nil {
		c.logger.Errorf("could not load run %s: %v", id, err)
		return nil, status.Error(codes.Internal, err.Error())
	}

	return &RunReply{Run: rec}, nil
}

// ListRuns returns the most recent runs without their profiles.
func (c *Controller) ListRuns(ctx context.Context, req *ListRunsRequest) (*ListRunsReply, error) {
	if req.Limit < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "invalid limit %d", req.Limit)
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	runs, err := c.runner.Store().ListRuns(ctx, limit)
	if err != nil {
		c.logger.Errorf("could not list runs: %v", err)
		return nil, status.Error(codes.Internal, err.Error())
	}

	briefs := make([]storage.RunRecord, len(runs))
	for i, r := range runs {
		briefs[i] = r.Brief()
	}
	return &ListRunsReply{Runs: briefs}, nil
}

// capSteps applies the configured step cap to a requested limit.
func (c *Controller) capSteps(limit int) int {
	maxSteps := c.GRPCConfig.MaxSteps
	if maxSteps > 0 && (limit == 0 || limit > maxSteps) {
		return maxSteps
	}
	return limit
}

func (c *Controller) logRequests(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	code := status.Code(err)

	fields := []interface{}{
		"method", info.FullMethod,
		"code", code.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	}
	switch code {
	case codes.OK, codes.InvalidArgument, codes.NotFound:
		c.logger.Infow("grpc request", fields...)
	default:
		c.logger.Errorw("grpc request", fields...)
	}
	return resp, err
}
