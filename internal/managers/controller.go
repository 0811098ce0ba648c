package managers

import (
	"context"
	"fmt"
	"sync"

	"github.com/chrissnell/hydrosphere/internal/controllers/grpc"
	"github.com/chrissnell/hydrosphere/internal/controllers/restserver"
	"github.com/chrissnell/hydrosphere/pkg/config"
	"go.uber.org/zap"
)

// ControllerManager interface for the controller manager
type ControllerManager interface {
	StartControllers() error
}

// Controller is an interface that provides standard methods for various controller backends
type Controller interface {
	StartController() error
}

// NewControllerManager creates a controller for every configured controller
// section.
func NewControllerManager(ctx context.Context, wg *sync.WaitGroup, controllers []config.ControllerData, runs *RunManager, logger *zap.SugaredLogger) (ControllerManager, error) {
	cm := &controllerManager{
		ctx:         ctx,
		wg:          wg,
		runs:        runs,
		logger:      logger,
		controllers: make([]Controller, 0, len(controllers)),
	}

	for _, con := range controllers {
		controller, err := cm.createController(con)
		if err != nil {
			return nil, fmt.Errorf("error creating controller: %v", err)
		}
		cm.controllers = append(cm.controllers, controller)
	}

	return cm, nil
}

type controllerManager struct {
	ctx         context.Context
	wg          *sync.WaitGroup
	runs        *RunManager
	logger      *zap.SugaredLogger
	controllers []Controller
}

func (c *controllerManager) StartControllers() error {
	c.logger.Info("Starting controller manager...")

	for _, controller := range c.controllers {
		err := controller.StartController()
		if err != nil {
			return fmt.Errorf("error starting controller: %v", err)
		}
	}

	c.logger.Infof("Started %d controllers successfully", len(c.controllers))
	return nil
}

// createController creates a controller based on the controller configuration
func (cm *controllerManager) createController(cc config.ControllerData) (Controller, error) {
	switch cc.Type {
	case "rest":
		if cc.RESTServer == nil {
			return nil, fmt.Errorf("rest controller has no configuration")
		}
		return restserver.NewController(cm.ctx, cm.wg, *cc.RESTServer, cm.runs, cm.logger)
	case "grpc":
		if cc.GRPCServer == nil {
			return nil, fmt.Errorf("grpc controller has no configuration")
		}
		return grpc.NewController(cm.ctx, cm.wg, *cc.GRPCServer, cm.runs, cm.logger)
	default:
		return nil, fmt.Errorf("unknown controller type: %s", cc.Type)
	}
}
