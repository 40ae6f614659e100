package runner

import (
	"context"

	"github.com/auto-compose/composectl/internal/dispatch"
	"github.com/auto-compose/composectl/internal/snapshot"
)

type orchestrator interface {
	dispatch.Engine
	Ping(ctx context.Context) error
	Containers(ctx context.Context) ([]snapshot.ContainerRecord, error)
}
