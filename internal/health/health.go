// Package health reports whether the service's dependencies are reachable,
// over HTTP and through the standard gRPC health service.
package health

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"

	"resto-system/internal/database"
)

// ServiceName is the gRPC health service name reported for the POS engine.
const ServiceName = "resto.pos"

const checkTimeout = 3 * time.Second

type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type Checker struct {
	db    *gorm.DB
	redis *redis.Client
	log   *zap.Logger
	grpc  *health.Server
}

// NewChecker builds a checker. rdb may be nil when events are not published
// to redis.
func NewChecker(db *gorm.DB, rdb *redis.Client, log *zap.Logger) *Checker {
	return &Checker{
		db:    db,
		redis: rdb,
		log:   log.Named("health"),
		grpc:  health.NewServer(),
	}
}

// GRPCServer is registered on the gRPC server as grpc.health.v1.Health.
func (c *Checker) GRPCServer() *health.Server {
	return c.grpc
}

// Check probes every dependency. The database is required; redis only
// degrades event delivery.
func (c *Checker) Check(ctx context.Context) (healthy bool, components map[string]ComponentStatus) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	components = map[string]ComponentStatus{}
	healthy = true

	if err := database.Ping(ctx, c.db); err != nil {
		healthy = false
		components["database"] = ComponentStatus{Status: "unavailable", Message: err.Error()}
	} else {
		components["database"] = ComponentStatus{Status: "healthy", Message: "Database is responding"}
	}

	switch {
	case c.redis == nil:
		components["redis"] = ComponentStatus{Status: "disabled", Message: "Events are not published"}
	default:
		if err := c.redis.Ping(ctx).Err(); err != nil {
			components["redis"] = ComponentStatus{Status: "unavailable", Message: err.Error()}
		} else {
			components["redis"] = ComponentStatus{Status: "healthy", Message: "Redis is responding"}
		}
	}

	return healthy, components
}

// Watch refreshes the gRPC serving status every interval until ctx ends.
func (c *Checker) Watch(ctx context.Context, interval time.Duration) {
	c.refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.grpc.Shutdown()
			return
		case <-ticker.C:
			c.refresh(ctx)
		}
	}
}

func (c *Checker) refresh(ctx context.Context) {
	healthy, components := c.Check(ctx)
	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		c.log.Warn("dependency check failed", zap.Any("components", components))
	}
	c.grpc.SetServingStatus("", status)
	c.grpc.SetServingStatus(ServiceName, status)
}
