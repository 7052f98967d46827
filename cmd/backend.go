package cmd

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bedrocksmith/bsmith/internal/aws"
	"github.com/bedrocksmith/bsmith/internal/session"
	"github.com/bedrocksmith/bsmith/pkg/provider"
	"github.com/bedrocksmith/bsmith/pkg/types"
)

// services bundles the AWS-backed providers of one region
type services struct {
	Logs     provider.LogsProvider
	Objects  provider.ObjectStore
	Identity provider.IdentityProvider
}

// newServices builds the providers for a profile and region. Tests replace it
var newServices = func(ctx context.Context, profile, region string, logger *slog.Logger) (*services, error) {
	client, err := aws.NewClient(ctx,
		aws.WithProfile(profile),
		aws.WithRegion(region),
		aws.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &services{
		Logs:     aws.NewLogsProvider(client.Logs, logger),
		Objects:  aws.NewObjectStore(client.S3, logger),
		Identity: aws.NewIdentityProvider(client.STS),
	}, nil
}

// backend resolves services per region on first use. The viewer may change
// region between fetches while the profile stays fixed
type backend struct {
	profile string
	region  string // region of offloaded input lookups
	logger  *slog.Logger

	mu       sync.Mutex
	byRegion map[string]*services
}

func newBackend(s *settings, logger *slog.Logger) *backend {
	return &backend{
		profile:  s.Profile,
		region:   s.Region,
		logger:   logger,
		byRegion: make(map[string]*services),
	}
}

func (b *backend) forRegion(ctx context.Context, region string) (*services, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if svc, ok := b.byRegion[region]; ok {
		return svc, nil
	}
	svc, err := newServices(ctx, b.profile, region, b.logger)
	if err != nil {
		return nil, err
	}
	b.byRegion[region] = svc
	return svc, nil
}

// Fetch implements session.FetchFunc
func (b *backend) Fetch(ctx context.Context, q session.Query) ([]types.LogRecord, error) {
	region := q.Region
	if region == "" {
		region = b.region
	}
	svc, err := b.forRegion(ctx, region)
	if err != nil {
		return nil, err
	}
	return svc.Logs.ListRecentEvents(ctx, q.LogsQuery())
}

// GetObject implements provider.ObjectStore
func (b *backend) GetObject(ctx context.Context, uri string) ([]byte, error) {
	svc, err := b.forRegion(ctx, b.region)
	if err != nil {
		return nil, err
	}
	return svc.Objects.GetObject(ctx, uri)
}

// CallerIdentity implements provider.IdentityProvider
func (b *backend) CallerIdentity(ctx context.Context) (*types.CallerIdentity, error) {
	svc, err := b.forRegion(ctx, b.region)
	if err != nil {
		return nil, err
	}
	return svc.Identity.CallerIdentity(ctx)
}
