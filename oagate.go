package oagate

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lborres/oagate/core"
	"github.com/lborres/oagate/pkg/cache"
	"github.com/lborres/oagate/services"
)

// interfaces
type (
	Storage              = core.Storage
	Cache                = core.Cache
	MembershipLookup     = core.MembershipLookup
	VerificationListener = core.VerificationListener
	MembershipListener   = core.MembershipListener
)

// HTTPAdapter mounts the console routes on a web framework
type HTTPAdapter interface {
	RegisterRoutes(g *Gate) error
}

// structs
type (
	CacheConfig   = core.CacheConfig
	CacheStats    = core.CacheStats
	ClientConfig  = services.ClientConfig
	ErrorResponse = core.ErrorResponse
)

type (
	Account           = core.Account
	AccountType       = core.AccountType
	Membership        = core.Membership
	Role              = core.Role
	Session           = core.Session
	Destination       = core.Destination
	Outcome           = core.Outcome
	MenuItem          = core.MenuItem
	AccountMembership = core.AccountMembership
)

const (
	defaultBasePath = "/api/console"
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache    = cache.NewInMemoryCache
	DefaultDestinations = services.DefaultDestinations
	LoadCatalog         = services.LoadCatalog
	DefaultClientConfig = services.DefaultClientConfig
)

var (
	ErrInvalidRole        = core.ErrInvalidRole
	ErrInvalidAccountType = core.ErrInvalidAccountType
)

var (
	ErrAccountNotFound      = core.ErrAccountNotFound
	ErrMembershipNotFound   = core.ErrMembershipNotFound
	ErrMembershipExists     = core.ErrMembershipExists
	ErrOwnerCannotLeave     = core.ErrOwnerCannotLeave
	ErrOwnerAlreadyAssigned = core.ErrOwnerAlreadyAssigned
	ErrForbidden            = core.ErrForbidden
	ErrInvalidTransition    = core.ErrInvalidTransition
	ErrAccountNameRequired  = core.ErrAccountNameRequired
	ErrUserRequired         = core.ErrUserRequired
)

var (
	ErrNoActiveSession   = core.ErrNoActiveSession
	ErrMalformedSession  = core.ErrMalformedSession
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidToken      = core.ErrInvalidToken
	ErrSessionExpired    = core.ErrSessionExpired
	ErrCacheNotFound     = core.ErrCacheNotFound
)

var (
	ErrDuplicateDestination = core.ErrDuplicateDestination
	ErrInvalidDestination   = core.ErrInvalidDestination

	ErrInvalidDefaultDestination = core.ErrInvalidDefaultDestination
	ErrStorageRequired      = core.ErrStorageRequired
)

type Config struct {
	Storage Storage

	// HTTP is optional; without it the Gate is used as a library
	HTTP HTTPAdapter

	// Destinations replaces the default catalog when set
	Destinations []Destination

	// DefaultDestination is where denied navigation is redirected
	// (default "dashboard"). It must be open to every session.
	DefaultDestination string

	CacheAdapter Cache
	DisableCache bool
	CacheConfig  *CacheConfig

	ClientConfig *ClientConfig

	Logger   *slog.Logger
	BasePath string
}

// Gate wires the destination registry, router, account directory and client
// sessions of one console.
type Gate struct {
	Registry  *services.Registry
	Router    *services.Router
	Directory *services.Directory
	Accounts  *services.AccountService
	Clients   *services.ClientSessions
	Endpoints *services.EndpointRegistry

	Logger   *slog.Logger
	BasePath string
}

func New(config Config) (*Gate, error) {
	if config.Storage == nil {
		return nil, ErrStorageRequired
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := services.NewDefaultRegistry()
	if len(config.Destinations) > 0 {
		var err error
		registry, err = services.NewRegistry(config.Destinations...)
		if err != nil {
			return nil, fmt.Errorf("invalid destination catalog: %w", err)
		}
	}

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheConfig := CacheConfig{
			TTL:     5 * time.Minute,
			MaxSize: 500,
		}
		if config.CacheConfig != nil {
			cacheConfig = *config.CacheConfig
		}
		cacheAdapter = NewInMemoryCache(cacheConfig)
	}

	clientConfig := DefaultClientConfig()
	if config.ClientConfig != nil {
		clientConfig = *config.ClientConfig
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	defaultDestination := config.DefaultDestination
	if defaultDestination == "" {
		defaultDestination = services.DestinationDashboard
	}

	router, err := services.NewRouterWithDefault(registry, logger, defaultDestination)
	if err != nil {
		return nil, err
	}
	directory := services.NewDirectory(config.Storage, cacheAdapter)
	clients := services.NewClientSessions(clientConfig, directory, router, logger)
	accounts := services.NewAccountService(config.Storage, directory, logger, clients)
	accounts.SubscribeMembership(clients)

	gate := &Gate{
		Registry:  registry,
		Router:    router,
		Directory: directory,
		Accounts:  accounts,
		Clients:   clients,
		Endpoints: services.NewEndpointRegistry(),
		Logger:    logger,
		BasePath:  basePath,
	}

	if config.HTTP != nil {
		if err := config.HTTP.RegisterRoutes(gate); err != nil {
			return nil, err
		}
	}

	logger.Debug("console gate ready",
		"destinations", len(registry.All()),
		"base_path", basePath,
		"cache", cacheAdapter != nil,
	)

	return gate, nil
}
