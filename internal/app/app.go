package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/scifair/fairjudge/internal/auth"
	"github.com/scifair/fairjudge/internal/config"
	"github.com/scifair/fairjudge/internal/handlers"
	"github.com/scifair/fairjudge/internal/logger"
	"github.com/scifair/fairjudge/internal/repository"
	"github.com/scifair/fairjudge/internal/scoring"
	"github.com/scifair/fairjudge/internal/services"
	"github.com/scifair/fairjudge/internal/websocket"
	"github.com/scifair/fairjudge/pkg/ksefnet"
)

// App holds all application dependencies
type App struct {
	log           logger.Logger
	handlers      *handlers.Handlers
	repo          *repository.Repository
	cancelWatcher context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg *config.Config, portalClient ksefnet.Client, adminAuth *auth.Auth) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	scoringCfg := scoring.Config{
		VarianceThreshold: cfg.VarianceThreshold,
		PointsByRank:      cfg.PointsByRank,
	}
	if len(scoringCfg.PointsByRank) == 0 {
		scoringCfg.PointsByRank = scoring.DefaultConfig().PointsByRank
	}

	// Initialize services
	settingsService := services.NewSettingsService(log, repo)
	projectService := services.NewProjectService(log, repo, cfg.PublicURL)
	judgingService := services.NewJudgingService(log, repo, settingsService)
	resultsService := services.NewResultsService(log, repo, settingsService, scoringCfg)
	promotionService := services.NewPromotionService(log, repo, settingsService, portalClient, scoringCfg)

	// Initialize WebSocket hub with DI
	hub := websocket.New(log, settingsService)
	hub.Start()
	judgingService.SetBroadcaster(hub)
	promotionService.SetBroadcaster(hub)

	// Start deadline watcher with context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go hub.StartDeadlineWatcher(ctx)

	// A configured portal URL seeds the stored setting so pushes work
	// without passing the URL each time
	if cfg.UpstreamURL != "" {
		if existing, _ := repo.GetSetting(ctx, "upstream_url"); existing == "" {
			if err := repo.SetSetting(ctx, "upstream_url", cfg.UpstreamURL); err != nil {
				log.Warn("Failed to seed upstream URL", "error", err)
			}
		}
	}

	h := handlers.New(
		projectService,
		judgingService,
		resultsService,
		promotionService,
		settingsService,
		adminAuth,
		hub,
		log,
	)

	return &App{
		log:           log,
		handlers:      h,
		repo:          repo,
		cancelWatcher: cancel,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelWatcher != nil {
		a.cancelWatcher()
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	// Set default public URL if not configured, using detected LAN IP
	ip := getPreferredIP(realNetworkProvider{})
	baseURL := fmt.Sprintf("http://%s%s", ip, addr)
	a.setDefaultPublicURL(baseURL)

	a.log.Info("Server starting", "url", baseURL)
	a.log.Info("API base", "url", baseURL+"/api")
	return http.ListenAndServe(addr, a.Router())
}

// setDefaultPublicURL sets the public URL setting if not already configured
// or if current value uses localhost (which isn't useful for QR codes)
func (a *App) setDefaultPublicURL(baseURL string) {
	ctx := context.Background()
	existing, _ := a.repo.GetSetting(ctx, "public_url")

	needsUpdate := existing == "" || strings.Contains(existing, "localhost")
	if needsUpdate {
		if err := a.repo.SetSetting(ctx, "public_url", baseURL); err != nil {
			a.log.Warn("Failed to set default public_url", "error", err)
		} else {
			a.log.Info("Default public URL set", "url", baseURL)
		}
	}
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
