package policy

import (
	"time"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/gate"
	"github.com/diewo77/agence/internal/handlers"
	"github.com/diewo77/agence/internal/mail"
	"github.com/diewo77/agence/internal/services"
	"github.com/diewo77/agence/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the infrastructure pieces the router is built from.
type Deps struct {
	DB       *gorm.DB
	Store    storage.ObjectStore
	Mailer   mail.Sender
	Sessions *auth.Manager
	SiteURL  string
	URLTTL   time.Duration
	Log      *zap.Logger
}

// RouterConfig holds the configured gates, services and handlers.
type RouterConfig struct {
	// AdminGate checks back-office permissions from the admin role.
	AdminGate *AdminGate
	// ClientGate checks that an espace-client user owns a resource.
	ClientGate *gate.Gate[uint]

	Auth          *services.AuthService
	Clients       *services.ClientService
	Documents     *services.DocumentService
	Shares        *services.ShareService
	Notifications *services.NotificationService
	Collaborators *services.CollaboratorService
	Projects      *services.ProjectService
	Quotes        *services.QuoteService
	Contact       *services.ContactService
	Blog          *services.BlogService
	Stats         *services.StatsService

	AuthHandler   *handlers.AuthHandler
	PublicHandler *handlers.PublicHandler
	FormsHandler  *handlers.FormsHandler
	AdminHandler  *handlers.AdminHandler
	EspaceHandler *handlers.EspaceHandler
	ShareHandler  *handlers.ShareHandler
}

// NewRouterConfig wires the gates, services and handlers together.
func NewRouterConfig(d Deps) *RouterConfig {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	authSvc := services.NewAuthService(d.DB, log)
	// Role changes are rare and made from the CLI; five minutes of staleness is fine.
	adminGate := NewAdminGate(authSvc, 5*time.Minute)
	clientGate := NewClientGate()

	docs := services.NewDocumentService(d.DB, d.Store, clientGate, log).WithURLTTL(d.URLTTL)
	cfg := &RouterConfig{
		AdminGate:     adminGate,
		ClientGate:    clientGate,
		Auth:          authSvc,
		Clients:       services.NewClientService(d.DB, d.Store, log),
		Documents:     docs,
		Shares:        services.NewShareService(d.DB, docs, d.SiteURL, log),
		Notifications: services.NewNotificationService(d.DB, clientGate, log),
		Collaborators: services.NewCollaboratorService(d.DB, clientGate, d.Mailer, d.SiteURL, log),
		Projects:      services.NewProjectService(d.DB, log),
		Quotes:        services.NewQuoteService(d.DB, log),
		Contact:       services.NewContactService(d.DB, log),
		Blog:          services.NewBlogService(d.DB, log),
		Stats:         services.NewStatsService(d.DB, log),
	}

	cfg.AuthHandler = handlers.NewAuthHandler(authSvc, cfg.Clients, d.Sessions, log)
	cfg.PublicHandler = handlers.NewPublicHandler(cfg.Blog, log)
	cfg.FormsHandler = handlers.NewFormsHandler(cfg.Quotes, cfg.Contact, log)
	cfg.AdminHandler = handlers.NewAdminHandler(handlers.AdminServices{
		Stats:    cfg.Stats,
		Quotes:   cfg.Quotes,
		Clients:  cfg.Clients,
		Docs:     cfg.Documents,
		Projects: cfg.Projects,
		Contact:  cfg.Contact,
	}, log)
	cfg.EspaceHandler = handlers.NewEspaceHandler(handlers.EspaceServices{
		Stats:         cfg.Stats,
		Clients:       cfg.Clients,
		Docs:          cfg.Documents,
		Shares:        cfg.Shares,
		Notifications: cfg.Notifications,
		Projects:      cfg.Projects,
		Collaborators: cfg.Collaborators,
	}, log)
	cfg.ShareHandler = handlers.NewShareHandler(cfg.Shares, log)
	return cfg
}
