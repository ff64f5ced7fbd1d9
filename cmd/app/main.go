package main

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/sushihentaime/blogsite/internal/blogservice"
	"github.com/sushihentaime/blogsite/internal/commentservice"
	"github.com/sushihentaime/blogsite/internal/common"
	"github.com/sushihentaime/blogsite/internal/docstore"
	"github.com/sushihentaime/blogsite/internal/identity"
	"github.com/sushihentaime/blogsite/internal/mailservice"
	"github.com/sushihentaime/blogsite/internal/wishlistservice"
)

const (
	migrationsSource = "file://migrations"

	devTokenIssuer   = "blogsite-dev"
	devTokenAudience = "blogsite"
)

type application struct {
	config          *Config
	logger          *slog.Logger
	verifier        identity.Verifier
	blogService     *blogservice.BlogService
	wishlistService *wishlistservice.WishlistService
	commentService  *commentservice.CommentService
	mailService     *mailservice.MailService
	broker          *common.MessageBroker
}

// stores holds one collection per resource.
type stores struct {
	blogs    docstore.Store
	wishlist docstore.Store
	comments docstore.Store
}

func main() {
	// Initialize the logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load the configuration
	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	st, closeStores, err := openStores(cfg, logger)
	if err != nil {
		logger.Error("failed to open the document store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStores()

	verifier, err := newVerifier(cfg)
	if err != nil {
		logger.Error("failed to create the identity verifier", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := &application{
		config:          cfg,
		logger:          logger,
		verifier:        verifier,
		blogService:     blogservice.NewBlogService(st.blogs),
		wishlistService: wishlistservice.NewWishlistService(st.wishlist),
	}

	var producer common.MessageProducer = common.NoopProducer{}

	if cfg.notificationsEnabled() {
		// Create the URI and connect to the message broker
		broker, err := common.NewMessageBroker(common.BrokerURI(cfg.MQUser, cfg.MQPassword, cfg.MQHost, cfg.MQPort))
		if err != nil {
			logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer broker.Close()

		// Setup the exchange, queue, and binding key
		err = common.SetupBlogExchange(broker)
		if err != nil {
			logger.Error("failed to setup the blog exchange", slog.String("error", err.Error()))
			os.Exit(1)
		}

		app.broker = broker
		app.mailService, err = mailservice.NewMailService(broker, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, logger)
		if err != nil {
			logger.Error("failed to create the mail service", slog.String("error", err.Error()))
			os.Exit(1)
		}
		producer = broker

		// Initialize the consumer
		app.mailService.SendCommentNotifications()
	} else {
		logger.Info("comment notifications disabled, RABBITMQ_HOST is empty")
	}

	app.commentService = commentservice.NewCommentService(st.comments, st.blogs, producer, logger)

	// Start the HTTP server
	err = app.serve()
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openStores connects the configured storage driver. The returned func
// releases its resources.
func openStores(cfg *Config, logger *slog.Logger) (*stores, func(), error) {
	if cfg.StorageDriver == storageDriverMemory {
		logger.Info("using in-memory document store, data is lost on restart")

		return &stores{
			blogs:    docstore.NewMemoryStore(),
			wishlist: docstore.NewMemoryStore(),
			comments: docstore.NewMemoryStore(),
		}, func() {}, nil
	}

	// Initialize the database
	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, 10, 5, 15*time.Minute)
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() {
		if err := common.CloseDB(db); err != nil {
			logger.Error("failed to close the database", slog.String("error", err.Error()))
		}
	}

	if cfg.DBAutoMigrate {
		m, err := common.MigrateDB(migrationsSource, common.PostgresURI(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName))
		if err != nil {
			closeDB()
			return nil, nil, err
		}
		m.Close()

		logger.Info("database migrations applied")
	}

	st, err := postgresStores(db)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	return st, closeDB, nil
}

func postgresStores(db *sql.DB) (*stores, error) {
	blogs, err := docstore.NewPostgresStore(db, docstore.CollectionBlogs)
	if err != nil {
		return nil, err
	}

	wishlist, err := docstore.NewPostgresStore(db, docstore.CollectionWishList)
	if err != nil {
		return nil, err
	}

	comments, err := docstore.NewPostgresStore(db, docstore.CollectionComments)
	if err != nil {
		return nil, err
	}

	return &stores{blogs: blogs, wishlist: wishlist, comments: comments}, nil
}

// newVerifier prefers Firebase. The shared secret verifier is only reachable
// outside production, which loadConfig enforces.
func newVerifier(cfg *Config) (identity.Verifier, error) {
	if cfg.FirebaseProjectID != "" {
		client := &http.Client{Timeout: 10 * time.Second}
		cache := common.NewCache(time.Hour, 10*time.Minute)

		return identity.NewFirebaseVerifier(cfg.FirebaseProjectID, cfg.FirebaseCertsURL, client, cache), nil
	}

	if cfg.AuthDevSecret != "" {
		v, err := identity.NewHMACVerifier(cfg.AuthDevSecret, devTokenIssuer, devTokenAudience)
		if err != nil {
			return nil, err
		}
		return v, nil
	}

	return nil, errors.New("no identity provider configured")
}
