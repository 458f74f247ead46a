package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/proseplay/proseplay/annotation"
	"github.com/proseplay/proseplay/play"
	"github.com/proseplay/proseplay/samples"
	"github.com/proseplay/proseplay/session"
	"github.com/proseplay/proseplay/util"
)

type Service struct {
	config  util.Config
	store   session.Store
	catalog samples.Catalog
	docs    *liveDocuments
	server  *http.Server
	router  *gin.Engine

	// playOptions are applied to every document built by the service.
	playOptions []play.Option
}

// Returns new service instance with provided config, session store and sample catalog.
func NewService(
	config util.Config,
	store session.Store,
	catalog samples.Catalog,
	opts ...play.Option,
) (*Service, error) {

	if _, err := annotation.NewWarnings(config.MaxWarnings); err != nil {
		return nil, err
	}

	service := &Service{
		config:      config,
		store:       store,
		catalog:     catalog,
		docs:        newLiveDocuments(),
		playOptions: append([]play.Option{play.WithMaxWarnings(config.MaxWarnings)}, opts...),
	}

	addr, err := config.ListenAddress()
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr: addr,
	}

	// caps how long a client can take to send just the headers (blocks slowloris).
	server.ReadHeaderTimeout = 5 * time.Second
	// caps time to read the full request (incl. body).
	server.ReadTimeout = 10 * time.Second
	// caps time you’ll spend writing the response (no “forever hanging” clients)
	server.WriteTimeout = 15 * time.Second
	// how long to keep idle keep-alive connections open.
	server.IdleTimeout = 60 * time.Second

	service.setupRouter(server)

	service.server = server

	return service, nil
}

// Start runs the HTTP server
func (service *Service) Start() error {
	return service.server.ListenAndServe()
}

func (service *Service) Shutdown(ctx context.Context) error {
	return service.server.Shutdown(ctx)
}
