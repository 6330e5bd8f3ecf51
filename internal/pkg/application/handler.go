package application

import (
	"compress/flate"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	ngsi "github.com/iot-for-tillgenglighet/ngsi-ld-golang/pkg/ngsi-ld"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/domain/correlation"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/dojot"
	"github.com/iot-for-tillgenglighet/iot-agent-sigfox/internal/pkg/infrastructure/logging"
)

//CredentialUpserter stores the Sigfox API password of a tenant user
type CredentialUpserter interface {
	Upsert(ctx context.Context, tenant, username, password string) error
}

//CallbackSubmitter accepts Sigfox data callbacks for background processing
type CallbackSubmitter interface {
	SubmitNetworkCallback(payload map[string]interface{})
}

type sigfoxUserRequest struct {
	Username string `json:"username"`
	Password string `json:"passwd"`
}

type RequestRouter struct {
	impl *chi.Mux
}

func (router *RequestRouter) addSigfoxHandlers(log logging.Logger, callbacks CallbackSubmitter, credentials CredentialUpserter) {
	router.Post("/sigfox", NewSigfoxCallbackHandler(log, callbacks))
	router.Post("/sigfox_user", NewSigfoxUserHandler(log, credentials))
}

func (router *RequestRouter) addNGSIHandlers(contextRegistry ngsi.ContextRegistry) {
	router.Get("/ngsi-ld/v1/entities", ngsi.NewQueryEntitiesHandler(contextRegistry))
	router.Get("/ngsi-ld/v1/entities/{entity}", ngsi.NewRetrieveEntityHandler(contextRegistry))
}

func (router *RequestRouter) addMetricsHandler() {
	router.impl.Handle("/metrics", promhttp.Handler())
}

//Get accepts a pattern that should be routed to the handlerFn on a GET request
func (router *RequestRouter) Get(pattern string, handlerFn http.HandlerFunc) {
	router.impl.Get(pattern, handlerFn)
}

//Post accepts a pattern that should be routed to the handlerFn on a POST request
func (router *RequestRouter) Post(pattern string, handlerFn http.HandlerFunc) {
	router.impl.Post(pattern, handlerFn)
}

func newRequestRouter() *RequestRouter {
	router := &RequestRouter{impl: chi.NewRouter()}

	router.impl.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		Debug:            false,
	}).Handler)

	// Enable gzip compression for ngsi-ld responses
	compressor := middleware.NewCompressor(flate.DefaultCompression, "application/json", "application/ld+json")
	router.impl.Use(compressor.Handler)
	router.impl.Use(middleware.Logger)

	return router
}

func createRequestRouter(log logging.Logger, store *correlation.Store, callbacks CallbackSubmitter, credentials CredentialUpserter) *RequestRouter {
	router := newRequestRouter()

	router.addSigfoxHandlers(log, callbacks, credentials)
	router.addNGSIHandlers(createContextRegistry(log, store))
	router.addMetricsHandler()

	return router
}

//NewSigfoxCallbackHandler accepts Sigfox data callbacks. Processing happens in the background
//and its outcome is never reported back to Sigfox.
func NewSigfoxCallbackHandler(log logging.Logger, callbacks CallbackSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]interface{}{}

		decoder := json.NewDecoder(r.Body)
		decoder.UseNumber()

		err := decoder.Decode(&payload)
		if err != nil {
			log.Errorf("unable to decode sigfox callback: %s", err.Error())
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		log.Infof("will update %v", payload)
		callbacks.SubmitNetworkCallback(payload)

		w.WriteHeader(http.StatusOK)
	}
}

//NewSigfoxUserHandler registers Sigfox API credentials for the tenant of the calling user
func NewSigfoxUserHandler(log logging.Logger, credentials CredentialUpserter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, err := dojot.TenantFromAuthorization(r.Header.Get("Authorization"))
		if err != nil {
			log.Warnf("rejecting sigfox user registration: %s", err.Error())
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		user := sigfoxUserRequest{}
		err = json.NewDecoder(r.Body).Decode(&user)
		if err != nil || user.Username == "" || user.Password == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("username and passwd are required"))
			return
		}

		err = credentials.Upsert(r.Context(), tenant, user.Username, user.Password)
		if err != nil {
			log.Errorf("failed to store sigfox user %s of tenant %s: %s", user.Username, tenant, err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		log.Infof("registered sigfox user %s for tenant %s", user.Username, tenant)
		w.WriteHeader(http.StatusOK)
	}
}

//CreateRouterAndStartServing sets up the router and serves incoming requests until ctx is done
func CreateRouterAndStartServing(ctx context.Context, log logging.Logger, port string, store *correlation.Store, callbacks CallbackSubmitter, credentials CredentialUpserter) error {
	router := createRequestRouter(log, store, callbacks, credentials)

	server := &http.Server{Addr: ":" + port, Handler: router.impl}
	failed := make(chan error, 1)

	go func() {
		log.Infof("Starting iot-agent-sigfox on port %s.", port)
		failed <- server.ListenAndServe()
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
