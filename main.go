package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/ParticipaSonora/PS-Backend/internal/auth"
	"github.com/ParticipaSonora/PS-Backend/internal/config"
	"github.com/ParticipaSonora/PS-Backend/internal/db"
	"github.com/ParticipaSonora/PS-Backend/internal/eventos"
	"github.com/ParticipaSonora/PS-Backend/internal/geocoding"
	"github.com/ParticipaSonora/PS-Backend/internal/informes"
	"github.com/ParticipaSonora/PS-Backend/internal/logging"
	"github.com/ParticipaSonora/PS-Backend/internal/media"
	"github.com/ParticipaSonora/PS-Backend/internal/metrics"
	"github.com/ParticipaSonora/PS-Backend/internal/middleware"
	"github.com/ParticipaSonora/PS-Backend/internal/movilizacion"
	"github.com/ParticipaSonora/PS-Backend/internal/noticias"
	"github.com/ParticipaSonora/PS-Backend/internal/padron"
	"github.com/ParticipaSonora/PS-Backend/internal/perfiles"
	"github.com/ParticipaSonora/PS-Backend/internal/personas"
	"github.com/ParticipaSonora/PS-Backend/internal/reportes"
	"github.com/ParticipaSonora/PS-Backend/internal/static"
	"github.com/ParticipaSonora/PS-Backend/internal/token"
	"github.com/ParticipaSonora/PS-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	closeLog, err := logging.Init(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer closeLog()

	db.Connect(cfg.DatabaseURL)

	if err := token.Init(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenExpiryMinutes); err != nil {
		logging.L().Fatalw("token manager", "err", err)
	}

	photos, err := media.NewStore(cfg.UploadDir)
	if err != nil {
		logging.L().Fatalw("media store", "err", err)
	}
	geocoder := geocoding.NewClient(cfg.GeocodingAPIKey)

	auth.Init()
	personas.Init(geocoder)
	eventos.Init()
	movilizacion.Init()
	padron.Init(cfg.UploadDir)
	reportes.Init(photos)
	noticias.Init()
	perfiles.Init()
	static.Init(photos)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/", RootHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/auth", auth.SetupRoutes())

	// The credential and user endpoints also resolve at the root, the paths
	// the mobile clients ship with.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rate.Limit(5), 10))
		r.Post("/login", auth.LoginHandler)
		r.Post("/token", auth.TokenHandler)
	})
	r.Mount("/users", auth.SetupUserRoutes())

	r.Mount("/personas", personas.SetupRoutes())
	r.Mount("/eventos", eventos.SetupRoutes())
	r.Mount("/vehiculos", movilizacion.SetupVehicleRoutes())
	r.Mount("/movilizaciones", movilizacion.SetupAssignmentRoutes())
	r.Mount("/asistencias", movilizacion.SetupAttendanceRoutes())
	r.Mount("/padron", padron.SetupRoutes())
	r.Mount("/reportes-ciudadanos", reportes.SetupRoutes())
	r.Mount("/admin/database", reportes.SetupHygieneRoutes())
	r.Mount("/noticias", noticias.SetupRoutes())
	r.Mount("/perfiles", perfiles.SetupRoutes())
	r.Mount("/reportes", informes.SetupRoutes())

	r.Get("/reportes-publicos", reportes.PublicListHandler)

	r.Get("/logo", static.LogoHandler)
	r.Get("/uploads/{filename}", static.UploadsHandler)
	r.Handle("/static/*", static.FilesHandler())
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth)
		r.Use(middleware.RequireRoles(utils.RoleAdmin))
		r.Post("/admin/upload-logo", static.UploadLogoHandler)
	})

	logging.L().Infow("server listening", "port", cfg.Port)
	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		logging.L().Fatalw("server stopped", "err", err)
	}
}
