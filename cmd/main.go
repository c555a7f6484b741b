package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/studyhub/studyhub-gobackend/internal/config"
	"github.com/studyhub/studyhub-gobackend/internal/db"
	"github.com/studyhub/studyhub-gobackend/internal/handlers"
	"github.com/studyhub/studyhub-gobackend/internal/logger"
	"github.com/studyhub/studyhub-gobackend/internal/mailer"
	"github.com/studyhub/studyhub-gobackend/internal/razorpay"
	"github.com/studyhub/studyhub-gobackend/internal/repository"
	"github.com/studyhub/studyhub-gobackend/internal/services"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env: %s", err)
	}

	cfg := config.Load()

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		zlog.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			zlog.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	zlog.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	store := repository.NewMongoStore(client.Database(cfg.MongoDatabase))
	if err := store.EnsureIndexes(ctx); err != nil {
		zlog.Fatal("Failed to create indexes", zap.Error(err))
	}

	tokens, err := services.NewTokenManager(cfg.JWTSecret, cfg.AccessTTL)
	if err != nil {
		zlog.Fatal("Failed to initialize token manager", zap.Error(err))
	}

	var mail mailer.Mailer
	mail, err = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	if err != nil {
		if cfg.Env == "production" {
			zlog.Fatal("Failed to initialize mailer", zap.Error(err))
		}
		zlog.Warn("Email disabled", zap.Error(err))
		mail = mailer.Discard{}
	}
	notifier := mailer.NewNotifier(mail, zlog)

	gateway := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL, zlog)

	// Initialize services and handlers
	authService := services.NewAuthService(store, tokens, zlog)
	authHandler := handlers.NewAuthHandler(authService)

	courseService := services.NewCourseService(store, zlog)
	courseHandler := handlers.NewCourseHandler(courseService)

	paymentService := services.NewPaymentService(store, gateway, notifier, zlog)
	paymentHandler := handlers.NewPaymentHandler(paymentService, cfg.RazorpayWebhookSecret, zlog)

	authMW := handlers.NewAuthMiddleware(tokens)

	// Set up router
	router := mux.NewRouter()
	router.Use(logger.RequestLogger(zlog))
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	router.Handle("/api/auth/me", authMW.Authenticate(http.HandlerFunc(authHandler.Me))).Methods("GET")

	router.Handle("/api/course",
		authMW.Authenticate(authMW.RequireRole("instructor")(http.HandlerFunc(courseHandler.CreateCourse)))).Methods("POST")
	router.HandleFunc("/api/courses", courseHandler.ListCourses).Methods("GET")
	router.HandleFunc("/api/course/{courseID}", courseHandler.GetCourse).Methods("GET")
	router.Handle("/api/enrollments", authMW.Authenticate(http.HandlerFunc(courseHandler.ListEnrollments))).Methods("GET")

	router.Handle("/api/payment/order", authMW.Authenticate(http.HandlerFunc(paymentHandler.CreateOrder))).Methods("POST")
	router.HandleFunc("/api/payment/webhook", paymentHandler.Webhook).Methods("POST")
	router.Handle("/api/payments",
		authMW.Authenticate(authMW.RequireRole("admin")(http.HandlerFunc(paymentHandler.ListPayments)))).Methods("GET")
	router.Handle("/api/payments/me", authMW.Authenticate(http.HandlerFunc(paymentHandler.ListMyPayments))).Methods("GET")

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("Server running", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zlog.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}
	// Let in-flight notification emails finish before the process exits.
	notifier.Wait()
}
