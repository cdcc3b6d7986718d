// cmd/api/main.go
// Main entry point for the matching API.
// This file bootstraps all components and starts the server.

package main

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-redis/redis/v8"
    "github.com/gorilla/mux"
    "github.com/joho/godotenv"
    "github.com/prometheus/client_golang/prometheus/promhttp"

    "github.com/amouradev/amoura-backend/internal/auth"
    "github.com/amouradev/amoura-backend/internal/common/database"
    "github.com/amouradev/amoura-backend/internal/config"
    "github.com/amouradev/amoura-backend/internal/conversation"
    "github.com/amouradev/amoura-backend/internal/matchmaking"
    "github.com/amouradev/amoura-backend/internal/notification"
    "github.com/amouradev/amoura-backend/internal/profile"
)

func main() {
    log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

    log.Println("========================================")
    log.Println("🚀 Starting Amoura Matching API")
    log.Println("========================================")

    // 1. Load environment variables
    log.Println("📁 Step 1: Loading .env file...")
    if err := godotenv.Load(); err != nil {
        log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
    } else {
        log.Println("✅ .env file loaded successfully")
    }

    // 2. Load configuration
    log.Println("\n📋 Step 2: Loading configuration...")
    cfg := config.Load()
    log.Printf("✅ Configuration loaded")

    // 3. Validate configuration
    log.Println("\n✔️  Step 3: Validating configuration...")
    if err := cfg.Validate(); err != nil {
        log.Fatal("❌ Configuration validation failed:", err)
    }
    log.Println("✅ Configuration is valid")

    // 4. Connect to PostgreSQL
    log.Println("\n🗄️  Step 4: Connecting to PostgreSQL...")
    db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
    if err != nil {
        log.Fatal("❌ Failed to connect to PostgreSQL:", err)
    }
    defer db.Close()

    if err := db.Ping(); err != nil {
        log.Fatal("❌ Failed to ping PostgreSQL:", err)
    }
    log.Println("✅ Connected to PostgreSQL successfully")

    // 5. Connect to Redis (optional)
    log.Println("\n📮 Step 5: Connecting to Redis...")
    var redisClient *redis.Client

    if cfg.RedisURL != "" {
        opt, err := redis.ParseURL(cfg.RedisURL)
        if err != nil {
            log.Printf("⚠️  Warning: Invalid Redis URL (%v), continuing without Redis", err)
        } else {
            redisClient = redis.NewClient(opt)
            ctx := context.Background()
            if err := redisClient.Ping(ctx).Err(); err != nil {
                log.Printf("⚠️  Redis ping failed: %v, continuing without Redis", err)
                redisClient = nil
            } else {
                defer redisClient.Close()
                log.Println("✅ Connected to Redis successfully")
            }
        }
    } else {
        log.Println("⚠️  Redis URL not configured, skipping Redis connection")
    }

    // 6. Run database migrations
    log.Println("\n🔨 Step 6: Running database migrations...")
    if err := runMigrations(db); err != nil {
        log.Printf("❌ Migration error: %v", err)
        log.Fatal("Failed to run migrations")
    }
    log.Println("✅ Database migrations completed")

    // 7. Initialize auth middleware
    log.Println("\n🔐 Step 7: Initializing auth middleware...")
    authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
    log.Println("✅ Auth middleware initialized")

    // 8. Initialize profile module
    log.Println("\n👤 Step 8: Initializing profile module...")
    profileStore := profile.NewPostgresStore(db)
    profileHandler := profile.NewHandler(profileStore)
    log.Println("✅ Profile module initialized")

    // 9. Initialize notification module
    log.Println("\n🔔 Step 9: Initializing notification module...")
    hub := notification.NewHub()
    go hub.Run()

    var broker *notification.RedisBroker
    if redisClient != nil && cfg.EnableRealtimePush {
        broker = notification.NewRedisBroker(redisClient, hub)
        go broker.Subscribe(context.Background())
        log.Println("   ✅ Redis fan-out enabled")
    }

    var emailer notification.EmailSender
    var directory notification.Directory
    if cfg.EnableEmailNotifications && cfg.EmailProvider == "sendgrid" {
        emailer = notification.NewSendGridSender(cfg.SendGridAPIKey, cfg.EmailFrom)
        directory = notification.NewPostgresDirectory(db)
        log.Println("   ✅ SendGrid email fallback enabled")
    }

    notifier := notification.NewService(hub, broker, emailer, directory)
    notificationHandler := notification.NewHandler(hub)
    log.Println("✅ Notification module initialized")

    // 10. Initialize conversation module
    log.Println("\n💬 Step 10: Initializing conversation module...")
    conversationRepo := conversation.NewPostgresRepository(db)
    conversationService := conversation.NewService(conversationRepo)
    conversationHandler := conversation.NewHandler(conversationService)
    log.Println("✅ Conversation module initialized")

    // 11. Initialize matchmaking module
    log.Println("\n💘 Step 11: Initializing matchmaking module...")
    ledger := matchmaking.NewPostgresLedger(db)
    states := matchmaking.NewStateMachine(ledger)
    engine := matchmaking.NewDiscoveryEngine(profileStore, states, cfg.DefaultMaxDistanceKM, cfg.BoosterPackSize, cfg.DiscoveryLimit)
    matchmakingService := matchmaking.NewService(profileStore, engine, states, ledger, conversationService, notifier)
    matchmakingHandler := matchmaking.NewHandler(matchmakingService)
    log.Println("✅ Matchmaking module initialized")

    // 12. Setup routes
    log.Println("\n🛣️  Step 12: Setting up routes...")
    router := mux.NewRouter()

    router.HandleFunc("/health", healthCheck).Methods("GET")
    router.HandleFunc("/api", apiInfo).Methods("GET")
    router.Handle("/metrics", promhttp.Handler()).Methods("GET")

    matchmaking.RegisterRoutes(router, matchmakingHandler, authMiddleware.Authenticate)
    log.Println("   ✅ Matchmaking routes registered")

    notification.RegisterRoutes(router, notificationHandler, authMiddleware.Authenticate)
    log.Println("   ✅ Notification routes registered")

    conversation.RegisterRoutes(router, conversationHandler, authMiddleware.Authenticate)
    log.Println("   ✅ Conversation routes registered")

    // Profile routes use chi; mount the chi router under the mux one
    chiRouter := chi.NewRouter()
    profile.RegisterRoutes(chiRouter, profileHandler, authMiddleware)
    router.PathPrefix("/api/v1/profile").Handler(chiRouter)
    log.Println("   ✅ Profile routes registered")

    router.Use(loggingMiddleware)
    router.Use(corsMiddleware)

    // 13. Create and start HTTP server
    srv := &http.Server{
        Addr:         fmt.Sprintf(":%s", cfg.Port),
        Handler:      router,
        ReadTimeout:  cfg.ReadTimeout,
        WriteTimeout: cfg.WriteTimeout,
        IdleTimeout:  cfg.IdleTimeout,
    }

    go func() {
        log.Println("\n========================================")
        log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
        log.Printf("🌍 Environment: %s", cfg.Environment)
        log.Println("========================================")

        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal("❌ Failed to start server:", err)
        }
    }()

    // Wait for interrupt signal
    quit := make(chan os.Signal, 1)
    signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
    <-quit

    log.Println("\n⚠️  Shutdown signal received...")

    log.Println("   - Shutting down notification hub...")
    hub.Stop()

    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()

    if err := srv.Shutdown(ctx); err != nil {
        log.Fatal("❌ Server forced to shutdown:", err)
    }

    log.Println("✅ Server exited gracefully")
}

var startTime = time.Now()

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
    response := map[string]interface{}{
        "status":    "healthy",
        "timestamp": time.Now().Format(time.RFC3339),
        "uptime":    time.Since(startTime).String(),
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    json.NewEncoder(w).Encode(response)
}

// apiInfo returns API information
func apiInfo(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusOK)
    w.Write([]byte(`{
        "name": "Amoura Matching API",
        "version": "1.0.0",
        "status": "running",
        "endpoints": {
            "health": "GET /health",
            "metrics": "GET /metrics",
            "profile": {
                "me": "GET /api/v1/profile",
                "get": "GET /api/v1/profile/{id}",
                "preferences": "PUT /api/v1/profile/preferences"
            },
            "matchmaking": {
                "candidates": "GET /api/v1/matchmaking/candidates",
                "batch": "POST /api/v1/matchmaking/batch",
                "like": "POST /api/v1/matchmaking/like",
                "pass": "POST /api/v1/matchmaking/pass",
                "matches": "GET /api/v1/matchmaking/matches",
                "likesReceived": "GET /api/v1/matchmaking/likes/received",
                "unmatch": "POST /api/v1/matchmaking/unmatch"
            },
            "conversations": {
                "get": "GET /api/v1/conversations/{ref}"
            },
            "notifications": {
                "websocket": "GET /api/v1/notifications/ws"
            }
        }
    }`))
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()

        log.Printf("→ %s %s from %s", r.Method, r.RequestURI, r.RemoteAddr)

        // Wrap response writer to capture status code
        wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

        next.ServeHTTP(wrapped, r)

        duration := time.Since(start)
        log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, duration)
    })
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
    http.ResponseWriter
    statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
    rw.statusCode = code
    rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
        w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

        if r.Method == "OPTIONS" {
            w.WriteHeader(http.StatusOK)
            return
        }

        next.ServeHTTP(w, r)
    })
}
