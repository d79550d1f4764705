package main

import (
	"log"
	"net/http"

	"orbit-social-client/api"
	"orbit-social-client/auth"
	"orbit-social-client/comments"
	"orbit-social-client/config"
	"orbit-social-client/middleware"
	"orbit-social-client/pkg/db/sqlite"
	"orbit-social-client/posts"
	"orbit-social-client/remote"
	"orbit-social-client/search"
	"orbit-social-client/store"

	"github.com/rs/cors"
)

func main() {
	log.Println("Initializing social client...")
	cfg := config.Load()

	db, err := sqlite.ConnectAndMigrate(cfg.DBPath, cfg.MigrationsPath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	localStore := store.NewSQLiteStore(db)

	client := remote.NewHTTPClient(cfg.RemoteBaseURL)

	sealer, err := auth.NewSealer(cfg.SealKeyPath)
	if err != nil {
		log.Fatalf("Failed to initialize credential sealer: %v", err)
	}

	session := auth.NewSession(localStore, client, sealer)
	if err := session.Rehydrate(); err != nil {
		log.Printf("Session rehydration failed: %v", err)
	}

	feed := posts.NewCache(client, localStore, session, cfg.FeedPostLimit, cfg.FeedUserLimit)
	commentCache := comments.NewCache(client, localStore, session)
	aggregator := search.NewAggregator(client, cfg.SearchPostLimit, cfg.FeedUserLimit)

	server := &api.Server{
		Posts:    feed,
		Comments: commentCache,
		Search:   aggregator,
		Session:  session,
		Users:    client,
		Hub:      api.NewHub(),
	}

	// --- CORS Middleware ---
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	handler := c.Handler(middleware.RequestLogger(server.Routes()))

	log.Printf("Social client façade listening on %s (remote: %s)", cfg.ListenAddr, cfg.RemoteBaseURL)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, handler))
}
