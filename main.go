package main

import (
	"log"

	"bookshelf-server/config"
	"bookshelf-server/database"
	"bookshelf-server/handlers"
	"bookshelf-server/session"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration; DATABASE_URL is mandatory
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	// Connect to database
	db, err := database.Connect(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer db.Close()

	// Initialize tables
	if err := db.InitializeTables(); err != nil {
		log.Fatal("Failed to initialize tables: ", err)
	}

	// The catalog is seeded externally; an empty one is worth flagging
	if count, err := db.CountBooks(); err == nil {
		if count == 0 {
			log.Println("Books table is empty; run scripts/import_books.go to seed the catalog")
		} else {
			log.Printf("Catalog contains %d books", count)
		}
	}

	// Session store: Redis when configured, in-process memory otherwise
	var sessions session.Store
	if config.AppConfig.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
		})
		sessions = session.NewRedisStore(client)
		log.Printf("Using Redis session store at %s", config.AppConfig.RedisAddr)
	} else {
		sessions = session.NewMemoryStore()
		log.Println("REDIS_ADDR not set, using in-memory session store")
	}

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.Default()
	router.LoadHTMLGlob("templates/*.html")

	// Initialize handlers
	handlers.InitializeHandlers(db, sessions, config.AppConfig.SessionTTL)

	// Public routes
	router.GET("/register", handlers.ShowRegister)
	router.POST("/register", handlers.Register)
	router.GET("/login", handlers.ShowLogin)
	router.POST("/login", handlers.Login)
	router.GET("/logout", handlers.Logout)

	// Session-gated routes
	protected := router.Group("/")
	protected.Use(handlers.RequireLogin())
	{
		protected.GET("/", handlers.SearchPage)
		protected.POST("/", handlers.Search)
		protected.GET("/book/:isbn", handlers.BookDetail)
		protected.POST("/book/:isbn", handlers.SubmitReview)
	}

	log.Printf("Starting server on port %s", config.AppConfig.ServerPort)
	if err := router.Run(":" + config.AppConfig.ServerPort); err != nil {
		log.Fatal("Server failed: ", err)
	}
}
