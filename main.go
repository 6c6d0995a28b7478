package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/trektales/trektalesbackend/config"
	"github.com/trektales/trektalesbackend/controllers"
	"github.com/trektales/trektalesbackend/database"
	"github.com/trektales/trektalesbackend/middleware"
	"github.com/trektales/trektalesbackend/repository"
	"github.com/trektales/trektalesbackend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file")
	}

	// the two signing secrets are a startup requirement, not something
	// to limp along without
	if os.Getenv("JWT_ACCESS_SECRET") == "" || os.Getenv("JWT_REFRESH_SECRET") == "" {
		log.Fatal("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
	}

	ctx := context.Background()
	if err := database.EnsureIndexes(ctx); err != nil {
		log.Fatal(err)
	}

	usersCol := database.OpenCollection("users")
	if err := utils.SeedOwnerUser(ctx, usersCol); err != nil {
		log.Fatal(err)
	}

	users := repository.NewMongoUserRepository()
	blogs := repository.NewMongoBlogRepository()

	r := gin.New()

	origins := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// auth routes get a shared fixed-window limiter; likes stay
	// unthrottled on purpose
	var authLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		limit := utils.ParseIntDefault(os.Getenv("AUTH_RATE_LIMIT"), 20)
		windowSec := utils.ParseIntDefault(os.Getenv("AUTH_RATE_WINDOW_SECONDS"), 60)
		authLimit = middleware.NewRateLimiter(rdb, limit, time.Duration(windowSec)*time.Second).Middleware()
	} else {
		log.Println("REDIS_ADDR not set, auth rate limiting disabled")
	}

	auth := r.Group("/auth")
	{
		auth.POST("/register", authLimit, controllers.Register(users))
		auth.POST("/login", authLimit, controllers.Login(users))
		auth.POST("/refresh", authLimit, controllers.Refresh(users))
		if gc := config.NewGoogleConfig(); gc != nil {
			auth.POST("/google", authLimit, controllers.GoogleAuth(users, gc))
		} else {
			log.Println("Google OAuth not configured, /auth/google disabled")
		}

		auth.GET("/me", middleware.AuthMiddleware(), controllers.Me(users))
		auth.PUT("/update", middleware.AuthMiddleware(), controllers.UpdateProfile(users))
		auth.DELETE("/delete", middleware.AuthMiddleware(), controllers.DeleteAccount(users, blogs))
		auth.POST("/logout", middleware.AuthMiddleware(), controllers.Logout(users))
	}

	r.GET("/blogs", controllers.GetBlogs(blogs))
	r.GET("/blogs/:id", controllers.GetBlog(blogs))
	r.GET("/users/:id", controllers.GetUser(users))

	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware())
	{
		authed.POST("/blogs", controllers.CreateBlog(blogs, users))
		authed.PUT("/blogs/:id", controllers.UpdateBlog(blogs, users))
		authed.DELETE("/blogs/:id", controllers.DeleteBlog(blogs, users))
		authed.POST("/blogs/:id/like", controllers.ToggleLike(blogs))
		authed.POST("/blogs/:id/comment", controllers.AddComment(blogs, users))
		authed.DELETE("/blogs/:id/comments/:commentId", controllers.DeleteComment(blogs, users))

		authed.PUT("/users/:id/make-admin", controllers.MakeAdmin(users))
		authed.PUT("/users/:id/remove-admin", controllers.RemoveAdmin(users))
		authed.DELETE("/users/:id", controllers.DeleteUser(users, blogs))
	}

	// Server listens on 0.0.0.0:8080 unless PORT is set
	r.Run()
}
