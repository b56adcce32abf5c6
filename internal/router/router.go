package router

import (
	"time"

	"chanboard/internal/handlers"
	"chanboard/internal/middleware"
	"chanboard/internal/repository"
	"chanboard/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Repo           *repository.Repository
	Threads        *services.ThreadService
	AllowedOrigins []string
}

// New 创建路由引擎并挂载日志、恢复和跨域中间件
func New(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type",
			middleware.HeaderUserID, middleware.HeaderUsername, middleware.HeaderIsAdmin,
			middleware.HeaderRequestID,
		},
		ExposeHeaders: []string{middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	// 来源列表为空时 cors.New 会 panic
	if len(deps.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = deps.AllowedOrigins
	}
	r.Use(cors.New(corsConfig))

	RegisterRoutes(r, deps)
	return r
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Repo)
	channelHandler := handlers.NewChannelHandler(deps.Repo)
	postHandler := handlers.NewPostHandler(deps.Repo, deps.Threads)
	replyHandler := handlers.NewReplyHandler(deps.Repo, deps.Threads)
	voteHandler := handlers.NewVoteHandler(deps.Threads)
	userHandler := handlers.NewUserHandler(deps.Repo, deps.Threads)

	r.GET("/healthz", handlers.Health)

	api := r.Group("/api")
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/channels", channelHandler.List)
		authorized.POST("/channels", channelHandler.Create)
		authorized.GET("/channels/:channelId", channelHandler.Get)

		authorized.GET("/channels/:channelId/posts", postHandler.List)
		authorized.POST("/channels/:channelId/posts", postHandler.Create)
		authorized.GET("/channels/:channelId/posts/:postId", postHandler.Get)

		authorized.GET("/channels/:channelId/posts/:postId/replies", replyHandler.List)
		authorized.POST("/channels/:channelId/posts/:postId/replies", replyHandler.Create)

		authorized.POST("/votes", voteHandler.Vote)
		authorized.GET("/votes/:contentType/:contentId", voteHandler.Status)
	}

	admin := authorized.Group("")
	admin.Use(middleware.AdminRequired())
	{
		admin.DELETE("/channels/:channelId", channelHandler.Delete)
		admin.DELETE("/channels/:channelId/posts/:postId", postHandler.Delete)
		admin.DELETE("/channels/:channelId/posts/:postId/replies/:replyId", replyHandler.Delete)
		admin.DELETE("/users/:userId", userHandler.Delete)
	}
}
