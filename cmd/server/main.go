package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"TutorCerdas/internal/chunker"
	"TutorCerdas/internal/conf"
	"TutorCerdas/internal/data"
	"TutorCerdas/internal/extractor"
	"TutorCerdas/internal/handler"
	"TutorCerdas/internal/indexer"
	"TutorCerdas/internal/llm"
	"TutorCerdas/internal/middleware"
	"TutorCerdas/internal/repository"
	"TutorCerdas/internal/service"
)

func main() {
	// 1. 加载配置
	cfg := conf.LoadConfig()

	// 2. 初始化数据层 (Postgres, Redis, MinIO)
	d, cleanup, err := data.NewData(cfg)
	if err != nil {
		log.Fatalf("❌ 数据层初始化失败: %v", err)
	}
	defer cleanup()

	// 3. 初始化外部服务客户端
	idxClient := indexer.NewClient(cfg.Indexer.URL)

	// 生成凭证缺失时 generator 保持 nil，/chat/ask 进入降级模式
	var generator llm.Generator
	if cfg.Gen.APIKey != "" {
		generator = llm.NewOpenAIGenerator(cfg.Gen.APIKey, cfg.Gen.BaseURL, cfg.Gen.Model)
		log.Printf("✅ 生成服务已启用 (model: %s)", cfg.Gen.Model)
	} else {
		log.Println("⚠️ GEN_API_KEY 未配置，/chat/ask 将以降级模式返回原文上下文")
	}

	// 4. 初始化仓储与服务层
	docRepo := repository.NewDocumentRepository(d.DB)
	chunkRepo := repository.NewChunkRepository(d.DB)
	userRepo := repository.NewUserRepository(d.DB)

	docService := service.NewDocumentService(
		docRepo, chunkRepo,
		data.NewMinioStore(d),
		data.NewRedisLocker(d),
		extractor.NewPDFExtractor(),
		chunker.NewFixedChunker(cfg.Indexer.ChunkSize),
		idxClient,
		cfg.Indexer.RebuildMode,
	)
	chatService := service.NewChatService(idxClient, generator, cfg.Gen.FallbackNotice, cfg.Gen.NotFoundAnswer)
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret)

	// 5. 初始化 Handler
	docHandler := handler.NewDocumentHandler(docService)
	chatHandler := handler.NewChatHandler(chatService)
	authHandler := handler.NewAuthHandler(authService)

	// 6. 初始化 Gin Web Server
	r := gin.Default()
	r.Use(middleware.TraceMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 7. 注册路由
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", middleware.JWTAuth(cfg.Auth.JWTSecret), authHandler.Me)
	}

	// 登录即可访问
	authed := r.Group("/")
	authed.Use(middleware.JWTAuth(cfg.Auth.JWTSecret))
	{
		authed.GET("/documents", docHandler.List)
		authed.GET("/documents/:id/chunks", docHandler.Chunks)
		authed.GET("/documents/:id/preview", docHandler.Preview)
		authed.POST("/chat/ask", chatHandler.Ask)
	}

	// 上传与重建只开放给 admin
	admin := r.Group("/")
	admin.Use(middleware.JWTAuth(cfg.Auth.JWTSecret), middleware.RequireRole("admin"))
	{
		admin.POST("/documents/upload", docHandler.Upload)
		admin.POST("/documents/rebuild/:id", docHandler.Rebuild)
	}

	log.Printf("🚀 Tutor Cerdas API 已启动，监听端口 :%s (rebuild mode: %s)", cfg.App.Port, cfg.Indexer.RebuildMode)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("❌ Server 启动失败: %v", err)
	}
}
