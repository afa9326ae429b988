package router

import (
	"mindwell/internal/handler"
	"mindwell/internal/middleware"
	"mindwell/internal/service"

	"github.com/gin-gonic/gin"
)

// Deps 路由需要的各业务服务，由 main 组装好传进来
type Deps struct {
	User       *service.UserService
	Email      *service.EmailService
	Membership *service.MembershipService
	Count      *service.MemberCountService
	Post       *service.PostService
	Like       *service.PostLikeService
	Chat       *service.ChatService
	Mood       *service.MoodService
	Resource   *service.ResourceService
	Chatbot    *service.ChatbotService
	Notify     *service.NotificationService
}

func InitRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	user := handler.NewUserHandler(deps.User)
	email := handler.NewEmailHandler(deps.Email)
	community := handler.NewCommunityHandler(deps.Membership, deps.Count)
	post := handler.NewPostHandler(deps.Post)
	like := handler.NewPostLikeHandler(deps.Like)
	chat := handler.NewChatHandler(deps.Chat)
	mood := handler.NewMoodHandler(deps.Mood)
	resource := handler.NewResourceHandler(deps.Resource)
	chatbot := handler.NewChatbotHandler(deps.Chatbot)
	notify := handler.NewNotificationHandler(deps.Notify)

	// 邮件相关接口
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", email.SendCode)
	}

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/reset", user.ResetPassword)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", user.Logout)
		authGroup.POST("/change-password", user.ChangePassword)
		authGroup.GET("/profile", user.Profile)
		authGroup.PUT("/profile", user.UpdateProfile)
	}

	// 社区与成员相关接口
	communityGroup := r.Group("/api/community")
	communityGroup.Use(middleware.AuthMiddleware())
	{
		communityGroup.POST("/create", community.Create)
		communityGroup.GET("/list", community.List)
		communityGroup.GET("/:id", community.Detail)
		communityGroup.DELETE("/:id", community.Delete)
		communityGroup.POST("/:id/join", community.Join)
		communityGroup.POST("/:id/leave", community.Leave)
		communityGroup.GET("/:id/members", community.Members)
		communityGroup.PUT("/:id/members/role", community.ChangeRole)
		communityGroup.DELETE("/:id/members", community.RemoveMember)
		communityGroup.POST("/:id/chat", chat.Send)
		communityGroup.GET("/:id/chat", chat.List)
		communityGroup.GET("/:id/posts", post.ListByCommunity)
	}

	// 帖子相关接口
	postGroup := r.Group("/api/post")
	postGroup.Use(middleware.AuthMiddleware())
	{
		postGroup.POST("/create", post.CreatePost)
		postGroup.DELETE("/:id", post.DeletePost)
		postGroup.POST("/:id/like", like.Like)
		postGroup.DELETE("/:id/like", like.Unlike)
		postGroup.GET("/:id/like", like.Status)
	}

	// 心情与引导问卷相关接口
	moodGroup := r.Group("/api/mood")
	moodGroup.Use(middleware.AuthMiddleware())
	{
		moodGroup.POST("/log", mood.Log)
		moodGroup.GET("/recent", mood.Recent)
		moodGroup.GET("/summary", mood.Summary)
		moodGroup.POST("/onboarding", mood.SubmitOnboarding)
		moodGroup.GET("/onboarding", mood.OnboardingAnswers)
	}

	// 自助资源相关接口
	resourceGroup := r.Group("/api/resource")
	resourceGroup.Use(middleware.AuthMiddleware())
	{
		resourceGroup.GET("/list", resource.List)
		resourceGroup.GET("/:id", resource.Detail)
		resourceGroup.POST("/create", resource.Create)
	}

	// AI 陪伴对话相关接口
	chatbotGroup := r.Group("/api/chatbot")
	chatbotGroup.Use(middleware.AuthMiddleware())
	{
		chatbotGroup.POST("/message", chatbot.Message)
		chatbotGroup.POST("/reset", chatbot.Reset)
	}

	// 站内通知相关接口
	notifyGroup := r.Group("/api/notification")
	notifyGroup.Use(middleware.AuthMiddleware())
	{
		notifyGroup.GET("/list", notify.List)
		notifyGroup.PUT("/:id/read", notify.MarkRead)
		notifyGroup.PUT("/read-all", notify.MarkAllRead)
	}

	return r
}
