package main

import (
	"context"
	"log"
	"os"
	"strings"

	"mindwell/internal/model"
	"mindwell/internal/pkg"
	"mindwell/internal/repository/mysql"
	"mindwell/internal/repository/redis"
	"mindwell/internal/router"
	"mindwell/internal/service"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx := context.Background()

	dsn := getenv("MINDWELL_MYSQL_DSN",
		"user:password@tcp(127.0.0.1:3306)/mindwell?charset=utf8mb4&parseTime=True")
	if err := mysql.InitDB(dsn); err != nil {
		panic(err)
	}

	// 连接redis
	if err := redis.Init(getenv("MINDWELL_REDIS_ADDR", "127.0.0.1:6379"),
		os.Getenv("MINDWELL_REDIS_PASSWORD"), 0); err != nil {
		panic(err)
	}
	defer redis.Close()

	// 自动建表（开发阶段 OK）
	if err := mysql.DB.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.Post{},
		&model.PostLike{},
		&model.ChatMessage{},
		&model.MoodEntry{},
		&model.OnboardingAnswer{},
		&model.Resource{},
		&model.Notification{},
		&model.NotificationOutbox{},
	); err != nil {
		panic(err)
	}

	emailCfg := pkg.SMTPConfig{
		Host:     getenv("MINDWELL_SMTP_HOST", "smtp.example.com"),
		Port:     587,
		Username: os.Getenv("MINDWELL_SMTP_USER"),
		Password: os.Getenv("MINDWELL_SMTP_PASSWORD"),
		From:     getenv("MINDWELL_SMTP_FROM", "MindWell <no-reply@example.com>"),
	}

	emailSvc := service.NewEmailService(emailCfg)
	userSvc := service.NewUserService(mysql.DB, emailSvc)
	notifySvc := service.NewNotificationService(mysql.DB)
	membershipSvc := service.NewMembershipService(mysql.DB, notifySvc)
	countSvc := service.NewMemberCountService(mysql.DB)
	postSvc := service.NewPostService(mysql.DB)
	likeSvc := service.NewPostLikeService(mysql.DB)
	chatSvc := service.NewChatService(mysql.DB)
	moodSvc := service.NewMoodService(mysql.DB)
	resourceSvc := service.NewResourceService(mysql.DB)

	gemini, err := pkg.NewGeminiClient(ctx,
		os.Getenv("MINDWELL_GEMINI_API_KEY"),
		getenv("MINDWELL_GEMINI_MODEL", "gemini-2.0-flash"))
	if err != nil {
		panic(err)
	}
	chatbotSvc := service.NewChatbotService(gemini, &redis.ChatHistoryRepository{})

	// outbox 投递：配了 broker 走 kafka，否则本地打日志
	sender := service.Sender(service.LogSender)
	if brokers := os.Getenv("MINDWELL_KAFKA_BROKERS"); brokers != "" {
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{
			Brokers: strings.Split(brokers, ","),
			Topic:   getenv("MINDWELL_KAFKA_TOPIC", "mindwell.notifications"),
		})
		if err != nil {
			panic(err)
		}
		defer producer.Close()
		sender = service.KafkaSender(producer)
	}

	go service.NewOutboxRelayer(mysql.DB, sender).Run(ctx)
	go service.NewMemberCountReconciler(mysql.DB).Run(ctx)

	r := router.InitRouter(router.Deps{
		User:       userSvc,
		Email:      emailSvc,
		Membership: membershipSvc,
		Count:      countSvc,
		Post:       postSvc,
		Like:       likeSvc,
		Chat:       chatSvc,
		Mood:       moodSvc,
		Resource:   resourceSvc,
		Chatbot:    chatbotSvc,
		Notify:     notifySvc,
	})
	if err := r.Run(getenv("MINDWELL_HTTP_ADDR", ":8080")); err != nil {
		log.Fatal(err)
	}
}
