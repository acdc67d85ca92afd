package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the full HTTP surface: catalog reads are public,
// everything stateful requires a verified identity, and the admin
// surface sits behind the capability middleware.
func NewRouter(handlers *Handlers, quiz *QuizHandler, ws *WSHandler, auth *Auth) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(auth.Middleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := router.Group("/api")
	{
		api.POST("/auth/user", auth.RequireAuth(), handlers.UpsertUser)
		api.GET("/auth/user", auth.RequireAuth(), handlers.CurrentUser)

		api.GET("/subjects", handlers.ListSubjects)
		api.GET("/years", handlers.ListYears)
		api.GET("/courses", handlers.ListCourses)
		api.GET("/questions", handlers.ListQuestions)

		api.GET("/leaderboard", handlers.Leaderboard)
		api.GET("/user-stats", auth.RequireAuth(), handlers.UserStats)
		api.GET("/user-streak", auth.RequireAuth(), handlers.CheckStreak)
		api.POST("/user-streak", auth.RequireAuth(), handlers.UpdateStreak)
		api.POST("/submit-quiz", auth.RequireAuth(), handlers.SubmitQuiz)

		quizGroup := api.Group("/quiz", auth.RequireAuth(), auth.RequireAccess())
		{
			quizGroup.POST("/start", quiz.Start)
			quizGroup.GET("/:id", quiz.Get)
			quizGroup.POST("/:id/answer", quiz.Answer)
			quizGroup.POST("/:id/next", quiz.Next)
			quizGroup.POST("/:id/previous", quiz.Previous)
			quizGroup.POST("/:id/jump", quiz.Jump)
			quizGroup.POST("/:id/finish", quiz.Finish)
		}

		admin := api.Group("", auth.RequireAdmin())
		{
			admin.POST("/subjects", handlers.CreateSubject)
			admin.POST("/years", handlers.CreateYear)
			admin.POST("/courses", handlers.CreateCourse)
			admin.POST("/questions", handlers.CreateQuestion)
			admin.PUT("/questions", handlers.UpdateQuestion)

			admin.GET("/users", handlers.ListUsers)
			admin.PUT("/users", handlers.UpdateUserRoles)
			admin.POST("/users/ban", handlers.BanUser)
			admin.POST("/users/access", handlers.SetUserAccess)
		}
	}

	router.GET("/ws/leaderboard", ws.ServeLeaderboard)

	return router
}
