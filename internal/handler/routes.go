package handler

import (
	"agrocore-service/internal/middleware"
	"agrocore-service/internal/model"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts every route on e
func RegisterRoutes(e *echo.Echo) {
	// Public routes - no authentication required
	e.GET("/health", HealthCheck)
	e.GET("/metrics", MetricsHandler)
	e.POST("/contact", SubmitContact)

	auth := e.Group("/auth")
	auth.POST("/login", Login)
	auth.POST("/register", Register)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	api.POST("/logout", Logout)

	users := api.Group("/users")
	users.GET("/profile", GetProfile)
	users.PATCH("/profile", UpdateProfile)
	users.POST("/change-password", ChangePassword)

	crops := api.Group("/crops")
	crops.GET("", ListCrops)
	crops.POST("/evaluate", EvaluateSuitability)

	api.GET("/dashboard", GetDashboard)

	// Company
	api.POST("/company", CreateCompany)
	company := api.Group("/company", middleware.RequireCompany)
	company.GET("", GetMyCompany)
	company.PUT("", UpdateMyCompany, middleware.RequireRole(model.RoleBoss))

	// Staff administration - Boss only
	staff := api.Group("/staff", middleware.RequireCompany, middleware.RequireRole(model.RoleBoss))
	staff.GET("", ListStaff)
	staff.POST("/invitations", InviteStaff)
	staff.DELETE("/invitations/:id", CancelInvitation)
	staff.PUT("/:id", UpdateEmployeeDetails)
	staff.DELETE("/:id", RemoveStaff)
	staff.POST("/:id/promote", PromoteStaff)
	staff.POST("/:id/demote", DemoteStaff)
	staff.GET("/:id/leave", GetLeaveDates)
	staff.POST("/:id/leave/toggle", ToggleLeaveDate)

	invitations := api.Group("/invitations")
	invitations.GET("", ListMyInvitations)
	invitations.POST("/accept", AcceptInvitation)
	invitations.POST("/:id/decline", DeclineInvitation)

	// Tasks
	tasks := api.Group("/tasks")
	tasks.GET("/mine", ListMyTasks)
	tasks.POST("/:id/complete", CompleteTask)
	supervisor := []echo.MiddlewareFunc{middleware.RequireCompany, middleware.RequireRole(model.RoleBoss, model.RoleManager)}
	tasks.POST("", AssignTask, supervisor...)
	tasks.GET("/employee/:id", ListEmployeeTasks, supervisor...)
	tasks.POST("/:id/approve", ApproveTask, supervisor...)

	// Tenant-owned records
	plants := api.Group("/plants")
	plants.GET("", ListPlants)
	plants.POST("", CreatePlant)
	plants.GET("/:id", GetPlant)
	plants.PUT("/:id", UpdatePlant)
	plants.DELETE("/:id", DeletePlant)

	resources := api.Group("/resources")
	resources.GET("", ListResources)
	resources.POST("", CreateResource)
	resources.GET("/low-stock", ListLowStock)
	resources.GET("/:id", GetResource)
	resources.PUT("/:id", UpdateResource)
	resources.DELETE("/:id", DeleteResource)
	resources.POST("/:id/adjust", AdjustQuantity)
	resources.POST("/:id/usages", RecordUsage)
	resources.GET("/:id/usages", ListUsages)

	machinery := api.Group("/machinery")
	machinery.GET("", ListMachinery)
	machinery.POST("", CreateMachinery)
	machinery.GET("/service-due", ListServiceDue)
	machinery.GET("/:id", GetMachinery)
	machinery.PUT("/:id", UpdateMachinery)
	machinery.DELETE("/:id", DeleteMachinery)
	machinery.POST("/:id/maintenance", AddMaintenance)
	machinery.GET("/:id/maintenance", ListMaintenance)
	machinery.POST("/:id/list-for-sale", ListForSale)

	marketplace := api.Group("/marketplace")
	marketplace.GET("", BrowseListings)
	marketplace.GET("/mine", ListMyListings)
	marketplace.POST("", CreateListing)
	marketplace.GET("/:id", GetListing)
	marketplace.PUT("/:id", UpdateListing)
	marketplace.PATCH("/:id/status", SetListingStatus)
	marketplace.DELETE("/:id", DeleteListing)

	sensors := api.Group("/sensors")
	sensors.GET("", ListSensors)
	sensors.POST("", CreateSensor)
	sensors.GET("/:id", GetSensor)
	sensors.PUT("/:id", UpdateSensor)
	sensors.DELETE("/:id", DeleteSensor)
	sensors.POST("/:id/readings", RecordReading)
	sensors.GET("/:id/readings", ListReadings)
	sensors.GET("/:id/readings/latest", LatestReading)

	// Messaging
	api.GET("/inbox", ListInbox)
	support := api.Group("/support/messages", middleware.RequireRole(model.RoleSystemAdmin, model.RoleITSupport))
	support.GET("", ListSupportMessages)
	support.POST("/:id/reply", ReplyToMessage)

	// Admin console - SystemAdmin only
	admin := api.Group("/admin", middleware.RequireRole(model.RoleSystemAdmin))
	admin.GET("/dashboard", AdminDashboard)
	admin.GET("/users", ListUsers)
	admin.PUT("/users/:id/role", SetUserRole)
	admin.POST("/users/:id/lock", LockUser)
	admin.POST("/users/:id/unlock", UnlockUser)
	admin.GET("/companies", ListCompanies)
}
